package model

import "fmt"

// PaymentRequestPayload is sent to both purchase endpoints. Every field is
// optional; the backend decides what it accepts. A nil Metadata is left out,
// an empty non-nil one is sent as {}.
type PaymentRequestPayload struct {
	WalletAddress   string         `json:"walletAddress,omitempty"`
	TransactionHash string         `json:"transactionHash,omitempty"`
	Metadata        map[string]any `json:"metadata,omitzero"`
}

// PaymentOption is a catalog entry. Price is already currency formatted.
type PaymentOption struct {
	Name        string `json:"name"`
	Endpoint    string `json:"endpoint"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func (o *PaymentOption) Validate() error {
	if o.Endpoint == "" {
		return fmt.Errorf("payment option %q has no endpoint", o.Name)
	}
	return nil
}

type PaymentRecord struct {
	ID              string         `json:"id"`
	Type            SessionType    `json:"type"`
	AmountUSD       float64        `json:"amountUsd"`
	WalletAddress   string         `json:"walletAddress,omitempty"`
	TransactionHash string         `json:"transactionHash,omitempty"`
	Metadata        map[string]any `json:"metadata,omitzero"`
	CreatedAt       string         `json:"createdAt"`
}

func (p *PaymentRecord) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("payment id is empty")
	}
	if !p.Type.IsValid() {
		return fmt.Errorf("payment %s has unknown type %q", p.ID, p.Type)
	}
	return nil
}
