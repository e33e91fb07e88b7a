package model

import "fmt"

// Session is an access window granted by the backend after a payment.
// Timestamps are passed through as the backend formats them.
type Session struct {
	ID              string      `json:"id"`
	Type            SessionType `json:"type"`
	CreatedAt       string      `json:"createdAt"`
	ExpiresAt       string      `json:"expiresAt"`
	WalletAddress   string      `json:"walletAddress,omitempty"`
	TransactionHash string      `json:"transactionHash,omitempty"`
	ValidFor        string      `json:"validFor,omitempty"`
	RemainingTime   *float64    `json:"remainingTime,omitempty"`
}

func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is empty")
	}
	if !s.Type.IsValid() {
		return fmt.Errorf("session %s has unknown type %q", s.ID, s.Type)
	}
	return nil
}

// SessionValidation is the result of a session lookup. Session is only set
// when Valid is true.
type SessionValidation struct {
	Valid   bool     `json:"valid"`
	Error   string   `json:"error,omitempty"`
	Session *Session `json:"session,omitempty"`
}

func (v *SessionValidation) Validate() error {
	if !v.Valid {
		if v.Session != nil {
			return fmt.Errorf("invalid session result carries a session")
		}
		return nil
	}
	if v.Session == nil {
		return fmt.Errorf("valid session result has no session")
	}
	return v.Session.Validate()
}
