package client

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/x402chainpay/client-go/internal/model"
)

// API paths served by the backend.
const (
	PathHealth         = "/api/health"
	PathPaymentOptions = "/api/payment-options"
	PathSession        = "/api/session/"
	PathSessions       = "/api/sessions"
	PathPayments       = "/api/payments"
	PathPaySession     = "/api/pay/session"
	PathPayOneTime     = "/api/pay/onetime"
)

// Free endpoints

// GetHealth returns the decoded health body, whatever JSON value it is.
func (c *Client) GetHealth(ctx context.Context) (any, error) {
	var out any
	if err := c.do(ctx, "getHealth", http.MethodGet, PathHealth, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPaymentOptions(ctx context.Context) ([]model.PaymentOption, error) {
	const op = "getPaymentOptions"

	var out []model.PaymentOption
	if err := c.do(ctx, op, http.MethodGet, PathPaymentOptions, nil, &out); err != nil {
		return nil, err
	}
	err := c.check(op, func() error {
		for i := range out {
			if err := out[i].Validate(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateSession looks up a session. sessionID is placed into the path as
// given.
func (c *Client) ValidateSession(ctx context.Context, sessionID string) (*model.SessionValidation, error) {
	const op = "validateSession"

	var out model.SessionValidation
	if err := c.do(ctx, op, http.MethodGet, PathSession+sessionID, nil, &out); err != nil {
		return nil, err
	}
	if err := c.check(op, out.Validate); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetActiveSessions(ctx context.Context) ([]model.Session, error) {
	const op = "getActiveSessions"

	var out []model.Session
	if err := c.do(ctx, op, http.MethodGet, PathSessions, nil, &out); err != nil {
		return nil, err
	}
	err := c.check(op, func() error {
		for i := range out {
			if err := out[i].Validate(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPayments(ctx context.Context) ([]model.PaymentRecord, error) {
	const op = "getPayments"

	var out []model.PaymentRecord
	if err := c.do(ctx, op, http.MethodGet, PathPayments, nil, &out); err != nil {
		return nil, err
	}
	err := c.check(op, func() error {
		for i := range out {
			if err := out[i].Validate(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Paid endpoints

// Purchase24HourSession and PurchaseOneTimeAccess return the decoded response
// as-is: an object, array, string, number or bool.
func (c *Client) Purchase24HourSession(ctx context.Context, payload model.PaymentRequestPayload) (any, error) {
	return c.purchase(ctx, "purchase24HourSession", PathPaySession, model.SessionType24Hour, payload)
}

func (c *Client) PurchaseOneTimeAccess(ctx context.Context, payload model.PaymentRequestPayload) (any, error) {
	return c.purchase(ctx, "purchaseOneTimeAccess", PathPayOneTime, model.SessionTypeOneTime, payload)
}

func (c *Client) purchase(ctx context.Context, op, path string, kind model.SessionType, payload model.PaymentRequestPayload) (any, error) {
	log.Info().
		Str("type", kind.Label()).
		Str("wallet", payload.WalletAddress).
		Msg("purchasing access")

	var out any
	if err := c.do(ctx, op, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}

	log.Info().
		Str("type", kind.Label()).
		Interface("result", out).
		Msg("access granted")

	return out, nil
}
