// Package client is the typed HTTP client for the x402 ChainPay backend.
//
// Every operation issues exactly one request against a base URL fixed at
// construction time and returns the decoded JSON body. There is no retry,
// caching or timeout of its own; callers bound a call through ctx or by
// supplying their own *http.Client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apperrors "github.com/x402chainpay/client-go/internal/errors"
)

// maxErrorBody caps how much of a failed response is kept on the error.
const maxErrorBody = 4 << 10

// Client is safe for concurrent use. It holds no state besides its
// immutable configuration.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   bool
}

type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithResponseValidation checks decoded values (closed session type enum,
// required ids) before returning them. A failed check is reported as a
// failed request.
func WithResponseValidation() Option {
	return func(c *Client) {
		c.validate = true
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return apperrors.RequestFailed(operation, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return apperrors.RequestFailed(operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.RequestFailed(operation, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("operation", operation).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.UnexpectedStatus(operation, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// An empty 2xx body leaves out at its zero value.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.RequestFailed(operation, err)
	}
	return nil
}

func (c *Client) check(operation string, validate func() error) error {
	if !c.validate {
		return nil
	}
	if err := validate(); err != nil {
		return apperrors.RequestFailed(operation, err).WithDetails("response failed validation")
	}
	return nil
}
