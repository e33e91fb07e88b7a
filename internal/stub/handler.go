// Package stub is an in-memory stand-in for the ChainPay backend. It serves
// the same endpoints as production so the client, the CLI and a browser
// front end can be exercised locally without a chain or a database.
// Payments are recorded as submitted; nothing is verified.
package stub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/x402chainpay/client-go/internal/errors"
	"github.com/x402chainpay/client-go/internal/httputil"
	"github.com/x402chainpay/client-go/internal/model"
)

type Pricing struct {
	SessionUSD float64
	OneTimeUSD float64
}

type Handler struct {
	store   *Store
	pricing Pricing
}

func NewHandler(store *Store, pricing Pricing) *Handler {
	return &Handler{
		store:   store,
		pricing: pricing,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.Health)
	r.Get("/payment-options", h.PaymentOptions)
	r.Get("/session/{sessionId}", h.ValidateSession)
	r.Get("/sessions", h.ListSessions)
	r.Get("/payments", h.ListPayments)
	r.Post("/pay/session", h.PurchaseSession)
	r.Post("/pay/onetime", h.PurchaseOneTime)

	return r
}

// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "x402-chainpay-stub",
		"timestamp": time.Now().UnixMilli(),
	})
}

// GET /api/payment-options
func (h *Handler) PaymentOptions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, []model.PaymentOption{
		{
			Name:        "24-Hour Session",
			Endpoint:    "/api/pay/session",
			Price:       formatUSD(h.pricing.SessionUSD),
			Description: fmt.Sprintf("Unlimited access for %s", formatWindow(h.store.sessionTTL)),
		},
		{
			Name:        "One-Time Access",
			Endpoint:    "/api/pay/onetime",
			Price:       formatUSD(h.pricing.OneTimeUSD),
			Description: "Single request access",
		},
	})
}

// GET /api/session/{sessionId}
func (h *Handler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("sessionId", "must not be empty"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.store.Validate(sessionID))
}

// GET /api/sessions
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.ActiveSessions())
}

// GET /api/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Payments())
}

// POST /api/pay/session
func (h *Handler) PurchaseSession(w http.ResponseWriter, r *http.Request) {
	h.purchase(w, r, model.SessionType24Hour, h.pricing.SessionUSD)
}

// POST /api/pay/onetime
func (h *Handler) PurchaseOneTime(w http.ResponseWriter, r *http.Request) {
	h.purchase(w, r, model.SessionTypeOneTime, h.pricing.OneTimeUSD)
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request, kind model.SessionType, amountUSD float64) {
	var payload model.PaymentRequestPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session, payment := h.store.Purchase(kind, amountUSD, payload)

	log.Info().
		Str("session_id", session.ID).
		Str("payment_id", payment.ID).
		Str("type", string(kind)).
		Float64("amount_usd", amountUSD).
		Msg("access purchased")

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%s access granted", kind.Label()),
		"session": session,
		"payment": payment,
	})
}

func formatUSD(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
