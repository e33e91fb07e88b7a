package stub

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/x402chainpay/client-go/internal/model"
)

// OneTimeAccessWindow is how long an unused one-time grant stays redeemable.
const OneTimeAccessWindow = 5 * time.Minute

type session struct {
	model.Session
	createdAt time.Time
	expiresAt time.Time
	// consumed is set once a one-time grant has been validated.
	consumed bool
}

func (sess *session) live(now time.Time) bool {
	return !sess.consumed && now.Before(sess.expiresAt)
}

// Store is the in-memory ledger behind the stub backend.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	payments   []model.PaymentRecord
	sessionTTL time.Duration
	now        func() time.Time
}

func NewStore(sessionTTL time.Duration) *Store {
	return &Store{
		sessions:   make(map[string]*session),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Purchase records a payment and grants the matching session.
func (s *Store) Purchase(kind model.SessionType, amountUSD float64, payload model.PaymentRequestPayload) (model.Session, model.PaymentRecord) {
	now := s.now().UTC()

	ttl := s.sessionTTL
	validFor := formatWindow(s.sessionTTL)
	if kind == model.SessionTypeOneTime {
		ttl = OneTimeAccessWindow
		validFor = "single use"
	}

	sess := &session{
		Session: model.Session{
			ID:              uuid.NewString(),
			Type:            kind,
			CreatedAt:       now.Format(time.RFC3339),
			ExpiresAt:       now.Add(ttl).Format(time.RFC3339),
			WalletAddress:   payload.WalletAddress,
			TransactionHash: payload.TransactionHash,
			ValidFor:        validFor,
		},
		createdAt: now,
		expiresAt: now.Add(ttl),
	}

	payment := model.PaymentRecord{
		ID:              uuid.NewString(),
		Type:            kind,
		AmountUSD:       amountUSD,
		WalletAddress:   payload.WalletAddress,
		TransactionHash: payload.TransactionHash,
		Metadata:        payload.Metadata,
		CreatedAt:       now.Format(time.RFC3339),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.payments = append(s.payments, payment)
	s.mu.Unlock()

	return s.view(sess, now), payment
}

// Validate looks a session up. Unknown, expired and already redeemed
// sessions are reported as invalid rather than as errors. The first
// successful validation of a one-time grant redeems it.
func (s *Store) Validate(id string) model.SessionValidation {
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return model.SessionValidation{Valid: false, Error: "Session not found"}
	}
	if sess.consumed {
		return model.SessionValidation{Valid: false, Error: "Session already used"}
	}
	if !now.Before(sess.expiresAt) {
		return model.SessionValidation{Valid: false, Error: "Session expired"}
	}

	view := s.view(sess, now)
	if sess.Type == model.SessionTypeOneTime {
		sess.consumed = true
	}
	return model.SessionValidation{Valid: true, Session: &view}
}

// ActiveSessions returns unexpired, unredeemed sessions, newest first.
func (s *Store) ActiveSessions() []model.Session {
	now := s.now().UTC()

	s.mu.RLock()
	active := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.live(now) {
			active = append(active, sess)
		}
	}
	s.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool {
		return active[i].createdAt.After(active[j].createdAt)
	})

	out := make([]model.Session, 0, len(active))
	for _, sess := range active {
		out = append(out, s.view(sess, now))
	}
	return out
}

// Payments returns the ledger, newest first.
func (s *Store) Payments() []model.PaymentRecord {
	s.mu.RLock()
	out := make([]model.PaymentRecord, len(s.payments))
	copy(out, s.payments)
	s.mu.RUnlock()

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (s *Store) view(sess *session, now time.Time) model.Session {
	v := sess.Session
	remaining := sess.expiresAt.Sub(now).Seconds()
	if remaining < 0 {
		remaining = 0
	}
	v.RemainingTime = &remaining
	return v
}

func formatWindow(d time.Duration) string {
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	if hours > 0 {
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
