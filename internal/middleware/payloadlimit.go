package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/x402chainpay/client-go/internal/errors"
	"github.com/x402chainpay/client-go/internal/httputil"
)

// DefaultPayloadLimit fits a wallet address, a transaction hash and a small
// metadata object with room to spare.
const DefaultPayloadLimit = 64 << 10

// PayloadLimitMiddleware caps purchase request bodies. A declared length over
// the cap is refused up front; chunked bodies are cut off while reading and
// surface as PAYLOAD_TOO_LARGE from httputil.DecodeJSON.
type PayloadLimitMiddleware struct {
	limit int64
}

func NewPayloadLimitMiddleware(limit int64) *PayloadLimitMiddleware {
	if limit <= 0 {
		limit = DefaultPayloadLimit
	}
	return &PayloadLimitMiddleware{limit: limit}
}

func (m *PayloadLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || !carriesPayload(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > m.limit {
			log.Warn().
				Str("path", r.URL.Path).
				Int64("content_length", r.ContentLength).
				Int64("limit", m.limit).
				Msg("payload refused")
			httputil.WriteError(w, apperrors.PayloadTooLarge(m.limit))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, m.limit)
		next.ServeHTTP(w, r)
	})
}

func carriesPayload(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
