package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/x402chainpay/client-go/internal/errors"
	"github.com/x402chainpay/client-go/internal/httputil"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})
}

func TestPayloadLimitMiddleware(t *testing.T) {
	t.Run("defaults limit", func(t *testing.T) {
		m := NewPayloadLimitMiddleware(0)
		assert.Equal(t, int64(DefaultPayloadLimit), m.limit)
	})

	t.Run("refuses declared oversize body as JSON", func(t *testing.T) {
		m := NewPayloadLimitMiddleware(8)
		req := httptest.NewRequest(http.MethodPost, "/api/pay/session", strings.NewReader(`{"walletAddress":"0xabc"}`))
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		var resp httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodePayloadTooLarge, resp.Code)
	})

	t.Run("cuts off chunked oversize body", func(t *testing.T) {
		m := NewPayloadLimitMiddleware(8)
		req := httptest.NewRequest(http.MethodPost, "/api/pay/session", strings.NewReader(`{"walletAddress":"0xabc"}`))
		req.ContentLength = -1
		rec := httptest.NewRecorder()

		decode := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var v map[string]any
			if err := httputil.DecodeJSON(r, &v); err != nil {
				httputil.WriteError(w, err)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		m.Handler(decode).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("passes small body", func(t *testing.T) {
		m := NewPayloadLimitMiddleware(1024)
		req := httptest.NewRequest(http.MethodPost, "/api/pay/session", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("leaves GET requests alone", func(t *testing.T) {
		m := NewPayloadLimitMiddleware(1)
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", strings.NewReader(`ignored`))
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("allows listed origin", func(t *testing.T) {
		m := NewCORSMiddleware([]string{"http://localhost:5173"})
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("ignores unlisted origin", func(t *testing.T) {
		m := NewCORSMiddleware([]string{"http://localhost:5173"})
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty list allows any origin", func(t *testing.T) {
		m := NewCORSMiddleware(nil)
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.Header.Set("Origin", "http://127.0.0.1:3000")
		rec := httptest.NewRecorder()

		m.Handler(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, "http://127.0.0.1:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("answers preflight without calling next", func(t *testing.T) {
		m := NewCORSMiddleware(nil)
		req := httptest.NewRequest(http.MethodOptions, "/api/pay/session", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
		m.Handler(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, called)
	})
}

func TestRequestLogger(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
