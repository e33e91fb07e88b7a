package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x402chainpay/client-go/internal/stub"
)

func startStub(t *testing.T) {
	t.Helper()

	r := chi.NewRouter()
	r.Mount("/api", stub.NewHandler(stub.NewStore(24*time.Hour), stub.Pricing{SessionUSD: 0.10, OneTimeUSD: 0.01}).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	t.Setenv("X402_API_BASE_URL", srv.URL)
	t.Setenv("X402_LOG_LEVEL", "error")
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Usage: x402ctl")
}

func TestRun_UnknownCommand(t *testing.T) {
	startStub(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"refund"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), `unknown command "refund"`)
}

func TestRun_Health(t *testing.T) {
	startStub(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"health"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "ok", out["status"])
}

func TestRun_PurchaseThenList(t *testing.T) {
	startStub(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"buy-session", "-wallet", "0xabc", "-meta", "source=cli", "-meta", "plan=pro"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var purchase map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &purchase))
	assert.Equal(t, true, purchase["success"])
	session := purchase["session"].(map[string]any)
	sessionID := session["id"].(string)

	stdout.Reset()
	code = run(context.Background(), []string{"session", sessionID}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var validation map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &validation))
	assert.Equal(t, true, validation["valid"])

	stdout.Reset()
	code = run(context.Background(), []string{"payments", "-validate"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var payments []map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &payments))
	require.Len(t, payments, 1)
	assert.Equal(t, "0xabc", payments[0]["walletAddress"])
	assert.Equal(t, map[string]any{"source": "cli", "plan": "pro"}, payments[0]["metadata"])
}

func TestRun_SessionRequiresID(t *testing.T) {
	startStub(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"session"}, &stdout, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "session id")
}

func TestRun_FlagsAfterSessionID(t *testing.T) {
	// A "valid" answer without a session only fails when -validate took effect.
	r := chi.NewRouter()
	r.Get("/api/session/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"valid":true}`)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Setenv("X402_API_BASE_URL", srv.URL)
	t.Setenv("X402_LOG_LEVEL", "error")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no validation", []string{"session", "s1"}, 0},
		{"flag before id", []string{"session", "-validate", "s1"}, 1},
		{"flag after id", []string{"session", "s1", "-validate"}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tc.args, &stdout, &stderr)
			assert.Equal(t, tc.code, code, stderr.String())
		})
	}
}

func TestRun_RejectsExtraArguments(t *testing.T) {
	startStub(t)

	tests := []struct {
		name string
		args []string
	}{
		{"two session ids", []string{"session", "a", "b"}},
		{"argument to listing", []string{"sessions", "extra"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tc.args, &stdout, &stderr)
			assert.Equal(t, 2, code)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_SchemelessBaseURLIsNotRejected(t *testing.T) {
	t.Setenv("X402_API_BASE_URL", "localhost:1")
	t.Setenv("X402_LOG_LEVEL", "error")

	var logs bytes.Buffer
	original := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = original })

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"health"}, &stdout, &stderr)

	// Configuration does not stop the call; the request itself fails.
	assert.Equal(t, 1, code)
	assert.Contains(t, logs.String(), "getHealth request failed")
}

func TestParseArgs(t *testing.T) {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	validate := fs.Bool("validate", false, "")
	wallet := fs.String("wallet", "", "")

	positional, err := parseArgs(fs, []string{"a", "-validate", "b", "-wallet", "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, positional)
	assert.True(t, *validate)
	assert.Equal(t, "0xabc", *wallet)

	_, err = parseArgs(fs, []string{"a", "-unknown"})
	assert.Error(t, err)
}

func TestRun_RequestFailure(t *testing.T) {
	srv := httptest.NewServer(chi.NewRouter())
	url := srv.URL
	srv.Close()

	t.Setenv("X402_API_BASE_URL", url)
	t.Setenv("X402_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"sessions"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
}

func TestMetadataFlag(t *testing.T) {
	m := metadataFlag{}
	require.NoError(t, m.Set("a=1"))
	require.NoError(t, m.Set("b=x=y"))
	assert.Equal(t, "1", m["a"])
	assert.Equal(t, "x=y", m["b"])

	assert.Error(t, m.Set("novalue"))
	assert.Error(t, m.Set("=v"))
}
