package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The request log includes headers at debug level; the API key and any
// Authorization value must come out redacted.
func TestLoggingMiddleware_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	handler := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shop/purchase", strings.NewReader(`{}`))
	req.Header.Set(HeaderAPIKey, "shop-key-value")
	req.Header.Set(HeaderAuthorization, "Bearer shop-token")
	req.Header.Set("User-Agent", "guildshop-client/1.0")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	require.Contains(t, out, LogMsgRequestHeaders)

	assert.NotContains(t, out, "shop-key-value")
	assert.NotContains(t, out, "Bearer shop-token")
	assert.Contains(t, out, RedactedValue)
	assert.Contains(t, out, "guildshop-client/1.0")
}

// Probe and scrape endpoints are polled constantly; they must not
// produce request log lines.
func TestLoggingMiddleware_SkipsProbeEndpoints(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	handler := loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.NotContains(t, buf.String(), LogMsgRequestStarted)
}
