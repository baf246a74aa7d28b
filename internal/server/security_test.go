package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	apiKey := "shop-api-key"
	middleware := AuthMiddleware(apiKey, nil, NewAbuseMonitor())

	tests := []struct {
		name       string
		key        string
		path       string
		wantStatus int
	}{
		{"Valid key reaches purchase route", apiKey, "/api/v1/shop/purchase", http.StatusOK},
		{"Wrong key rejected", "not-the-key", "/api/v1/shop/purchase", http.StatusUnauthorized},
		{"Missing key rejected", "", "/api/v1/cases/open", http.StatusUnauthorized},
		{"Liveness probe needs no key", "", "/healthz", http.StatusOK},
		{"Metrics scrape needs no key", "", "/metrics", http.StatusOK},
		{"Version check needs no key", "", "/version", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.key != "" {
				req.Header.Set(HeaderAPIKey, tt.key)
			}
			rec := httptest.NewRecorder()

			middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

// The public set is exact-match: a key-less request to a path that
// merely shares a public prefix must still be rejected.
func TestAuthMiddleware_PublicPathsAreExact(t *testing.T) {
	middleware := AuthMiddleware("shop-api-key", nil, NewAbuseMonitor())

	req := httptest.NewRequest(http.MethodGet, "/healthz2", nil)
	rec := httptest.NewRecorder()

	middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAbuseMonitor_FailedAuthCountsPerAddress(t *testing.T) {
	monitor := NewAbuseMonitor()

	for i := 0; i < 3; i++ {
		monitor.RecordFailedAuth("10.0.0.1")
	}
	monitor.RecordFailedAuth("10.0.0.2")

	monitor.mu.Lock()
	defer monitor.mu.Unlock()
	assert.Equal(t, 3, monitor.failedAuth["10.0.0.1"])
	assert.Equal(t, 1, monitor.failedAuth["10.0.0.2"])
}
