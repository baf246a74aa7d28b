package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/emberhold/GuildShop_Go/internal/logger"
)

// publicPaths are served without an API key: probes, metrics scrapes,
// and deploy verification. Everything that can move credits sits
// behind auth.
var publicPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
	"/version": {},
}

// AbuseMonitor keeps per-IP counters over a rolling window. It backs
// both the failed-auth alerting and the request rate cap; a capped
// caller never reaches the purchase or case endpoints.
type AbuseMonitor struct {
	mu          sync.Mutex
	failedAuth  map[string]int
	requests    map[string]int
	windowStart time.Time
}

func NewAbuseMonitor() *AbuseMonitor {
	return &AbuseMonitor{
		failedAuth:  make(map[string]int),
		requests:    make(map[string]int),
		windowStart: time.Now(),
	}
}

// RecordFailedAuth counts a rejected API key from ip and alerts once
// the address crosses the burst threshold.
func (m *AbuseMonitor) RecordFailedAuth(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rotateWindow()
	m.failedAuth[ip]++

	if m.failedAuth[ip] >= authAlertThreshold {
		slog.Warn(LogMsgAuthFailureBurst, "ip", ip, "failures", m.failedAuth[ip])
	}
}

// Allow counts one request from ip and reports whether the address is
// still under the window cap. Over-cap traffic is logged sampled so a
// flood cannot also flood the logs.
func (m *AbuseMonitor) Allow(ip string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rotateWindow()
	m.requests[ip]++

	if m.requests[ip] > requestWindowCap {
		if m.requests[ip]%rateLogSample == 0 {
			slog.Warn(LogMsgRateCapExceeded, "ip", ip, "requests_in_window", m.requests[ip])
		}
		return false
	}
	return true
}

// caller holds m.mu
func (m *AbuseMonitor) rotateWindow() {
	if time.Since(m.windowStart) > abuseWindow {
		m.requests = make(map[string]int)
		m.failedAuth = make(map[string]int)
		m.windowStart = time.Now()
	}
}

// AuthMiddleware gates every non-public route behind the shared API
// key. The comparison is constant time; failures feed the monitor.
func AuthMiddleware(apiKey string, trustedProxies []string, monitor *AbuseMonitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				ip := clientIP(r, trustedProxies)
				monitor.RecordFailedAuth(ip)

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"ip", ip,
					"path", r.URL.Path,
					"has_key", provided != "")

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware rejects callers over the per-IP window cap with
// 429 before any handler runs.
func RateLimitMiddleware(trustedProxies []string, monitor *AbuseMonitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !monitor.Allow(clientIP(r, trustedProxies)) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware caps request bodies. Purchase, equip, and
// case payloads are a few hundred bytes; anything near the cap is not
// a client we recognize.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets the standard browser hardening headers
// on every response, error responses included.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueSameOrigin)
			w.Header().Set(HeaderXSSProtection, HeaderValueXSSBlock)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller address. X-Forwarded-For is honored
// only when the direct peer is a listed proxy, and then only its
// rightmost entry, the one hop the proxy actually vouches for.
func clientIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	for _, proxy := range trustedProxies {
		if proxy != remoteIP {
			continue
		}
		if forwarded := r.Header.Get(HeaderForwardedFor); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			return strings.TrimSpace(hops[len(hops)-1])
		}
		break
	}

	return remoteIP
}
