package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/videotube-backend/pkg/clientip"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"golang.org/x/time/rate"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerXXSSProtection          = "X-XSS-Protection"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerXXSSProtection, "1; mode=block")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck returns 403 when r.Host does not match allowedHost (e.g. api.videotube.dev).
// allowedHost should be the bare hostname without scheme or port. Empty disables the check.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), strings.TrimSpace(allowedHost)) {
				utils.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipLimiters hands out one token bucket per client IP and forgets idle ones.
// Idle entries are swept inline by allow, so a limiter set owns no goroutine.
type ipLimiters struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiters(limit rate.Limit, burst int) *ipLimiters {
	return &ipLimiters{
		entries:   make(map[string]*limiterEntry),
		limit:     limit,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) >= limiterCleanupInterval {
		l.sweep(now)
	}
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = now
	return e.limiter.AllowN(now, 1)
}

// sweep drops entries idle for longer than limiterTTL. Caller holds l.mu.
func (l *ipLimiters) sweep(now time.Time) {
	for ip, e := range l.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(l.entries, ip)
		}
	}
	l.lastSweep = now
}

// --- Global rate limiting (per-IP, 5/s, burst 20) ---

var globalLimiters = newIPLimiters(5, 20)

// GlobalRateLimit limits each IP to 5 req/s, burst 20. Returns 429 when exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalLimiters.allow(clientip.RealClientIP(r)) {
			utils.WriteError(w, http.StatusTooManyRequests, "too many requests, please slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- Credential route rate limiting (1 req/5s, burst 5) ---

// CredentialPaths are the routes that accept a password or a refresh token.
var CredentialPaths = map[string]bool{
	"/api/v1/users/login":         true,
	"/api/v1/users/refresh-token": true,
}

// CredentialRateLimit applies a stricter per-IP limit to paths.
func CredentialRateLimit(paths map[string]bool) func(http.Handler) http.Handler {
	limiters := newIPLimiters(rate.Every(5*time.Second), 5)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !paths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !limiters.allow(clientip.RealClientIP(r)) {
				utils.WriteError(w, http.StatusTooManyRequests, "too many attempts, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck → GlobalRateLimit.
func ProductionSecurity(allowedHost string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
		GlobalRateLimit,
	}
}
