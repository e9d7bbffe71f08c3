package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sfconnect/sfconnect-backend/api/responses"
	pkgerrors "github.com/sfconnect/sfconnect-backend/pkg/errors"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
)

// counterStore is the slice of the redis client the limiter needs.
type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy caps how often a credential surface can be hit within
// a fixed window, counted per caller IP and per submitted email.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy for one named surface. A zero
// window or all-zero limits produce a policy that never blocks.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		name:       strings.ToLower(strings.TrimSpace(name)),
		window:     window,
		ipLimit:    ipLimit,
		emailLimit: emailLimit,
	}
}

func (p AuthRateLimitPolicy) label() string {
	if p.name == "" {
		return "auth"
	}
	return p.name
}

// AuthRateLimit throttles an auth endpoint according to the policy. With a
// nil store or an inert policy the handler chain is left untouched.
func AuthRateLimit(policy AuthRateLimitPolicy, store counterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	limiter := &authLimiter{policy: policy, store: store, logg: logg}
	return func(next http.Handler) http.Handler {
		if !limiter.active() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.intercept(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type authLimiter struct {
	policy AuthRateLimitPolicy
	store  counterStore
	logg   *logger.Logger
}

func (l *authLimiter) active() bool {
	if l.store == nil || l.policy.window <= 0 {
		return false
	}
	return l.policy.ipLimit > 0 || l.policy.emailLimit > 0
}

// intercept runs the IP check, then the email check, and reports true when a
// response has already been written.
func (l *authLimiter) intercept(w http.ResponseWriter, r *http.Request) bool {
	ctx := r.Context()

	if l.policy.ipLimit > 0 {
		if l.consume(ctx, w, "ip", clientIP(r), l.policy.ipLimit) {
			return true
		}
	}

	if l.policy.emailLimit > 0 {
		hash, err := l.peekEmailHash(r)
		if err != nil {
			responses.WriteError(ctx, l.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
			return true
		}
		if l.consume(ctx, w, "email", hash, l.policy.emailLimit) {
			return true
		}
	}

	return false
}

// consume bumps one fixed-window counter and writes the 429 when it
// overflows. An empty id skips the check entirely.
func (l *authLimiter) consume(ctx context.Context, w http.ResponseWriter, scope, id string, limit int) bool {
	if id == "" {
		return false
	}

	key := fmt.Sprintf("rl:%s:%s:%s", scope, l.policy.label(), id)
	count, err := l.store.IncrWithTTL(ctx, key, l.policy.window)
	if err != nil {
		responses.WriteError(ctx, l.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if count <= int64(limit) {
		return false
	}

	if l.logg != nil {
		logCtx := l.logg.WithFields(ctx, map[string]any{
			"policy":         l.policy.label(),
			"scope":          scope,
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(l.policy.window.Seconds()),
		})
		l.logg.Warn(logCtx, "auth.rate_limit.blocked")
	}
	responses.WriteError(ctx, l.logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return true
}

// peekEmailHash reads the body without consuming it and returns the sha256
// of the normalized email field, or "" when no email is present. Raw emails
// never become redis keys.
func (l *authLimiter) peekEmailHash(r *http.Request) (string, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var probe struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", nil
	}
	email := strings.ToLower(strings.TrimSpace(probe.Email))
	if email == "" {
		return "", nil
	}

	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:]), nil
}

// clientIP prefers proxy headers over the socket peer.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
