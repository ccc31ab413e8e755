// Package auth provides the bearer-JWT middleware gating the paid-strategy
// routes, following a middleware auth pattern scoped to a single shared
// secret rather than a full user/claims service.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arxfloor/roomdetect/internal/logger"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// Claims is the minimal JWT payload this service expects: a subject
// identifying the calling client, nothing more.
type Claims struct {
	jwt.RegisteredClaims
}

// Middleware validates a bearer JWT signed with secret and rejects the
// request with Unauthorized if missing or invalid. It applies to every
// request passed through Required; choosing which requests need a token is
// left to the caller.
type Middleware struct {
	secret []byte
}

// New constructs a Middleware verifying tokens with secret.
func New(secret string) *Middleware {
	return &Middleware{secret: []byte(secret)}
}

// Required wraps next, requiring a valid bearer token.
func (m *Middleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			logger.Debug("no bearer token for %s", r.URL.Path)
			http.Error(w, `{"error":"Unauthorized","message":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}

		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		})
		if err != nil || !parsed.Valid {
			logger.Debug("invalid bearer token for %s: %v", r.URL.Path, err)
			http.Error(w, `{"error":"Unauthorized","message":"invalid bearer token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// ClaimsFromContext returns the validated claims stashed by Required, if
// any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok
}
