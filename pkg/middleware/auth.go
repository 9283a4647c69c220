package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/daffodeal/marketplace/pkg/httputil"
)

type contextKeyType string

const claimsKey contextKeyType = "claims"

// Roles known to the marketplace.
const (
	RoleUser   = "user"
	RoleSeller = "Seller"
	RoleAdmin  = "Admin"
)

// Claims is the authenticated principal carried through a request.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenValidator validates a raw token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// TokenCookies are consulted in order when no Authorization header is sent.
var TokenCookies = []string{"token", "seller_token"}

// ExtractToken returns the bearer token from the Authorization header, or
// the first non-empty token cookie.
func ExtractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	for _, name := range TokenCookies {
		if c, err := r.Cookie(name); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// Auth rejects requests without a valid token and stores the claims in the
// request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := ExtractToken(r)
			if !ok {
				httputil.WriteFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "Please login to continue")
				return
			}
			claims, err := validate(token)
			if err != nil {
				httputil.WriteFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole answers 403 unless the authenticated role is one of roles.
// It must be mounted after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if _, ok := allowed[role]; !ok {
				httputil.WriteFailure(w, http.StatusForbidden, "FORBIDDEN",
					role+" can not access this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated user ID or "".
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.UserID
	}
	return ""
}

// RoleFromContext returns the authenticated role or "".
func RoleFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Role
	}
	return ""
}
