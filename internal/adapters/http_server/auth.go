package httpserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   string
	Email  string
	Name   string
}

type claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}

// ParseToken verifies an HS256 token and returns its principal.
func ParseToken(secret []byte, tok string) (Principal, error) {
	if len(secret) == 0 {
		return Principal{}, errors.New("jwt secret not configured")
	}
	var c claims
	_, err := jwt.ParseWithClaims(tok, &c, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, err
	}
	if c.Subject == "" {
		return Principal{}, errors.New("token has no subject")
	}
	role := c.Role
	if role == "" {
		role = RoleTenant
	}
	if role != RoleTenant && role != RoleLandlord {
		return Principal{}, fmt.Errorf("unknown role %q", role)
	}
	return Principal{UserID: c.Subject, Role: role, Email: c.Email, Name: c.Name}, nil
}

// IssueToken signs a token for p. Tokens are normally minted by the identity
// provider; this is used by tests and local tooling.
func IssueToken(secret []byte, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Role:  p.Role,
		Email: p.Email,
		Name:  p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

// Auth rejects requests without a valid bearer token.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearer(r)
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}
			p, err := ParseToken(secret, tok)
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := principalFrom(r.Context()); !ok || p.Role != role {
				writeProblem(w, http.StatusForbidden, "Forbidden", role+" role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// secretMatches compares the bearer token with secret in constant time.
func secretMatches(r *http.Request, secret string) bool {
	tok, ok := bearer(r)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(tok), []byte(secret)) == 1
}
