// Package auth verifies HS256 bearer tokens and exposes the resulting
// identity to handlers. Token issuance lives in the account service,
// not here.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Identity struct {
	UserID string
	Role   string
}

func (id Identity) IsAdmin() bool {
	return id.Role == "admin"
}

type ctxKey struct{}

type Verifier struct {
	Secret []byte
}

func (v Verifier) Parse(tokenString string) (*Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return &Identity{UserID: userID, Role: role}, nil
}

// Middleware rejects requests without a valid bearer token and stores
// the identity in the request context.
func (v Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		identity, err := v.Parse(tokenString)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards admin-only routes; it must run after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := FromContext(r.Context())
		if !ok || !identity.IsAdmin() {
			http.Error(w, "admin required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func FromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(ctxKey{}).(*Identity)
	return identity, ok
}
