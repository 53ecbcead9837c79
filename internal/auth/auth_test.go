package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func makeToken(t *testing.T, secret, userID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestParse(t *testing.T) {
	v := Verifier{Secret: []byte(testSecret)}

	identity, err := v.Parse(makeToken(t, testSecret, "U1", "admin"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if identity.UserID != "U1" || !identity.IsAdmin() {
		t.Errorf("identity = %+v", identity)
	}
}

func TestParseRejects(t *testing.T) {
	v := Verifier{Secret: []byte(testSecret)}

	cases := map[string]string{
		"wrong secret": makeToken(t, "other-secret", "U1", "user"),
		"no userId":    makeToken(t, testSecret, "", "user"),
		"garbage":      "not.a.token",
	}
	for name, tok := range cases {
		if _, err := v.Parse(tok); err != ErrInvalidToken {
			t.Errorf("%s: Parse() = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestParseRejectsExpired(t *testing.T) {
	v := Verifier{Secret: []byte(testSecret)}
	claims := jwt.MapClaims{
		"userId": "U1",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if _, err := v.Parse(tok); err != ErrInvalidToken {
		t.Errorf("expired token: Parse() = %v, want ErrInvalidToken", err)
	}
}

func TestMiddleware(t *testing.T) {
	v := Verifier{Secret: []byte(testSecret)}
	var seen *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	})
	handler := v.Middleware(next)

	req := httptest.NewRequest("GET", "/orders", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest("GET", "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, testSecret, "U1", "user"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
	if seen == nil || seen.UserID != "U1" {
		t.Errorf("identity in context = %+v", seen)
	}
}

func TestRequireAdmin(t *testing.T) {
	v := Verifier{Secret: []byte(testSecret)}
	handler := v.Middleware(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest("GET", "/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, testSecret, "U1", "user"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest("GET", "/admin/events", nil)
	req.Header.Set("Authorization", "Bearer "+makeToken(t, testSecret, "A1", "admin"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}
}
