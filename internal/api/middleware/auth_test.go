package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func runAuth(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth("secret")(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthMiddleware_RolesArray(t *testing.T) {
	token := signed(t, jwt.MapClaims{"sub": "U1", "roles": []string{"admin", "user"}})

	called := false
	rec := runAuth(t, "Bearer "+token, func(c echo.Context) error {
		called = true
		id, ok := IdentityFrom(c)
		if !ok || id.ID != "U1" {
			t.Fatalf("identity not set: %+v", id)
		}
		if len(id.Roles) != 2 || id.Roles[0] != "admin" {
			t.Fatalf("unexpected roles: %v", id.Roles)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SingleRoleClaim(t *testing.T) {
	token := signed(t, jwt.MapClaims{"sub": "U2", "role": "user"})

	rec := runAuth(t, "Bearer "+token, func(c echo.Context) error {
		id, _ := IdentityFrom(c)
		if len(id.Roles) != 1 || id.Roles[0] != "user" {
			t.Fatalf("unexpected roles: %v", id.Roles)
		}
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	noSubject := signed(t, jwt.MapClaims{"role": "admin"})
	otherKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "U1"}).SignedString([]byte("other"))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"invalid header format", "Token abc"},
		{"invalid token", "Bearer not-a-token"},
		{"wrong key", "Bearer " + otherKey},
		{"missing subject", "Bearer " + noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runAuth(t, tt.header, func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
