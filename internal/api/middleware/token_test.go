package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestToken_ValidToken(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret", jwt.MapClaims{
		"sub":  "user001",
		"name": "john_doe",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Token(TokenConfig{Secret: "secret"})
	handler := mw(func(c echo.Context) error {
		called = true
		claims, ok := Claims(c)
		if !ok {
			t.Fatalf("claims not set")
		}
		if claims["sub"] != "user001" || claims["name"] != "john_doe" {
			t.Fatalf("unexpected claims: %v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestToken_MissingHeaderIsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Token(TokenConfig{Secret: "secret"})
	handler := mw(func(c echo.Context) error {
		called = true
		if _, ok := Claims(c); ok {
			t.Fatalf("anonymous request must not carry claims")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("anonymous requests must pass through")
	}
}

func TestToken_MalformedHeaderIsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Token(TokenConfig{Secret: "secret"})
	handler := mw(func(c echo.Context) error {
		called = true
		if _, ok := Claims(c); ok {
			t.Fatalf("malformed header must not carry claims")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestToken_InvalidSignature(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "other-secret", jwt.MapClaims{"sub": "user001"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Token(TokenConfig{Secret: "secret"})
	handler := mw(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestToken_InsecureSkipVerifyAcceptsUnverifiedToken(t *testing.T) {
	e := echo.New()
	// Signed with a key the server does not know; only the insecure profile
	// accepts it.
	signed := signToken(t, "someone-elses-key", jwt.MapClaims{"sub": "user001"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Token(TokenConfig{InsecureSkipVerify: true})
	handler := mw(func(c echo.Context) error {
		called = true
		claims, _ := Claims(c)
		if claims["sub"] != "user001" {
			t.Fatalf("unexpected claims: %v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestToken_NonStringClaimsAreDropped(t *testing.T) {
	e := echo.New()
	signed := signToken(t, "secret", jwt.MapClaims{
		"sub":   "user001",
		"admin": true,
		"iat":   1700000000,
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := Token(TokenConfig{Secret: "secret"})
	handler := mw(func(c echo.Context) error {
		claims, _ := Claims(c)
		if _, ok := claims["admin"]; ok {
			t.Fatalf("non-string claims must be dropped")
		}
		if claims["sub"] != "user001" {
			t.Fatalf("string claims must be kept")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}
