package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func newTokenApp(t *testing.T, hash string) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(TokenAuth(hash))
	app.Post("/feeds", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestTokenAuthDisabledWithoutHash(t *testing.T) {
	app := newTokenApp(t, "")
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/feeds", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 without hash, got %d", resp.StatusCode)
	}
}

func TestTokenAuthVerifiesBearerToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekrit"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}
	app := newTokenApp(t, string(hash))

	req := httptest.NewRequest(fiber.MethodPost, "/feeds", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodPost, "/feeds", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer wrong")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("wrong token: expected 401, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodPost, "/feeds", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer sekrit")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid token: expected 200, got %d", resp.StatusCode)
	}
}
