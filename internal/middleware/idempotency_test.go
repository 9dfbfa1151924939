package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerline/ledgerline/internal/logging"
)

func setupIdempotentApp(t *testing.T) (*fiber.App, *int, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))

	var calls int
	app.Post("/transactions", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"applied": calls})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &calls, cleanup
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, _, cleanup := setupIdempotentApp(t)
	defer cleanup()

	req := httptest.NewRequest(fiber.MethodPost, "/transactions", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, resp.StatusCode)
	}
}

func TestIdempotencyReplayDoesNotReapply(t *testing.T) {
	app, calls, cleanup := setupIdempotentApp(t)
	defer cleanup()

	send := func() (int, string) {
		req := httptest.NewRequest(fiber.MethodPost, "/transactions", strings.NewReader("{}"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(idempotencyKeyHeader, "tx-1")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode, string(payload)
	}

	status1, body1 := send()
	if status1 != fiber.StatusOK {
		t.Fatalf("first request: expected 200, got %d", status1)
	}
	status2, body2 := send()
	if status2 != fiber.StatusOK {
		t.Fatalf("replay: expected 200, got %d", status2)
	}

	if *calls != 1 {
		t.Fatalf("handler should run once, ran %d times", *calls)
	}
	if body1 != body2 {
		t.Fatalf("replay body differs: %s vs %s", body1, body2)
	}
}

func TestIdempotencySkipsSafeMethods(t *testing.T) {
	app, _, cleanup := setupIdempotentApp(t)
	defer cleanup()

	app.Get("/accounts", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// No Idempotency-Key, still fine for GET.
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/accounts", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
