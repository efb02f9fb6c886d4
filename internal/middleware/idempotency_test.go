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

	"github.com/lovecaster/lovecaster/internal/logging"
)

func setupReplayApp(t *testing.T) (*fiber.App, *int, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	calls := 0
	app.Use(ReplayProtection(cache, time.Minute, logging.Discard()))
	app.Post("/frames", func(c *fiber.Ctx) error {
		calls++
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Status(fiber.StatusOK).SendString("<html>card " + strings.Repeat("!", calls) + "</html>")
	})
	app.Post("/broken", func(c *fiber.Ctx) error {
		calls++
		return fiber.NewError(fiber.StatusBadRequest, "invalid frame payload")
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}

	return app, &calls, cleanup
}

func post(t *testing.T, app *fiber.App, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(payload)
}

func TestReplayReturnsCachedCard(t *testing.T) {
	app, calls, cleanup := setupReplayApp(t)
	defer cleanup()

	body := `{"untrustedData":{"fid":1,"buttonIndex":2},"trustedData":{"messageBytes":"0a0b"}}`

	status, first := post(t, app, "/frames", body)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 got %d", status)
	}
	status, second := post(t, app, "/frames", body)
	if status != fiber.StatusOK {
		t.Fatalf("expected cached 200 got %d", status)
	}
	if first != second {
		t.Fatalf("expected cached card %q got %q", first, second)
	}
	if *calls != 1 {
		t.Fatalf("handler ran %d times, want 1", *calls)
	}
}

func TestReplayKeysOnSignedBytes(t *testing.T) {
	app, calls, cleanup := setupReplayApp(t)
	defer cleanup()

	post(t, app, "/frames", `{"untrustedData":{"fid":1,"buttonIndex":1},"trustedData":{"messageBytes":"0a0b"}}`)
	post(t, app, "/frames", `{"untrustedData":{"fid":1,"buttonIndex":1},"trustedData":{"messageBytes":"0c0d"}}`)

	if *calls != 2 {
		t.Fatalf("distinct messages must both run, got %d calls", *calls)
	}
}

func TestReplayDoesNotCacheErrors(t *testing.T) {
	app, calls, cleanup := setupReplayApp(t)
	defer cleanup()

	body := `{"trustedData":{"messageBytes":"ff"}}`
	if status, _ := post(t, app, "/broken", body); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
	if status, _ := post(t, app, "/broken", body); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 got %d", status)
	}
	if *calls != 2 {
		t.Fatalf("failed actions must be retried, got %d calls", *calls)
	}
}
