package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayPrefix         = "frame-replay:v1:"
	inProgressMarker     = "__in_progress__"
	replayLocal          = "replayed"
	replayStoreTimeout   = 2 * time.Second
)

type storedResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// ReplayProtection caches the response to each frame action so that a client
// retrying the same signed message gets the same card back instead of
// advancing the state machine twice. The key is the Idempotency-Key header
// when present, otherwise a hash of the signed message bytes (or of the whole
// body when the packet carries none).
func ReplayProtection(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(context.Background(), replayStoreTimeout)
		defer cancel()

		key := replayPrefix + actionKey(c)

		cached, err := cache.Get(ctx, key).Result()
		if err == nil {
			if cached == inProgressMarker {
				return fiber.NewError(fiber.StatusConflict, "duplicate frame action currently processing")
			}

			var stored storedResponse
			if err := json.Unmarshal([]byte(cached), &stored); err != nil {
				logger.Warn("failed to decode stored frame response", slog.String("key", key), slog.Any("error", err))
				return fiber.NewError(fiber.StatusConflict, "duplicate frame action")
			}

			for header, value := range stored.Headers {
				if strings.EqualFold(header, fiber.HeaderContentLength) {
					continue
				}
				c.Set(header, value)
			}
			c.Locals(replayLocal, true)
			return c.Status(stored.Status).SendString(stored.Body)
		}

		if !errors.Is(err, redis.Nil) {
			logger.Error("replay lookup failed", slog.String("key", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "replay store failure")
		}

		reserved, err := cache.SetNX(ctx, key, inProgressMarker, ttl).Result()
		if err != nil {
			logger.Error("replay reservation failed", slog.String("key", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "replay reservation failure")
		}
		if !reserved {
			return fiber.NewError(fiber.StatusConflict, "duplicate frame action currently processing")
		}

		if err := c.Next(); err != nil {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), replayStoreTimeout)
			defer cancel()
			cache.Del(cleanupCtx, key) // best effort cleanup
			return err
		}

		stored := storedResponse{
			Status:  c.Response().StatusCode(),
			Body:    string(c.Response().Body()),
			Headers: map[string]string{},
		}
		c.Response().Header.VisitAll(func(k, v []byte) {
			stored.Headers[string(k)] = string(v)
		})

		payload, err := json.Marshal(stored)
		if err != nil {
			logger.Error("failed to encode frame response", slog.String("key", key), slog.Any("error", err))
			cache.Del(ctx, key)
			return fiber.NewError(fiber.StatusInternalServerError, "replay persistence failure")
		}

		persistCtx, persistCancel := context.WithTimeout(context.Background(), replayStoreTimeout)
		defer persistCancel()

		if err := cache.Set(persistCtx, key, payload, ttl).Err(); err != nil {
			// The action already ran; losing the cached copy only weakens replay protection.
			logger.Warn("failed to persist frame response", slog.String("key", key), slog.Any("error", err))
			cache.Del(persistCtx, key)
		}

		return nil
	}
}

func actionKey(c *fiber.Ctx) string {
	if key := c.Get(idempotencyKeyHeader); key != "" {
		return "hdr:" + key
	}

	var packet struct {
		TrustedData struct {
			MessageBytes string `json:"messageBytes"`
		} `json:"trustedData"`
	}
	material := c.Body()
	if err := json.Unmarshal(material, &packet); err == nil && packet.TrustedData.MessageBytes != "" {
		material = []byte(strings.ToLower(packet.TrustedData.MessageBytes))
	}
	sum := sha256.Sum256(material)
	return hex.EncodeToString(sum[:])
}
