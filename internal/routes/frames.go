package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lovecaster/lovecaster/internal/frame"
	"github.com/lovecaster/lovecaster/internal/middleware"
)

// RegisterFrameRoutes wires the frame entry card and the action endpoint.
// Replay protection needs Redis and is skipped without it. The per-fid limit
// lives in the handler, after the packet has been validated.
func RegisterFrameRoutes(app *fiber.App, h *frame.Handler, d Deps) {
	app.Get("/", h.Start)
	app.Get("/frames", h.Start)

	chain := []fiber.Handler{middleware.InteractionRateLimit(d.Cache, d.Cfg.IPRateLimitPerMinute)}
	if d.Cache != nil {
		chain = append(chain, middleware.ReplayProtection(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	chain = append(chain, h.Action)
	app.Post("/frames", chain...)
}
