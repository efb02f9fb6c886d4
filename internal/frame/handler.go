package frame

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lovecaster/lovecaster/internal/engine"
	"github.com/lovecaster/lovecaster/internal/middleware"
)

// Transitioner advances a participant's state.
type Transitioner interface {
	Transition(ctx context.Context, s engine.State, action engine.Action) (engine.Result, error)
}

// Limiter throttles actions per verified fid.
type Limiter interface {
	Allow(ctx context.Context, fid int64) (bool, error)
}

// Handler serves the frame endpoints.
type Handler struct {
	decoder  *Decoder
	engine   Transitioner
	renderer *Renderer
	limiter  Limiter
	logger   *slog.Logger
}

// NewHandler constructs the frame HTTP handler. limiter may be nil.
func NewHandler(decoder *Decoder, engine Transitioner, renderer *Renderer, limiter Limiter, logger *slog.Logger) *Handler {
	return &Handler{decoder: decoder, engine: engine, renderer: renderer, limiter: limiter, logger: logger}
}

// Start serves the initial card.
func (h *Handler) Start(c *fiber.Ctx) error {
	return h.send(c, h.renderer.Start())
}

// Action handles a button press and responds with the next card.
func (h *Handler) Action(c *fiber.Ctx) error {
	ctx := c.UserContext()

	state, action, err := h.decoder.Decode(ctx, c.Body())
	if err != nil {
		h.logger.Warn("frame action rejected", slog.Any("error", err))
		if errors.Is(err, ErrHubUnavailable) {
			return fiber.NewError(http.StatusBadGateway, "frame validation unavailable")
		}
		return fiber.NewError(http.StatusBadRequest, ErrInvalidPayload.Error())
	}
	c.Locals(middleware.FIDLocal, action.FID)

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, action.FID)
		if err != nil {
			h.logger.Warn("fid rate limit unavailable", slog.Int64("fid", action.FID), slog.Any("error", err))
		}
		if !allowed {
			return fiber.NewError(http.StatusTooManyRequests, "too many interactions, slow down")
		}
	}

	res, err := h.engine.Transition(ctx, state, action)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidAction) || errors.Is(err, engine.ErrUnknownPhase) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("frame transition failed",
			slog.Int64("fid", action.FID),
			slog.String("phase", string(state.Phase)),
			slog.Any("error", err),
		)
		return fiber.NewError(http.StatusInternalServerError, "transition failed")
	}

	h.logger.Info("frame action",
		slog.Int64("fid", action.FID),
		slog.Int("button", action.ButtonIndex),
		slog.String("from", string(state.Phase)),
		slog.String("to", string(res.State.Phase)),
		slog.Int64("candidate_fid", res.State.Candidate),
		slog.Bool("no_candidate", res.NoCandidate),
	)

	return h.send(c, h.renderer.Render(res))
}

func (h *Handler) send(c *fiber.Ctx, card Card) error {
	html, err := card.HTML()
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(http.StatusOK).SendString(html)
}
