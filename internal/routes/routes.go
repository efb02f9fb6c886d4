package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lovecaster/lovecaster/internal/candidate"
	"github.com/lovecaster/lovecaster/internal/config"
	"github.com/lovecaster/lovecaster/internal/engine"
	"github.com/lovecaster/lovecaster/internal/frame"
	"github.com/lovecaster/lovecaster/internal/idspace"
	"github.com/lovecaster/lovecaster/internal/match"
	"github.com/lovecaster/lovecaster/internal/middleware"
	"github.com/lovecaster/lovecaster/internal/notification"
	"github.com/lovecaster/lovecaster/internal/profile"
)

// Deps aggregates shared dependencies required to wire routes. The optional
// collaborators (Profiles, Bound, Sampler, Validator) default to the
// production implementations built from Cfg.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Dynamo *dynamodb.Client
	Logger *slog.Logger

	Profiles  profile.Source
	Bound     idspace.Bound
	Sampler   candidate.Sampler
	Validator frame.Validator
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	store, err := newMatchStore(d)
	if err != nil {
		return err
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	profiles := d.Profiles
	if profiles == nil {
		profiles = profile.NewSearchcasterClient(d.Cfg.ProfileAPIURL, d.Cfg.ProfileTimeout)
	}
	bound := d.Bound
	if bound == nil {
		bound = newBound(d.Cfg, d.Logger)
	}
	validator := d.Validator
	if validator == nil {
		if d.Cfg.FrameDebug {
			d.Logger.Warn("FRAME_DEBUG enabled: frame actions are not verified")
			validator = frame.UnverifiedValidator{}
		} else {
			validator = frame.NewHubValidator(d.Cfg.HubURL, d.Cfg.ProfileTimeout)
		}
	}

	finder := candidate.NewFinder(bound, profiles, d.Sampler, d.Logger)
	notifier := notification.NewLoggerNotifier(d.Logger)
	matchEngine := engine.New(finder, profiles, store, notifier, d.Logger)
	renderer := frame.NewRenderer(d.Cfg.PublicURL, d.Cfg.StartImageURL)
	frameHandler := frame.NewHandler(
		frame.NewDecoder(validator),
		matchEngine,
		renderer,
		middleware.NewFIDLimiter(d.Cache, d.Cfg.RateLimitPerMinute),
		d.Logger,
	)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterFrameRoutes(app, frameHandler, d)

	return nil
}

func newMatchStore(d Deps) (match.Store, error) {
	switch d.Cfg.MatchStore {
	case config.StoreMemory, "":
		return match.NewMemoryStore(), nil
	case config.StoreRedis:
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when MATCH_STORE=%s", config.StoreRedis)
		}
		return match.NewRedisStore(d.Cache, "lovecaster"), nil
	case config.StorePostgres:
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when MATCH_STORE=%s", config.StorePostgres)
		}
		return match.NewPostgresStore(d.DB), nil
	case config.StoreDynamo:
		if d.Dynamo == nil {
			return nil, fmt.Errorf("dynamodb client is required when MATCH_STORE=%s", config.StoreDynamo)
		}
		return match.NewDynamoStore(d.Dynamo, d.Cfg.DynamoTable), nil
	default:
		return nil, fmt.Errorf("unknown match store %q", d.Cfg.MatchStore)
	}
}

func newBound(cfg config.Config, logger *slog.Logger) idspace.Bound {
	var source idspace.CounterSource
	if cfg.RegistryRPCURL != "" {
		source = idspace.NewRegistryCounter(cfg.RegistryRPCURL, cfg.RegistryAddress, cfg.ProfileTimeout)
	}
	return idspace.NewLazy(source, cfg.MaxFID, logger)
}
