package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "Lovecaster"
	defaultAppEnv          = "development"
	defaultPort            = "3000"
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultPublicURL       = "http://localhost:3000"
	defaultMatchStore      = StoreMemory
	defaultDynamoTable     = "lovecaster_likes"
	defaultProfileAPIURL   = "https://searchcaster.xyz/api/profiles"
	defaultProfileTimeout  = 5 * time.Second
	defaultMaxFID          = 326948
	defaultRegistryAddress = "0x00000000Fc6c5F01Fc30151999387Bb99A9f489b"
	defaultHubURL          = "https://nemes.farcaster.xyz:2281"
	defaultStartImageURL   = "https://picsum.photos/id/1011/1146/600.jpg"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 10 * time.Minute
	defaultRateLimit       = 60
	defaultIPRateLimit     = 600
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Like-record store backends selectable through MATCH_STORE.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreDynamo   = "dynamodb"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName   string
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string
	PublicURL string

	MatchStore  string
	DatabaseURL string
	RedisURL    string
	DynamoTable string
	AWSRegion   string

	ProfileAPIURL  string
	ProfileTimeout time.Duration

	MaxFID          int64
	RegistryRPCURL  string
	RegistryAddress string

	HubURL        string
	FrameDebug    bool
	StartImageURL string

	ShutdownPeriod       time.Duration
	IdempotencyTTL       time.Duration
	RateLimitPerMinute   int
	IPRateLimitPerMinute int
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		PublicURL:       strings.TrimRight(getEnv("PUBLIC_URL", defaultPublicURL), "/"),
		MatchStore:      strings.ToLower(getEnv("MATCH_STORE", defaultMatchStore)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		DynamoTable:     getEnv("DYNAMO_TABLE", defaultDynamoTable),
		AWSRegion:       os.Getenv("AWS_REGION"),
		ProfileAPIURL:   getEnv("PROFILE_API_URL", defaultProfileAPIURL),
		ProfileTimeout:  defaultProfileTimeout,
		MaxFID:          defaultMaxFID,
		RegistryRPCURL:  os.Getenv("ID_REGISTRY_RPC_URL"),
		RegistryAddress: getEnv("ID_REGISTRY_ADDRESS", defaultRegistryAddress),
		HubURL:          strings.TrimRight(getEnv("HUB_URL", defaultHubURL), "/"),
		StartImageURL:   getEnv("START_IMAGE_URL", defaultStartImageURL),
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdempotencyTTL,

		RateLimitPerMinute:   defaultRateLimit,
		IPRateLimitPerMinute: defaultIPRateLimit,
	}

	var err error
	if cfg.ShutdownPeriod, err = durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("PROFILE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROFILE_TIMEOUT: %w", err)
		}
		cfg.ProfileTimeout = d
	}

	if v := os.Getenv("MAX_FID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MAX_FID: %w", err)
		}
		if n <= 0 {
			return Config{}, fmt.Errorf("MAX_FID must be positive")
		}
		cfg.MaxFID = n
	}

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.RateLimitPerMinute = n
	}

	if v := os.Getenv("RATE_LIMIT_IP_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RATE_LIMIT_IP_PER_MINUTE: %w", err)
		}
		cfg.IPRateLimitPerMinute = n
	}

	if v := os.Getenv("FRAME_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid FRAME_DEBUG: %w", err)
		}
		cfg.FrameDebug = b
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.MatchStore {
	case StoreMemory:
		if !c.IsDev() {
			return fmt.Errorf("MATCH_STORE=%s is only allowed when APP_ENV is a development environment", StoreMemory)
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when MATCH_STORE=%s", StoreRedis)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when MATCH_STORE=%s", StorePostgres)
		}
	case StoreDynamo:
		if c.DynamoTable == "" {
			return fmt.Errorf("DYNAMO_TABLE must be set when MATCH_STORE=%s", StoreDynamo)
		}
	default:
		return fmt.Errorf("unknown MATCH_STORE %q", c.MatchStore)
	}

	if c.FrameDebug && !c.IsDev() {
		return fmt.Errorf("FRAME_DEBUG cannot be enabled when APP_ENV=%s", c.AppEnv)
	}
	return nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a local or development environment.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func durationEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsKey); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
