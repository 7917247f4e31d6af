package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	tokenSecret   = "TOKEN_SECRET"
	adminPassword = "ADMIN_PASSWORD"
	adminGateMode = "ADMIN_GATE_MODE"
	strictVar     = "STRICT_SESSIONS"
	redisAddrVar  = "REDIS_ADDR"
	redisPassVar  = "REDIS_PASSWORD"
	storeTimeout  = "STORE_TIMEOUT"
)

// Config holds all process-wide settings. It is loaded once at startup and
// treated as immutable for the lifetime of the process; components receive it
// by reference and never re-read the environment per request.
type Config struct {
	Port    string
	AppName string
	Env     string

	// TokenSecret signs bearer tokens and admin session tokens. There is no
	// default: the server refuses to start without it.
	TokenSecret string

	// AdminPassword is the shared secret for the admin gate. Empty disables
	// shared-secret admin login.
	AdminPassword string

	// AdminGateMode selects the admin authentication strategy:
	// "shared-secret" (opaque signed cookie) or "store-backed" (session
	// resolution plus an admin role check).
	AdminGateMode string

	// StrictSessions rejects session IDs that do not match a stored session
	// instead of degrading to fallback authentication.
	StrictSessions bool

	RedisAddr     string
	RedisPassword string

	// StoreTimeout bounds every document-store call.
	StoreTimeout time.Duration
}

// Load reads the environment into a Config. It fails rather than defaulting
// when the token signing secret is absent.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          normalisePort(getEnv(portEnvVar, "8080")),
		AppName:       getEnv(appNameVar, "Auth Service"),
		Env:           getEnv(envVar, "DEV"),
		TokenSecret:   os.Getenv(tokenSecret),
		AdminPassword: os.Getenv(adminPassword),
		AdminGateMode: getEnv(adminGateMode, "shared-secret"),
		RedisAddr:     getEnv(redisAddrVar, "localhost:6379"),
		RedisPassword: os.Getenv(redisPassVar),
	}

	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("[config.Load] %s is required and has no default", tokenSecret)
	}

	if cfg.AdminGateMode != "shared-secret" && cfg.AdminGateMode != "store-backed" {
		return nil, fmt.Errorf("[config.Load] invalid %s %q", adminGateMode, cfg.AdminGateMode)
	}

	strict, err := strconv.ParseBool(getEnv(strictVar, "false"))
	if err != nil {
		return nil, fmt.Errorf("[config.Load] invalid %s: %w", strictVar, err)
	}
	cfg.StrictSessions = strict

	timeout, err := time.ParseDuration(getEnv(storeTimeout, "3s"))
	if err != nil {
		return nil, fmt.Errorf("[config.Load] invalid %s: %w", storeTimeout, err)
	}
	cfg.StoreTimeout = timeout

	return cfg, nil
}

// IsProd reports whether the process runs outside local development, which
// switches on secure cookie attributes.
func (c *Config) IsProd() bool {
	return c.Env != "DEV"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func normalisePort(port string) string {
	if port != "" && port[0] != ':' {
		return ":" + port
	}
	return port
}
