package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ExecContext selects which network path a backend address is meant for.
type ExecContext int

const (
	// ContextServer is used for calls made by the console process itself.
	ContextServer ExecContext = iota
	// ContextBrowser is used for addresses rendered into pages for the browser.
	ContextBrowser
)

// Backend holds the two addresses of one external service.
type Backend struct {
	InternalURL string
	PublicURL   string
}

// URL returns the address for the given execution context. When the preferred
// address is empty the other one is used.
func (b Backend) URL(ctx ExecContext) string {
	internal := strings.TrimRight(b.InternalURL, "/")
	public := strings.TrimRight(b.PublicURL, "/")
	if ctx == ContextBrowser {
		if public != "" {
			return public
		}
		return internal
	}
	if internal != "" {
		return internal
	}
	return public
}

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	InternalCrudURL  string `env:"INTERNAL_CRUD_API_URL"`
	PublicCrudURL    string `env:"PUBLIC_CRUD_API_URL"`
	InternalEmailURL string `env:"INTERNAL_EMAIL_API_URL"`
	PublicEmailURL   string `env:"PUBLIC_EMAIL_API_URL"`

	BackendTimeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"`
	UserPageSize   int           `env:"USER_PAGE_SIZE" envDefault:"100"`

	SessionStore  string        `env:"SESSION_STORE" envDefault:"memory"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionSecret string        `env:"SESSION_SECRET"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass     string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// MinSessionSecretLen is the shortest accepted SESSION_SECRET.
const MinSessionSecretLen = 16

// Crud returns the user backend addresses.
func (c *Config) Crud() Backend {
	return Backend{InternalURL: c.InternalCrudURL, PublicURL: c.PublicCrudURL}
}

// Email returns the email backend addresses.
func (c *Config) Email() Backend {
	return Backend{InternalURL: c.InternalEmailURL, PublicURL: c.PublicEmailURL}
}

// Load reads an optional .env file and builds Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	return parse()
}

func parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants env tags cannot express.
func (c *Config) Validate() error {
	if c.Crud().URL(ContextServer) == "" {
		return errors.New("INTERNAL_CRUD_API_URL or PUBLIC_CRUD_API_URL is required")
	}
	if c.Email().URL(ContextServer) == "" {
		return errors.New("INTERNAL_EMAIL_API_URL or PUBLIC_EMAIL_API_URL is required")
	}
	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid SESSION_STORE %q: want memory or redis", c.SessionStore)
	}
	if c.UserPageSize <= 0 {
		return fmt.Errorf("invalid USER_PAGE_SIZE %d", c.UserPageSize)
	}
	return nil
}

// ValidateSession checks the settings only the server needs. Session cookies
// are signed with SESSION_SECRET, so it has no default.
func (c *Config) ValidateSession() error {
	if len(c.SessionSecret) < MinSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be set to at least %d characters", MinSessionSecretLen)
	}
	return nil
}
