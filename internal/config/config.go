package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration
type Config struct {
	// サーバー設定
	ServerPort      string        `env:"SERVER_PORT"      envDefault:"3003"`
	Env             string        `env:"ENV"              envDefault:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"   envDefault:"1048576"`

	// ログ設定
	LogDebug bool `env:"LOG_DEBUG" envDefault:"false"`

	// CORS / WebSocket Origin 設定
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000" envSeparator:","`
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	origins := cfg.AllowedOrigins[:0]
	for _, origin := range cfg.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowedOrigins = origins

	return cfg, nil
}

// AllowsAnyOrigin reports whether the allow-list contains the "*" wildcard.
func (c Config) AllowsAnyOrigin() bool {
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// IsOriginAllowed reports whether origin is in the allow-list.
func (c Config) IsOriginAllowed(origin string) bool {
	if c.AllowsAnyOrigin() {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
