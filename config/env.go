package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvConfig      = "RESTOCK_CONFIG"
	EnvLogLevel    = "RESTOCK_LOG_LEVEL"
	EnvLogFormat   = "RESTOCK_LOG_FORMAT"
	EnvTick        = "RESTOCK_TICK"
	EnvStateDSN    = "RESTOCK_STATE_DSN"
	EnvMetricsAddr = "RESTOCK_METRICS_ADDR"
)

// Env holds runtime overrides read from the process environment.
type Env struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Tick        time.Duration
	StateDSN    string
	MetricsAddr string
}

// FromEnv loads a .env file if present and reads the RESTOCK_* variables.
func FromEnv() (Env, error) {
	_ = godotenv.Load()

	env := Env{
		ConfigPath:  firstNonEmpty(strings.TrimSpace(os.Getenv(EnvConfig)), "restock.yaml"),
		LogLevel:    firstNonEmpty(strings.TrimSpace(os.Getenv(EnvLogLevel)), "info"),
		LogFormat:   firstNonEmpty(strings.TrimSpace(os.Getenv(EnvLogFormat)), "text"),
		StateDSN:    strings.TrimSpace(os.Getenv(EnvStateDSN)),
		MetricsAddr: strings.TrimSpace(os.Getenv(EnvMetricsAddr)),
	}
	if raw := strings.TrimSpace(os.Getenv(EnvTick)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return env, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvTick, err)
		}
		env.Tick = d
	}
	return env, nil
}

// Apply overlays env onto c.
func (c *Config) Apply(env Env) {
	if env.Tick > 0 {
		c.Settings.TickInterval = env.Tick
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
