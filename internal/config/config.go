package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config struct for environment variables.
type Config struct {
	BaseURL          string        `envconfig:"PYWEEK_URL" default:"https://pyweek.org"`
	PyPIURL          string        `envconfig:"PYWEEK_PYPI_URL" default:"https://pypi.org/pypi/pyweek/json"`
	SkipVersionCheck bool          `envconfig:"PYWEEK_SKIP_VERSION_CHECK"`
	HTTPTimeout      time.Duration `envconfig:"PYWEEK_HTTP_TIMEOUT" default:"30s"`
	RetryAttempts    int           `envconfig:"PYWEEK_RETRY_ATTEMPTS" default:"3"`
	RetryWait        time.Duration `envconfig:"PYWEEK_RETRY_WAIT" default:"2s"`
	MaxParallel      int           `envconfig:"PYWEEK_MAX_PARALLEL" default:"1"`
	LogLevel         string        `envconfig:"PYWEEK_LOG_LEVEL" default:"INFO"`
}

// LoadConfig reads environment variables and populates the Config struct.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	return &cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
