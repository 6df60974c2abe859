package config

import (
	"time"

	redisclient "github.com/vietddude/paramretry/internal/infra/redis"
	"github.com/vietddude/paramretry/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Policy   PolicyConfig       `yaml:"policy"`
	Reports  ReportsConfig      `yaml:"reports"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ReportsConfig holds run report settings.
type ReportsConfig struct {
	Retention time.Duration `yaml:"retention"` // zero keeps reports forever
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// PolicyConfig is the retry policy as written in YAML. Pointers distinguish
// an omitted value, which gets a default, from an explicit invalid one.
type PolicyConfig struct {
	Repeats    *int     `yaml:"repeats"`
	MinSuccess *int     `yaml:"min_success"`
	Retryable  []string `yaml:"retryable"` // kind names, in match order
	Name       *string  `yaml:"name"`      // invocation name pattern
}
