package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/paramretry/internal/naming"
)

const (
	DefaultPort       = 9090
	DefaultRepeats    = 1
	DefaultMinSuccess = 1
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	var cfg AppConfig
	cfg.applyDefaults()
	return &cfg
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Policy.applyDefaults()
}

func (p *PolicyConfig) applyDefaults() {
	if p.Repeats == nil {
		v := DefaultRepeats
		p.Repeats = &v
	}
	if p.MinSuccess == nil {
		v := DefaultMinSuccess
		p.MinSuccess = &v
	}
	if p.Name == nil {
		v := naming.DefaultPattern
		p.Name = &v
	}
}
