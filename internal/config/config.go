// Package config loads runtime settings for the logiqube binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jaminalder/logiqube/internal/domain"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full settings tree.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Hints  HintsConfig  `yaml:"hints"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	EventHeartbeat time.Duration `yaml:"event_heartbeat"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HintsConfig controls the threat level used when a caller does not pick one.
type HintsConfig struct {
	ThreatLevel int `yaml:"threat_level"`
}

// Default returns the built-in settings. The server binds to loopback only.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			EventHeartbeat: 15 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Hints: HintsConfig{ThreatLevel: domain.DefaultThreatLevel},
	}
}

// Load reads a YAML file over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	}
	if c.Server.EventHeartbeat <= 0 {
		return fmt.Errorf("%w: server.event_heartbeat must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Hints.ThreatLevel < 1 || c.Hints.ThreatLevel > domain.Size {
		return fmt.Errorf("%w: hints.threat_level must be within 1..%d", ErrInvalidConfig, domain.Size)
	}
	return nil
}
