// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the storyloom command reads from the
// environment. Command-line flags override these where they overlap.
type Config struct {
	SaveDir      string `env:"STORYLOOM_SAVE_DIR"      envDefault:"~/.storyloom/saves"`
	Entry        string `env:"STORYLOOM_ENTRY"         envDefault:"start"`
	HistoryDepth int    `env:"STORYLOOM_HISTORY_DEPTH" envDefault:"50"`
	LogLevel     string `env:"STORYLOOM_LOG_LEVEL"     envDefault:"warn"`
	RedisAddr    string `env:"STORYLOOM_REDIS_ADDR"`
	RedisPrefix  string `env:"STORYLOOM_REDIS_PREFIX"  envDefault:"storyloom:save:"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HistoryDepth <= 0 {
		return nil, fmt.Errorf("STORYLOOM_HISTORY_DEPTH must be positive, got %d", cfg.HistoryDepth)
	}
	if cfg.Entry == "" {
		return nil, fmt.Errorf("STORYLOOM_ENTRY must not be empty")
	}
	dir, err := expandHome(cfg.SaveDir)
	if err != nil {
		return nil, err
	}
	cfg.SaveDir = dir
	return &cfg, nil
}

// UseRedis reports whether saves go to Redis rather than the filesystem.
func (c *Config) UseRedis() bool { return c.RedisAddr != "" }

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving save directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
