package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Entry != "start" {
		t.Errorf("Entry = %q, want start", cfg.Entry)
	}
	if cfg.HistoryDepth != 50 {
		t.Errorf("HistoryDepth = %d, want 50", cfg.HistoryDepth)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.RedisPrefix != "storyloom:save:" {
		t.Errorf("RedisPrefix = %q", cfg.RedisPrefix)
	}
	if cfg.UseRedis() {
		t.Error("UseRedis = true without an address")
	}
	home, err := os.UserHomeDir()
	if err == nil {
		want := filepath.Join(home, ".storyloom", "saves")
		if cfg.SaveDir != want {
			t.Errorf("SaveDir = %q, want %q", cfg.SaveDir, want)
		}
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STORYLOOM_SAVE_DIR":      "/tmp/saves",
		"STORYLOOM_ENTRY":         "prologue",
		"STORYLOOM_HISTORY_DEPTH": "5",
		"STORYLOOM_LOG_LEVEL":     "debug",
		"STORYLOOM_REDIS_ADDR":    "localhost:6379",
	})
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.SaveDir != "/tmp/saves" || cfg.Entry != "prologue" || cfg.HistoryDepth != 5 || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.UseRedis() {
		t.Error("UseRedis = false with an address")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"zero depth":   {"STORYLOOM_HISTORY_DEPTH": "0"},
		"not a number": {"STORYLOOM_HISTORY_DEPTH": "lots"},
		"negative":     {"STORYLOOM_HISTORY_DEPTH": "-3"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(vars); err == nil {
				t.Error("expected error")
			}
		})
	}
}
