package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.App.Name != "mnemo" {
		t.Errorf("expected app name 'mnemo', got %s", cfg.App.Name)
	}
	if cfg.App.Environment != "development" {
		t.Errorf("expected environment 'development', got %s", cfg.App.Environment)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected log format 'json', got %s", cfg.Log.Format)
	}

	// Fusion defaults must match the documented 60/40 split.
	if cfg.Retrieval.InternalWeight != 0.6 || cfg.Retrieval.ExternalWeight != 0.4 {
		t.Errorf("expected default weights 0.6/0.4, got %v/%v",
			cfg.Retrieval.InternalWeight, cfg.Retrieval.ExternalWeight)
	}
	if cfg.Retrieval.RecencyWindowDays != 90 {
		t.Errorf("expected recency window 90 days, got %v", cfg.Retrieval.RecencyWindowDays)
	}

	if cfg.Cache.MaxAge != 24*time.Hour {
		t.Errorf("expected cache max age 24h, got %v", cfg.Cache.MaxAge)
	}
	if cfg.Cache.SweepAge != 7*24*time.Hour {
		t.Errorf("expected cache sweep age 168h, got %v", cfg.Cache.SweepAge)
	}

	if cfg.Learning.MinWeight != 0.3 || cfg.Learning.MaxWeight != 0.8 {
		t.Errorf("expected weight clamps [0.3, 0.8], got [%v, %v]",
			cfg.Learning.MinWeight, cfg.Learning.MaxWeight)
	}
	if cfg.Learning.MinRate != 0.005 || cfg.Learning.MaxRate != 0.05 {
		t.Errorf("expected rate clamps [0.005, 0.05], got [%v, %v]",
			cfg.Learning.MinRate, cfg.Learning.MaxRate)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "missing app name",
			mutate: func(c *Config) {
				c.App.Name = ""
			},
			wantErr: true,
		},
		{
			name: "invalid environment",
			mutate: func(c *Config) {
				c.App.Environment = "testing"
			},
			wantErr: true,
		},
		{
			name: "port out of range",
			mutate: func(c *Config) {
				c.Server.Port = 70000
			},
			wantErr: true,
		},
		{
			name: "weights not summing to one",
			mutate: func(c *Config) {
				c.Retrieval.InternalWeight = 0.7
				c.Retrieval.ExternalWeight = 0.4
			},
			wantErr: true,
		},
		{
			name: "inverted weight clamps",
			mutate: func(c *Config) {
				c.Learning.MinWeight = 0.9
			},
			wantErr: true,
		},
		{
			name: "sweep age shorter than max age",
			mutate: func(c *Config) {
				c.Cache.SweepAge = time.Hour
			},
			wantErr: true,
		},
		{
			name: "unknown store type",
			mutate: func(c *Config) {
				c.Store.Type = "postgres"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := ValidateWithDetails(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
app:
  name: mnemo-test
  environment: production
server:
  port: 9999
cache:
  backend: redis
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.App.Name != "mnemo-test" {
		t.Errorf("expected app name from file, got %s", cfg.App.Name)
	}
	if cfg.App.Environment != "production" {
		t.Errorf("expected environment from file, got %s", cfg.App.Environment)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("expected cache backend redis, got %s", cfg.Cache.Backend)
	}
	// Untouched sections keep defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level, got %s", cfg.Log.Level)
	}
}

func TestLoader_Overrides(t *testing.T) {
	cfg, err := Load("", map[string]interface{}{
		"server.port": 8181,
		"log.level":   "debug",
	})
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("expected override port 8181, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected override log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("x = 1"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, nil); err == nil {
		t.Error("expected error for unsupported config format")
	}
}
