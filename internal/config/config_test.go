package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

var envVars = []string{
	"CROSSFADER_CATALOG", "CROSSFADER_TRACKS_DIR", "CROSSFADER_QUEUE_LENGTH",
	"CROSSFADER_FADE_SECONDS", "CROSSFADER_RAMP_TICK_MS", "CROSSFADER_POLL_MS",
	"CROSSFADER_BACKEND", "CROSSFADER_VOLUME_AUTOMATION", "CROSSFADER_SAMPLE_RATE",
	"CROSSFADER_LOG_LEVEL", "CROSSFADER_LOG_FORMAT", "CROSSFADER_LOG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.FadeDuration() != 5*time.Second {
		t.Errorf("FadeDuration = %v, want 5s", cfg.FadeDuration())
	}
	if cfg.QueueLength != 4 {
		t.Errorf("QueueLength = %d, want 4", cfg.QueueLength)
	}
	if cfg.Backend != BackendGraph {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendGraph)
	}
	if cfg.PollInterval() != time.Second || cfg.RampTick() != time.Second {
		t.Errorf("PollInterval/RampTick = %v/%v, want 1s/1s", cfg.PollInterval(), cfg.RampTick())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"fade_seconds": 8, "backend": "media", "queue_length": 2}`), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CROSSFADER_QUEUE_LENGTH", "3")
	t.Setenv("CROSSFADER_BACKEND", "GRAPH")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.FadeSeconds != 8 {
		t.Errorf("FadeSeconds = %d, want 8 from file", cfg.FadeSeconds)
	}
	if cfg.QueueLength != 3 {
		t.Errorf("QueueLength = %d, want env override 3", cfg.QueueLength)
	}
	if cfg.Backend != BackendGraph {
		t.Errorf("Backend = %q, want env override lower-cased", cfg.Backend)
	}
	if cfg.TracksDir != "./tracks" {
		t.Errorf("TracksDir = %q, want default kept for fields absent from file", cfg.TracksDir)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("CROSSFADER_FADE_SECONDS", "not-a-number")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FadeSeconds != 5 {
		t.Errorf("invalid int env should fall back: got %d, want 5", cfg.FadeSeconds)
	}
}

func TestLoadConfigBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected unmarshal error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"fade too short", func(c *Config) { c.FadeSeconds = 0 }, true},
		{"fade too long", func(c *Config) { c.FadeSeconds = 21 }, true},
		{"fade at max", func(c *Config) { c.FadeSeconds = 20 }, false},
		{"empty queue", func(c *Config) { c.QueueLength = 0 }, true},
		{"zero ramp tick", func(c *Config) { c.RampTickMS = 0 }, true},
		{"ramp tick beyond fade", func(c *Config) { c.FadeSeconds = 1; c.RampTickMS = 1500 }, true},
		{"sub-second ramp tick", func(c *Config) { c.RampTickMS = 250 }, false},
		{"uneven ramp tick", func(c *Config) { c.FadeSeconds = 3; c.RampTickMS = 2000 }, true},
		{"even ramp tick", func(c *Config) { c.FadeSeconds = 4; c.RampTickMS = 2000 }, false},
		{"zero poll", func(c *Config) { c.PollMS = 0 }, true},
		{"unknown backend", func(c *Config) { c.Backend = "alsa" }, true},
		{"media backend", func(c *Config) { c.Backend = BackendMedia }, false},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, playerrors.ErrConfiguration) {
				t.Errorf("Validate() error %v should match ErrConfiguration", err)
			}
		})
	}
}

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	if _, err := LoadOrCreate(path); err != nil {
		t.Fatalf("LoadOrCreate returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config was not written: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CROSSFADER_FADE_SECONDS=12\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set
	os.Unsetenv("CROSSFADER_FADE_SECONDS")

	if err := LoadDotEnv(filepath.Join(dir, "absent.env"), envFile); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	cfg, err := LoadConfig(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FadeSeconds != 12 {
		t.Errorf("FadeSeconds = %d, want 12 from .env", cfg.FadeSeconds)
	}
}

func TestGetConfigPathPrefersEnv(t *testing.T) {
	t.Setenv("CROSSFADER_CONFIG", "/tmp/custom.json")
	if got := GetConfigPath(); got != "/tmp/custom.json" {
		t.Errorf("GetConfigPath() = %q, want env value", got)
	}

	t.Setenv("CROSSFADER_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := GetConfigPath(); got != filepath.Join("/xdg", "crossfader", "config.json") {
		t.Errorf("GetConfigPath() = %q, want XDG path", got)
	}
}
