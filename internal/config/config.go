package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jscyril/crossfade_player/api"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

// Fade duration bounds offered to the user, in seconds
const (
	MinFadeSeconds = 1
	MaxFadeSeconds = 20
)

// Backend names
const (
	BackendGraph = "graph"
	BackendMedia = "media"
)

// Config holds application configuration
type Config struct {
	CatalogPath string           `json:"catalog_path"`
	TracksDir   string           `json:"tracks_dir"`
	QueueLength int              `json:"queue_length"`
	FadeSeconds int              `json:"fade_seconds"`
	RampTickMS  int              `json:"ramp_tick_ms"`
	PollMS      int              `json:"poll_interval_ms"`
	Backend     string           `json:"backend"`
	Automation  bool             `json:"volume_automation"`
	SampleRate  int              `json:"sample_rate"`
	BufferMS    int              `json:"buffer_ms"`
	LoadWorkers int              `json:"load_workers"`
	Session     api.AudioSession `json:"audio_session"`
	Logging     LoggingConfig    `json:"logging"`
	EnableTUI   bool             `json:"enable_tui"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json or text
	File   string `json:"file"`   // used while the TUI owns the terminal
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		CatalogPath: "tracks.json",
		TracksDir:   "./tracks",
		QueueLength: 4,
		FadeSeconds: 5,
		RampTickMS:  1000,
		PollMS:      1000,
		Backend:     BackendGraph,
		Automation:  true,
		SampleRate:  44100,
		BufferMS:    100,
		LoadWorkers: 4,
		Session: api.AudioSession{
			Category:         "playback",
			MixWithOthers:    true,
			DefaultToSpeaker: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "crossfader.log",
		},
		EnableTUI: true,
	}
}

// FadeDuration returns the configured crossfade length
func (c *Config) FadeDuration() time.Duration {
	return time.Duration(c.FadeSeconds) * time.Second
}

// RampTick returns the gain ramp tick interval
func (c *Config) RampTick() time.Duration {
	return time.Duration(c.RampTickMS) * time.Millisecond
}

// PollInterval returns the position poll interval
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollMS) * time.Millisecond
}

// BufferDuration returns the output buffer length
func (c *Config) BufferDuration() time.Duration {
	return time.Duration(c.BufferMS) * time.Millisecond
}

// Validate rejects values the scheduler or backends cannot run with
func (c *Config) Validate() error {
	if c.FadeSeconds < MinFadeSeconds || c.FadeSeconds > MaxFadeSeconds {
		return playerrors.NewConfigError("fade_seconds",
			fmt.Sprintf("must be between %d and %d", MinFadeSeconds, MaxFadeSeconds))
	}
	if c.QueueLength < 1 {
		return playerrors.NewConfigError("queue_length", "must be at least 1")
	}
	if c.RampTickMS <= 0 {
		return playerrors.NewConfigError("ramp_tick_ms", "must be positive")
	}
	if c.RampTick() > c.FadeDuration() {
		return playerrors.NewConfigError("ramp_tick_ms", "must not exceed the fade duration")
	}
	if c.FadeDuration()%c.RampTick() != 0 {
		return playerrors.NewConfigError("ramp_tick_ms", "must divide the fade duration evenly")
	}
	if c.PollMS <= 0 {
		return playerrors.NewConfigError("poll_interval_ms", "must be positive")
	}
	if c.Backend != BackendGraph && c.Backend != BackendMedia {
		return playerrors.NewConfigError("backend", fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if c.SampleRate <= 0 {
		return playerrors.NewConfigError("sample_rate", "must be positive")
	}
	if c.BufferMS <= 0 {
		return playerrors.NewConfigError("buffer_ms", "must be positive")
	}
	return nil
}

// LoadConfig reads configuration from file, falling back to defaults when the
// file does not exist, then applies environment overrides
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(config)
	return config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return config, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	if path := os.Getenv("CROSSFADER_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "crossfader", "config.json")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "crossfader", "config.json")
}

func applyEnv(c *Config) {
	c.CatalogPath = envStr("CROSSFADER_CATALOG", c.CatalogPath)
	c.TracksDir = envStr("CROSSFADER_TRACKS_DIR", c.TracksDir)
	c.QueueLength = envInt("CROSSFADER_QUEUE_LENGTH", c.QueueLength)
	c.FadeSeconds = envInt("CROSSFADER_FADE_SECONDS", c.FadeSeconds)
	c.RampTickMS = envInt("CROSSFADER_RAMP_TICK_MS", c.RampTickMS)
	c.PollMS = envInt("CROSSFADER_POLL_MS", c.PollMS)
	c.Backend = strings.ToLower(envStr("CROSSFADER_BACKEND", c.Backend))
	c.Automation = envBool("CROSSFADER_VOLUME_AUTOMATION", c.Automation)
	c.SampleRate = envInt("CROSSFADER_SAMPLE_RATE", c.SampleRate)
	c.Logging.Level = envStr("CROSSFADER_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = envStr("CROSSFADER_LOG_FORMAT", c.Logging.Format)
	c.Logging.File = envStr("CROSSFADER_LOG_FILE", c.Logging.File)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
