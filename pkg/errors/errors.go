package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrTrackNotFound  = errors.New("track not found")
	ErrInvalidFormat  = errors.New("unsupported audio format")
	ErrResourceLoad   = errors.New("resource load failed")
	ErrPlaybackStart  = errors.New("playback start failed")
	ErrConfiguration  = errors.New("invalid configuration")
	ErrEmptyQueue     = errors.New("playback queue is empty")
	ErrInvalidFade    = errors.New("fade duration must be positive")
	ErrUnevenFade     = errors.New("fade duration must be a whole number of ramp ticks")
	ErrSessionActive  = errors.New("playback session already active")
	ErrEngineStopped  = errors.New("audio engine is not running")
	ErrVoiceBusy      = errors.New("voice is still playing")
	ErrVoiceUnbound   = errors.New("voice has no source bound")
	ErrObserverActive = errors.New("periodic observer already registered")
)

// PlayerError wraps errors with additional context. Kind, when set, is one of
// ErrResourceLoad, ErrPlaybackStart or ErrConfiguration so callers can match
// the failure class with errors.Is.
type PlayerError struct {
	Kind  error  // Failure class
	Op    string // Operation that failed
	Track string // Track name if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, track string, err error) *PlayerError {
	return &PlayerError{Op: op, Track: track, Err: err}
}

// NewResourceLoadError reports a track whose asset could not be loaded or decoded
func NewResourceLoadError(track string, err error) *PlayerError {
	return &PlayerError{Kind: ErrResourceLoad, Op: "load", Track: track, Err: err}
}

// NewPlaybackStartError reports an engine or voice that failed to start
func NewPlaybackStartError(op, track string, err error) *PlayerError {
	return &PlayerError{Kind: ErrPlaybackStart, Op: op, Track: track, Err: err}
}

// ConfigError represents a rejected configuration value
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

// NewConfigError creates a ConfigError for field
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigurationError creates a ConfigError that also matches err
func NewConfigurationError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Message: err.Error(), Err: err}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Field, e.Message)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

// ScanError represents an error during catalog scanning
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error at %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
