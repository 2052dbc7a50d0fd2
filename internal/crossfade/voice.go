// Package crossfade schedules gapless, crossfaded playback of a looping
// track queue over two reusable voices.
package crossfade

import (
	"context"
	"time"

	"github.com/jscyril/crossfade_player/api"
)

// Source is a decoded or streamable asset with a known total duration
type Source interface {
	Name() string
	Duration() time.Duration
}

// Voice is one playable unit. A voice is bound to a source, played, stopped
// and rebound; it is never recreated per track. Implementations must be safe
// for concurrent use.
type Voice interface {
	Bind(src Source) error
	Play() error
	Stop()
	SetGain(g float64)
	Gain() float64
	Position() time.Duration
	State() api.VoiceState
	// Release detaches the voice from its backend. Releasing a playing
	// voice fails.
	Release() error
	// Err reports a failure seen while rendering the bound source
	Err() error
}

// EngineConfig is handed to a backend once per session
type EngineConfig struct {
	Session      api.AudioSession
	FadeDuration time.Duration
}

// Backend is a playback engine that hands out voices
type Backend interface {
	Start(cfg EngineConfig) error
	Stop()
	NewVoice() Voice
	Close() error
}

// ObserverToken identifies one periodic observer registration
type ObserverToken uint64

// PositionObserver is implemented by voices that report their position
// through a periodic callback instead of being polled
type PositionObserver interface {
	AddPeriodicObserver(interval time.Duration, fn func(pos time.Duration)) (ObserverToken, error)
	RemoveObserver(token ObserverToken)
}

// Resolver turns catalog descriptors into playable sources. It fails as a
// whole when any descriptor cannot be loaded.
type Resolver interface {
	Resolve(ctx context.Context, tracks []api.TrackDescriptor) ([]Source, error)
}
