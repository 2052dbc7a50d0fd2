package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/faiface/beep"
	"github.com/jscyril/crossfade_player/internal/crossfade"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

var (
	_ crossfade.Backend          = (*MediaBackend)(nil)
	_ crossfade.Voice            = (*MediaVoice)(nil)
	_ crossfade.PositionObserver = (*MediaVoice)(nil)
)

// MediaBackend gives every voice its own player on the output. With
// automation on, each item carries a volume envelope fixed at bind time and
// the runtime gain is only recorded.
type MediaBackend struct {
	out        Output
	sampleRate beep.SampleRate
	bufferSize int
	clock      clock.Clock
	automation bool
	log        *slog.Logger

	mu          sync.Mutex
	initialized bool
	running     bool
	fade        time.Duration
}

// NewMediaBackend creates a media-item backend. Observers tick on c.
func NewMediaBackend(out Output, sampleRate beep.SampleRate, buffer time.Duration, c clock.Clock, automation bool, log *slog.Logger) *MediaBackend {
	if c == nil {
		c = clock.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &MediaBackend{
		out:        out,
		sampleRate: sampleRate,
		bufferSize: sampleRate.N(buffer),
		clock:      c,
		automation: automation,
		log:        log.With("component", "media"),
	}
}

// Start initializes the output once and records the fade used to build
// item automation
func (b *MediaBackend) Start(cfg crossfade.EngineConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		if err := b.out.Init(b.sampleRate, b.bufferSize); err != nil {
			return playerrors.NewPlaybackStartError("engine start", "", err)
		}
		b.initialized = true
	}
	if !cfg.Session.MixWithOthers {
		b.out.Clear()
	}

	b.fade = cfg.FadeDuration
	b.running = true
	b.log.Info("engine started",
		"sample_rate", int(b.sampleRate),
		"automation", b.automation,
		"category", cfg.Session.Category)
	return nil
}

func (b *MediaBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		b.running = false
		b.log.Info("engine stopped")
	}
}

// NewVoice returns an independent media player
func (b *MediaBackend) NewVoice() crossfade.Voice {
	return &MediaVoice{
		voice:   voice{out: b.out, outRate: b.sampleRate, gain: 1},
		backend: b,
	}
}

func (b *MediaBackend) Close() error {
	b.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		b.out.Close()
		b.initialized = false
	}
	return nil
}

func (b *MediaBackend) isRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// envelope builds the automation for src, or nil when automation is off
func (b *MediaBackend) envelope(src *Source) *Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.automation {
		return nil
	}
	return NewEnvelope(src.Duration(), b.fade)
}

func (b *MediaBackend) attach(n *node) {
	b.out.Play(n)
}

type observer struct {
	token  crossfade.ObserverToken
	ticker *clock.Ticker
	done   chan struct{}
}

// MediaVoice is a single media player bound to one item at a time
type MediaVoice struct {
	voice
	backend *MediaBackend

	obsMu     sync.Mutex
	observer  *observer
	nextToken crossfade.ObserverToken
}

// Bind loads src and attaches its volume automation before playback
func (v *MediaVoice) Bind(src crossfade.Source) error {
	return v.bind(src, v.backend.envelope)
}

// Play hands the item to the output
func (v *MediaVoice) Play() error {
	if !v.backend.isRunning() {
		name := ""
		if src := v.Source(); src != nil {
			name = src.Name()
		}
		return playerrors.NewPlaybackStartError("play", name, playerrors.ErrEngineStopped)
	}
	return v.play(v.backend.attach)
}

// Release removes the player from the output and drops any observer
func (v *MediaVoice) Release() error {
	if err := v.voice.Release(); err != nil {
		return err
	}

	v.obsMu.Lock()
	defer v.obsMu.Unlock()
	v.stopObserverLocked()
	return nil
}

// AddPeriodicObserver calls fn with the playback position every interval.
// Only one observer may be registered; remove it before adding another.
func (v *MediaVoice) AddPeriodicObserver(interval time.Duration, fn func(pos time.Duration)) (crossfade.ObserverToken, error) {
	v.obsMu.Lock()
	defer v.obsMu.Unlock()

	if v.observer != nil {
		return 0, playerrors.ErrObserverActive
	}

	v.nextToken++
	obs := &observer{
		token:  v.nextToken,
		ticker: v.backend.clock.Ticker(interval),
		done:   make(chan struct{}),
	}
	v.observer = obs

	go func() {
		for {
			select {
			case <-obs.ticker.C:
				fn(v.Position())
			case <-obs.done:
				return
			}
		}
	}()
	return obs.token, nil
}

// RemoveObserver cancels the registration identified by token. Stale or
// repeated tokens are ignored. It does not wait for a callback in progress.
func (v *MediaVoice) RemoveObserver(token crossfade.ObserverToken) {
	v.obsMu.Lock()
	defer v.obsMu.Unlock()

	if v.observer == nil || v.observer.token != token {
		return
	}
	v.stopObserverLocked()
}

func (v *MediaVoice) stopObserverLocked() {
	if v.observer == nil {
		return
	}
	v.observer.ticker.Stop()
	close(v.observer.done)
	v.observer = nil
}
