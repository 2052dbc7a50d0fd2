package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/jscyril/crossfade_player/internal/crossfade"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

// Ensure the graph binding implements the scheduler contract at compile time
var (
	_ crossfade.Backend = (*GraphBackend)(nil)
	_ crossfade.Voice   = (*GraphVoice)(nil)
)

// GraphBackend renders every voice through one shared mixer node. The mixer
// is attached to the output once, on the first Start; voices are attached to
// and detached from the mixer as they are bound and released.
type GraphBackend struct {
	out        Output
	sampleRate beep.SampleRate
	bufferSize int
	log        *slog.Logger

	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	attached    bool
	running     bool
}

// NewGraphBackend creates a graph backend rendering at sampleRate
func NewGraphBackend(out Output, sampleRate beep.SampleRate, buffer time.Duration, log *slog.Logger) *GraphBackend {
	if log == nil {
		log = slog.Default()
	}
	return &GraphBackend{
		out:        out,
		sampleRate: sampleRate,
		bufferSize: sampleRate.N(buffer),
		log:        log.With("component", "graph"),
		mixer:      &beep.Mixer{},
	}
}

// Start initializes the output and attaches the mixer if that has not
// happened yet. Without MixWithOthers the output is cleared first so the
// session plays alone.
func (b *GraphBackend) Start(cfg crossfade.EngineConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		if err := b.out.Init(b.sampleRate, b.bufferSize); err != nil {
			return playerrors.NewPlaybackStartError("engine start", "", err)
		}
		b.initialized = true
	}

	if !cfg.Session.MixWithOthers && b.attached {
		b.out.Clear()
		b.attached = false
	}
	if !b.attached {
		b.out.Play(b.mixer)
		b.attached = true
	}

	b.running = true
	b.log.Info("engine started",
		"sample_rate", int(b.sampleRate),
		"category", cfg.Session.Category,
		"mix_with_others", cfg.Session.MixWithOthers)
	return nil
}

// Stop drops every node from the mixer. The mixer itself stays attached.
func (b *GraphBackend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return
	}
	b.out.Lock()
	b.mixer.Clear()
	b.out.Unlock()

	b.running = false
	b.log.Info("engine stopped")
}

// NewVoice returns a voice rendering through the shared mixer
func (b *GraphBackend) NewVoice() crossfade.Voice {
	return &GraphVoice{
		voice:   voice{out: b.out, outRate: b.sampleRate, gain: 1},
		backend: b,
	}
}

// Close shuts the output down
func (b *GraphBackend) Close() error {
	b.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		b.out.Close()
		b.initialized = false
		b.attached = false
	}
	return nil
}

// Voices returns the number of nodes currently held by the mixer
func (b *GraphBackend) Voices() int {
	b.out.Lock()
	defer b.out.Unlock()
	return b.mixer.Len()
}

func (b *GraphBackend) isRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// attach connects a freshly bound node to the mixer
func (b *GraphBackend) attach(n *node) {
	b.out.Lock()
	b.mixer.Add(n)
	b.out.Unlock()
}

// GraphVoice is a mixer input node
type GraphVoice struct {
	voice
	backend *GraphBackend
}

// Bind opens src on this voice. The previous node is detached first; binding
// a playing voice fails.
func (v *GraphVoice) Bind(src crossfade.Source) error {
	return v.bind(src, nil)
}

// Play connects the node to the mixer if it was freshly bound and starts it
func (v *GraphVoice) Play() error {
	if !v.backend.isRunning() {
		return playerrors.NewPlaybackStartError("play", v.trackName(), playerrors.ErrEngineStopped)
	}
	return v.play(v.backend.attach)
}

func (v *GraphVoice) trackName() string {
	if src := v.Source(); src != nil {
		return src.Name()
	}
	return ""
}
