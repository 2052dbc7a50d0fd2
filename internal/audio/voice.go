package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/crossfade"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

// voice holds what the graph and media voices share: the bound source, its
// node and the requested gain. Lock order is voice mutex, then output lock.
type voice struct {
	out     Output
	outRate beep.SampleRate

	mu       sync.Mutex
	src      *Source
	node     *node
	attached bool
	state    api.VoiceState
	gain     float64
}

// bind opens a fresh stream of s, detaching whatever was bound before
func (v *voice) bind(s crossfade.Source, envelope func(*Source) *Envelope) error {
	src, ok := s.(*Source)
	if !ok {
		return fmt.Errorf("%w: cannot bind %T", playerrors.ErrInvalidFormat, s)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == api.VoicePlaying {
		return playerrors.ErrVoiceBusy
	}
	v.detachLocked()

	stream, err := src.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Name(), err)
	}
	n := newNode(stream, src.Format().SampleRate, v.outRate)
	n.gain = v.gain
	if envelope != nil {
		n.envelope = envelope(src)
	}

	v.src = src
	v.node = n
	v.state = api.VoiceStopped
	return nil
}

// play attaches the node on the first play after a bind, then unpauses it.
// attach is called without the output lock held.
func (v *voice) play(attach func(n *node)) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.node == nil {
		return playerrors.ErrVoiceUnbound
	}
	if v.state == api.VoicePlaying {
		return nil
	}

	if !v.attached {
		attach(v.node)
		v.attached = true
	}
	v.out.Lock()
	v.node.ctrl.Paused = false
	v.out.Unlock()

	v.state = api.VoicePlaying
	return nil
}

func (v *voice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.node != nil {
		v.out.Lock()
		v.node.ctrl.Paused = true
		v.out.Unlock()
	}
	v.state = api.VoiceStopped
}

func (v *voice) SetGain(g float64) {
	if g < 0 {
		g = 0
	} else if g > 1 {
		g = 1
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.gain = g
	if v.node != nil {
		v.out.Lock()
		v.node.gain = g
		v.out.Unlock()
	}
}

func (v *voice) Gain() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain
}

func (v *voice) Position() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.node == nil {
		return 0
	}
	v.out.Lock()
	defer v.out.Unlock()
	return v.node.position()
}

func (v *voice) State() api.VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *voice) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.node == nil {
		return nil
	}
	v.out.Lock()
	defer v.out.Unlock()
	return v.node.err
}

// Release detaches the node from the output. A playing voice cannot be
// released; stop it first.
func (v *voice) Release() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == api.VoicePlaying {
		return playerrors.ErrVoiceBusy
	}
	return v.detachLocked()
}

func (v *voice) detachLocked() error {
	n := v.node
	if n == nil {
		return nil
	}

	v.out.Lock()
	n.detached = true
	v.out.Unlock()

	v.node = nil
	v.src = nil
	v.attached = false
	return n.src.Close()
}

// Source returns the bound source, or nil
func (v *voice) Source() *Source {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.src
}
