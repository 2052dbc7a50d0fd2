package audio

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// resampleQuality is passed to beep.Resample when a source does not match
// the output rate
const resampleQuality = 4

// node is the streamer a voice hands to the output. It is read by the
// output's goroutine, so every field is guarded by the output lock.
//
// A detached node reports exhaustion and is dropped by whichever mixer holds
// it. A node whose source ran out keeps producing silence until detached.
type node struct {
	src      beep.StreamSeekCloser
	srcRate  beep.SampleRate
	amp      *effects.Gain
	ctrl     *beep.Ctrl
	gain     float64
	envelope *Envelope
	detached bool
	ended    bool
	err      error
}

func newNode(src beep.StreamSeekCloser, srcRate, outRate beep.SampleRate) *node {
	var s beep.Streamer = src
	if srcRate != outRate {
		s = beep.Resample(resampleQuality, srcRate, outRate, src)
	}
	amp := &effects.Gain{Streamer: s}
	return &node{
		src:     src,
		srcRate: srcRate,
		amp:     amp,
		ctrl:    &beep.Ctrl{Streamer: amp, Paused: true},
		gain:    1,
	}
}

func (n *node) position() time.Duration {
	return n.srcRate.D(n.src.Position())
}

func (n *node) Stream(samples [][2]float64) (int, bool) {
	if n.detached {
		return 0, false
	}
	if n.ended {
		silence(samples)
		return len(samples), true
	}

	g := n.gain
	if n.envelope != nil {
		g = n.envelope.At(n.position())
	}
	// effects.Gain scales by 1+Gain
	n.amp.Gain = g - 1

	sn, ok := n.ctrl.Stream(samples)
	if !ok || sn < len(samples) {
		n.ended = true
		n.err = n.ctrl.Err()
		silence(samples[sn:])
	}
	return len(samples), true
}

func (n *node) Err() error {
	return nil
}

func silence(samples [][2]float64) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
}
