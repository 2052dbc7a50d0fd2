package audio

import (
	"math"
	"time"
)

// Envelope is a precomputed volume automation for one item: a linear rise
// from 0 to 1 over the first fade and a linear fall to 0 over the last fade.
// Where the two windows overlap the lower curve wins.
type Envelope struct {
	length time.Duration
	fade   time.Duration
}

// NewEnvelope creates the automation for an item of the given length
func NewEnvelope(length, fade time.Duration) *Envelope {
	return &Envelope{length: length, fade: fade}
}

// At returns the gain at pos
func (e *Envelope) At(pos time.Duration) float64 {
	if e.fade <= 0 {
		return 1
	}
	in := float64(pos) / float64(e.fade)
	out := float64(e.length-pos) / float64(e.fade)
	return math.Max(0, math.Min(1, math.Min(in, out)))
}
