package audio

import (
	"sync"

	"github.com/faiface/beep"
)

const testRate = beep.SampleRate(1000)

// memOutput renders into memory instead of a device
type memOutput struct {
	mu      sync.Mutex
	mixer   beep.Mixer
	rate    beep.SampleRate
	inits   int
	clears  int
	closed  bool
	initErr error
}

func (o *memOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	if o.initErr != nil {
		return o.initErr
	}
	o.rate = sampleRate
	o.inits++
	return nil
}

func (o *memOutput) Play(s ...beep.Streamer) {
	o.mu.Lock()
	o.mixer.Add(s...)
	o.mu.Unlock()
}

func (o *memOutput) Clear() {
	o.mu.Lock()
	o.mixer.Clear()
	o.clears++
	o.mu.Unlock()
}

func (o *memOutput) Lock()   { o.mu.Lock() }
func (o *memOutput) Unlock() { o.mu.Unlock() }
func (o *memOutput) Close()  { o.closed = true }

// render pulls n samples through everything playing on the output
func (o *memOutput) render(n int) [][2]float64 {
	buf := make([][2]float64, n)
	o.mu.Lock()
	o.mixer.Stream(buf)
	o.mu.Unlock()
	return buf
}

func (o *memOutput) players() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mixer.Len()
}

// constant returns n frames of value v at rate
func constant(rate beep.SampleRate, n int, v float64) *beep.Buffer {
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})))
	return buf
}
