package audio

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is the device the backends render to. Play and Clear take the lock
// themselves and must not be called while holding it.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
	Close()
}

// SpeakerOutput plays through the system audio device
type SpeakerOutput struct{}

// NewSpeakerOutput returns the speaker-backed output
func NewSpeakerOutput() *SpeakerOutput {
	return &SpeakerOutput{}
}

func (SpeakerOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (SpeakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }

func (SpeakerOutput) Clear() { speaker.Clear() }

func (SpeakerOutput) Lock() { speaker.Lock() }

func (SpeakerOutput) Unlock() { speaker.Unlock() }

func (SpeakerOutput) Close() { speaker.Close() }
