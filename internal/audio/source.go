package audio

import (
	"fmt"
	"time"

	"github.com/faiface/beep"
)

// Source is a playable asset with a known duration. Every Open returns an
// independent stream positioned at the start, so one source can be bound to
// both voices at once.
type Source struct {
	name     string
	duration time.Duration
	format   beep.Format
	open     func() (beep.StreamSeekCloser, error)
}

// Name returns the display name of the track
func (s *Source) Name() string { return s.name }

// Duration returns the total playing time
func (s *Source) Duration() time.Duration { return s.duration }

// Format returns the decoded sample format
func (s *Source) Format() beep.Format { return s.format }

// Open returns a fresh stream from position zero
func (s *Source) Open() (beep.StreamSeekCloser, error) {
	return s.open()
}

// NewBufferSource wraps fully decoded audio held in memory
func NewBufferSource(name string, buf *beep.Buffer) *Source {
	return &Source{
		name:     name,
		duration: buf.Format().SampleRate.D(buf.Len()),
		format:   buf.Format(),
		open: func() (beep.StreamSeekCloser, error) {
			return nopCloser{buf.Streamer(0, buf.Len())}, nil
		},
	}
}

// NewFileSource probes path for its format and length and returns a source
// that decodes the file again on every Open
func NewFileSource(name, path string) (*Source, error) {
	streamer, format, err := openTrack(path)
	if err != nil {
		return nil, err
	}
	length := streamer.Len()
	streamer.Close()
	if length <= 0 {
		return nil, fmt.Errorf("%s: no audio frames", path)
	}

	return &Source{
		name:     name,
		duration: format.SampleRate.D(length),
		format:   format,
		open: func() (beep.StreamSeekCloser, error) {
			s, _, err := openTrack(path)
			return s, err
		},
	}, nil
}

type nopCloser struct {
	beep.StreamSeeker
}

func (nopCloser) Close() error { return nil }
