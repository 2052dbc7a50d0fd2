package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/crossfade"
	"github.com/jscyril/crossfade_player/internal/logger"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

// staticResolver hands out prepared sources by resource id
type staticResolver map[string]*Source

func (r staticResolver) Resolve(ctx context.Context, tracks []api.TrackDescriptor) ([]crossfade.Source, error) {
	out := make([]crossfade.Source, len(tracks))
	for i, t := range tracks {
		src, ok := r[t.ResourceID]
		if !ok {
			return nil, playerrors.NewResourceLoadError(t.Name, playerrors.ErrTrackNotFound)
		}
		out[i] = src
	}
	return out, nil
}

// newIdleClock returns a clock whose tickers never fire on their own
func newIdleClock() clock.Clock {
	return clock.NewMock()
}

// writeWAV encodes n frames of value v at rate into dir/name
func writeWAV(t *testing.T, dir, name string, rate beep.SampleRate, n int, v float64) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	buf := constant(rate, n, v)
	if err := wav.Encode(f, buf.Streamer(0, buf.Len()), buf.Format()); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
}

func TestResolveKeepsQueueOrder(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "intro.wav", testRate, 500, 0.5)
	writeWAV(t, dir, "sets/rain.wav", testRate, 2000, 0.5)
	writeWAV(t, dir, "outro.wav", testRate, 1000, 0.5)

	tracks := []api.TrackDescriptor{
		{Name: "Intro", ResourceID: "intro", Kind: "wav"},
		{Name: "Rain", ResourceID: "sets/rain", Kind: "wav"},
		{Name: "Outro", ResourceID: "outro", Kind: "wav"},
	}
	want := []struct {
		name string
		dur  time.Duration
	}{
		{"Intro", 500 * time.Millisecond},
		{"Rain", 2 * time.Second},
		{"Outro", time.Second},
	}

	for _, mode := range []LoadMode{Buffered, Streamed} {
		r := NewResolver(dir, mode, 2, logger.Discard())
		sources, err := r.Resolve(context.Background(), tracks)
		if err != nil {
			t.Fatalf("mode %d: Resolve() error: %v", mode, err)
		}
		if len(sources) != len(want) {
			t.Fatalf("mode %d: got %d sources, want %d", mode, len(sources), len(want))
		}
		for i, w := range want {
			if sources[i].Name() != w.name || sources[i].Duration() != w.dur {
				t.Errorf("mode %d: source %d = %s/%v, want %s/%v",
					mode, i, sources[i].Name(), sources[i].Duration(), w.name, w.dur)
			}
		}
	}
}

func TestResolveFailures(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "ok.wav", testRate, 100, 0.5)
	if err := os.WriteFile(filepath.Join(dir, "garbage.wav"), []byte("not a wav file"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		track api.TrackDescriptor
		also  error
	}{
		{"missing file", api.TrackDescriptor{Name: "Gone", ResourceID: "gone", Kind: "wav"}, os.ErrNotExist},
		{"unsupported kind", api.TrackDescriptor{Name: "Ogg", ResourceID: "ok", Kind: "ogg"}, playerrors.ErrInvalidFormat},
		{"undecodable", api.TrackDescriptor{Name: "Garbage", ResourceID: "garbage", Kind: "wav"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(dir, Buffered, 1, logger.Discard())
			tracks := []api.TrackDescriptor{
				{Name: "OK", ResourceID: "ok", Kind: "wav"},
				tt.track,
			}

			sources, err := r.Resolve(context.Background(), tracks)
			if sources != nil {
				t.Error("a failed resolution should return no sources")
			}
			if !errors.Is(err, playerrors.ErrResourceLoad) {
				t.Errorf("Resolve() error = %v, want ErrResourceLoad", err)
			}
			if tt.also != nil && !errors.Is(err, tt.also) {
				t.Errorf("Resolve() error = %v, want match for %v", err, tt.also)
			}
			var perr *playerrors.PlayerError
			if !errors.As(err, &perr) || perr.Track != tt.track.Name {
				t.Errorf("error should name the failing track %q: %v", tt.track.Name, err)
			}
		})
	}
}

func TestResolveCancelled(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "a.wav", testRate, 100, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResolver(dir, Buffered, 1, logger.Discard())
	_, err := r.Resolve(ctx, []api.TrackDescriptor{{Name: "a", ResourceID: "a", Kind: "wav"}})
	if !errors.Is(err, playerrors.ErrResourceLoad) || !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want cancelled ResourceLoadError", err)
	}
}

func TestFileSourceOpensIndependentStreams(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "a.wav", testRate, 300, 0.5)

	src, err := NewFileSource("a", filepath.Join(dir, "a.wav"))
	if err != nil {
		t.Fatalf("NewFileSource() error: %v", err)
	}

	first, err := src.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	first.Stream(make([][2]float64, 100))

	second, err := src.Open()
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if first.Position() != 100 || second.Position() != 0 {
		t.Errorf("positions = %d/%d, want 100/0", first.Position(), second.Position())
	}
	if src.Format().SampleRate != testRate {
		t.Errorf("Format().SampleRate = %v, want %v", src.Format().SampleRate, testRate)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/music/song.mp3", true},
		{"/music/song.MP3", true},
		{"/music/song.wav", true},
		{"/music/song.flac", true},
		{"/music/song.ogg", false},
		{"/music/song.aac", false},
		{"/music/song", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := IsSupported(tt.path)
			if result != tt.expected {
				t.Errorf("IsSupported(%s) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}
