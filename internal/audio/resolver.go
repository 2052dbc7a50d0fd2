package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/faiface/beep"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/crossfade"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var _ crossfade.Resolver = (*Resolver)(nil)

// LoadMode selects how resolved tracks are held
type LoadMode int

const (
	// Buffered decodes every track into memory at session start
	Buffered LoadMode = iota
	// Streamed decodes from disk while playing
	Streamed
)

// Resolver loads catalog descriptors from a tracks directory
type Resolver struct {
	dir     string
	mode    LoadMode
	workers int
	log     *slog.Logger
}

// NewResolver creates a resolver for files under dir
func NewResolver(dir string, mode LoadMode, workers int, log *slog.Logger) *Resolver {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		dir:     dir,
		mode:    mode,
		workers: workers,
		log:     log.With("component", "resolver"),
	}
}

// Resolve loads every descriptor in parallel, keeping queue order. The first
// failure cancels the remaining loads and is returned as a ResourceLoadError.
func (r *Resolver) Resolve(ctx context.Context, tracks []api.TrackDescriptor) ([]crossfade.Source, error) {
	sources := make([]crossfade.Source, len(tracks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, t := range tracks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return playerrors.NewResourceLoadError(t.Name, err)
			}
			src, err := r.Load(t)
			if err != nil {
				return err
			}
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Error("resolve queue", "error", err)
		return nil, err
	}

	r.log.Debug("queue resolved", "tracks", len(sources))
	return sources, nil
}

// Load resolves a single descriptor
func (r *Resolver) Load(t api.TrackDescriptor) (*Source, error) {
	name := t.FileName()
	if !supportsKind(t.Kind) {
		return nil, playerrors.NewResourceLoadError(t.Name,
			fmt.Errorf("%w: %q", playerrors.ErrInvalidFormat, t.Kind))
	}
	path := filepath.Join(r.dir, filepath.FromSlash(name))

	var (
		src *Source
		err error
	)
	switch r.mode {
	case Streamed:
		src, err = NewFileSource(t.Name, path)
	default:
		src, err = loadBuffer(t.Name, path)
	}
	if err != nil {
		return nil, playerrors.NewResourceLoadError(t.Name, err)
	}

	r.log.Debug("track loaded", "track", t.Name, "duration", src.Duration())
	return src, nil
}

func loadBuffer(name, path string) (*Source, error) {
	streamer, format, err := openTrack(path)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%s: no audio frames", path)
	}
	return NewBufferSource(name, buf), nil
}
