package crossfade

import (
	"context"
	"sync"
	"time"

	"github.com/jscyril/crossfade_player/api"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
)

type fakeSource struct {
	name string
	dur  time.Duration
}

func (s fakeSource) Name() string            { return s.name }
func (s fakeSource) Duration() time.Duration { return s.dur }

type fakeVoice struct {
	mu       sync.Mutex
	src      Source
	state    api.VoiceState
	gain     float64
	pos      time.Duration
	playErr  error
	err      error
	plays    int
	releases int
}

func (v *fakeVoice) Bind(src Source) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == api.VoicePlaying {
		return playerrors.ErrVoiceBusy
	}
	v.src = src
	v.pos = 0
	return nil
}

func (v *fakeVoice) Play() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.src == nil {
		return playerrors.ErrVoiceUnbound
	}
	if v.playErr != nil {
		return v.playErr
	}
	v.state = api.VoicePlaying
	v.plays++
	return nil
}

func (v *fakeVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = api.VoiceStopped
}

func (v *fakeVoice) SetGain(g float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gain = g
}

func (v *fakeVoice) Gain() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain
}

func (v *fakeVoice) Position() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

func (v *fakeVoice) State() api.VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *fakeVoice) Release() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == api.VoicePlaying {
		return playerrors.ErrVoiceBusy
	}
	if v.src != nil {
		v.src = nil
		v.releases++
	}
	return nil
}

func (v *fakeVoice) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// advance moves a playing voice forward by d
func (v *fakeVoice) advance(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == api.VoicePlaying {
		v.pos += d
	}
}

// observerVoice reports position through a registered callback
type observerVoice struct {
	*fakeVoice
	mu      sync.Mutex
	next    ObserverToken
	fn      func(time.Duration)
	removed []ObserverToken
}

func (v *observerVoice) AddPeriodicObserver(interval time.Duration, fn func(time.Duration)) (ObserverToken, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.fn != nil {
		return 0, playerrors.ErrObserverActive
	}
	v.next++
	v.fn = fn
	return v.next, nil
}

func (v *observerVoice) RemoveObserver(token ObserverToken) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.next || v.fn == nil {
		return
	}
	v.fn = nil
	v.removed = append(v.removed, token)
}

func (v *observerVoice) observer() func(time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fn
}

type fakeBackend struct {
	startErr  error
	observers bool
	starts    int
	stops     int
	closed    bool
	cfg       EngineConfig
	voices    []*fakeVoice
	observed  []*observerVoice
}

func (b *fakeBackend) Start(cfg EngineConfig) error {
	if b.startErr != nil {
		return b.startErr
	}
	b.cfg = cfg
	b.starts++
	return nil
}

func (b *fakeBackend) Stop() { b.stops++ }

func (b *fakeBackend) NewVoice() Voice {
	v := &fakeVoice{}
	b.voices = append(b.voices, v)
	if b.observers {
		ov := &observerVoice{fakeVoice: v}
		b.observed = append(b.observed, ov)
		return ov
	}
	return v
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

type fakeResolver struct {
	durations map[string]time.Duration
	calls     int
}

func (r *fakeResolver) Resolve(ctx context.Context, tracks []api.TrackDescriptor) ([]Source, error) {
	r.calls++
	sources := make([]Source, 0, len(tracks))
	for _, t := range tracks {
		d, ok := r.durations[t.ResourceID]
		if !ok {
			return nil, playerrors.NewResourceLoadError(t.Name, playerrors.ErrTrackNotFound)
		}
		sources = append(sources, fakeSource{name: t.Name, dur: d})
	}
	return sources, nil
}

// blockingResolver holds Resolve until release is closed. With honorCtx it
// also returns early when the load context is cancelled.
type blockingResolver struct {
	fakeResolver
	entered  chan struct{}
	release  chan struct{}
	honorCtx bool
}

func newBlockingResolver(honorCtx bool, durations map[string]time.Duration) *blockingResolver {
	return &blockingResolver{
		fakeResolver: fakeResolver{durations: durations},
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
		honorCtx:     honorCtx,
	}
}

func (r *blockingResolver) Resolve(ctx context.Context, tracks []api.TrackDescriptor) ([]Source, error) {
	close(r.entered)
	if r.honorCtx {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		<-r.release
	}
	return r.fakeResolver.Resolve(ctx, tracks)
}
