package crossfade

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jscyril/crossfade_player/api"
	"github.com/jscyril/crossfade_player/internal/playlist"
	playerrors "github.com/jscyril/crossfade_player/pkg/errors"
	"github.com/jscyril/crossfade_player/pkg/events"
)

// Defaults used when Options leaves a field zero
const (
	DefaultPollInterval = time.Second
	DefaultRampTick     = time.Second
	DefaultMinGain      = 0.01
)

// Options tunes a Scheduler
type Options struct {
	PollInterval time.Duration
	RampTick     time.Duration
	// MinGain is the gain a voice starts at. It is kept above zero so a
	// freshly started voice never produces a mute transient.
	MinGain float64
	Session api.AudioSession
	Clock   clock.Clock
	Bus     *events.EventBus
	Logger  *slog.Logger
}

func (o *Options) setDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.RampTick <= 0 {
		o.RampTick = DefaultRampTick
	}
	if o.MinGain <= 0 || o.MinGain >= 1 {
		o.MinGain = DefaultMinGain
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// ramp is one running gain ramp. out is nil for the lead-in of the first
// track, which fades in without a transition.
type ramp struct {
	h        *handle
	in       Voice
	out      Voice
	outStart float64
	k        int
}

// Scheduler plays a looping queue over two voices, crossfading from one to
// the other as each track nears its end. All state changes happen under mu,
// including those made by the poll and ramp callbacks.
type Scheduler struct {
	backend  Backend
	resolver Resolver
	opts     Options
	log      *slog.Logger

	mu                 sync.Mutex
	voices             [2]Voice
	bound              [2]Source
	queue              *playlist.Queue[Source]
	active             api.Slot
	fade               time.Duration
	state              api.SessionState
	transitionInFlight bool
	engineRunning      bool
	poll               *handle
	ramp               *ramp
	loading            bool
	cancelLoad         context.CancelFunc
	loadStopped        bool
	err                error
	done               chan struct{}
	doneClosed         bool
}

// NewScheduler creates a scheduler and allocates its two voices
func NewScheduler(backend Backend, resolver Resolver, opts Options) *Scheduler {
	opts.setDefaults()
	s := &Scheduler{
		backend:  backend,
		resolver: resolver,
		opts:     opts,
		log:      opts.Logger.With("component", "scheduler"),
		queue:    playlist.NewQueue[Source](nil),
		state:    api.StateIdle,
		done:     make(chan struct{}),
	}
	for i := range s.voices {
		s.voices[i] = backend.NewVoice()
	}
	return s
}

// Start resolves tracks, starts the engine and begins playing tracks[0] on
// slot A. It fails with a ConfigurationError before loading anything, with a
// ResourceLoadError if any track cannot be loaded, or with a
// PlaybackStartError if the engine or the first voice cannot start. On
// failure no voice is left playing.
//
// Tracks are resolved without holding the scheduler lock, so Status and Stop
// stay responsive while a queue loads. Stop during loading cancels the load
// and Start returns a ResourceLoadError.
func (s *Scheduler) Start(ctx context.Context, tracks []api.TrackDescriptor, fade time.Duration) error {
	s.mu.Lock()
	if s.isActive() || s.loading {
		s.mu.Unlock()
		return playerrors.ErrSessionActive
	}
	if err := s.checkStart(tracks, fade); err != nil {
		s.mu.Unlock()
		return err
	}
	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.loading = true
	s.loadStopped = false
	s.cancelLoad = cancel
	s.mu.Unlock()

	sources, err := s.resolver.Resolve(loadCtx, tracks)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.cancelLoad = nil

	if err == nil && s.loadStopped {
		err = context.Canceled
	}
	if err != nil {
		if !errors.Is(err, playerrors.ErrResourceLoad) {
			err = playerrors.NewResourceLoadError("", err)
		}
		s.log.Error("queue resolution failed", "error", err)
		return err
	}

	s.queue.Set(sources)
	s.active = api.SlotA
	s.fade = fade
	s.transitionInFlight = false
	s.err = nil
	if s.doneClosed {
		s.done = make(chan struct{})
		s.doneClosed = false
	}

	if err := s.backend.Start(EngineConfig{Session: s.opts.Session, FadeDuration: fade}); err != nil {
		err = asPlaybackStart("engine start", "", err)
		s.log.Error("engine start failed", "error", err)
		s.teardown()
		return err
	}
	s.engineRunning = true

	first := sources[0]
	v := s.voices[api.SlotA]
	if err := s.startVoice(api.SlotA, first); err != nil {
		s.log.Error("first voice failed to start", "track", first.Name(), "error", err)
		s.teardown()
		return err
	}

	s.state = api.StatePlaying
	s.startRamp(v, nil, 0)
	s.watch(v)

	s.log.Info("session started",
		"tracks", len(sources), "fade", fade, "track", first.Name())
	s.publish(api.EventSessionStarted, api.Transition{To: api.SlotA, Track: first.Name()})
	return nil
}

// Stop stops both voices, cancels every pending callback and enters Stopped.
// It is safe to call from any state and any number of times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		s.loadStopped = true
		s.cancelLoad()
	}
	s.teardown()
}

// Close stops the session and releases the backend
func (s *Scheduler) Close() error {
	s.Stop()
	return s.backend.Close()
}

// Done is closed when the current session ends, by Stop or by a runtime
// failure
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err returns the runtime failure that ended the last session, if any
func (s *Scheduler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State returns the session state
func (s *Scheduler) State() api.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns a snapshot of the session and both voice slots
func (s *Scheduler) Status() api.SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := api.SchedulerStatus{
		State:              s.state,
		Index:              s.queue.Index(),
		QueueLen:           s.queue.Len(),
		ActiveSlot:         s.active,
		FadeDuration:       s.fade,
		TransitionInFlight: s.transitionInFlight,
	}
	for i, v := range s.voices {
		vs := api.VoiceStatus{
			Slot:     api.Slot(i),
			State:    v.State(),
			Gain:     v.Gain(),
			Position: v.Position(),
		}
		if src := s.bound[i]; src != nil {
			vs.Track = src.Name()
			vs.Duration = src.Duration()
		}
		st.Voices[i] = vs
	}
	return st
}

// RampTick returns the gain ramp interval; fades must be whole multiples
// of it
func (s *Scheduler) RampTick() time.Duration {
	return s.opts.RampTick
}

// checkStart validates Start arguments before anything is loaded
func (s *Scheduler) checkStart(tracks []api.TrackDescriptor, fade time.Duration) error {
	if len(tracks) == 0 {
		return playerrors.NewConfigurationError("queue", playerrors.ErrEmptyQueue)
	}
	if fade <= 0 {
		return playerrors.NewConfigurationError("fade", playerrors.ErrInvalidFade)
	}
	if fade%s.opts.RampTick != 0 {
		return playerrors.NewConfigurationError("fade", playerrors.ErrUnevenFade)
	}
	return nil
}

func (s *Scheduler) isActive() bool {
	return s.state == api.StatePlaying || s.state == api.StateTransitioning
}

// startVoice binds src to slot and plays it from zero at minimum gain
func (s *Scheduler) startVoice(slot api.Slot, src Source) error {
	v := s.voices[slot]
	if err := v.Bind(src); err != nil {
		return asPlaybackStart("bind", src.Name(), err)
	}
	s.bound[slot] = src
	v.SetGain(s.opts.MinGain)
	if err := v.Play(); err != nil {
		return asPlaybackStart("play", src.Name(), err)
	}
	return nil
}

// watch installs the position poll for v. Voices that report their own
// position are observed; others are polled on the scheduler clock.
func (s *Scheduler) watch(v Voice) {
	h := &handle{}
	s.poll = h

	if obs, ok := v.(PositionObserver); ok {
		token, err := obs.AddPeriodicObserver(s.opts.PollInterval, func(pos time.Duration) {
			s.onPoll(h, pos)
		})
		if err == nil {
			h.stop = func() { obs.RemoveObserver(token) }
			return
		}
		s.log.Warn("periodic observer unavailable, polling instead", "error", err)
	}

	h.stop = tick(s.opts.Clock, s.opts.PollInterval, func() {
		s.onPoll(h, v.Position())
	})
}

// onPoll is the level-triggered boundary check. It fires at most one
// transition per track: the poll is cancelled as the transition begins and
// any late call carrying the old handle is dropped.
func (s *Scheduler) onPoll(h *handle, pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h == nil || s.poll != h || s.state != api.StatePlaying || s.transitionInFlight {
		return
	}

	src := s.bound[s.active]
	if err := s.voices[s.active].Err(); err != nil {
		s.fail(playerrors.NewPlayerError("render", src.Name(), err))
		return
	}

	remaining := src.Duration() - pos
	if remaining <= s.fade {
		s.beginTransition()
	}
}

func (s *Scheduler) beginTransition() {
	s.poll.cancel()
	s.poll = nil

	from := s.active
	out := s.voices[from]
	outStart := 1.0
	if s.ramp != nil {
		// The outgoing track is still fading in
		s.ramp.h.cancel()
		s.ramp = nil
		outStart = out.Gain()
	}

	next, _ := s.queue.Next()
	s.active = from.Other()
	if err := s.startVoice(s.active, next); err != nil {
		s.fail(err)
		return
	}

	s.transitionInFlight = true
	s.state = api.StateTransitioning
	s.startRamp(s.voices[s.active], out, outStart)

	s.log.Info("transition started",
		"from", from, "to", s.active, "index", s.queue.Index(), "track", next.Name())
	s.publish(api.EventTransitionStarted, api.Transition{
		From:  from,
		To:    s.active,
		Index: s.queue.Index(),
		Track: next.Name(),
	})
}

func (s *Scheduler) startRamp(in, out Voice, outStart float64) {
	r := &ramp{h: &handle{}, in: in, out: out, outStart: outStart}
	s.ramp = r
	r.h.stop = tick(s.opts.Clock, s.opts.RampTick, func() {
		s.onRampTick(r)
	})
}

// onRampTick moves both gains one step. After k ticks the incoming gain is
// min(1, k*tick/fade) and the outgoing gain max(0, outStart-k*tick/fade).
// The ramp ends exactly when the incoming gain reaches its ceiling.
func (s *Scheduler) onRampTick(r *ramp) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r == nil || s.ramp != r {
		return
	}

	r.k++
	progress := float64(time.Duration(r.k)*s.opts.RampTick) / float64(s.fade)
	r.in.SetGain(math.Min(1, math.Max(s.opts.MinGain, progress)))
	if r.out != nil {
		r.out.SetGain(math.Max(0, r.outStart-progress))
	}
	if progress < 1 {
		return
	}

	r.h.cancel()
	s.ramp = nil
	if r.out == nil {
		s.log.Debug("lead-in complete")
		return
	}

	r.out.Stop()
	from := s.active.Other()
	if err := r.out.Release(); err != nil {
		s.log.Warn("release outgoing voice", "slot", from, "error", err)
	}
	s.bound[from] = nil

	s.transitionInFlight = false
	s.state = api.StatePlaying
	s.watch(r.in)

	s.log.Info("transition complete", "slot", s.active, "index", s.queue.Index())
	s.publish(api.EventTransitionCompleted, api.Transition{
		From:  from,
		To:    s.active,
		Index: s.queue.Index(),
		Track: s.bound[s.active].Name(),
	})
}

// fail ends a running session on a runtime error
func (s *Scheduler) fail(err error) {
	s.err = err
	s.log.Error("session failed", "error", err)
	s.publish(api.EventError, err)
	s.teardown()
}

// teardown cancels both callbacks, stops and releases both voices and stops
// the engine. Every step tolerates having already happened.
func (s *Scheduler) teardown() {
	s.poll.cancel()
	s.poll = nil
	if s.ramp != nil {
		s.ramp.h.cancel()
		s.ramp = nil
	}

	for i, v := range s.voices {
		v.Stop()
		if err := v.Release(); err != nil {
			s.log.Warn("release voice", "slot", api.Slot(i), "error", err)
		}
		s.bound[i] = nil
	}

	if s.engineRunning {
		s.backend.Stop()
		s.engineRunning = false
	}

	wasActive := s.isActive()
	s.state = api.StateStopped
	s.transitionInFlight = false
	if !s.doneClosed {
		close(s.done)
		s.doneClosed = true
	}
	if wasActive {
		s.log.Info("session stopped")
		s.publish(api.EventSessionStopped, nil)
	}
}

func (s *Scheduler) publish(t api.EventType, payload interface{}) {
	if s.opts.Bus == nil {
		return
	}
	s.opts.Bus.Publish(api.AudioEvent{Type: t, Payload: payload})
}

func asPlaybackStart(op, track string, err error) error {
	if errors.Is(err, playerrors.ErrPlaybackStart) {
		return err
	}
	return playerrors.NewPlaybackStartError(op, track, err)
}
