package crossfade

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// handle is a cancellable scheduled callback. cancel may be called any number
// of times, on a nil handle too. A callback that fires after cancellation
// must find its handle no longer installed and do nothing.
type handle struct {
	once sync.Once
	stop func()
}

func (h *handle) cancel() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.stop != nil {
			h.stop()
		}
	})
}

// tick calls fn every d until the returned stop func is called. stop does
// not wait for an fn call already in progress.
func tick(c clock.Clock, d time.Duration, fn func()) (stop func()) {
	t := c.Ticker(d)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	return func() {
		t.Stop()
		close(done)
	}
}
