package craft

import (
	"context"
	"sync"
)

// Handle tracks one run of a Context. It is done when every route's source
// is exhausted and all admitted exchanges have finished, or when Stop
// completes, whichever happens first.
type Handle struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) finish(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

// Done is closed when the run is over.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the shutdown report once Done is closed: nil after a natural
// finish or a clean stop, a SHUTDOWN_TIMEOUT error if Stop abandoned work.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the run is over or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
