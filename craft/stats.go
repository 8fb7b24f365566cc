package craft

import "sync/atomic"

// RouteStats is a snapshot of one route's counters.
type RouteStats struct {
	RouteID   string `json:"route_id"`
	Admitted  int64  `json:"admitted"`
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
	Abandoned int64  `json:"abandoned"`
	InFlight  int64  `json:"in_flight"`
	// Admitting is false once the source is exhausted, failed or stopped.
	Admitting bool `json:"admitting"`
	// LastError is the most recent exchange or source error message.
	LastError string `json:"last_error,omitempty"`
}

type counters struct {
	admitted  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	abandoned atomic.Int64
	inFlight  atomic.Int64
	admitting atomic.Bool
	lastError atomic.Pointer[string]
}

func (c *counters) setError(err error) {
	msg := err.Error()
	c.lastError.Store(&msg)
}

func (c *counters) snapshot(routeID string) RouteStats {
	s := RouteStats{
		RouteID:   routeID,
		Admitted:  c.admitted.Load(),
		Completed: c.completed.Load(),
		Failed:    c.failed.Load(),
		Abandoned: c.abandoned.Load(),
		InFlight:  c.inFlight.Load(),
		Admitting: c.admitting.Load(),
	}
	if msg := c.lastError.Load(); msg != nil {
		s.LastError = *msg
	}
	return s
}
