package route

import "github.com/kbukum/routekit/source"

// Route is an immutable, validated chain of stages.
type Route struct {
	id     string
	stages []Stage
}

// ID returns the route id.
func (r *Route) ID() string { return r.id }

// Stages returns a copy of all stages, source first.
func (r *Route) Stages() []Stage {
	out := make([]Stage, len(r.stages))
	copy(out, r.stages)
	return out
}

// Source returns the route's source.
func (r *Route) Source() source.Source { return r.stages[0].Source }

// Steps returns the stages run for each exchange after the source, the
// sink included.
func (r *Route) Steps() []Stage {
	return r.Stages()[1:]
}

// Sink returns the terminal sink stage, if any.
func (r *Route) Sink() (Stage, bool) {
	last := r.stages[len(r.stages)-1]
	return last, last.Kind == KindSink
}
