package route

import (
	"fmt"
	"strings"

	"github.com/kbukum/routekit/errors"
	"github.com/kbukum/routekit/source"
)

// Builder assembles a Route. The zero value is not usable; call New.
type Builder struct {
	id     string
	idSet  bool
	stages []Stage
	err    error
}

// New returns an empty route builder.
func New() *Builder {
	return &Builder{}
}

// Craft is an alias for New.
func Craft() *Builder {
	return New()
}

func (b *Builder) fail(format string, args ...any) *Builder {
	if b.err == nil {
		err := errors.Configuration(format, args...)
		if b.id != "" {
			err.WithDetail("route_id", b.id)
		}
		b.err = err
	}
	return b
}

func (b *Builder) hasSink() bool {
	return len(b.stages) > 0 && b.stages[len(b.stages)-1].Kind == KindSink
}

// ID sets the route id. It may be set only once.
func (b *Builder) ID(id string) *Builder {
	if b.idSet {
		return b.fail("route id already set to %q", b.id)
	}
	b.id = strings.TrimSpace(id)
	b.idSet = true
	return b
}

// From sets the source. It must be the first stage and appear once.
func (b *Builder) From(src source.Source) *Builder {
	switch {
	case src == nil:
		return b.fail("source must not be nil")
	case len(b.stages) > 0 && b.stages[0].Kind == KindSource:
		return b.fail("route already has a source")
	case len(b.stages) > 0:
		return b.fail("source must be the first stage")
	}
	st := newStage(KindSource, "source", src)
	st.Source = src
	b.stages = append(b.stages, st)
	return b
}

// Enrich appends a stage that fetches external data.
func (b *Builder) Enrich(p Processor) *Builder {
	return b.step(KindEnrich, p)
}

// Transform appends a synchronous transform stage.
func (b *Builder) Transform(p Processor) *Builder {
	return b.step(KindTransform, p)
}

func (b *Builder) step(kind Kind, p Processor) *Builder {
	if !b.ready(kind) {
		return b
	}
	if p == nil {
		return b.fail("%s processor must not be nil", kind)
	}
	st := newStage(kind, fmt.Sprintf("%s-%d", kind, len(b.stages)), p)
	if v, ok := p.(Validator); ok {
		if err := v.Validate(); err != nil {
			return b.fail("%s: %v", st.Name, err)
		}
	}
	st.Processor = p
	b.stages = append(b.stages, st)
	return b
}

// To appends the terminal sink.
func (b *Builder) To(s Sink) *Builder {
	if !b.ready(KindSink) {
		return b
	}
	if s == nil {
		return b.fail("sink must not be nil")
	}
	st := newStage(KindSink, "sink", s)
	st.Sink = s
	b.stages = append(b.stages, st)
	return b
}

// ready reports whether a stage of kind may be appended now.
func (b *Builder) ready(kind Kind) bool {
	if b.err != nil {
		return false
	}
	if len(b.stages) == 0 {
		b.fail("%s stage added before a source", kind)
		return false
	}
	if b.hasSink() {
		if kind == KindSink {
			b.fail("route already has a sink")
		} else {
			b.fail("%s stage added after the sink", kind)
		}
		return false
	}
	return true
}

// Build validates the composition and returns the immutable route.
func (b *Builder) Build() (*Route, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.id == "" {
		return nil, errors.Configuration("route id is required")
	}
	if len(b.stages) == 0 {
		return nil, errors.Configuration("route %q has no stages", b.id).WithDetail("route_id", b.id)
	}
	for i := 1; i < len(b.stages); i++ {
		prev, next := b.stages[i-1], b.stages[i]
		if prev.Out == nil || next.In == nil {
			continue
		}
		if !prev.Out.AssignableTo(next.In) {
			return nil, errors.Configuration("route %q: %s produces %s but %s expects %s",
				b.id, prev.Name, prev.Out, next.Name, next.In).
				WithDetails(map[string]any{"route_id": b.id, "stage": next.Name})
		}
	}

	stages := make([]Stage, len(b.stages))
	copy(stages, b.stages)
	return &Route{id: b.id, stages: stages}, nil
}

// MustBuild is Build that panics on error, for package-level route exports.
func (b *Builder) MustBuild() *Route {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
