package source

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/kbukum/routekit/exchange"
)

// TimerOptions configures a Timer source.
type TimerOptions struct {
	// Interval between ticks. Required.
	Interval time.Duration
	// Limit stops the source after this many ticks. Zero means unbounded.
	Limit int
	// Immediate emits the first tick on open instead of after one interval.
	Immediate bool
}

// Timer creates a source emitting the tick number (starting at 1) every
// interval. Without a Limit it never exhausts on its own.
func Timer(opts TimerOptions) Source {
	return &timerSource{opts: opts}
}

type timerSource struct {
	opts TimerOptions
}

// OutType reports that ticks are ints.
func (s *timerSource) OutType() reflect.Type { return reflect.TypeFor[int]() }

func (s *timerSource) Open(context.Context) (Iterator[*exchange.Exchange], error) {
	if s.opts.Interval <= 0 {
		return nil, fmt.Errorf("timer: interval must be positive (got %s)", s.opts.Interval)
	}
	return &timerIter{opts: s.opts, ticker: time.NewTicker(s.opts.Interval)}, nil
}

type timerIter struct {
	opts   TimerOptions
	ticker *time.Ticker
	count  int
}

func (it *timerIter) Next(ctx context.Context) (*exchange.Exchange, bool, error) {
	if it.opts.Limit > 0 && it.count >= it.opts.Limit {
		return nil, false, nil
	}
	if it.count > 0 || !it.opts.Immediate {
		select {
		case <-it.ticker.C:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	it.count++
	return exchange.New(it.count).WithHeader(exchange.HeaderTimerTick, it.count), true, nil
}

func (it *timerIter) Close() error {
	it.ticker.Stop()
	return nil
}
