package source

import "context"

// Channel creates a source reading values from ch until it is closed.
// It is unbounded while ch stays open; stopping the context ends admission.
func Channel[T any](ch <-chan T) Source {
	return &typed[T]{open: func(context.Context) (Iterator[T], error) {
		return &channelIter[T]{ch: ch}, nil
	}}
}

type channelIter[T any] struct {
	ch <-chan T
}

func (it *channelIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	select {
	case v, open := <-it.ch:
		if !open {
			return zero, false, nil
		}
		return v, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (it *channelIter[T]) Close() error { return nil }
