package source

import "context"

// Simple creates a finite source emitting one exchange per value, in order.
// Each Open starts again from the first value.
func Simple[T any](values ...T) Source {
	return &typed[T]{open: func(context.Context) (Iterator[T], error) {
		return &sliceIter[T]{items: values}, nil
	}}
}

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	if it.index >= len(it.items) {
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }
