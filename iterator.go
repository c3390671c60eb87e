package epicmix

import (
	"context"
	"iter"
)

// listFunc fetches the parent items to walk.
type listFunc[P any] func(context.Context) ([]P, error)

// childFunc fetches the items T belonging to one parent P.
type childFunc[P, T any] func(context.Context, P) ([]T, error)

// iterate returns an iterator over the children of every parent, in order.
// Iteration stops at the first error.
func iterate[P, T any](ctx context.Context, list listFunc[P], fetch childFunc[P, T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		parents, err := list(ctx)
		if err != nil {
			yield(*new(T), err)
			return
		}

		for _, parent := range parents {
			items, err := fetch(ctx, parent)
			if err != nil {
				yield(*new(T), err)
				return
			}

			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}
