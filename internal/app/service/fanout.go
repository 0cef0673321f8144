package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// fanOut corre fn para cada item en paralelo y espera a todos. fn no devuelve
// error: cada resultado (éxito o falla) queda en su posición. limit <= 0 = sin tope.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) R) []R {
	out := make([]R, len(items))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			out[i] = fn(ctx, it)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
