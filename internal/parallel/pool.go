// Package parallel provides a join-all fan-out for independent tasks.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run calls fn once per item, concurrently, and waits for every call to
// return. Results are returned in input order. A limit of zero or less
// starts one goroutine per item; a positive limit caps concurrency.
//
// fn reports failure through its result, so one item failing never
// cancels or skips its siblings.
func Run[T any, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) R) []R {
	if len(items) == 0 {
		return nil
	}

	results := make([]R, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			results[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	return results
}
