package readmodel

import (
	"context"
	"fmt"
)

// Mutate runs a write through the optimistic protocol: optimistic is shown
// to writer while run executes, the value run returns is confirmed on
// success, and the speculative value is rolled back on failure.
func Mutate[T any](ctx context.Context, cache *Cache, key Key, writer ClientID, optimistic T, run func(ctx context.Context) (T, error)) (T, error) {
	version := cache.UpdateOptimistically(key, writer, optimistic)

	confirmed, err := run(ctx)
	if err != nil {
		cache.Rollback(key, version)
		var zero T
		return zero, err
	}

	cache.Confirm(key, version, confirmed)
	return confirmed, nil
}

// MutateView is Mutate with the optimistic value derived from the view
// writer currently sees for key.
func MutateView[T any](ctx context.Context, cache *Cache, key Key, writer ClientID, apply func(T) T, run func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	current, err := cache.Get(ctx, key, writer)
	if err != nil {
		return zero, err
	}
	view, ok := current.(T)
	if !ok {
		return zero, fmt.Errorf("readmodel: %s holds %T, want %T", key, current, zero)
	}
	return Mutate(ctx, cache, key, writer, apply(view), run)
}
