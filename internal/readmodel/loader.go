package readmodel

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotCached      = errors.New("key not cached")
	ErrUnknownViewKey = errors.New("no loader for key")
)

// Loader fetches the confirmed view for a key from the source of truth.
type Loader interface {
	Load(ctx context.Context, key Key) (any, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, key Key) (any, error)

func (f LoaderFunc) Load(ctx context.Context, key Key) (any, error) { return f(ctx, key) }

// Evicter is implemented by loaders that keep their own copy of a view.
// The cache evicts before reloading a stale key.
type Evicter interface {
	Evict(ctx context.Context, key Key) error
}

// Router dispatches a key to the loader registered for its aggregate type
// and sub-key.
type Router map[string]Loader

func routeName(aggregateType, subKey string) string {
	if subKey == "" {
		return aggregateType
	}
	return aggregateType + "/" + subKey
}

// Handle registers loader for aggregateType keys with subKey.
func (r Router) Handle(aggregateType, subKey string, loader Loader) {
	r[routeName(aggregateType, subKey)] = loader
}

func (r Router) Load(ctx context.Context, key Key) (any, error) {
	l, ok := r[routeName(key.AggregateType, key.SubKey)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownViewKey, key)
	}
	return l.Load(ctx, key)
}
