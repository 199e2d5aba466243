package ecs

import (
	"context"
	"sync/atomic"
)

type collectionKey struct{}

var defaultCollection atomic.Pointer[EntityCollection]

func init() {
	defaultCollection.Store(NewEntityCollection())
}

// Default returns the process-wide collection used when a context carries no
// binding.
func Default() *EntityCollection { return defaultCollection.Load() }

// WithCollection returns a context in which the helper functions operate on c.
// The parent context keeps its own binding, so leaving the scope restores it.
func WithCollection(ctx context.Context, c *EntityCollection) context.Context {
	return context.WithValue(ctx, collectionKey{}, c)
}

// Current returns the collection bound to ctx, or Default.
func Current(ctx context.Context) *EntityCollection {
	if ctx != nil {
		if c, ok := ctx.Value(collectionKey{}).(*EntityCollection); ok && c != nil {
			return c
		}
	}
	return Default()
}

// Scoped runs fn with c bound. The binding ends when fn returns or panics.
func Scoped(ctx context.Context, c *EntityCollection, fn func(ctx context.Context)) {
	fn(WithCollection(ctx, c))
}

// ScopedEntityCollection swaps the process default collection for its
// lifetime. Close restores the previous default; pair it with defer.
//
// Guards must be closed in reverse order of creation. Goroutines that run
// concurrently should bind their own collection with WithCollection instead.
type ScopedEntityCollection struct {
	prev   *EntityCollection
	closed atomic.Bool
}

func NewScopedEntityCollection(c *EntityCollection) *ScopedEntityCollection {
	return &ScopedEntityCollection{prev: defaultCollection.Swap(c)}
}

func (s *ScopedEntityCollection) Close() {
	if s.closed.CompareAndSwap(false, true) {
		defaultCollection.Store(s.prev)
	}
}
