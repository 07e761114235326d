package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidationPending is returned by a guarded Lookup while an earlier
// invalidation has not reached the backing cache.
var ErrInvalidationPending = errors.New("list cache invalidation pending")

type guardedListCache struct {
	inner ListCache
	owed  atomic.Int64
}

// Guard wraps c so a failed Invalidate is not lost. Until an invalidation
// succeeds, Lookup retries it and reports ErrInvalidationPending instead of
// serving entries, and Store is skipped. Share one guarded cache between
// every writer of the same backing store.
func Guard(c ListCache) ListCache {
	if g, ok := c.(*guardedListCache); ok {
		return g
	}
	return &guardedListCache{inner: c}
}

var _ ListCache = (*guardedListCache)(nil)

func (g *guardedListCache) Lookup(ctx context.Context, kind string, dest any) (bool, int64, error) {
	if err := g.settle(ctx); err != nil {
		return false, 0, err
	}
	return g.inner.Lookup(ctx, kind, dest)
}

func (g *guardedListCache) Store(ctx context.Context, kind string, version int64, value any) error {
	if g.owed.Load() > 0 {
		return nil
	}
	return g.inner.Store(ctx, kind, version, value)
}

func (g *guardedListCache) Invalidate(ctx context.Context) error {
	n := g.owed.Load()
	if err := g.inner.Invalidate(ctx); err != nil {
		g.owed.Add(1)
		return err
	}
	g.owed.CompareAndSwap(n, 0)
	return nil
}

// settle retries an owed invalidation.
func (g *guardedListCache) settle(ctx context.Context) error {
	n := g.owed.Load()
	if n == 0 {
		return nil
	}
	if err := g.inner.Invalidate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidationPending, err)
	}
	g.owed.CompareAndSwap(n, 0)
	return nil
}
