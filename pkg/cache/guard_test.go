package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyListCache hits whenever it holds an entry and fails Invalidate on demand.
type flakyListCache struct {
	version       int64
	stored        map[string]int64
	invalidateErr error
	stores        int
}

func newFlakyListCache() *flakyListCache {
	return &flakyListCache{stored: make(map[string]int64)}
}

func (c *flakyListCache) Lookup(_ context.Context, kind string, dest any) (bool, int64, error) {
	v, ok := c.stored[kind]
	return ok && v == c.version, c.version, nil
}

func (c *flakyListCache) Store(_ context.Context, kind string, version int64, _ any) error {
	c.stores++
	c.stored[kind] = version
	return nil
}

func (c *flakyListCache) Invalidate(context.Context) error {
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.version++
	return nil
}

func TestGuard_PassesThroughWhenHealthy(t *testing.T) {
	inner := newFlakyListCache()
	c := Guard(inner)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "owners", 0, nil))
	hit, version, err := c.Lookup(ctx, "owners", nil)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, int64(0), version)

	require.NoError(t, c.Invalidate(ctx))
	hit, version, err = c.Lookup(ctx, "owners", nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), version)
}

func TestGuard_FailedInvalidateBypassesCacheUntilRetried(t *testing.T) {
	inner := newFlakyListCache()
	c := Guard(inner)
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "owners", 0, nil))

	inner.invalidateErr = errors.New("connection refused")
	require.Error(t, c.Invalidate(ctx))

	hit, _, err := c.Lookup(ctx, "owners", nil)
	assert.ErrorIs(t, err, ErrInvalidationPending)
	assert.False(t, hit)

	require.NoError(t, c.Store(ctx, "owners", 0, nil))
	assert.Equal(t, 1, inner.stores, "store while an invalidation is owed must be skipped")

	inner.invalidateErr = nil
	hit, version, err := c.Lookup(ctx, "owners", nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), version)

	require.NoError(t, c.Store(ctx, "owners", version, nil))
	hit, _, err = c.Lookup(ctx, "owners", nil)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestGuard_LaterInvalidateSettlesDebt(t *testing.T) {
	inner := newFlakyListCache()
	c := Guard(inner)
	ctx := context.Background()

	inner.invalidateErr = errors.New("timeout")
	require.Error(t, c.Invalidate(ctx))
	require.Error(t, c.Invalidate(ctx))

	inner.invalidateErr = nil
	require.NoError(t, c.Invalidate(ctx))

	hit, _, err := c.Lookup(ctx, "owners", nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), inner.version, "settled debt must not trigger another bump")
}

func TestGuard_IsIdempotent(t *testing.T) {
	c := Guard(NewNoopListCache())
	assert.Same(t, c, Guard(c))
}
