package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopListCache_NeverHits(t *testing.T) {
	c := NewNoopListCache()
	ctx := context.Background()

	require.NoError(t, c.Store(ctx, "applications", 0, []string{"a"}))

	var got []string
	hit, _, err := c.Lookup(ctx, "applications", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestRedisListCache_Keys(t *testing.T) {
	c := &redisListCache{prefix: "archcatalog"}

	assert.Equal(t, "archcatalog:version", c.versionKey())
	assert.Equal(t, "archcatalog:list:skills:7", c.listKey("skills", 7))
}
