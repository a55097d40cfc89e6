package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlstmt"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	v, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	v, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, m.Delete(ctx, "k"))
	v, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(59 * time.Second)
	v, _ := m.Get(ctx, "short")
	assert.Equal(t, []byte("1"), v)

	now = now.Add(time.Second)
	v, _ = m.Get(ctx, "short")
	assert.Nil(t, v)
	assert.Equal(t, 1, m.Len())

	now = now.Add(24 * time.Hour)
	v, _ = m.Get(ctx, "forever")
	assert.Equal(t, []byte("2"), v)
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	keys := []sqlstmt.CacheKey{
		{Connection: "default", Table: "users", Operation: "select", Predicates: "`id` = ?|[1]", Limit: 10},
		{Connection: "default", Table: "users", Operation: "select"},
		{Connection: "default", Table: "users_archive", Operation: "select"},
		{Connection: "replica", Table: "users", Operation: "select"},
	}
	for _, k := range keys {
		require.NoError(t, m.Set(ctx, k.String(), []byte("x"), 0))
	}

	require.NoError(t, m.DeletePrefix(ctx, sqlstmt.TablePrefix("default", "users")))
	assert.Equal(t, 2, m.Len())
	for _, k := range keys[2:] {
		v, _ := m.Get(ctx, k.String())
		assert.NotNil(t, v, k.String())
	}

	require.NoError(t, m.Clear(ctx))
	assert.Zero(t, m.Len())
}
