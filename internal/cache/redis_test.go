package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T, capacity int) (*Redis, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := newFakeClock()
	return NewRedis(client, RedisConfig{
		Prefix:   "test:session",
		TTL:      time.Hour,
		Capacity: capacity,
		Clock:    clock.Now,
	}), mr, clock
}

func TestRedis_PutGet(t *testing.T) {
	ctx := context.Background()
	r, _, _ := setupRedis(t, 10)

	val := []core.ActivityTime{{Activity: "lunch", Time: "12:30"}}
	require.NoError(t, r.Put(ctx, "u", val))

	got, ok, err := r.Get(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, val, got)

	_, ok, err = r.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	r, mr, _ := setupRedis(t, 10)

	require.NoError(t, r.Put(ctx, "u", []core.ActivityTime{{Activity: "wake", Time: "07:00"}}))
	mr.FastForward(time.Hour + time.Second)

	_, ok, err := r.Get(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_Capacity(t *testing.T) {
	ctx := context.Background()
	r, mr, clock := setupRedis(t, 2)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, r.Put(ctx, k, []core.ActivityTime{{Activity: k}}))
		clock.Advance(time.Second)
	}

	_, ok, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry must be evicted")

	for _, k := range []string{"b", "c"} {
		_, ok, err := r.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
	}

	members, err := mr.ZMembers("test:session:idx")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, members)
}

func TestRedis_OwnerNamedLikeIndex(t *testing.T) {
	ctx := context.Background()
	r, mr, _ := setupRedis(t, 10)

	val := []core.ActivityTime{{Activity: "dinner", Time: "19:00"}}
	for _, owner := range []string{"index", "idx", "v:idx", "alice"} {
		require.NoError(t, r.Put(ctx, owner, val), owner)
	}

	for _, owner := range []string{"index", "idx", "v:idx", "alice"} {
		got, ok, err := r.Get(ctx, owner)
		require.NoError(t, err)
		require.True(t, ok, owner)
		assert.Equal(t, val, got)
	}

	members, err := mr.ZMembers("test:session:idx")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index", "idx", "v:idx", "alice"}, members)
	assert.True(t, mr.Exists("test:session:v:index"))
}
