package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTTL_Expiry(t *testing.T) {
	clock := newFakeClock()
	c := NewTTL[string](time.Hour, 10, clock.Now)

	c.Put("a", "1")
	clock.Advance(59 * time.Minute)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	clock.Advance(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry past ttl must be absent")
	assert.Equal(t, 1, c.Len(), "expired entry is still physically retained")
}

func TestTTL_Capacity(t *testing.T) {
	tests := []struct {
		name    string
		steps   func(c *TTL[int], clock *fakeClock)
		present []string
		absent  []string
	}{
		{
			name: "oldest inserted evicted first",
			steps: func(c *TTL[int], clock *fakeClock) {
				c.Put("a", 1)
				clock.Advance(time.Second)
				c.Put("b", 2)
				clock.Advance(time.Second)
				c.Put("c", 3)
			},
			present: []string{"b", "c"},
			absent:  []string{"a"},
		},
		{
			name: "re-put refreshes insertion order",
			steps: func(c *TTL[int], clock *fakeClock) {
				c.Put("a", 1)
				c.Put("b", 2)
				c.Put("a", 10)
				c.Put("c", 3)
			},
			present: []string{"a", "c"},
			absent:  []string{"b"},
		},
		{
			name: "expired entries evicted before live ones",
			steps: func(c *TTL[int], clock *fakeClock) {
				c.Put("old", 1)
				clock.Advance(2 * time.Hour)
				c.Put("b", 2)
				c.Put("c", 3)
			},
			present: []string{"b", "c"},
			absent:  []string{"old"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			c := NewTTL[int](time.Hour, 2, clock.Now)
			tt.steps(c, clock)

			for _, k := range tt.present {
				_, ok := c.Get(k)
				assert.True(t, ok, k)
			}
			for _, k := range tt.absent {
				_, ok := c.Get(k)
				assert.False(t, ok, k)
			}
			assert.LessOrEqual(t, c.Len(), 2)
		})
	}
}

func TestTTL_Concurrent(t *testing.T) {
	c := NewTTL[int](time.Hour, 50, nil)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("%d-%d", w, i)
				c.Put(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}

func TestSessions_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(time.Hour, 10, nil)

	in := []core.ActivityTime{{Activity: "wake", Time: "07:00"}}
	require.NoError(t, s.Put(ctx, "u", in))
	in[0].Time = "09:00"

	got, ok, err := s.Get(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "07:00", got[0].Time)

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
