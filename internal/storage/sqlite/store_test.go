package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := log.NewTestContext(context.Background(), io.Discard)
	db, err := NewDB(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	return NewStore(setupDB(t), clock.Now), clock
}

func TestStore_UpsertRoutineIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	require.NoError(t, s.UpsertRoutine(ctx, core.RoutineEntry{OwnerID: "u", Activity: "sleep", TimeOfDay: "23:00"}))
	require.NoError(t, s.UpsertRoutine(ctx, core.RoutineEntry{OwnerID: "u", Activity: "sleep", TimeOfDay: "00:30"}))

	got, err := s.GetRoutine(ctx, "u")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.RoutineEntry{OwnerID: "u", Activity: "sleep", TimeOfDay: "00:30", Date: "2024-05-01"}, got[0])
}

func TestStore_GetRoutineMostRecentDate(t *testing.T) {
	ctx := context.Background()
	s, clock := setupStore(t)

	require.NoError(t, s.UpsertRoutine(ctx, core.RoutineEntry{OwnerID: "u", Activity: "wake", TimeOfDay: "07:00"}))
	clock.Advance(24 * time.Hour)
	require.NoError(t, s.UpsertRoutine(ctx, core.RoutineEntry{OwnerID: "u", Activity: "lunch", TimeOfDay: "12:30"}))
	require.NoError(t, s.UpsertRoutine(ctx, core.RoutineEntry{OwnerID: "u", Activity: "breakfast", TimeOfDay: "08:00"}))
	require.NoError(t, s.UpsertRoutine(ctx, core.RoutineEntry{OwnerID: "other", Activity: "gym", TimeOfDay: "18:00", Date: "2030-01-01"}))

	got, err := s.GetRoutine(ctx, "u")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "breakfast", got[0].Activity)
	assert.Equal(t, "lunch", got[1].Activity)
	assert.Equal(t, "2024-05-02", got[0].Date)
}

func TestStore_GetRoutineEmpty(t *testing.T) {
	s, _ := setupStore(t)
	got, err := s.GetRoutine(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_History(t *testing.T) {
	ctx := context.Background()
	s, clock := setupStore(t)

	var last core.HistoryEntry
	for i := 0; i < 4; i++ {
		e, err := s.AppendHistory(ctx, "u", fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
		assert.Greater(t, e.ID, last.ID)
		last = e
		clock.Advance(time.Minute)
	}
	_, err := s.AppendHistory(ctx, "other", "not mine")
	require.NoError(t, err)

	got, err := s.GetRecentHistory(ctx, "u", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "msg 3", got[0].Message)
	assert.Equal(t, "msg 2", got[1].Message)
	assert.Equal(t, "msg 1", got[2].Message)
	assert.True(t, got[0].CreatedAt.Equal(time.Date(2024, 5, 1, 8, 3, 0, 0, time.UTC)))

	none, err := s.GetRecentHistory(ctx, "u", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_FlaggedIssue(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	got, err := s.GetLastFlaggedIssue(ctx, "u")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SetFlaggedIssue(ctx, core.FlaggedIssue{OwnerID: "u", Message: "I feel sad", Category: "distress", Keyword: "sad"}))
	require.NoError(t, s.SetFlaggedIssue(ctx, core.FlaggedIssue{OwnerID: "u", Message: "was in an accident", Category: "emergency", Keyword: "accident"}))

	got, err = s.GetLastFlaggedIssue(ctx, "u")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "accident", got.Keyword)
	assert.Equal(t, "emergency", got.Category)
	assert.True(t, got.FlaggedAt.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))

	require.NoError(t, s.ClearFlaggedIssue(ctx, "u"))
	got, err = s.GetLastFlaggedIssue(ctx, "u")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, s.ClearFlaggedIssue(ctx, "u"), "clearing twice is not an error")
}

func TestStore_ConcurrentFlagUpserts(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.SetFlaggedIssue(ctx, core.FlaggedIssue{
				OwnerID: "u", Message: fmt.Sprintf("m%d", i), Category: "distress", Keyword: "sad",
			}))
		}(i)
	}
	wg.Wait()

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flagged_issues WHERE owner_id = 'u'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRecordsRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRecordsRepo(setupDB(t))
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	in := []core.MemoryRecord{
		{ID: "b", Seq: 2, OwnerID: "u", Text: "second", Vector: []float32{0.5, -1}, CreatedAt: ts.Add(time.Second)},
		{ID: "a", Seq: 1, OwnerID: "u", Text: "first", Vector: []float32{1, 2}, CreatedAt: ts},
	}
	for _, rec := range in {
		require.NoError(t, repo.SaveRecord(ctx, rec))
	}

	out, err := repo.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, []float32{1, 2}, out[0].Vector)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, []float32{0.5, -1}, out[1].Vector)
	assert.True(t, out[1].CreatedAt.Equal(ts.Add(time.Second)))

	assert.Error(t, repo.SaveRecord(ctx, in[0]), "duplicate id must fail")
}

func TestDeserializeVector_BadLength(t *testing.T) {
	_, err := deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}
