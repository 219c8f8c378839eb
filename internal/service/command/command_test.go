package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	history []core.HistoryEntry
	routine []core.RoutineEntry
	flag    *core.FlaggedIssue
	err     error
	limit   int
}

func (m *mockStore) UpsertRoutine(context.Context, core.RoutineEntry) error { return m.err }

func (m *mockStore) GetRoutine(context.Context, string) ([]core.RoutineEntry, error) {
	return m.routine, m.err
}

func (m *mockStore) AppendHistory(context.Context, string, string) (core.HistoryEntry, error) {
	return core.HistoryEntry{}, m.err
}

func (m *mockStore) GetRecentHistory(_ context.Context, _ string, limit int) ([]core.HistoryEntry, error) {
	m.limit = limit
	return m.history, m.err
}

func (m *mockStore) SetFlaggedIssue(_ context.Context, issue core.FlaggedIssue) error {
	m.flag = &issue
	return m.err
}

func (m *mockStore) GetLastFlaggedIssue(context.Context, string) (*core.FlaggedIssue, error) {
	return m.flag, m.err
}

func (m *mockStore) ClearFlaggedIssue(context.Context, string) error {
	m.flag = nil
	return m.err
}

type mockLister struct {
	ModelsFunc func(ctx context.Context) ([]core.Model, error)
}

func (m mockLister) Models(ctx context.Context) ([]core.Model, error) {
	return m.ModelsFunc(ctx)
}

func newRouter(store *mockStore, lister core.ModelLister) *Router {
	cfg := &config.LLMConfig{Provider: "gemini", Model: "gemini-1.5-flash"}
	return New(NewCommands(cfg, lister, store))
}

func TestRouter_Dispatch(t *testing.T) {
	ctx := context.Background()
	r := newRouter(&mockStore{}, nil)

	tests := []struct {
		name    string
		input   string
		handled bool
		want    string
	}{
		{"plain text", "hello", false, ""},
		{"unknown", "/dance", true, "Unknown command: /dance"},
		{"bot suffix", "/model@carebot", true, "gemini-1.5-flash"},
		{"help", "/help", true, "/forget"},
		{"bare slash", "/", true, "Unknown command: /"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, handled := r.Execute(ctx, "u1", tt.input)
			assert.Equal(t, tt.handled, handled)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRouter_ListCommandsSorted(t *testing.T) {
	r := newRouter(&mockStore{}, nil)

	var names []string
	for _, c := range r.ListCommands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"forget", "history", "model", "routine"}, names)
}

func TestHistoryCommand(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	store := &mockStore{history: []core.HistoryEntry{{Message: "I skipped breakfast", CreatedAt: at}}}
	r := newRouter(store, nil)

	out, _ := r.Execute(ctx, "u1", "/history")
	assert.Contains(t, out, "Mar 1 09:30  I skipped breakfast")
	assert.Equal(t, defaultHistoryLimit, store.limit)

	_, _ = r.Execute(ctx, "u1", "/history 3")
	assert.Equal(t, 3, store.limit)

	out, _ = r.Execute(ctx, "u1", "/history zero")
	assert.Contains(t, out, "Error: limit must be a positive number")

	store.history = nil
	out, _ = r.Execute(ctx, "u1", "/history")
	assert.Contains(t, out, "No messages yet")
}

func TestRoutineCommand(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	r := newRouter(store, nil)

	out, _ := r.Execute(ctx, "u1", "/routine")
	assert.Contains(t, out, "No routine found")

	store.routine = []core.RoutineEntry{
		{Activity: "wake", TimeOfDay: "07:00", Date: "2026-03-01"},
		{Activity: "lunch", TimeOfDay: "12:30", Date: "2026-03-01"},
	}
	out, _ = r.Execute(ctx, "u1", "/routine")
	assert.Contains(t, out, "Routine for 2026-03-01")
	assert.Contains(t, out, "`07:00` wake")
	assert.Contains(t, out, "`12:30` lunch")
}

func TestForgetCommand(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{flag: &core.FlaggedIssue{OwnerID: "u1", Keyword: "sad"}}
	r := newRouter(store, nil)

	out, _ := r.Execute(ctx, "u1", "/forget")
	assert.Contains(t, out, "won't bring it up again")
	assert.Nil(t, store.flag)

	out, _ = r.Execute(ctx, "u1", "/forget")
	assert.Contains(t, out, "Nothing to forget")

	store.err = errors.New("db down")
	out, _ = r.Execute(ctx, "u1", "/forget")
	assert.Contains(t, out, "Error: failed to load flagged issue: db down")
}

func TestModelCommand(t *testing.T) {
	ctx := context.Background()

	out, _ := newRouter(&mockStore{}, nil).Execute(ctx, "u1", "/model list")
	assert.Contains(t, out, "cannot list models")

	lister := mockLister{ModelsFunc: func(context.Context) ([]core.Model, error) {
		return []core.Model{{ID: "gemini-1.5-flash"}, {ID: "gemini-1.5-pro"}}, nil
	}}
	out, handled := newRouter(&mockStore{}, lister).Execute(ctx, "u1", "/model list")
	require.True(t, handled)
	assert.Contains(t, out, "Models (2)")
	assert.Contains(t, out, "`gemini-1.5-pro`")
}
