package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChat struct {
	HandleFunc func(ctx context.Context, req core.Request) (core.Reply, error)
}

func (m mockChat) Handle(ctx context.Context, req core.Request) (core.Reply, error) {
	return m.HandleFunc(ctx, req)
}

type mockStore struct {
	core.StructuredStore // unimplemented methods panic

	history      []core.HistoryEntry
	routine      []core.RoutineEntry
	err          error
	gotLimit     int
	clearedOwner string
}

func (m *mockStore) GetRecentHistory(_ context.Context, _ string, limit int) ([]core.HistoryEntry, error) {
	m.gotLimit = limit
	return m.history, m.err
}

func (m *mockStore) GetRoutine(context.Context, string) ([]core.RoutineEntry, error) {
	return m.routine, m.err
}

func (m *mockStore) ClearFlaggedIssue(_ context.Context, owner string) error {
	m.clearedOwner = owner
	return m.err
}

func echoChat() mockChat {
	return mockChat{HandleFunc: func(_ context.Context, req core.Request) (core.Reply, error) {
		owner := req.OwnerID
		if owner == "" {
			owner = core.DefaultOwnerID
		}
		return core.Reply{OwnerID: owner, Intent: core.IntentGeneralChat, Text: "you said " + req.Message}, nil
	}}
}

func newTestServer(t *testing.T, chat core.ChatHandler, store core.StructuredStore) (*httptest.Server, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	srv := New(&config.HTTPConfig{}, chat, store, metrics)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, metrics
}

func postChat(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	res, err := http.Post(url+"/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res, out
}

func TestChat(t *testing.T) {
	ts, _ := newTestServer(t, echoChat(), &mockStore{})

	tests := []struct {
		name     string
		body     string
		status   int
		owner    string
		response string
	}{
		{"with owner", `{"user_id":"alice","message":"hi"}`, http.StatusOK, "alice", "you said hi"},
		{"default owner", `{"message":"plan my day"}`, http.StatusOK, core.DefaultOwnerID, "you said plan my day"},
		{"empty body", ``, http.StatusOK, core.DefaultOwnerID, "you said "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, out := postChat(t, ts.URL, tt.body)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			assert.Equal(t, tt.owner, out["user_id"])
			assert.Equal(t, tt.response, out["response"])
			assert.Equal(t, "general_chat", out["intent"])
		})
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	ts, _ := newTestServer(t, echoChat(), &mockStore{})

	res, out := postChat(t, ts.URL, `{"message":`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "invalid_request", out["code"])
}

func TestChat_StorageFailureHidesCause(t *testing.T) {
	chat := mockChat{HandleFunc: func(context.Context, core.Request) (core.Reply, error) {
		return core.Reply{}, errors.Join(core.ErrStorage, errors.New("sqlite: disk I/O error"))
	}}
	ts, _ := newTestServer(t, chat, &mockStore{})

	res, out := postChat(t, ts.URL, `{"message":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, core.ReplyUnavailable, out["response"])
	assert.NotContains(t, out["response"], "sqlite")
}

func TestHistory(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store := &mockStore{history: []core.HistoryEntry{{ID: 2, OwnerID: "alice", Message: "second", CreatedAt: at}}}
	ts, _ := newTestServer(t, echoChat(), store)

	res, err := http.Get(ts.URL + "/v1/owners/alice/history?limit=500")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, maxHistoryLimit, store.gotLimit)

	var out struct {
		UserID  string              `json:"user_id"`
		History []core.HistoryEntry `json:"history"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Equal(t, "alice", out.UserID)
	require.Len(t, out.History, 1)
	assert.Equal(t, "second", out.History[0].Message)
	assert.True(t, at.Equal(out.History[0].CreatedAt))

	res, err = http.Get(ts.URL + "/v1/owners/alice/history?limit=abc")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	store.history = nil
	res, err = http.Get(ts.URL + "/v1/owners/bob/history")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, defaultHistoryLimit, store.gotLimit)
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), `"history":[]`)
}

func TestRoutine(t *testing.T) {
	store := &mockStore{routine: []core.RoutineEntry{{OwnerID: "alice", Activity: "wake", TimeOfDay: "07:00", Date: "2026-03-01"}}}
	ts, _ := newTestServer(t, echoChat(), store)

	res, err := http.Get(ts.URL + "/v1/owners/alice/routine")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), `"time":"07:00"`)
}

func TestClearFlag(t *testing.T) {
	store := &mockStore{}
	ts, _ := newTestServer(t, echoChat(), store)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/owners/alice/flag", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "alice", store.clearedOwner)

	store.err = errors.New("locked")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t, echoChat(), &mockStore{})

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	_, _ = postChat(t, ts.URL, `{"message":"hi"}`)

	res, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), `carebot_http_requests_total{code="200",route="/chat"} 1`)
	assert.Contains(t, string(body), `carebot_http_requests_total{code="200",route="/healthz"} 1`)
}

func TestShutdownWithoutStart(t *testing.T) {
	srv := New(&config.HTTPConfig{}, echoChat(), &mockStore{}, nil)
	assert.NoError(t, srv.Shutdown(context.Background()))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"x"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
