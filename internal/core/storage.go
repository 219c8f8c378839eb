package core

import (
	"context"
	"time"
)

type VectorStore interface {
	Add(ctx context.Context, ownerID, text string, vector []float32) (RecordHandle, error)
	Query(ctx context.Context, ownerID string, vector []float32, k int) ([]Match, error)
}

// RecordPersister backs a VectorStore with durable storage.
type RecordPersister interface {
	SaveRecord(ctx context.Context, rec MemoryRecord) error
	LoadRecords(ctx context.Context) ([]MemoryRecord, error)
}

type RoutineRepository interface {
	UpsertRoutine(ctx context.Context, entry RoutineEntry) error
	// GetRoutine returns the entries of the most recent recorded date.
	GetRoutine(ctx context.Context, ownerID string) ([]RoutineEntry, error)
}

type HistoryRepository interface {
	AppendHistory(ctx context.Context, ownerID, message string) (HistoryEntry, error)
	// GetRecentHistory returns entries most recent first.
	GetRecentHistory(ctx context.Context, ownerID string, limit int) ([]HistoryEntry, error)
}

type FlagRepository interface {
	SetFlaggedIssue(ctx context.Context, issue FlaggedIssue) error
	// GetLastFlaggedIssue returns nil when nothing is on record.
	GetLastFlaggedIssue(ctx context.Context, ownerID string) (*FlaggedIssue, error)
	ClearFlaggedIssue(ctx context.Context, ownerID string) error
}

type StructuredStore interface {
	RoutineRepository
	HistoryRepository
	FlagRepository
}

type SessionCache interface {
	Put(ctx context.Context, key string, value []ActivityTime) error
	// Get reports false for absent or expired entries.
	Get(ctx context.Context, key string) ([]ActivityTime, bool, error)
}

// Clock is injected wherever dates or expiry are computed.
type Clock func() time.Time
