// Package vector keeps message embeddings in a flat in-process index scoped by owner.
package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
)

type Config struct {
	Dim       int
	Metric    Metric
	Clock     core.Clock
	Persister core.RecordPersister
}

// Store is append-only. Records are never removed, so memory grows with traffic.
type Store struct {
	dim       int
	metric    Metric
	clock     core.Clock
	persister core.RecordPersister

	mu      sync.RWMutex
	records []core.MemoryRecord
	byOwner map[string][]int
	lastTS  map[string]time.Time
	nextSeq int64
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("vector store: dimension must be positive, got %d", cfg.Dim)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		dim:       cfg.Dim,
		metric:    cfg.Metric,
		clock:     clock,
		persister: cfg.Persister,
		byOwner:   make(map[string][]int),
		lastTS:    make(map[string]time.Time),
		nextSeq:   1,
	}, nil
}

// Load replays persisted records into the index. It must run before the store serves traffic.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	recs, err := s.persister.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load memory records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		if len(rec.Vector) != s.dim {
			return fmt.Errorf("%w: record %s has %d values, store expects %d",
				core.ErrDimensionMismatch, rec.ID, len(rec.Vector), s.dim)
		}
		s.appendLocked(rec)
	}

	log.FromCtx(ctx).Info().Int("records", len(recs)).Msg("vector store loaded")
	return nil
}

func (s *Store) Add(ctx context.Context, ownerID, text string, vec []float32) (core.RecordHandle, error) {
	if ownerID == "" {
		return core.RecordHandle{}, core.ErrEmptyOwner
	}
	if len(vec) != s.dim {
		return core.RecordHandle{}, fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(vec), s.dim)
	}

	rec := core.MemoryRecord{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Text:    text,
		Vector:  append([]float32(nil), vec...),
	}
	rec.Seq, rec.CreatedAt = s.reserve(ownerID)

	// SaveRecord runs unlocked. A failed save leaves a gap in seq and nothing
	// in the index.
	if s.persister != nil {
		if err := s.persister.SaveRecord(ctx, rec); err != nil {
			return core.RecordHandle{}, fmt.Errorf("%w: persist memory record: %w", core.ErrStorage, err)
		}
	}

	s.mu.Lock()
	s.appendLocked(rec)
	s.mu.Unlock()
	return core.RecordHandle{ID: rec.ID, Seq: rec.Seq}, nil
}

// reserve hands out the next seq and a timestamp no earlier than the owner's last one.
func (s *Store) reserve(ownerID string) (int64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.clock()
	if last, ok := s.lastTS[ownerID]; ok && ts.Before(last) {
		ts = last
	}
	s.lastTS[ownerID] = ts

	seq := s.nextSeq
	s.nextSeq++
	return seq, ts
}

func (s *Store) appendLocked(rec core.MemoryRecord) {
	s.records = append(s.records, rec)
	s.byOwner[rec.OwnerID] = append(s.byOwner[rec.OwnerID], len(s.records)-1)
	if rec.CreatedAt.After(s.lastTS[rec.OwnerID]) {
		s.lastTS[rec.OwnerID] = rec.CreatedAt
	}
	if rec.Seq >= s.nextSeq {
		s.nextSeq = rec.Seq + 1
	}
}

// Query returns up to k records of ownerID nearest to vec. Equal distances are
// ordered by seq, which is insertion order.
func (s *Store) Query(ctx context.Context, ownerID string, vec []float32, k int) ([]core.Match, error) {
	if len(vec) != s.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", core.ErrDimensionMismatch, len(vec), s.dim)
	}
	if k <= 0 {
		return []core.Match{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.byOwner[ownerID]
	matches := make([]core.Match, 0, len(idx))
	for _, i := range idx {
		rec := s.records[i]
		matches = append(matches, core.Match{
			Record:   rec,
			Distance: s.metric.Distance(vec, rec.Vector),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Distance != matches[b].Distance {
			return matches[a].Distance < matches[b].Distance
		}
		return matches[a].Record.Seq < matches[b].Record.Seq
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Dimension() int {
	return s.dim
}
