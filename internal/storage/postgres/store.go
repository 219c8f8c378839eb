// Package postgres is the server-backed alternative to the sqlite store, selected
// when DATABASE_URL is set.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sandevgo/carebot/internal/core"
)

const dateLayout = "2006-01-02"

type Store struct {
	pool  *pgxpool.Pool
	clock core.Clock
}

func NewStore(ctx context.Context, databaseURL string, clock core.Clock) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	if clock == nil {
		clock = time.Now
	}
	return &Store{pool: pool, clock: clock}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_records (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			text TEXT NOT NULL,
			embedding REAL[] NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_memory_records_owner ON memory_records (owner_id, seq);`,
		`CREATE TABLE IF NOT EXISTS user_routine (
			owner_id TEXT NOT NULL,
			date TEXT NOT NULL,
			activity TEXT NOT NULL,
			time_of_day TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (owner_id, date, activity)
		);`,
		`CREATE TABLE IF NOT EXISTS conversation_history (
			id BIGSERIAL PRIMARY KEY,
			owner_id TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_history_owner ON conversation_history (owner_id, id);`,
		`CREATE TABLE IF NOT EXISTS flagged_issues (
			owner_id TEXT PRIMARY KEY,
			message TEXT NOT NULL,
			category TEXT NOT NULL,
			keyword TEXT NOT NULL,
			flagged_at TIMESTAMPTZ NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *Store) SaveRecord(ctx context.Context, rec core.MemoryRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO memory_records (id, seq, owner_id, text, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Seq, rec.OwnerID, rec.Text, rec.Vector, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save memory record: %w", err)
	}
	return nil
}

func (s *Store) LoadRecords(ctx context.Context) ([]core.MemoryRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, seq, owner_id, text, embedding, created_at FROM memory_records ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query memory records: %w", err)
	}
	defer rows.Close()

	var recs []core.MemoryRecord
	for rows.Next() {
		var r core.MemoryRecord
		if err := rows.Scan(&r.ID, &r.Seq, &r.OwnerID, &r.Text, &r.Vector, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan memory record: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory records: %w", err)
	}
	return recs, nil
}

func (s *Store) UpsertRoutine(ctx context.Context, e core.RoutineEntry) error {
	if e.Date == "" {
		e.Date = s.clock().Format(dateLayout)
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_routine (owner_id, date, activity, time_of_day, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (owner_id, date, activity) DO UPDATE SET
			time_of_day = EXCLUDED.time_of_day,
			updated_at = EXCLUDED.updated_at`,
		e.OwnerID, e.Date, e.Activity, e.TimeOfDay, s.clock(),
	)
	if err != nil {
		return fmt.Errorf("upsert routine: %w", err)
	}
	return nil
}

func (s *Store) GetRoutine(ctx context.Context, ownerID string) ([]core.RoutineEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT owner_id, activity, time_of_day, date
		 FROM user_routine
		 WHERE owner_id = $1 AND date = (SELECT MAX(date) FROM user_routine WHERE owner_id = $1)
		 ORDER BY time_of_day ASC, activity ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query routine: %w", err)
	}
	defer rows.Close()

	var entries []core.RoutineEntry
	for rows.Next() {
		var e core.RoutineEntry
		if err := rows.Scan(&e.OwnerID, &e.Activity, &e.TimeOfDay, &e.Date); err != nil {
			return nil, fmt.Errorf("scan routine row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routine rows: %w", err)
	}
	return entries, nil
}

func (s *Store) AppendHistory(ctx context.Context, ownerID, message string) (core.HistoryEntry, error) {
	entry := core.HistoryEntry{OwnerID: ownerID, Message: message, CreatedAt: s.clock()}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversation_history (owner_id, message, created_at) VALUES ($1, $2, $3) RETURNING id`,
		entry.OwnerID, entry.Message, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return core.HistoryEntry{}, fmt.Errorf("append history: %w", err)
	}
	return entry, nil
}

func (s *Store) GetRecentHistory(ctx context.Context, ownerID string, limit int) ([]core.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, message, created_at FROM conversation_history
		 WHERE owner_id = $1 ORDER BY id DESC LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]core.HistoryEntry, 0, limit)
	for rows.Next() {
		var e core.HistoryEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

func (s *Store) SetFlaggedIssue(ctx context.Context, issue core.FlaggedIssue) error {
	if issue.FlaggedAt.IsZero() {
		issue.FlaggedAt = s.clock()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO flagged_issues (owner_id, message, category, keyword, flagged_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (owner_id) DO UPDATE SET
			message = EXCLUDED.message,
			category = EXCLUDED.category,
			keyword = EXCLUDED.keyword,
			flagged_at = EXCLUDED.flagged_at`,
		issue.OwnerID, issue.Message, issue.Category, issue.Keyword, issue.FlaggedAt,
	)
	if err != nil {
		return fmt.Errorf("set flagged issue: %w", err)
	}
	return nil
}

func (s *Store) GetLastFlaggedIssue(ctx context.Context, ownerID string) (*core.FlaggedIssue, error) {
	var f core.FlaggedIssue
	err := s.pool.QueryRow(ctx,
		`SELECT owner_id, message, category, keyword, flagged_at FROM flagged_issues WHERE owner_id = $1`,
		ownerID,
	).Scan(&f.OwnerID, &f.Message, &f.Category, &f.Keyword, &f.FlaggedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flagged issue: %w", err)
	}
	return &f, nil
}

func (s *Store) ClearFlaggedIssue(ctx context.Context, ownerID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM flagged_issues WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("clear flagged issue: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
