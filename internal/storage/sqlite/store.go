package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/carebot/internal/core"
	"github.com/sandevgo/carebot/pkg/log"
)

const dateLayout = "2006-01-02"

// Store implements core.StructuredStore: routines, conversation history and flags.
type Store struct {
	db    *sql.DB
	clock core.Clock
}

func NewStore(db *sql.DB, clock core.Clock) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{db: db, clock: clock}
}

func (s *Store) UpsertRoutine(ctx context.Context, e core.RoutineEntry) error {
	if e.Date == "" {
		e.Date = s.clock().Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_routine (owner_id, date, activity, time_of_day, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, date, activity) DO UPDATE SET
			time_of_day = excluded.time_of_day,
			updated_at  = excluded.updated_at`,
		e.OwnerID, e.Date, e.Activity, e.TimeOfDay, s.clock().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert routine: %w", err)
	}
	return nil
}

func (s *Store) GetRoutine(ctx context.Context, ownerID string) ([]core.RoutineEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, activity, time_of_day, date
		FROM user_routine
		WHERE owner_id = ? AND date = (SELECT MAX(date) FROM user_routine WHERE owner_id = ?)
		ORDER BY time_of_day ASC, activity ASC`,
		ownerID, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query routine: %w", err)
	}
	defer rows.Close()

	var entries []core.RoutineEntry
	for rows.Next() {
		var e core.RoutineEntry
		if err := rows.Scan(&e.OwnerID, &e.Activity, &e.TimeOfDay, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AppendHistory(ctx context.Context, ownerID, message string) (core.HistoryEntry, error) {
	entry := core.HistoryEntry{
		OwnerID:   ownerID,
		Message:   message,
		CreatedAt: s.clock().UTC(),
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_history (owner_id, message, created_at) VALUES (?, ?, ?)`,
		entry.OwnerID, entry.Message, entry.CreatedAt,
	)
	if err != nil {
		return core.HistoryEntry{}, fmt.Errorf("failed to insert history: %w", err)
	}

	if entry.ID, err = res.LastInsertId(); err != nil {
		return core.HistoryEntry{}, fmt.Errorf("failed to read history id: %w", err)
	}
	return entry, nil
}

func (s *Store) GetRecentHistory(ctx context.Context, ownerID string, limit int) ([]core.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, message, created_at FROM conversation_history WHERE owner_id = ? ORDER BY id DESC LIMIT ?`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var e core.HistoryEntry
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("owner", ownerID).Int("count", len(entries)).Msg("loaded history")
	return entries, nil
}

func (s *Store) SetFlaggedIssue(ctx context.Context, issue core.FlaggedIssue) error {
	if issue.FlaggedAt.IsZero() {
		issue.FlaggedAt = s.clock()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flagged_issues (owner_id, message, category, keyword, flagged_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			message    = excluded.message,
			category   = excluded.category,
			keyword    = excluded.keyword,
			flagged_at = excluded.flagged_at`,
		issue.OwnerID, issue.Message, issue.Category, issue.Keyword, issue.FlaggedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert flagged issue: %w", err)
	}
	return nil
}

func (s *Store) GetLastFlaggedIssue(ctx context.Context, ownerID string) (*core.FlaggedIssue, error) {
	var f core.FlaggedIssue
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id, message, category, keyword, flagged_at FROM flagged_issues WHERE owner_id = ?`,
		ownerID,
	).Scan(&f.OwnerID, &f.Message, &f.Category, &f.Keyword, &f.FlaggedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query flagged issue: %w", err)
	}
	return &f, nil
}

func (s *Store) ClearFlaggedIssue(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM flagged_issues WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("failed to clear flagged issue: %w", err)
	}
	return nil
}
