package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/carebot/internal/core"
)

// RecordsRepo persists vector store records.
type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) SaveRecord(ctx context.Context, rec core.MemoryRecord) error {
	blob, err := serializeVector(rec.Vector)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO memory_records (id, seq, owner_id, text, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Seq, rec.OwnerID, rec.Text, blob, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert memory record: %w", err)
	}
	return nil
}

func (r *RecordsRepo) LoadRecords(ctx context.Context) ([]core.MemoryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, seq, owner_id, text, embedding, created_at FROM memory_records ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query memory records: %w", err)
	}
	defer rows.Close()

	var recs []core.MemoryRecord
	for rows.Next() {
		var rec core.MemoryRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.Seq, &rec.OwnerID, &rec.Text, &blob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory record: %w", err)
		}
		if rec.Vector, err = deserializeVector(blob); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
