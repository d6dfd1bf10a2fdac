package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/client/txflow"
	"github.com/dmitrijs2005/afterlife/internal/dbx"
	"github.com/ethereum/go-ethereum/common"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Record upserts the row for t.ID. A hash, once known, is never cleared by a
// later transition that does not carry one.
func (r *SQLiteRepository) Record(ctx context.Context, t txflow.Transition) error {
	var hash, errText string
	if t.Hash != (common.Hash{}) {
		hash = t.Hash.Hex()
	}
	if t.Err != nil {
		errText = t.Err.Error()
	}
	now := r.now().UnixMilli()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, action, hash, phase, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			hash = CASE WHEN excluded.hash <> '' THEN excluded.hash ELSE transactions.hash END,
			phase = excluded.phase,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, t.ID.String(), t.Action, hash, t.To.String(), errText, now, now)
	if err != nil {
		return fmt.Errorf("failed to record transaction %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, hash, phase, error, created_at, updated_at
		FROM transactions
		ORDER BY created_at DESC, updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var result []models.JournalEntry
	for rows.Next() {
		var (
			e                models.JournalEntry
			created, updated int64
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.Hash, &e.Phase, &e.Error, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created)
		e.UpdatedAt = time.UnixMilli(updated)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return result, nil
}
