// Package journal keeps a local history of contract writes: one row per
// submission, updated as it moves through its phases.
package journal

import (
	"context"

	"github.com/dmitrijs2005/afterlife/internal/client/models"
	"github.com/dmitrijs2005/afterlife/internal/client/txflow"
)

type Repository interface {
	txflow.Recorder

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]models.JournalEntry, error)
}
