package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ProgressRepository persists the indexer's position so it resumes where it
// stopped instead of rescanning from the start block.
type ProgressRepository struct {
	q Querier
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(q Querier) *ProgressRepository {
	return &ProgressRepository{q: q}
}

// Get returns the last fully processed block for a named cursor, with found
// false when the cursor has never been saved
func (r *ProgressRepository) Get(ctx context.Context, name string) (uint64, bool, error) {
	var block uint64
	query := `SELECT last_block FROM indexer_progress WHERE name = $1`

	err := r.q.QueryRow(ctx, query, name).Scan(&block)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get indexer progress: %w", err)
	}
	return block, true, nil
}

// Save records the last fully processed block for a named cursor
func (r *ProgressRepository) Save(ctx context.Context, name string, block uint64) error {
	query := `
		INSERT INTO indexer_progress (name, last_block, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			last_block = EXCLUDED.last_block,
			updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, name, block); err != nil {
		return fmt.Errorf("failed to save indexer progress: %w", err)
	}
	return nil
}
