package storage

import (
	"context"
	"fmt"

	"github.com/silens-indexer/internal/models"
)

// ReputationRepository handles the append-only reputation history log
type ReputationRepository struct {
	q Querier
}

// NewReputationRepository creates a new reputation repository
func NewReputationRepository(q Querier) *ReputationRepository {
	return &ReputationRepository{q: q}
}

const reputationColumns = `id, user_id, new_score, points_added, reason,
	created_at, creation_tx_hash, creation_block_number`

// Insert appends a history entry, ignoring replays via the deterministic id
func (r *ReputationRepository) Insert(ctx context.Context, e *models.ReputationHistoryEntry) error {
	query := `
		INSERT INTO silens_reputation_history (` + reputationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		e.ID,
		e.UserID,
		e.NewScore,
		e.PointsAdded,
		e.Reason,
		e.CreatedAt,
		e.CreationTxHash,
		e.CreationBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reputation history entry: %w", err)
	}
	return nil
}

// ListByUser retrieves an address's reputation history, newest first
func (r *ReputationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.ReputationHistoryEntry, error) {
	query := `
		SELECT ` + reputationColumns + `
		FROM silens_reputation_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reputation history: %w", err)
	}
	defer rows.Close()

	var out []*models.ReputationHistoryEntry
	for rows.Next() {
		var e models.ReputationHistoryEntry
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.NewScore,
			&e.PointsAdded,
			&e.Reason,
			&e.CreatedAt,
			&e.CreationTxHash,
			&e.CreationBlockNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reputation history entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// CountByUser returns the number of history entries for an address
func (r *ReputationRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM silens_reputation_history WHERE user_id = $1`

	if err := r.q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reputation history: %w", err)
	}
	return count, nil
}
