package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

// ModelRepository handles model persistence
type ModelRepository struct {
	q Querier
}

// NewModelRepository creates a new model repository
func NewModelRepository(q Querier) *ModelRepository {
	return &ModelRepository{q: q}
}

const modelColumns = `id, submitter, ipfs_hash, status, submission_time, review_end_time,
	upvotes, downvotes, created_at, updated_at, creation_tx_hash, creation_block_number`

// Insert creates a model row. A replayed event hits the primary key and is
// ignored, keeping creation idempotent.
func (r *ModelRepository) Insert(ctx context.Context, m *models.Model) error {
	query := `
		INSERT INTO silens_models (` + modelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		m.ID,
		m.Submitter,
		m.IPFSHash,
		m.Status,
		m.SubmissionTime,
		m.ReviewEndTime,
		m.Upvotes,
		m.Downvotes,
		m.CreatedAt,
		m.UpdatedAt,
		m.CreationTxHash,
		m.CreationBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert model: %w", err)
	}
	return nil
}

// SetStatus updates a model's status and updatedAt. The model row must
// already exist; a status update for an unknown model is an error so the
// worker's retry-then-halt path engages instead of the event vanishing.
func (r *ModelRepository) SetStatus(ctx context.Context, id types.Quantity, status types.ModelStatus, updatedAt types.Quantity) error {
	query := `
		UPDATE silens_models
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.q.Exec(ctx, query, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update model status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("status update for unknown model %d", id)
	}
	return nil
}

// GetByID retrieves a model by id, returning nil when it does not exist
func (r *ModelRepository) GetByID(ctx context.Context, id types.Quantity) (*models.Model, error) {
	query := `SELECT ` + modelColumns + ` FROM silens_models WHERE id = $1`

	m, err := scanModel(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return m, nil
}

// ModelFilter narrows List and Count
type ModelFilter struct {
	Status    *types.ModelStatus
	Submitter string
}

func (f ModelFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.Status != nil {
		args = append(args, *f.Status)
		clause += " AND status = $" + strconv.Itoa(len(args))
	}
	if f.Submitter != "" {
		args = append(args, f.Submitter)
		clause += " AND submitter = $" + strconv.Itoa(len(args))
	}
	return clause, args
}

// List retrieves models matching the filter, newest first
func (r *ModelRepository) List(ctx context.Context, filter ModelFilter, limit, offset int) ([]*models.Model, error) {
	clause, args := filter.where()
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+modelColumns+`
		FROM silens_models
		WHERE 1=1%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var out []*models.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of models matching the filter
func (r *ModelRepository) Count(ctx context.Context, filter ModelFilter) (int64, error) {
	clause, args := filter.where()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM silens_models WHERE 1=1%s`, clause)

	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count models: %w", err)
	}
	return count, nil
}

// StatusBreakdown returns model counts grouped by status. sinceUnix bounds
// the window by created_at; zero means all time.
func (r *ModelRepository) StatusBreakdown(ctx context.Context, sinceUnix uint64) (map[types.ModelStatus]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT status, COUNT(*) FROM silens_models WHERE created_at >= $1 GROUP BY status`,
		sinceUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to query status breakdown: %w", err)
	}
	defer rows.Close()

	out := make(map[types.ModelStatus]int64)
	for rows.Next() {
		var status types.ModelStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status breakdown: %w", err)
		}
		out[status] = count
	}
	return out, rows.Err()
}

// ModelTrendPoint is one day bucket of model submissions
type ModelTrendPoint struct {
	Day    int64             `json:"day"`
	Status types.ModelStatus `json:"status"`
	Count  int64             `json:"count"`
}

// TrendByDay returns per-day, per-status submission counts since the given
// unix timestamp. Day buckets are UTC midnights.
func (r *ModelRepository) TrendByDay(ctx context.Context, sinceUnix uint64) ([]ModelTrendPoint, error) {
	query := `
		SELECT (created_at - created_at % 86400) AS day, status, COUNT(*)
		FROM silens_models
		WHERE created_at >= $1
		GROUP BY day, status
		ORDER BY day ASC, status ASC
	`

	rows, err := r.q.Query(ctx, query, sinceUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to query model trend: %w", err)
	}
	defer rows.Close()

	var out []ModelTrendPoint
	for rows.Next() {
		var p ModelTrendPoint
		if err := rows.Scan(&p.Day, &p.Status, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan model trend: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Recent returns the newest models
func (r *ModelRepository) Recent(ctx context.Context, limit int) ([]*models.Model, error) {
	return r.List(ctx, ModelFilter{}, limit, 0)
}

func scanModel(row pgx.Row) (*models.Model, error) {
	var m models.Model
	err := row.Scan(
		&m.ID,
		&m.Submitter,
		&m.IPFSHash,
		&m.Status,
		&m.SubmissionTime,
		&m.ReviewEndTime,
		&m.Upvotes,
		&m.Downvotes,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.CreationTxHash,
		&m.CreationBlockNumber,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
