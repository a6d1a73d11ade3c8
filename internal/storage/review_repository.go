package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
)

// ReviewRepository handles review persistence. Reviews are append-only.
type ReviewRepository struct {
	q Querier
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(q Querier) *ReviewRepository {
	return &ReviewRepository{q: q}
}

const reviewColumns = `id, model_id, reviewer, ipfs_hash, severity, timestamp,
	created_at, creation_tx_hash, creation_block_number`

// Insert creates a review row. The id is deterministic per source log, so a
// replayed event is a no-op.
func (r *ReviewRepository) Insert(ctx context.Context, rev *models.Review) error {
	query := `
		INSERT INTO silens_reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		rev.ID,
		rev.ModelID,
		rev.Reviewer,
		rev.IPFSHash,
		rev.Severity,
		rev.Timestamp,
		rev.CreatedAt,
		rev.CreationTxHash,
		rev.CreationBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// ReviewFilter narrows List and Count
type ReviewFilter struct {
	ModelID  *uint64
	Reviewer string
	Severity *int16
}

func (f ReviewFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.ModelID != nil {
		args = append(args, *f.ModelID)
		clause += " AND model_id = $" + strconv.Itoa(len(args))
	}
	if f.Reviewer != "" {
		args = append(args, f.Reviewer)
		clause += " AND reviewer = $" + strconv.Itoa(len(args))
	}
	if f.Severity != nil {
		args = append(args, *f.Severity)
		clause += " AND severity = $" + strconv.Itoa(len(args))
	}
	return clause, args
}

// List retrieves reviews matching the filter, newest first
func (r *ReviewRepository) List(ctx context.Context, filter ReviewFilter, limit, offset int) ([]*models.Review, error) {
	clause, args := filter.where()
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+reviewColumns+`
		FROM silens_reviews
		WHERE 1=1%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var out []*models.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

// Count returns the number of reviews matching the filter
func (r *ReviewRepository) Count(ctx context.Context, filter ReviewFilter) (int64, error) {
	clause, args := filter.where()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM silens_reviews WHERE 1=1%s`, clause)

	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// SeverityBreakdown holds review counts by severity plus the overall average
// within a window.
type SeverityBreakdown struct {
	Counts  map[int16]int64 `json:"counts"`
	Average float64         `json:"average"`
	Total   int64           `json:"total"`
}

// BreakdownSince aggregates reviews created at or after the given unix
// timestamp.
func (r *ReviewRepository) BreakdownSince(ctx context.Context, sinceUnix uint64) (*SeverityBreakdown, error) {
	rows, err := r.q.Query(ctx, `
		SELECT severity, COUNT(*)
		FROM silens_reviews
		WHERE created_at >= $1
		GROUP BY severity
	`, sinceUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to query severity breakdown: %w", err)
	}
	defer rows.Close()

	out := &SeverityBreakdown{Counts: make(map[int16]int64)}
	var weighted int64
	for rows.Next() {
		var severity int16
		var count int64
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("failed to scan severity breakdown: %w", err)
		}
		out.Counts[severity] = count
		out.Total += count
		weighted += int64(severity) * count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if out.Total > 0 {
		out.Average = float64(weighted) / float64(out.Total)
	}
	return out, nil
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var rev models.Review
	err := row.Scan(
		&rev.ID,
		&rev.ModelID,
		&rev.Reviewer,
		&rev.IPFSHash,
		&rev.Severity,
		&rev.Timestamp,
		&rev.CreatedAt,
		&rev.CreationTxHash,
		&rev.CreationBlockNumber,
	)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}
