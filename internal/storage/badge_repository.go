package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
)

// BadgeRepository handles badge persistence. Badges are append-only.
type BadgeRepository struct {
	q Querier
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(q Querier) *BadgeRepository {
	return &BadgeRepository{q: q}
}

const badgeColumns = `id, user_id, badge_id, badge_name, awarded_at,
	created_at, updated_at, creation_tx_hash, creation_block_number`

// Insert creates a badge row, ignoring replays via the deterministic id
func (r *BadgeRepository) Insert(ctx context.Context, b *models.Badge) error {
	query := `
		INSERT INTO silens_badges (` + badgeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query,
		b.ID,
		b.UserID,
		b.BadgeID,
		b.BadgeName,
		b.AwardedAt,
		b.CreatedAt,
		b.UpdatedAt,
		b.CreationTxHash,
		b.CreationBlockNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to insert badge: %w", err)
	}
	return nil
}

// BadgeFilter narrows List and Count
type BadgeFilter struct {
	UserID  string
	BadgeID *int64
}

func (f BadgeFilter) where() (string, []any) {
	clause := ""
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		clause += " AND user_id = $" + strconv.Itoa(len(args))
	}
	if f.BadgeID != nil {
		args = append(args, *f.BadgeID)
		clause += " AND badge_id = $" + strconv.Itoa(len(args))
	}
	return clause, args
}

// List retrieves badges matching the filter, newest first
func (r *BadgeRepository) List(ctx context.Context, filter BadgeFilter, limit, offset int) ([]*models.Badge, error) {
	clause, args := filter.where()
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT `+badgeColumns+`
		FROM silens_badges
		WHERE 1=1%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, clause, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var out []*models.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Count returns the number of badges matching the filter
func (r *BadgeRepository) Count(ctx context.Context, filter BadgeFilter) (int64, error) {
	clause, args := filter.where()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM silens_badges WHERE 1=1%s`, clause)

	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count badges: %w", err)
	}
	return count, nil
}

func scanBadge(row pgx.Row) (*models.Badge, error) {
	var b models.Badge
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.BadgeID,
		&b.BadgeName,
		&b.AwardedAt,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.CreationTxHash,
		&b.CreationBlockNumber,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
