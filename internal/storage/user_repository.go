package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/silens-indexer/internal/models"
	"github.com/silens-indexer/internal/types"
)

// UserRepository handles user persistence. A user row is created on the first
// event touching an address; firstActivity fields never change afterwards.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

const userColumns = `address, identity_token_id, reputation_score, verified_platforms,
	created_at, updated_at, first_activity_tx_hash, first_activity_block_number,
	last_activity_tx_hash, last_activity_block_number`

// Touch carries the event provenance shared by every user upsert
type Touch struct {
	Timestamp   types.Quantity
	TxHash      string
	BlockNumber types.Quantity
}

// UpsertReputation records an absolute reputation snapshot for an address,
// creating the user on first sight. The score overwrites; it is never summed.
func (r *UserRepository) UpsertReputation(ctx context.Context, address string, newScore int64, t Touch) error {
	query := `
		INSERT INTO silens_users (` + userColumns + `)
		VALUES ($1, NULL, $2, '', $3, $3, $4, $5, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			reputation_score = EXCLUDED.reputation_score,
			updated_at = EXCLUDED.updated_at,
			last_activity_tx_hash = EXCLUDED.last_activity_tx_hash,
			last_activity_block_number = EXCLUDED.last_activity_block_number
	`

	if _, err := r.q.Exec(ctx, query, address, newScore, t.Timestamp, t.TxHash, t.BlockNumber); err != nil {
		return fmt.Errorf("failed to upsert user reputation: %w", err)
	}
	return nil
}

// UpsertIdentity links a minted identity token to an address, creating the
// user on first sight
func (r *UserRepository) UpsertIdentity(ctx context.Context, address string, tokenID types.Quantity, t Touch) error {
	query := `
		INSERT INTO silens_users (` + userColumns + `)
		VALUES ($1, $2, 0, '', $3, $3, $4, $5, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			identity_token_id = EXCLUDED.identity_token_id,
			updated_at = EXCLUDED.updated_at,
			last_activity_tx_hash = EXCLUDED.last_activity_tx_hash,
			last_activity_block_number = EXCLUDED.last_activity_block_number
	`

	if _, err := r.q.Exec(ctx, query, address, tokenID, t.Timestamp, t.TxHash, t.BlockNumber); err != nil {
		return fmt.Errorf("failed to upsert user identity: %w", err)
	}
	return nil
}

// AppendPlatform appends a "platform:username" entry to the comma-joined
// verifiedPlatforms scalar in one statement, creating the user if needed.
// Entries are appended in event order and never deduplicated.
func (r *UserRepository) AppendPlatform(ctx context.Context, address, entry string, t Touch) error {
	query := `
		INSERT INTO silens_users (` + userColumns + `)
		VALUES ($1, NULL, 0, $2, $3, $3, $4, $5, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			verified_platforms = CASE
				WHEN silens_users.verified_platforms = '' THEN EXCLUDED.verified_platforms
				ELSE silens_users.verified_platforms || ',' || EXCLUDED.verified_platforms
			END,
			updated_at = EXCLUDED.updated_at,
			last_activity_tx_hash = EXCLUDED.last_activity_tx_hash,
			last_activity_block_number = EXCLUDED.last_activity_block_number
	`

	if _, err := r.q.Exec(ctx, query, address, entry, t.Timestamp, t.TxHash, t.BlockNumber); err != nil {
		return fmt.Errorf("failed to append verified platform: %w", err)
	}
	return nil
}

// GetByAddress retrieves a user, returning nil when it does not exist
func (r *UserRepository) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM silens_users WHERE address = $1`

	u, err := scanUser(r.q.QueryRow(ctx, query, address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// Search finds users whose address or verified platform handles contain the
// query, case-insensitively
func (r *UserRepository) Search(ctx context.Context, q string, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM silens_users
		WHERE address ILIKE '%' || $1 || '%' OR verified_platforms ILIKE '%' || $1 || '%'
		ORDER BY reputation_score DESC, address ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AverageReputation returns the mean reputation score across all users, 0
// when there are none
func (r *UserRepository) AverageReputation(ctx context.Context) (float64, error) {
	var avg float64
	query := `SELECT COALESCE(AVG(reputation_score), 0) FROM silens_users`

	if err := r.q.QueryRow(ctx, query).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to compute average reputation: %w", err)
	}
	return avg, nil
}

// Count returns the total number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM silens_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.Address,
		&u.IdentityTokenID,
		&u.ReputationScore,
		&u.VerifiedPlatforms,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.FirstActivityTxHash,
		&u.FirstActivityBlockNumber,
		&u.LastActivityTxHash,
		&u.LastActivityBlockNumber,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
