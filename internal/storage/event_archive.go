package storage

import (
	"context"
	"fmt"
	"time"
)

// ArchivedEvent is one decoded contract event flattened for the ClickHouse
// archive. The archive is an append-only audit trail; the Postgres projection
// is the source of truth for serving.
type ArchivedEvent struct {
	ID              string
	Kind            string
	ContractAddress string
	TxHash          string
	BlockNumber     uint64
	TxIndex         uint32
	LogIndex        uint32
	BlockTimestamp  time.Time
	Payload         string // decoded args as JSON
}

// EventArchive writes decoded events to ClickHouse in batches
type EventArchive struct {
	db *ClickHouseDB
}

// NewEventArchive creates a new event archive repository
func NewEventArchive(db *ClickHouseDB) *EventArchive {
	return &EventArchive{db: db}
}

// InsertBatch inserts a batch of decoded events
func (a *EventArchive) InsertBatch(ctx context.Context, events []ArchivedEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := a.db.conn.PrepareBatch(ctx, `
		INSERT INTO silens_events (
			id, kind, contract_address, tx_hash,
			block_number, tx_index, log_index, block_timestamp, payload
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, e := range events {
		err := batch.Append(
			e.ID,
			e.Kind,
			e.ContractAddress,
			e.TxHash,
			e.BlockNumber,
			e.TxIndex,
			e.LogIndex,
			e.BlockTimestamp,
			e.Payload,
		)
		if err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
	}

	return batch.Send()
}

// CountByKind returns archived event counts grouped by kind
func (a *EventArchive) CountByKind(ctx context.Context) (map[string]uint64, error) {
	rows, err := a.db.conn.Query(ctx, `
		SELECT kind, count() AS cnt
		FROM silens_events
		GROUP BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var kind string
		var cnt uint64
		if err := rows.Scan(&kind, &cnt); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[kind] = cnt
	}
	return counts, rows.Err()
}
