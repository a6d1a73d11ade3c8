// Package worker runs the chain polling loop that feeds the projection.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/config"
	"github.com/silens-indexer/internal/logging"
	"github.com/silens-indexer/internal/retry"
	"github.com/silens-indexer/internal/storage"
)

// ProgressName is the indexer_progress row key for the event worker
const ProgressName = "silens"

// ChainSource abstracts the RPC client for testing
type ChainSource interface {
	LatestBlock(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, from, to uint64) ([]ethtypes.Log, error)
	BlockTime(ctx context.Context, number uint64) (uint64, error)
}

// Applier abstracts the projector for testing
type Applier interface {
	Apply(ctx context.Context, e *chain.Event) error
}

// ProgressStore abstracts progress persistence for testing
type ProgressStore interface {
	Get(ctx context.Context, name string) (uint64, bool, error)
	Save(ctx context.Context, name string, block uint64) error
}

// Archiver abstracts the analytical event archive for testing
type Archiver interface {
	InsertBatch(ctx context.Context, events []storage.ArchivedEvent) error
}

// Worker polls for confirmed logs, decodes them and applies them in chain
// order. Events are applied serially; per-event ordering is part of the
// projection's correctness, so there is exactly one worker per deployment.
type Worker struct {
	source   ChainSource
	decoder  *chain.Decoder
	applier  Applier
	progress ProgressStore
	archive  Archiver

	startBlock       uint64
	confirmations    uint64
	maxBlocksPerPoll uint64
	pollInterval     time.Duration
	retryCfg         *retry.Config

	log     *logging.Logger
	running bool
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds worker construction parameters
type Config struct {
	Source   ChainSource
	Decoder  *chain.Decoder
	Applier  Applier
	Progress ProgressStore
	Archive  Archiver // optional, nil disables archiving
	Chain    *config.ChainConfig
	Retry    *retry.Config // optional, defaults apply
}

// New creates a worker
func New(cfg *Config) (*Worker, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("chain source cannot be nil")
	}
	if cfg.Decoder == nil {
		return nil, fmt.Errorf("decoder cannot be nil")
	}
	if cfg.Applier == nil {
		return nil, fmt.Errorf("applier cannot be nil")
	}
	if cfg.Progress == nil {
		return nil, fmt.Errorf("progress repository cannot be nil")
	}

	retryCfg := cfg.Retry
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}

	maxBlocks := uint64(cfg.Chain.MaxBlocksPerPoll)
	if maxBlocks == 0 {
		maxBlocks = 1
	}

	return &Worker{
		source:           cfg.Source,
		decoder:          cfg.Decoder,
		applier:          cfg.Applier,
		progress:         cfg.Progress,
		archive:          cfg.Archive,
		startBlock:       cfg.Chain.StartBlock,
		confirmations:    cfg.Chain.Confirmations,
		maxBlocksPerPoll: maxBlocks,
		pollInterval:     cfg.Chain.PollInterval,
		retryCfg:         retryCfg,
		log:              logging.WithComponent("worker"),
	}, nil
}

// Start launches the polling loop. A stopped worker can be started again;
// each run gets fresh stop and done channels.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("worker is already running")
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	from, err := w.resumeBlock(ctx)
	if err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.log.WithField("block", from).Info("Worker starting")

	go w.pollLoop(ctx, from, w.stopCh, w.doneCh)
	return nil
}

// Stop signals the loop and waits for it to drain. Stopping an idle worker
// is a no-op, so Stop is safe to call more than once.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	doneCh := w.doneCh
	w.mu.Unlock()

	select {
	case <-doneCh:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// resumeBlock picks the first unprocessed block: one past the saved progress
// when it is ahead of the configured start block
func (w *Worker) resumeBlock(ctx context.Context) (uint64, error) {
	saved, ok, err := w.progress.Get(ctx, ProgressName)
	if err != nil {
		return 0, fmt.Errorf("failed to load progress: %w", err)
	}
	if ok && saved+1 > w.startBlock {
		return saved + 1, nil
	}
	return w.startBlock, nil
}

// pollLoop owns the channels of the run that launched it; a restart gets a
// fresh pair, so a draining loop never signals the wrong run.
func (w *Worker) pollLoop(ctx context.Context, from uint64, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker context cancelled")
			return
		case <-stopCh:
			w.log.Info("Worker stop requested")
			return
		case <-ticker.C:
			next, err := w.PollOnce(ctx, from)
			if err != nil {
				// Applying a recognized event failed past retries. Skipping
				// would silently corrupt the aggregates, so the worker halts
				// at the failed position instead.
				w.log.WithError(err).WithField("block", from).Error("Worker halted")
				return
			}
			from = next
		}
	}
}

// PollOnce processes at most one batch of confirmed blocks starting at from.
// It returns the next block to process.
func (w *Worker) PollOnce(ctx context.Context, from uint64) (uint64, error) {
	head, err := w.source.LatestBlock(ctx)
	if err != nil {
		w.log.WithError(err).Warn("Failed to fetch chain head")
		return from, nil
	}
	if head < w.confirmations {
		return from, nil
	}

	confirmed := head - w.confirmations
	if confirmed < from {
		return from, nil
	}

	to := confirmed
	if to-from+1 > w.maxBlocksPerPoll {
		to = from + w.maxBlocksPerPoll - 1
	}

	events, err := w.collectEvents(ctx, from, to)
	if err != nil {
		w.log.WithError(err).WithFields(map[string]interface{}{
			"from": from,
			"to":   to,
		}).Warn("Failed to collect logs, retrying next cycle")
		return from, nil
	}

	for _, e := range events {
		if err := w.applyWithRetry(ctx, e); err != nil {
			return from, fmt.Errorf("failed to apply %s at %s: %w", e.Kind, e.Position(), err)
		}
	}

	if w.archive != nil && len(events) > 0 {
		go w.archiveEvents(events)
	}

	if err := w.progress.Save(ctx, ProgressName, to); err != nil {
		// Progress is only an optimization; replays are idempotent for the
		// append-only tables and the worker logs the gap.
		w.log.WithError(err).WithField("block", to).Error("Failed to save progress")
	}

	if len(events) > 0 {
		w.log.WithFields(map[string]interface{}{
			"from":   from,
			"to":     to,
			"events": len(events),
		}).Info("Applied events")
	}
	return to + 1, nil
}

// collectEvents filters, decodes and orders the range's logs
func (w *Worker) collectEvents(ctx context.Context, from, to uint64) ([]*chain.Event, error) {
	logs, err := w.source.FilterLogs(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}

	blockTimes := make(map[uint64]uint64)
	events := make([]*chain.Event, 0, len(logs))
	for _, l := range logs {
		if len(l.Topics) == 0 || !w.decoder.Known(l.Topics[0]) {
			// Configured contracts also emit events the projection does not
			// track; record each skip so a topic mismatch is visible.
			fields := map[string]interface{}{
				"contract": l.Address.Hex(),
				"block":    l.BlockNumber,
			}
			if len(l.Topics) > 0 {
				fields["topic0"] = l.Topics[0].Hex()
			}
			w.log.WithFields(fields).Debug("Skipping unprojected log")
			continue
		}

		bt, ok := blockTimes[l.BlockNumber]
		if !ok {
			bt, err = w.source.BlockTime(ctx, l.BlockNumber)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch block %d time: %w", l.BlockNumber, err)
			}
			blockTimes[l.BlockNumber] = bt
		}

		e, err := w.decoder.Decode(l, bt)
		if err != nil {
			return nil, fmt.Errorf("failed to decode log at %d:%d: %w", l.BlockNumber, l.Index, err)
		}
		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.LogIndex < b.LogIndex
	})
	return events, nil
}

func (w *Worker) applyWithRetry(ctx context.Context, e *chain.Event) error {
	return retry.Do(ctx, w.retryCfg, func(ctx context.Context, _ int) error {
		return w.applier.Apply(ctx, e)
	})
}

// archiveEvents writes the batch to the analytical store, best effort
func (w *Worker) archiveEvents(events []*chain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	batch := make([]storage.ArchivedEvent, 0, len(events))
	for _, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			payload = []byte("{}")
		}
		batch = append(batch, storage.ArchivedEvent{
			ID:              e.Position(),
			Kind:            string(e.Kind),
			ContractAddress: e.Contract,
			TxHash:          e.TxHash,
			BlockNumber:     e.BlockNumber,
			TxIndex:         uint32(e.TxIndex),
			LogIndex:        uint32(e.LogIndex),
			BlockTimestamp:  time.Unix(int64(e.BlockTime), 0).UTC(),
			Payload:         string(payload),
		})
	}

	if err := w.archive.InsertBatch(ctx, batch); err != nil {
		w.log.WithError(err).WithField("events", len(batch)).Warn("Event archive insert failed")
	}
}
