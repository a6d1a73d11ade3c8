// Package main provides the chain indexer entry point for the Silens indexer.
// It polls BSC testnet for contract events and projects them into Postgres,
// with an optional ClickHouse archive of every decoded event.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/silens-indexer/internal/chain"
	"github.com/silens-indexer/internal/config"
	"github.com/silens-indexer/internal/logging"
	"github.com/silens-indexer/internal/projection"
	"github.com/silens-indexer/internal/storage"
	"github.com/silens-indexer/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.WithComponent("indexer")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// The archive is best effort: the indexer runs without ClickHouse.
	var archive worker.Archiver
	clickhouse, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	if err != nil {
		logger.WithError(err).Warn("ClickHouse unavailable, event archive disabled")
	} else {
		defer clickhouse.Close()
		eventArchive := storage.NewEventArchive(clickhouse)
		archive = eventArchive
		logArchiveState(eventArchive, logger)
	}

	client, err := chain.NewClient(&cfg.Chain)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to chain RPC")
	}
	defer client.Close()

	w, err := worker.New(&worker.Config{
		Source:   client,
		Decoder:  chain.NewDecoder(),
		Applier:  projection.NewProjector(postgres),
		Progress: storage.NewProgressRepository(postgres.Pool()),
		Archive:  archive,
		Chain:    &cfg.Chain,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start worker")
	}
	logger.WithFields(map[string]interface{}{
		"startBlock":    cfg.Chain.StartBlock,
		"confirmations": cfg.Chain.Confirmations,
		"pollInterval":  cfg.Chain.PollInterval.String(),
	}).Info("Indexer running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.WithField("signal", sig.String()).Info("Shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("Worker did not stop cleanly")
	}
	logger.Info("Indexer stopped")
}

// logArchiveState reports what the archive already holds, a quick sanity
// check that the indexer is resuming against the expected dataset.
func logArchiveState(archive *storage.EventArchive, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := archive.CountByKind(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to read archive event counts")
		return
	}

	var total uint64
	fields := make(map[string]interface{}, len(counts)+1)
	for kind, cnt := range counts {
		fields[kind] = cnt
		total += cnt
	}
	fields["total"] = total
	logger.WithFields(fields).Info("Event archive state")
}
