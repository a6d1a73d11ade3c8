// Package main provides the read API server entry point for the Silens indexer.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/silens-indexer/internal/api"
	"github.com/silens-indexer/internal/config"
	"github.com/silens-indexer/internal/ipfs"
	"github.com/silens-indexer/internal/logging"
	"github.com/silens-indexer/internal/service"
	"github.com/silens-indexer/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.WithComponent("server")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	stores := storage.NewStores(postgres.Pool())
	cache := storage.NewCacheService(redis, cfg.Cache.TTL)
	ipfsClient := ipfs.NewClient(&cfg.IPFS)

	modelService := service.NewModelService(stores.Models, stores.Reviews, stores.Proposals, stores.Stats, ipfsClient)
	proposalService := service.NewProposalService(stores.Proposals, stores.Votes, stores.Stats)
	userService := service.NewUserService(stores.Users, stores.Stats, stores.Badges, stores.Identities, stores.Reputation, stores.Models, stores.Reviews, ipfsClient)
	analyticsService := service.NewAnalyticsService(stores.Models, stores.Reviews, stores.Proposals, stores.Users, stores.Stats, cache)
	searchService := service.NewSearchService(stores.Models, stores.Users, stores.Reviews)

	serverCfg := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	server := api.NewServer(serverCfg, modelService, proposalService, userService, analyticsService, searchService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("API server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Server stopped")
}
