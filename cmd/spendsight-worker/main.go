package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendsight/internal/amqp"
	"spendsight/internal/config"
	"spendsight/internal/insights"
	"spendsight/internal/log"
	"spendsight/internal/storage"
	"spendsight/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.Setup()
	logger.Info("Starting spendsight-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// The worker regenerates digests from stored expenses, so it needs the
	// shared SQLite database rather than a private memory store.
	repo, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Digests are rule-based; the worker never calls an AI provider.
	insightsService := insights.NewService(insights.NewAnalyzer(repo, repo), nil, repo)
	digestWorker := worker.NewDigestWorker(insightsService, repo).WithDebounce(cfg.DigestDebounce)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeExpenseEvents(ctx, func(msg *amqp.ExpenseEventMessage) error {
			return digestWorker.HandleExpenseEvent(ctx, msg)
		})
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}

	cancel()

	// Give the in-flight handler a moment to finish.
	select {
	case <-consumeErr:
	case <-time.After(5 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
	logger.Info("Worker shutdown complete")
}
