package main

import (
	"context"
	"errors"
	"os"
	"time"

	"coopledger/internal/amqp"
	"coopledger/internal/cli"
	applog "coopledger/internal/log"
	"coopledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting report-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
		os.Exit(1)
	}

	backendResult := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	announceWorker := worker.NewAnnounceWorker(backendResult.Store)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		handler := func(msg *amqp.ReportPublishedMessage) error {
			return announceWorker.HandleAnnouncement(ctx, msg)
		}
		if err := amqpClient.ConsumeReportPublished(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Report worker stopped")
}
