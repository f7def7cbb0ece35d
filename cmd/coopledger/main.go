package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"coopledger/internal/amqp"
	"coopledger/internal/cli"
	apphttp "coopledger/internal/http"
	applog "coopledger/internal/log"
	"coopledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendResult := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if backendResult.Cleanup != nil {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}()
	store := backendResult.Store

	// AMQP is optional: without a broker the ledger works, saved reports are
	// just not announced.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without announcements", "error", err)
		} else {
			defer amqpClient.Close()
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	loanService := services.NewLoanService(store)
	contributionService := services.NewContributionService(store)
	cashService := services.NewCashService(store)
	reportService := services.NewReportService(store, amqpClient, cfg.BalanceWarnToleranceCents)

	srv := apphttp.NewServer(":"+cfg.Port, loanService, contributionService, cashService, reportService)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting coopledger server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
