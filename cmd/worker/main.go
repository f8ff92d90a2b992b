package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arthabooks/arthabooks/internal/app"
	"github.com/arthabooks/arthabooks/internal/invoices"
	"github.com/arthabooks/arthabooks/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	invoicesRepo := invoices.NewRepository(pool)
	invoicesService := invoices.NewService(invoicesRepo, logger)
	billing := jobs.NewBillingHandlers(logger, invoicesService)

	royaltyTask, err := jobs.NewBillingRoyaltyTask(jobs.BillingPayload{})
	if err != nil {
		logger.Error("build royalty task", slog.Any("error", err))
		os.Exit(1)
	}
	interestTask, err := jobs.NewBillingInterestTask(jobs.BillingPayload{})
	if err != nil {
		logger.Error("build interest task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskBillingRoyalty, Handler: billing.HandleRoyalty},
			{Type: jobs.TaskBillingInterest, Handler: billing.HandleInterest},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RoyaltyBillingCron, Task: royaltyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.InterestBillingCron, Task: interestTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
