package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/arthabooks/arthabooks/internal/app"
	"github.com/arthabooks/arthabooks/internal/chit"
	"github.com/arthabooks/arthabooks/internal/customers"
	"github.com/arthabooks/arthabooks/internal/investments"
	"github.com/arthabooks/arthabooks/internal/invoices"
	"github.com/arthabooks/arthabooks/internal/observability"
	"github.com/arthabooks/arthabooks/internal/outstanding"
	"github.com/arthabooks/arthabooks/internal/shared"
	"github.com/arthabooks/arthabooks/internal/vouchers"
	"github.com/arthabooks/arthabooks/internal/wallets"
	"github.com/arthabooks/arthabooks/jobs"
	"github.com/arthabooks/arthabooks/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	partyLocker := shared.NewPartyLocker(redisClient, cfg.PartyLockTTL)
	metrics := observability.NewMetrics()

	customersRepo := customers.NewRepository(dbpool)
	customersService := customers.NewService(customersRepo)
	customersHandler := customers.NewHandler(logger, customersService)

	invoicesRepo := invoices.NewRepository(dbpool)
	invoicesService := invoices.NewService(invoicesRepo, logger)
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	vouchersRepo := vouchers.NewRepository(dbpool)
	vouchersService := vouchers.NewService(logger, vouchersRepo, partyLocker)
	vouchersHandler := vouchers.NewHandler(logger, vouchersService).WithMetrics(metrics)

	chitRepo := chit.NewRepository(dbpool)
	chitService := chit.NewService(logger, chitRepo)
	chitHandler := chit.NewHandler(logger, chitService)

	investmentsRepo := investments.NewRepository(dbpool)
	investmentsService := investments.NewService(investmentsRepo)
	investmentsHandler := investments.NewHandler(logger, investmentsService)

	walletsRepo := wallets.NewRepository(dbpool)
	walletsService := wallets.NewService(walletsRepo)
	walletsHandler := wallets.NewHandler(logger, walletsService)

	outstandingRepo := outstanding.NewRepository(dbpool)
	outstandingCache := outstanding.NewCache(logger, redisClient, cfg.OutstandingCacheTTL)
	outstandingService := outstanding.NewService(logger, outstandingRepo, outstandingCache)
	outstandingHandler := outstanding.NewHandler(logger, outstandingService)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, outstandingService, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(asynq.NewInspector(redisOpts), jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		CustomersHandler:   customersHandler,
		InvoicesHandler:    invoicesHandler,
		VouchersHandler:    vouchersHandler,
		ChitHandler:        chitHandler,
		InvestmentsHandler: investmentsHandler,
		WalletsHandler:     walletsHandler,
		OutstandingHandler: outstandingHandler,
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("arthabooks listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
