package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	redisv9 "github.com/redis/go-redis/v9"

	"stock_dashboard/internal/app/di"
	"stock_dashboard/internal/app/router"
	"stock_dashboard/internal/app/scheduler"
	"stock_dashboard/internal/app/seed"
	analysisadapters "stock_dashboard/internal/feature/analysis/adapters"
	analysishandler "stock_dashboard/internal/feature/analysis/transport/handler"
	analysisusecase "stock_dashboard/internal/feature/analysis/usecase"
	charthandler "stock_dashboard/internal/feature/chart/transport/handler"
	chartusecase "stock_dashboard/internal/feature/chart/usecase"
	instrumentadapters "stock_dashboard/internal/feature/instrument/adapters"
	instrumenthandler "stock_dashboard/internal/feature/instrument/transport/handler"
	instrumentusecase "stock_dashboard/internal/feature/instrument/usecase"
	priceadapters "stock_dashboard/internal/feature/prices/adapters"
	priceshandler "stock_dashboard/internal/feature/prices/transport/handler"
	pricesusecase "stock_dashboard/internal/feature/prices/usecase"
	"stock_dashboard/internal/platform/cache"
	"stock_dashboard/internal/platform/config"
	infradb "stock_dashboard/internal/platform/db"
	"stock_dashboard/internal/platform/http/handler"
	"stock_dashboard/internal/platform/logging"
	"stock_dashboard/internal/platform/metrics"
	infraredis "stock_dashboard/internal/platform/redis"
	"stock_dashboard/internal/shared/ratelimiter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if cfg.RunMigrations {
		if err := infradb.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	// Redis（無くても動作する）
	rdb, err := infraredis.NewRedisClient(ctx)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Repository
	instrumentRepo := instrumentadapters.NewInstrumentRepository(db)
	priceRepo := cache.NewCachingPriceRepository(rdb, cfg.PriceCacheTTL, priceadapters.NewPriceRepository(db), "prices")
	historyRepo := analysisadapters.NewHistoryRepository(db)
	watchlistRepo := analysisadapters.NewWatchlistRepository(db)

	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			slog.Error("failed to load seed file", "error", err)
			os.Exit(1)
		}
		if _, err := seed.Apply(ctx, f, instrumentRepo, watchlistRepo); err != nil {
			slog.Error("failed to apply seed file", "error", err)
			os.Exit(1)
		}
	}

	analyzer, err := di.NewAnalyzer(ctx, cfg)
	if err != nil {
		slog.Error("failed to create analyzer", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	// Usecase
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	instrumentUC := instrumentusecase.NewInstrumentUsecase(instrumentRepo)
	pricesUC := pricesusecase.NewPricesUsecase(priceRepo, instrumentRepo)
	syncUC := pricesusecase.NewSyncUsecase(di.NewMarket(rdb), priceRepo, instrumentRepo, limiter)
	chartUC := chartusecase.NewChartUsecase(pricesUC)
	analysisUC := analysisusecase.NewAnalysisUsecase(analyzer, instrumentRepo, priceRepo, historyRepo)
	batch := analysisusecase.NewDailyBatch(analysisUC, watchlistRepo, syncUC, limiter, m)

	// Handler
	engine := router.NewRouter(router.Handlers{
		Instruments: instrumenthandler.NewInstrumentHandler(instrumentUC),
		Prices:      priceshandler.NewPricesHandler(pricesUC, syncUC),
		Chart:       charthandler.NewChartHandler(chartUC),
		Analysis:    analysishandler.NewAnalysisHandler(analysisUC, batch),
		Ready:       handler.Readiness(2*time.Second, readinessChecks(db.DB, rdb)),
	}, m)

	// スケジューラ
	var sched *scheduler.Scheduler
	if cfg.BatchEnabled {
		loc, _ := time.LoadLocation(cfg.BatchTimezone) // validated by config.Load
		sched = scheduler.NewScheduler(ctx, loc, batch, analysisUC)
		if err := sched.Register(cfg.BatchCron); err != nil {
			slog.Error("failed to register batch", "error", err)
			os.Exit(1)
		}
		sched.Start()
		go func() {
			if _, err := sched.RunIfNoHistory(ctx); err != nil {
				slog.Error("startup batch failed", "error", err)
			}
		}()
	}

	// JWT_SECRETチェック（管理APIは常に401/500になる）
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set. Admin routes are unusable.")
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: engine, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func readinessChecks(sqlDB func() (*sql.DB, error), rdb *redisv9.Client) map[string]handler.Check {
	checks := map[string]handler.Check{
		"db": func(ctx context.Context) error {
			d, err := sqlDB()
			if err != nil {
				return err
			}
			return d.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
