package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"stock_dashboard/internal/app/di"
	instrumentadapters "stock_dashboard/internal/feature/instrument/adapters"
	priceadapters "stock_dashboard/internal/feature/prices/adapters"
	pricesusecase "stock_dashboard/internal/feature/prices/usecase"
	"stock_dashboard/internal/platform/cache"
	"stock_dashboard/internal/platform/db"
	"stock_dashboard/internal/platform/logging"
	infraredis "stock_dashboard/internal/platform/redis"
	"stock_dashboard/internal/shared/ratelimiter"
)

func main() {
	days := flag.Int("days", 30, "number of recent days to sync per instrument")
	perMinute := flag.Int("rate", 60, "maximum KIS requests per minute")
	flag.Parse()

	logging.NewLogger(os.Getenv("LOG_LEVEL"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	gdb, err := db.OpenDB(db.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	// Redisがあればアクセストークンの共有とキャッシュ無効化に使う
	rdb, err := infraredis.NewRedisClient(ctx)
	if err != nil {
		slog.Warn("Redis unavailable", "error", err)
		rdb = nil
	} else {
		defer func() { _ = rdb.Close() }()
	}

	instrumentRepo := instrumentadapters.NewInstrumentRepository(gdb)
	priceRepo := cache.NewCachingPriceRepository(rdb, 0, priceadapters.NewPriceRepository(gdb), "prices")
	uc := pricesusecase.NewSyncUsecase(di.NewMarket(rdb), priceRepo, instrumentRepo, ratelimiter.NewRateLimiter(*perMinute, time.Minute))

	codes, err := instrumentRepo.ListActiveCodes(ctx)
	if err != nil {
		slog.Error("failed to load instruments", "error", err)
		os.Exit(1)
	}

	if err := uc.SyncAll(ctx, codes, *days); err != nil {
		slog.Error("ingest finished with errors", "instruments", len(codes), "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok", "instruments", len(codes), "days", *days)
}
