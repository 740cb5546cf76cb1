// Command seed upserts instruments and the analysis watchlist from a YAML file.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"stock_dashboard/internal/app/seed"
	analysisadapters "stock_dashboard/internal/feature/analysis/adapters"
	instrumentadapters "stock_dashboard/internal/feature/instrument/adapters"
	"stock_dashboard/internal/platform/db"
	"stock_dashboard/internal/platform/logging"
)

func main() {
	path := flag.String("file", "seed.yaml", "path to the seed YAML file")
	migrate := flag.Bool("migrate", true, "create missing tables before seeding")
	flag.Parse()

	logging.NewLogger(os.Getenv("LOG_LEVEL"))
	ctx := context.Background()

	f, err := seed.LoadFile(*path)
	if err != nil {
		slog.Error("failed to load seed file", "error", err)
		os.Exit(1)
	}

	gdb, err := db.OpenDB(db.LoadConfigFromEnv())
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	if *migrate {
		if err := db.Migrate(gdb); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	res, err := seed.Apply(ctx, f, instrumentadapters.NewInstrumentRepository(gdb), analysisadapters.NewWatchlistRepository(gdb))
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seed ok", "instruments", res.Instruments, "watchlist", res.Watchlist)
}
