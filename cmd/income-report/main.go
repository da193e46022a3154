package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angelmondragon/orderdesk-backend/internal/income"
	"github.com/angelmondragon/orderdesk-backend/internal/stores"
	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "income-report", Output: os.Stderr})

	_ = godotenv.Load()

	storeFlag := flag.String("store", "", "store id")
	fromFlag := flag.String("from", "", "first day included (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "first day excluded (YYYY-MM-DD)")
	format := flag.String("format", formatTable, "output format: table|json")
	flag.Parse()

	storeID, err := uuid.Parse(*storeFlag)
	if err != nil {
		fail("invalid -store: %v", err)
	}
	from, err := parseDay(*fromFlag)
	if err != nil {
		fail("invalid -from: %v", err)
	}
	to, err := parseDay(*toFlag)
	if err != nil {
		fail("invalid -to: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "income-report",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		Output:      os.Stderr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	svc, err := income.NewService(income.NewRepository(dbClient.DB()), stores.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create income service", err)
		os.Exit(1)
	}

	report, err := svc.Report(ctx, storeID, income.Range{From: from, To: to})
	if err != nil {
		logg.Error(logg.WithStoreID(ctx, storeID.String()), "income report failed", err)
		os.Exit(1)
	}
	if err := render(os.Stdout, report, *format); err != nil {
		fail("render: %v", err)
	}
}

func parseDay(raw string) (time.Time, error) {
	return time.Parse(time.DateOnly, raw)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
