package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-dlq", Output: os.Stderr})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "list", "list|replay")
	reason := flag.String("reason", "", "list: only this error reason (max_attempts|non_retryable)")
	eventType := flag.String("type", "", "list: only this event type")
	limit := flag.Int("limit", 50, "list: max entries")
	eventFlag := flag.String("event", "", "replay: event id to requeue")
	flag.Parse()

	filter := outbox.DLQFilter{EventType: enums.OutboxEventType(*eventType), Limit: *limit}
	if *reason != "" {
		parsed, err := enums.ParseOutboxDLQErrorReason(*reason)
		if err != nil {
			fail("invalid -reason: %v", err)
		}
		filter.Reason = parsed
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "outbox-dlq",
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
	repo := outbox.NewDLQRepository(dbClient.DB())

	switch *cmd {
	case "list":
		rows, err := repo.List(ctx, filter)
		if err != nil {
			logg.Error(ctx, "dlq list failed", err)
			os.Exit(1)
		}
		if err := renderDeadLetters(os.Stdout, rows); err != nil {
			fail("render: %v", err)
		}

	case "replay":
		eventID, err := uuid.Parse(*eventFlag)
		if err != nil {
			fail("invalid -event: %v", err)
		}
		ctx = logg.WithEvent(ctx, eventID.String(), "")
		switch err := repo.Replay(ctx, eventID); {
		case errors.Is(err, outbox.ErrDeadLetterNotFound):
			fail("no dead letter for event %s", eventID)
		case err != nil:
			logg.Error(ctx, "dlq replay failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "dlq.replayed")
		fmt.Println("requeued", eventID)

	default:
		fail("unknown -cmd value: %s", *cmd)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
