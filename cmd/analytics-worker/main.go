package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/orderdesk-backend/internal/analytics"
	"github.com/angelmondragon/orderdesk-backend/pkg/bigquery"
	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus/transport"
	"github.com/angelmondragon/orderdesk-backend/pkg/instance"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/registry"
	"github.com/angelmondragon/orderdesk-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "analytics-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "analytics-worker"

	logg = logger.New(logger.Options{
		ServiceName: "analytics-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	subscriber, err := transport.NewSubscriber(ctx, cfg, logg, cfg.PubSub.AnalyticsSubscription)
	requireResource(ctx, logg, "event bus subscriber", err)
	defer func() {
		if err := subscriber.Close(); err != nil {
			logg.Error(ctx, "failed to close subscriber", err)
		}
	}()

	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	requireResource(ctx, logg, "bigquery client", err)
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(ctx, "failed to close bigquery client", err)
		}
	}()

	dedupe, err := idempotency.NewDeduper(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "deduper", err)

	writer, err := analytics.NewWriter(bqClient, cfg.BigQuery.OrderEventsTable, analytics.RetryPolicy{})
	requireResource(ctx, logg, "analytics bigquery writer", err)

	consumer, err := analytics.NewConsumer(analytics.ConsumerParams{
		Subscriber: subscriber,
		Decoder:    registry.NewDecoderRegistry(),
		Writer:     writer,
		Dedupe:     dedupe,
		Logger:     logg,
	})
	requireResource(ctx, logg, "analytics consumer", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.ID(),
		"eventBus":    cfg.EventBus.Driver,
	})
	logg.Info(runCtx, "analytics worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "analytics worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
