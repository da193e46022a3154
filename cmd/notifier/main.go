package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/orderdesk-backend/internal/notifications"
	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus/transport"
	"github.com/angelmondragon/orderdesk-backend/pkg/instance"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/messaging"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/idempotency"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/registry"
	"github.com/angelmondragon/orderdesk-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "notifier"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "notifier"

	logg = logger.New(logger.Options{
		ServiceName: "notifier",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	subscriber, err := transport.NewSubscriber(ctx, cfg, logg, cfg.PubSub.OrdersSubscription)
	requireResource(ctx, logg, "event bus subscriber", err)
	defer subscriber.Close()

	messagingClient, err := messaging.NewClient(cfg.Messaging)
	requireResource(ctx, logg, "messaging client", err)

	sender, err := notifications.NewRetryingSender(messagingClient, cfg.Messaging.MaxAttempts, cfg.Messaging.RetryBackoff)
	requireResource(ctx, logg, "notification sender", err)

	dedupe, err := idempotency.NewDeduper(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "deduper", err)

	notificationConsumer, err := notifications.NewConsumer(notifications.ConsumerParams{
		Subscriber: subscriber,
		Decoder:    registry.NewDecoderRegistry(),
		Dedupe:     dedupe,
		Sender:     sender,
		Logger:     logg,
	})
	requireResource(ctx, logg, "notification consumer", err)

	service, err := NewService(ServiceParams{
		Logger:   logg,
		Consumer: notificationConsumer,
		Dependencies: map[string]func(context.Context) error{
			"redis": redisClient.Ping,
		},
	})
	requireResource(ctx, logg, "notifier service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
		"instance":    instance.ID(),
		"eventBus":    cfg.EventBus.Driver,
	})
	logg.Info(runCtx, "notifier ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "notifier stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "notifier shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
