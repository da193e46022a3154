package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/orderdesk-backend/api/controllers"
	"github.com/angelmondragon/orderdesk-backend/api/routes"
	"github.com/angelmondragon/orderdesk-backend/internal/decisions"
	"github.com/angelmondragon/orderdesk-backend/internal/income"
	"github.com/angelmondragon/orderdesk-backend/internal/inventory"
	"github.com/angelmondragon/orderdesk-backend/internal/orders"
	"github.com/angelmondragon/orderdesk-backend/internal/products"
	"github.com/angelmondragon/orderdesk-backend/internal/review"
	"github.com/angelmondragon/orderdesk-backend/internal/stores"
	"github.com/angelmondragon/orderdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/metrics"
	"github.com/angelmondragon/orderdesk-backend/pkg/migrate"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
	"github.com/angelmondragon/orderdesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	deps, err := buildDeps(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("HOSTNAME")
	if id == "" {
		id = "local"
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Deps, error) {
	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	ordersRepo := orders.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repository: ordersRepo,
		Tx:         dbClient,
		Outbox:     emitter,
		Stores:     storeRepo,
		Catalog:    products.NewRepository(conn),
		Config:     cfg.Orders,
		Logger:     logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	policy := enums.OversellPolicy(strings.ToLower(strings.TrimSpace(cfg.Inventory.OversellPolicy)))
	ledger, err := inventory.NewLedger(inventory.NewRepository(conn), dbClient, emitter, policy, logg)
	if err != nil {
		return routes.Deps{}, err
	}

	decisionSvc, err := decisions.NewService(decisions.ServiceParams{
		Orders:    ordersRepo,
		Tx:        dbClient,
		Inventory: ledger,
		Outbox:    emitter,
		Metrics:   metrics.NewDecisionMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	reviewSvc, err := review.NewService(review.NewRepository(conn))
	if err != nil {
		return routes.Deps{}, err
	}

	incomeSvc, err := income.NewService(income.NewRepository(conn), storeRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	deps := routes.Deps{
		Config: cfg,
		Logger: logg,
		Health: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		Redis:     redisClient,
		Gatherer:  prometheus.DefaultGatherer,
		Orders:    ordersSvc,
		Decisions: decisionSvc,
		Review:    reviewSvc,
		Income:    incomeSvc,
		Inventory: ledger,
	}
	if cfg.JWT.SessionCheck {
		sessions, err := session.NewManager(redisClient)
		if err != nil {
			return routes.Deps{}, err
		}
		deps.Sessions = sessions
	}
	return deps, nil
}
