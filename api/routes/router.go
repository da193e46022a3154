package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/orderdesk-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/orderdesk-backend/api/controllers/orders"
	"github.com/angelmondragon/orderdesk-backend/api/middleware"
	"github.com/angelmondragon/orderdesk-backend/internal/decisions"
	"github.com/angelmondragon/orderdesk-backend/internal/income"
	"github.com/angelmondragon/orderdesk-backend/internal/inventory"
	"github.com/angelmondragon/orderdesk-backend/internal/orders"
	"github.com/angelmondragon/orderdesk-backend/internal/review"
	"github.com/angelmondragon/orderdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/redis"
)

type DecisionApplier interface {
	ApplyDecision(ctx context.Context, input decisions.Input) (*models.Order, error)
}

type PendingLister interface {
	ListPending(ctx context.Context, storeID uuid.UUID, filters review.Filters) (*review.Page, error)
}

type IncomeReporter interface {
	Report(ctx context.Context, storeID uuid.UUID, r income.Range) (*income.Report, error)
}

type InventoryService interface {
	Restock(ctx context.Context, input inventory.RestockInput) (*inventory.StockLevel, error)
	Inspect(ctx context.Context, query inventory.StockQuery) (*inventory.StockView, error)
}

// RedisStore is the slice of the Redis client the HTTP layer needs.
type RedisStore interface {
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Deps carries everything the router wires into handlers. Sessions and
// Gatherer may be nil.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Health    map[string]controllers.Pinger
	Redis     RedisStore
	Sessions  session.AccessSessionChecker
	Gatherer  prometheus.Gatherer
	Orders    orders.Service
	Decisions DecisionApplier
	Review    PendingLister
	Income    IncomeReporter
	Inventory InventoryService
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(deps.Redis, cfg.Orders.IdempotencyTTL, logg)
	createLimit := middleware.NewRateLimitPolicy("order_create", cfg.RateLimit.Window, cfg.RateLimit.OrderCreateLimit)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg)

	r.Route("/orders", func(r chi.Router) {
		r.With(middleware.RateLimit(createLimit, deps.Redis, logg), optionalAuth, idempotent).
			Post("/", ordercontrollers.Create(deps.Orders, logg))

		// Public token routes.
		r.Route("/{orderRef}", func(r chi.Router) {
			r.Get("/", ordercontrollers.Get(deps.Orders, logg))
			r.Post("/proof", ordercontrollers.AttachProof(deps.Orders, logg))
			r.With(optionalAuth).Post("/buyer", ordercontrollers.AttachBuyer(deps.Orders, logg))
			r.Post("/request-review", ordercontrollers.RequestReview(deps.Orders, logg))
			r.Post("/cancel", ordercontrollers.Cancel(deps.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(vendorOnly(deps)...)
				r.With(idempotent).Patch("/decision", ordercontrollers.Decision(deps.Decisions, logg))
				r.With(idempotent).Patch("/fulfillment", ordercontrollers.Fulfillment(deps.Orders, logg))
			})
		})
	})

	r.Route("/stores/{storeId}", func(r chi.Router) {
		r.Use(vendorOnly(deps)...)
		r.Use(middleware.RequireStoreMatch("storeId", logg))
		r.Get("/orders/pending", ordercontrollers.Pending(deps.Review, logg))
		r.Get("/orders/{orderRef}", ordercontrollers.StoreOrder(deps.Orders, logg))
		r.Get("/income", controllers.StoreIncome(deps.Income, logg))
		r.Post("/inventory/restock", controllers.Restock(deps.Inventory, logg))
		r.Get("/inventory/{productId}", controllers.StockLevel(deps.Inventory, logg))
	})

	return r
}

func vendorOnly(deps Deps) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Auth(deps.Config.JWT, deps.Sessions, deps.Logger),
		middleware.RequireRole(deps.Logger, enums.MemberRoleVendor, enums.MemberRoleAdmin),
		middleware.StoreContext(deps.Logger),
	}
}
