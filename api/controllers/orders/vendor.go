package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/api/middleware"
	"github.com/angelmondragon/orderdesk-backend/api/responses"
	"github.com/angelmondragon/orderdesk-backend/api/validators"
	"github.com/angelmondragon/orderdesk-backend/internal/decisions"
	internalorders "github.com/angelmondragon/orderdesk-backend/internal/orders"
	"github.com/angelmondragon/orderdesk-backend/internal/review"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/pagination"
)

type decider interface {
	ApplyDecision(ctx context.Context, input decisions.Input) (*models.Order, error)
}

type pendingLister interface {
	ListPending(ctx context.Context, storeID uuid.UUID, filters review.Filters) (*review.Page, error)
}

type actor struct {
	userID  uuid.UUID
	storeID uuid.UUID
}

func actorFromRequest(r *http.Request) (actor, error) {
	userID, ok := middleware.UserUUIDFromContext(r.Context())
	if !ok {
		return actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	storeID, ok := middleware.StoreUUIDFromContext(r.Context())
	if !ok {
		return actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	return actor{userID: userID, storeID: storeID}, nil
}

// Decision applies the vendor's accept or reject decision once.
func Decision(svc decider, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ref, err := internalorders.ParseRef(chi.URLParam(r, "orderRef"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body DecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		outcome, err := enums.ParseDecisionOutcome(strings.ToUpper(strings.TrimSpace(body.Outcome)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid outcome").
				WithDetails(map[string]any{"field": "outcome"}))
			return
		}

		order, err := svc.ApplyDecision(r.Context(), decisions.Input{
			Ref:          ref,
			Outcome:      outcome,
			ActorUserID:  who.userID,
			ActorStoreID: who.storeID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

// Fulfillment moves a confirmed order to SHIPPED or DELIVERED.
func Fulfillment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ref, err := internalorders.ParseRef(chi.URLParam(r, "orderRef"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body FulfillmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		order, err := svc.AdvanceFulfillment(r.Context(), internalorders.AdvanceFulfillmentInput{
			Ref:          ref,
			Target:       target,
			ActorUserID:  who.userID,
			ActorStoreID: who.storeID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

// StoreOrder returns one order of the vendor's store by id or token.
func StoreOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ref, err := internalorders.ParseRef(chi.URLParam(r, "orderRef"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetStoreOrder(r.Context(), storeID, ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

// Pending lists the store's review queue oldest first.
func Pending(svc pendingLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListPending(r.Context(), storeID, review.Filters{
			Statuses: validators.ParseQueryList(r, "status"),
			From:     from,
			To:       to,
			Limit:    limit,
			Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := PendingPage{Orders: make([]OrderResponse, 0, len(page.Orders)), NextCursor: page.NextCursor}
		for i := range page.Orders {
			out.Orders = append(out.Orders, NewOrderResponse(&page.Orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
