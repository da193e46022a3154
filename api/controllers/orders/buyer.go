package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/api/middleware"
	"github.com/angelmondragon/orderdesk-backend/api/responses"
	"github.com/angelmondragon/orderdesk-backend/api/validators"
	internalorders "github.com/angelmondragon/orderdesk-backend/internal/orders"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
)

// Create places an order. Totals are computed server side from the catalog.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if userID, ok := middleware.UserUUIDFromContext(r.Context()); ok {
			input.BuyerUserID = &userID
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, NewOrderResponse(order))
	}
}

// Get returns an order to the holder of its public token.
func Get(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := tokenRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

func AttachProof(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := tokenRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body AttachProofRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.AttachProof(r.Context(), ref, body.ProofMediaID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

// AttachBuyer stores buyer contact details. A signed in caller is linked by
// user id.
func AttachBuyer(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := tokenRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body AttachBuyerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := internalorders.AttachBuyerInput{
			Name:  validators.SanitizeOptional(body.Name, 120),
			Phone: body.Phone,
			Email: body.Email,
		}
		if userID, ok := middleware.UserUUIDFromContext(r.Context()); ok {
			input.UserID = &userID
		}
		order, err := svc.AttachBuyer(r.Context(), ref, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

func RequestReview(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := tokenRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.RequestReview(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := tokenRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CancelOrder(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, NewOrderResponse(order))
	}
}

func (b CreateOrderRequest) toInput() (internalorders.CreateOrderInput, error) {
	storeID, err := uuid.Parse(b.StoreID)
	if err != nil {
		return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store_id")
	}
	input := internalorders.CreateOrderInput{
		StoreID:    storeID,
		Delivery:   enums.DeliveryMethod(strings.ToUpper(strings.TrimSpace(b.Delivery))),
		BuyerName:  validators.SanitizeOptional(b.BuyerName, 120),
		BuyerPhone: b.BuyerPhone,
		BuyerEmail: b.BuyerEmail,
		Items:      make([]internalorders.LineInput, 0, len(b.Items)),
	}
	for _, item := range b.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id")
		}
		line := internalorders.LineInput{ProductID: productID, Quantity: item.Quantity}
		if item.VariantID != nil {
			variantID, err := uuid.Parse(*item.VariantID)
			if err != nil {
				return internalorders.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant_id")
			}
			line.VariantID = &variantID
		}
		input.Items = append(input.Items, line)
	}
	return input, nil
}

func tokenRef(r *http.Request) (internalorders.Ref, error) {
	return internalorders.TokenRef(chi.URLParam(r, "orderRef"))
}
