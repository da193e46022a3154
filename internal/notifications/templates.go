package notifications

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/money"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

// Audience is who a notice is addressed to.
type Audience string

const (
	AudienceBuyer  Audience = "buyer"
	AudienceVendor Audience = "vendor"
)

// Notice is a rendered message ready for the messaging channel.
type Notice struct {
	Audience  Audience
	Recipient string
	Body      string
}

// Render builds the notice for a decoded event payload. It returns false when
// the event has no message or no recipient phone.
func Render(payload any) (Notice, bool) {
	switch event := payload.(type) {
	case *payloads.OrderCreatedEvent:
		return buyerNotice(event.OrderSnapshot, fmt.Sprintf(
			"We received your order %s for %s. Send your payment proof and request review to continue.",
			shortToken(event.Token), money.Display(event.TotalCents, event.Currency),
		))
	case *payloads.OrderReviewRequestedEvent:
		return buyerNotice(event.OrderSnapshot, fmt.Sprintf(
			"Your order %s is now with the store for review.", shortToken(event.Token),
		))
	case *payloads.OrderDecidedEvent:
		body := fmt.Sprintf("Good news: your order %s was confirmed.", shortToken(event.Token))
		switch event.Outcome {
		case enums.DecisionAcceptCash:
			body = fmt.Sprintf("Your order %s was confirmed. Pay %s in cash on delivery or pickup.",
				shortToken(event.Token), money.Display(event.TotalCents, event.Currency))
		case enums.DecisionReject:
			body = fmt.Sprintf("Your order %s was not accepted by the store.", shortToken(event.Token))
		}
		return buyerNotice(event.OrderSnapshot, body)
	case *payloads.OrderCancelledEvent:
		return buyerNotice(event.OrderSnapshot, fmt.Sprintf(
			"Your order %s was cancelled.", shortToken(event.Token),
		))
	case *payloads.OrderExpiredEvent:
		return buyerNotice(event.OrderSnapshot, fmt.Sprintf(
			"Your order %s expired before it was sent for review.", shortToken(event.Token),
		))
	case *payloads.OrderFulfillmentUpdatedEvent:
		var body string
		switch event.Status {
		case enums.OrderStatusShipped:
			body = fmt.Sprintf("Your order %s is on its way.", shortToken(event.Token))
		case enums.OrderStatusDelivered:
			body = fmt.Sprintf("Your order %s was delivered. Thank you!", shortToken(event.Token))
		default:
			return Notice{}, false
		}
		return buyerNotice(event.OrderSnapshot, body)
	case *payloads.OrderReviewStaleEvent:
		if event.StorePhone == nil || strings.TrimSpace(*event.StorePhone) == "" {
			return Notice{}, false
		}
		return Notice{
			Audience:  AudienceVendor,
			Recipient: strings.TrimSpace(*event.StorePhone),
			Body: fmt.Sprintf("%s: order %s has been waiting for your review for %d hours.",
				event.StoreName, shortToken(event.Token), event.WaitingHours),
		}, true
	default:
		return Notice{}, false
	}
}

func buyerNotice(order payloads.OrderSnapshot, body string) (Notice, bool) {
	if order.BuyerPhone == nil || strings.TrimSpace(*order.BuyerPhone) == "" {
		return Notice{}, false
	}
	if order.BuyerName != nil && strings.TrimSpace(*order.BuyerName) != "" {
		body = fmt.Sprintf("Hi %s! %s", strings.TrimSpace(*order.BuyerName), body)
	}
	return Notice{Audience: AudienceBuyer, Recipient: strings.TrimSpace(*order.BuyerPhone), Body: body}, true
}

// shortToken is the display form of an order token.
func shortToken(token string) string {
	if len(token) <= 8 {
		return "#" + token
	}
	return "#" + token[:8]
}
