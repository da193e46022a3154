package enums

import "fmt"

// OrderStatus tracks the fulfilment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusInReview  OrderStatus = "IN_REVIEW"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInReview,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// IsUndecided reports whether an order in this status still awaits a decision.
func (o OrderStatus) IsUndecided() bool {
	return o == OrderStatusPending || o == OrderStatusInReview
}

// CountsAsIncome reports whether a paid order in this status contributes to income.
func (o OrderStatus) CountsAsIncome() bool {
	return o == OrderStatusConfirmed || o == OrderStatusShipped || o == OrderStatusDelivered
}

// CanAdvanceTo reports whether the fulfilment transition o -> next is allowed.
// Only confirmed orders move forward, either to SHIPPED or straight to DELIVERED for pickups.
func (o OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	switch o {
	case OrderStatusConfirmed:
		return next == OrderStatusShipped || next == OrderStatusDelivered
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	default:
		return false
	}
}
