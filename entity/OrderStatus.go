package entity

// Order lifecycle statuses. pending means the order exists but money has not
// moved yet; payment_verified means the gateway captured the funds.
const (
	StatusPending         = "pending"
	StatusPaymentVerified = "payment_verified"
	StatusConfirmed       = "confirmed"
	StatusPreparing       = "preparing"
	StatusReadyForPickup  = "ready_for_pickup"
	StatusOutForDelivery  = "out_for_delivery"
	StatusDelivered       = "delivered"
	StatusRejected        = "rejected"
	StatusCancelled       = "cancelled"
	StatusRefunded        = "refunded"
)

// Actors recorded on timeline entries.
const (
	ByCustomer   = "customer"
	ByRestaurant = "restaurant"
	ByDelivery   = "delivery"
	BySystem     = "system"
)

// forwardTransitions is the restaurant-driven part of the state machine.
// Confirmation, rejection and cancellation are separate operations with their
// own preconditions and are deliberately not listed here.
var forwardTransitions = map[string][]string{
	StatusConfirmed:      {StatusPreparing},
	StatusPreparing:      {StatusReadyForPickup},
	StatusReadyForPickup: {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

// CanTransition reports whether the restaurant status-update operation may
// move an order from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanBeRejected: the restaurant may reject until it starts preparing.
func CanBeRejected(status string) bool {
	return status == StatusPaymentVerified || status == StatusConfirmed
}

// CanBeCancelled: the customer may cancel until the food leaves the kitchen.
func CanBeCancelled(status string) bool {
	switch status {
	case StatusPending, StatusPaymentVerified, StatusConfirmed, StatusPreparing:
		return true
	}
	return false
}

// IsTerminalStatus reports whether a status closes the order for good.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}
