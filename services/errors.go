package services

import (
	"fmt"
	"net/http"
)

// Error is a service failure with a stable machine-readable code. Clients
// branch on Code, never on the message text.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string   { return e.Message }
func (e *Error) ErrorCode() string { return e.Code }
func (e *Error) HTTPStatus() int { return e.Status }

var (
	// validation / conflict — detected before any mutation sticks
	ErrRestaurantUnavailable = &Error{"RESTAURANT_UNAVAILABLE", "restaurant not available", http.StatusBadRequest}
	ErrCustomerNotFound      = &Error{"CUSTOMER_NOT_FOUND", "customer not found", http.StatusBadRequest}
	ErrItemUnavailable       = &Error{"ITEM_UNAVAILABLE", "food item not available", http.StatusBadRequest}
	ErrMixedRestaurantItems  = &Error{"MIXED_RESTAURANT_ITEMS", "all items must be from the same restaurant", http.StatusBadRequest}
	ErrInsufficientStock     = &Error{"INSUFFICIENT_STOCK", "insufficient stock", http.StatusBadRequest}
	ErrMinimumOrderNotMet    = &Error{"MINIMUM_ORDER_NOT_MET", "minimum order amount not met", http.StatusBadRequest}
	ErrInvalidPaymentMethod  = &Error{"INVALID_PAYMENT_METHOD", "unknown payment method", http.StatusBadRequest}
	ErrOrderNotCancellable   = &Error{"ORDER_NOT_CANCELLABLE", "order cannot be cancelled in its current status", http.StatusBadRequest}
	ErrInvalidOrderStatus    = &Error{"INVALID_ORDER_STATUS", "order is not in a status that allows this action", http.StatusBadRequest}
	ErrPaymentNotCompleted   = &Error{"PAYMENT_NOT_COMPLETED", "payment not completed, cannot refund", http.StatusBadRequest}
	ErrInvalidSignature      = &Error{"INVALID_SIGNATURE", "invalid payment signature", http.StatusBadRequest}

	// not found / access
	ErrOrderNotFound = &Error{"ORDER_NOT_FOUND", "order not found", http.StatusNotFound}
	ErrAccessDenied  = &Error{"ACCESS_DENIED", "access denied", http.StatusForbidden}

	// external
	ErrPaymentIntentFailed = &Error{"PAYMENT_INTENT_FAILED", "failed to create payment intent", http.StatusInternalServerError}
	ErrRefundFailed        = &Error{"REFUND_FAILED", "failed to initiate refund", http.StatusInternalServerError}
)

// InvalidStatusTransition reports both sides of an illegal transition so the
// caller can see what it asked for and where the order actually is.
func InvalidStatusTransition(from, to string) *Error {
	return &Error{
		Code:    "INVALID_STATUS_TRANSITION",
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
		Status:  http.StatusBadRequest,
	}
}
