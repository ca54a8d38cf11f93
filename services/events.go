package services

import (
	"log"
	"time"
)

// Domain event names. Order events describe lifecycle changes; payment
// events describe money movement.
const (
	EventOrderCreated         = "order_created"
	EventOrderPaymentVerified = "order_payment_verified"
	EventOrderConfirmed       = "order_confirmed"
	EventOrderRejected        = "order_rejected"
	EventOrderCancelled       = "order_cancelled"
	EventOrderStatusUpdated   = "order_status_updated"

	EventPaymentCompleted       = "payment_completed"
	EventPaymentFailed          = "payment_failed"
	EventPaymentRefundInitiated = "payment_refund_initiated"
	EventPaymentRefunded        = "payment_refunded"
)

type Event struct {
	Name         string         `json:"name"`
	OrderID      uint           `json:"orderId"`
	UserID       uint           `json:"userId"`
	RestaurantID uint           `json:"restaurantId"`
	Data         map[string]any `json:"data,omitempty"`
	At           time.Time      `json:"at"`
}

// EventDispatcher is the fire-and-forget side channel. Implementations must
// not block the caller; delivery is best-effort and happens after the
// transaction that produced the event committed.
type EventDispatcher interface {
	Dispatch(ev Event)
}

// LogDispatcher writes events to the process log.
type LogDispatcher struct{}

func (LogDispatcher) Dispatch(ev Event) {
	log.Printf("event %s order=%d user=%d restaurant=%d", ev.Name, ev.OrderID, ev.UserID, ev.RestaurantID)
}

// MultiDispatcher fans one event out to several sinks.
type MultiDispatcher []EventDispatcher

func (m MultiDispatcher) Dispatch(ev Event) {
	for _, d := range m {
		d.Dispatch(ev)
	}
}

func dispatch(d EventDispatcher, ev Event) {
	if d == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	d.Dispatch(ev)
}
