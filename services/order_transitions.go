package services

import (
	"context"
	"log"
	"time"

	"backend/entity"
	"backend/repository"

	"gorm.io/gorm"
)

// Restaurant-driven lifecycle operations. Every transition is a conditional
// update on the current status; a racer that loses the compare-and-swap gets
// InvalidStatusTransition instead of silently clobbering the winner.

// Confirm moves payment_verified → confirmed. Separate from the forward
// transition table because it is the restaurant accepting the order, not
// progressing it.
func (s *OrderService) Confirm(ownerID, orderID uint, note string) (*entity.Order, error) {
	o, err := s.orderForOwner(ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != entity.StatusPaymentVerified {
		return nil, InvalidStatusTransition(o.Status, entity.StatusConfirmed)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		affected, err := s.Orders.UpdateStatusGuard(tx, o.ID, entity.StatusPaymentVerified, entity.StatusConfirmed)
		if err != nil {
			return err
		}
		if affected == 0 {
			return InvalidStatusTransition(o.Status, entity.StatusConfirmed)
		}
		entry, audit := o.UpdateStatus(entity.StatusConfirmed, entity.ByRestaurant, note)
		if err := s.Orders.AppendTimeline(tx, &entry); err != nil {
			return err
		}
		if err := s.Orders.AppendAudit(tx, &audit); err != nil {
			return err
		}
		return s.Orders.UpdateFields(tx, o.ID, map[string]any{"confirmed_at": o.ConfirmedAt})
	})
	if err != nil {
		return nil, err
	}

	dispatch(s.Events, Event{
		Name:         EventOrderConfirmed,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"note": note},
	})
	return o, nil
}

// Reject is the restaurant refusing an order it has not started preparing.
// Stock returns to the shelf in the same transaction; if money already
// moved, a refund is initiated afterwards — its failure does not undo the
// rejection, it just leaves paymentStatus for later reconciliation.
func (s *OrderService) Reject(ctx context.Context, ownerID, orderID uint, reason string) (*entity.Order, error) {
	o, err := s.orderForOwner(ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if !entity.CanBeRejected(o.Status) {
		return nil, ErrInvalidOrderStatus
	}

	fromStatus := o.Status
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		affected, err := s.Orders.UpdateStatusGuard(tx, o.ID, fromStatus, entity.StatusRejected)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInvalidOrderStatus
		}

		entry, audit := o.UpdateStatus(entity.StatusRejected, entity.ByRestaurant, reason)
		if err := s.Orders.AppendTimeline(tx, &entry); err != nil {
			return err
		}
		if err := s.Orders.AppendAudit(tx, &audit); err != nil {
			return err
		}
		if err := s.Orders.UpdateFields(tx, o.ID, map[string]any{"rejection_reason": reason}); err != nil {
			return err
		}

		for _, item := range o.Items {
			if err := s.Catalog.RestoreStock(tx, item.FoodItemID, item.Qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refundAfterTerminal(ctx, o, "order rejected: "+reason, entity.ByRestaurant)

	dispatch(s.Events, Event{
		Name:         EventOrderRejected,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"reason": reason},
	})
	return o, nil
}

// UpdateStatus drives the forward chain:
// confirmed → preparing → ready_for_pickup → out_for_delivery → delivered.
// Anything else is rejected with both sides of the attempted transition.
func (s *OrderService) UpdateStatus(ownerID, orderID uint, target, note string) (*entity.Order, error) {
	o, err := s.orderForOwner(ownerID, orderID)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(o.Status, target) {
		return nil, InvalidStatusTransition(o.Status, target)
	}

	fromStatus := o.Status
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		affected, err := s.Orders.UpdateStatusGuard(tx, o.ID, fromStatus, target)
		if err != nil {
			return err
		}
		if affected == 0 {
			return InvalidStatusTransition(fromStatus, target)
		}

		entry, audit := o.UpdateStatus(target, entity.ByRestaurant, note)
		if err := s.Orders.AppendTimeline(tx, &entry); err != nil {
			return err
		}
		if err := s.Orders.AppendAudit(tx, &audit); err != nil {
			return err
		}

		now := time.Now()
		fields := map[string]any{}
		switch target {
		case entity.StatusReadyForPickup:
			o.ActualPickupTime = &now
			fields["actual_pickup_time"] = &now
		case entity.StatusDelivered:
			o.ActualDeliveryTime = &now
			fields["actual_delivery_time"] = &now
			fields["completed_at"] = o.CompletedAt
		}
		if len(fields) == 0 {
			return nil
		}
		return s.Orders.UpdateFields(tx, o.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	dispatch(s.Events, Event{
		Name:         EventOrderStatusUpdated,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"status": target, "note": note},
	})
	return o, nil
}

// refundAfterTerminal refunds a captured payment after a rejection or
// cancellation committed. Best-effort: paymentStatus flips to refunded only
// when the gateway confirms, otherwise it stays as-is for reconciliation.
func (s *OrderService) refundAfterTerminal(ctx context.Context, o *entity.Order, reason, performedBy string) {
	if o.PaymentStatus != entity.PaymentCompleted || o.PaymentID == "" {
		return
	}
	paymentID := o.GatewayPaymentID
	if paymentID == "" {
		paymentID = o.PaymentID
	}

	refund, err := s.Gateway.InitiateRefund(ctx, paymentID, o.TotalPrice, reason)
	if err != nil {
		log.Printf("refund failed for order %s: %v", o.OrderNumber, err)
		return
	}

	now := time.Now()
	fields := map[string]any{
		"payment_status": entity.PaymentRefunded,
		"refund_id":      refund.ID,
		"refund_amount":  refund.Amount,
		"refunded_at":    &now,
	}
	if err := s.Orders.UpdateFields(s.DB, o.ID, fields); err != nil {
		log.Printf("failed to record refund for order %s: %v", o.OrderNumber, err)
		return
	}
	o.PaymentStatus = entity.PaymentRefunded
	o.RefundID = refund.ID
	o.RefundAmount = refund.Amount

	audit := o.NewAuditLog("refund_initiated", performedBy, map[string]any{
		"refundId": refund.ID,
		"amount":   refund.Amount,
		"reason":   reason,
	}, "")
	if err := s.Orders.AppendAudit(s.DB, &audit); err != nil {
		log.Printf("failed to audit refund for order %s: %v", o.OrderNumber, err)
	}

	dispatch(s.Events, Event{
		Name:         EventPaymentRefundInitiated,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"refundId": refund.ID, "amount": refund.Amount},
	})
}

func (s *OrderService) orderForOwner(ownerID, orderID uint) (*entity.Order, error) {
	o, err := s.Orders.Get(orderID)
	if repository.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.Catalog.IsOwnedBy(o.RestaurantID, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	return o, nil
}
