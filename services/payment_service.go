package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"backend/entity"
	"backend/pkg/metrics"
	"backend/pkg/payment"
	"backend/repository"

	"gorm.io/gorm"
)

// PaymentService reconciles asynchronous gateway events with order state.
// Every handler is idempotent against duplicate and out-of-order delivery:
// the current paymentStatus is the guard, checked before any mutation.
type PaymentService struct {
	DB      *gorm.DB
	Orders  *repository.OrderRepository
	Gateway payment.Gateway
	Events  EventDispatcher
}

func NewPaymentService(db *gorm.DB, orders *repository.OrderRepository, gateway payment.Gateway, events EventDispatcher) *PaymentService {
	return &PaymentService{DB: db, Orders: orders, Gateway: gateway, Events: events}
}

// ----- Webhook envelope (razorpay-style) -----

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity CapturedPayment `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity ProcessedRefund `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// CapturedPayment doubles as the failed-payment entity; the gateway sends
// the same shape with error fields populated. Amount is minor units.
type CapturedPayment struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"` // gateway provider order id
	Amount           int64  `json:"amount"`
	Method           string `json:"method"`
	Bank             string `json:"bank"`
	Wallet           string `json:"wallet"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type ProcessedRefund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
}

// HandleWebhook verifies payload integrity, then dispatches the event.
// Business errors inside handlers are logged and swallowed — the caller is
// the gateway, which only needs to know the delivery landed; duplicates are
// absorbed downstream.
func (s *PaymentService) HandleWebhook(raw []byte, signature string) error {
	if !s.Gateway.VerifyWebhookSignature(raw, signature) {
		return ErrInvalidSignature
	}

	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Code: "INVALID_PAYLOAD", Message: "malformed webhook payload", Status: 400}
	}

	switch env.Event {
	case "payment.captured":
		if err := s.HandleCaptured(env.Payload.Payment.Entity); err != nil {
			log.Printf("webhook payment.captured: %v", err)
		}
	case "payment.failed":
		if err := s.HandleFailed(env.Payload.Payment.Entity); err != nil {
			log.Printf("webhook payment.failed: %v", err)
		}
	case "refund.processed":
		if err := s.HandleRefundProcessed(env.Payload.Refund.Entity); err != nil {
			log.Printf("webhook refund.processed: %v", err)
		}
	default:
		log.Printf("webhook: ignoring event %q", env.Event)
	}
	return nil
}

// HandleCaptured settles a successful charge exactly once. A duplicate
// delivery is a no-op; an amount mismatch mutates nothing and is flagged
// for manual reconciliation — never auto-corrected.
func (s *PaymentService) HandleCaptured(p CapturedPayment) error {
	o, err := s.Orders.GetByPaymentRef(p.ID, p.OrderID)
	if err != nil {
		return err
	}
	if o == nil {
		log.Printf("capture: no order for payment %s", p.ID)
		return nil
	}
	if o.PaymentStatus == entity.PaymentCompleted {
		return nil // duplicate delivery
	}

	if p.Amount != o.TotalPrice {
		metrics.AmountMismatches.Inc()
		log.Printf("ALERT capture amount mismatch order=%s expected=%d received=%d payment=%s",
			o.OrderNumber, o.TotalPrice, p.Amount, p.ID)
		return nil
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"payment_status":     entity.PaymentCompleted,
			"gateway_payment_id": p.ID,
			"gateway_method":     p.Method,
			"captured_at":        &now,
		}
		if err := s.Orders.UpdateFields(tx, o.ID, fields); err != nil {
			return err
		}
		o.PaymentStatus = entity.PaymentCompleted
		o.GatewayPaymentID = p.ID
		o.CapturedAt = &now

		// Move the order forward only if it is still waiting for payment;
		// a manual verification that won the race already did this.
		affected, err := s.Orders.UpdateStatusGuard(tx, o.ID, entity.StatusPending, entity.StatusPaymentVerified)
		if err != nil {
			return err
		}
		if affected == 1 {
			entry, _ := o.UpdateStatus(entity.StatusPaymentVerified, entity.BySystem, "payment completed")
			if err := s.Orders.AppendTimeline(tx, &entry); err != nil {
				return err
			}
		}

		audit := o.NewAuditLog("payment_captured", entity.BySystem, map[string]any{
			"paymentId": p.ID,
			"amount":    p.Amount,
			"method":    p.Method,
		}, "")
		return s.Orders.AppendAudit(tx, &audit)
	})
	if err != nil {
		return err
	}

	metrics.PaymentsCaptured.Inc()
	dispatch(s.Events, Event{
		Name:         EventPaymentCompleted,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"paymentId": p.ID, "amount": p.Amount, "method": p.Method},
	})
	dispatch(s.Events, Event{
		Name:         EventOrderPaymentVerified,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"paymentId": p.ID},
	})
	return nil
}

// HandleFailed records a failed charge. The order stays pending — the
// customer can retry checkout against the same intent.
func (s *PaymentService) HandleFailed(p CapturedPayment) error {
	o, err := s.Orders.GetByPaymentRef(p.ID, p.OrderID)
	if err != nil {
		return err
	}
	if o == nil {
		log.Printf("failure: no order for payment %s", p.ID)
		return nil
	}
	if o.PaymentStatus == entity.PaymentFailed || o.PaymentStatus == entity.PaymentCompleted {
		return nil
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"payment_status":     entity.PaymentFailed,
			"payment_error_code": p.ErrorCode,
			"payment_error_desc": p.ErrorDescription,
			"failed_at":          &now,
		}
		if err := s.Orders.UpdateFields(tx, o.ID, fields); err != nil {
			return err
		}
		audit := o.NewAuditLog("payment_failed", entity.BySystem, map[string]any{
			"paymentId":        p.ID,
			"errorCode":        p.ErrorCode,
			"errorDescription": p.ErrorDescription,
		}, "")
		return s.Orders.AppendAudit(tx, &audit)
	})
	if err != nil {
		return err
	}
	o.PaymentStatus = entity.PaymentFailed

	metrics.PaymentsFailed.Inc()
	dispatch(s.Events, Event{
		Name:         EventPaymentFailed,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"paymentId": p.ID, "errorCode": p.ErrorCode},
	})
	return nil
}

// HandleRefundProcessed settles a cleared refund. Amounts are integer minor
// units, so full-vs-partial is exact: covering the frozen total means
// refunded, anything less is partially_refunded.
func (s *PaymentService) HandleRefundProcessed(r ProcessedRefund) error {
	o, err := s.Orders.GetByPaymentRef(r.PaymentID, "")
	if err != nil {
		return err
	}
	if o == nil {
		log.Printf("refund: no order for payment %s", r.PaymentID)
		return nil
	}

	status := entity.PaymentPartiallyRefunded
	if r.Amount >= o.TotalPrice {
		status = entity.PaymentRefunded
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"payment_status": status,
			"refund_id":      r.ID,
			"refund_amount":  r.Amount,
			"refunded_at":    &now,
		}
		if err := s.Orders.UpdateFields(tx, o.ID, fields); err != nil {
			return err
		}
		audit := o.NewAuditLog("refund_processed", entity.BySystem, map[string]any{
			"refundId":  r.ID,
			"amount":    r.Amount,
			"paymentId": r.PaymentID,
		}, "")
		return s.Orders.AppendAudit(tx, &audit)
	})
	if err != nil {
		return err
	}
	o.PaymentStatus = status

	metrics.RefundsProcessed.Inc()
	dispatch(s.Events, Event{
		Name:         EventPaymentRefunded,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"refundId": r.ID, "amount": r.Amount},
	})
	return nil
}

// Verify is the manual verification path: same payment_verified effect as a
// captured webhook, but gated on the checkout signature instead of webhook
// delivery. Idempotent — an already-completed payment is a no-op.
func (s *PaymentService) Verify(orderID uint, paymentID, signature string) (*entity.Order, error) {
	o, err := s.Orders.Get(orderID)
	if repository.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !s.Gateway.VerifyPaymentSignature(o.TransactionID, paymentID, signature) {
		return nil, ErrInvalidSignature
	}
	if o.PaymentStatus == entity.PaymentCompleted {
		return o, nil
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"payment_status":     entity.PaymentCompleted,
			"gateway_payment_id": paymentID,
			"captured_at":        &now,
		}
		if err := s.Orders.UpdateFields(tx, o.ID, fields); err != nil {
			return err
		}
		o.PaymentStatus = entity.PaymentCompleted
		o.GatewayPaymentID = paymentID

		affected, err := s.Orders.UpdateStatusGuard(tx, o.ID, entity.StatusPending, entity.StatusPaymentVerified)
		if err != nil {
			return err
		}
		if affected == 1 {
			entry, _ := o.UpdateStatus(entity.StatusPaymentVerified, entity.BySystem, "payment verified manually")
			if err := s.Orders.AppendTimeline(tx, &entry); err != nil {
				return err
			}
		}

		audit := o.NewAuditLog("payment_verified_manual", entity.BySystem, map[string]any{
			"paymentId": paymentID,
		}, "")
		return s.Orders.AppendAudit(tx, &audit)
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsCaptured.Inc()
	dispatch(s.Events, Event{
		Name:         EventPaymentCompleted,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"paymentId": paymentID, "amount": o.TotalPrice},
	})
	dispatch(s.Events, Event{
		Name:         EventOrderPaymentVerified,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"paymentId": paymentID, "verification": "manual"},
	})
	return o, nil
}

// InitiateRefund is the administrative entry point. It requires a completed
// payment, moves paymentStatus to refund_initiated and returns; the
// refund.processed webhook settles the final state later.
func (s *PaymentService) InitiateRefund(ctx context.Context, orderID uint, amount int64, reason, performedBy string) (*payment.RefundResult, *entity.Order, error) {
	o, err := s.Orders.Get(orderID)
	if repository.IsNotFound(err) {
		return nil, nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if o.PaymentStatus != entity.PaymentCompleted {
		return nil, nil, ErrPaymentNotCompleted
	}

	if amount <= 0 || amount > o.TotalPrice {
		amount = o.TotalPrice
	}
	paymentID := o.GatewayPaymentID
	if paymentID == "" {
		paymentID = o.PaymentID
	}
	if reason == "" {
		reason = "refund requested"
	}

	refund, err := s.Gateway.InitiateRefund(ctx, paymentID, amount, reason)
	if err != nil {
		log.Printf("refund initiation failed for order %s: %v", o.OrderNumber, err)
		return nil, nil, ErrRefundFailed
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"payment_status": entity.PaymentRefundInitiated,
			"refund_id":      refund.ID,
			"refund_amount":  refund.Amount,
		}
		if err := s.Orders.UpdateFields(tx, o.ID, fields); err != nil {
			return err
		}
		audit := o.NewAuditLog("refund_initiated", performedBy, map[string]any{
			"refundId": refund.ID,
			"amount":   refund.Amount,
			"reason":   reason,
		}, "")
		return s.Orders.AppendAudit(tx, &audit)
	})
	if err != nil {
		return nil, nil, err
	}
	o.PaymentStatus = entity.PaymentRefundInitiated
	o.RefundID = refund.ID
	o.RefundAmount = refund.Amount

	dispatch(s.Events, Event{
		Name:         EventPaymentRefundInitiated,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"refundId": refund.ID, "amount": refund.Amount, "reason": reason},
	})
	return refund, o, nil
}

// PaymentStatus is the read side for clients polling checkout progress.
type PaymentStatusOut struct {
	OrderID       uint   `json:"orderId"`
	OrderNumber   string `json:"orderNumber"`
	PaymentID     string `json:"paymentId"`
	PaymentStatus string `json:"paymentStatus"`
	TotalPrice    int64  `json:"totalAmount"`
	RefundID      string `json:"refundId,omitempty"`
	RefundAmount  int64  `json:"refundAmount,omitempty"`
}

func (s *PaymentService) Status(orderID uint) (*PaymentStatusOut, error) {
	o, err := s.Orders.Get(orderID)
	if repository.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &PaymentStatusOut{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		PaymentID:     o.PaymentID,
		PaymentStatus: o.PaymentStatus,
		TotalPrice:    o.TotalPrice,
		RefundID:      o.RefundID,
		RefundAmount:  o.RefundAmount,
	}, nil
}
