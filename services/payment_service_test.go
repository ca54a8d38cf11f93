package services

import (
	"context"
	"fmt"
	"testing"

	"backend/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capturedBody(o *entity.Order, amount int64) []byte {
	return []byte(fmt.Sprintf(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_cap_%d",
			"order_id": %q,
			"amount": %d,
			"method": "upi"
		}}}
	}`, o.ID, o.TransactionID, amount))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	body := capturedBody(res.Order, res.Order.TotalPrice)
	err := e.pay.HandleWebhook(body, "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// untouched
	assert.Equal(t, entity.PaymentPending, e.reloadOrder(t, res.Order.ID).PaymentStatus)
}

func TestWebhookCaptureVerifiesOrder(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	body := capturedBody(res.Order, res.Order.TotalPrice)
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))

	o := e.reloadOrder(t, res.Order.ID)
	assert.Equal(t, entity.PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, entity.StatusPaymentVerified, o.Status)
	assert.Equal(t, fmt.Sprintf("pay_cap_%d", o.ID), o.GatewayPaymentID)
	assert.Equal(t, "upi", o.GatewayMethod)
	assert.NotNil(t, o.CapturedAt)

	assert.Equal(t, 1, e.events.count(EventPaymentCompleted))
	assert.Equal(t, 1, e.events.count(EventOrderPaymentVerified))
}

func TestWebhookCaptureIsIdempotent(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	body := capturedBody(res.Order, res.Order.TotalPrice)
	sig := e.gateway.SignWebhook(body)
	require.NoError(t, e.pay.HandleWebhook(body, sig))
	require.NoError(t, e.pay.HandleWebhook(body, sig))
	require.NoError(t, e.pay.HandleWebhook(body, sig))

	assert.Equal(t, 1, e.events.count(EventPaymentCompleted))

	var timeline int64
	e.db.Model(&entity.OrderTimelineEntry{}).Where("order_id = ?", res.Order.ID).Count(&timeline)
	assert.Equal(t, int64(1), timeline)
}

func TestWebhookCaptureAmountMismatchMutatesNothing(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	body := capturedBody(res.Order, res.Order.TotalPrice-100)
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))

	o := e.reloadOrder(t, res.Order.ID)
	assert.Equal(t, entity.PaymentPending, o.PaymentStatus)
	assert.Equal(t, entity.StatusPending, o.Status)
	assert.Zero(t, e.events.count(EventPaymentCompleted))
}

func TestWebhookCaptureUnknownPaymentIgnored(t *testing.T) {
	e := newEnv(t)

	body := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {"id": "pay_ghost", "order_id": "order_ghost", "amount": 100}}}
	}`)
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))
	assert.Empty(t, e.events.names())
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	e := newEnv(t)

	body := []byte(`{"event": "invoice.paid", "payload": {}}`)
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))
}

func TestWebhookPaymentFailed(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	body := []byte(fmt.Sprintf(`{
		"event": "payment.failed",
		"payload": {"payment": {"entity": {
			"id": "pay_fail_1",
			"order_id": %q,
			"amount": %d,
			"error_code": "BAD_REQUEST_ERROR",
			"error_description": "card declined"
		}}}
	}`, res.Order.TransactionID, res.Order.TotalPrice))
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))

	o := e.reloadOrder(t, res.Order.ID)
	assert.Equal(t, entity.PaymentFailed, o.PaymentStatus)
	assert.Equal(t, "BAD_REQUEST_ERROR", o.PaymentErrorCode)
	assert.Equal(t, "card declined", o.PaymentErrorDesc)
	assert.NotNil(t, o.FailedAt)
	// order itself stays pending so the customer can retry
	assert.Equal(t, entity.StatusPending, o.Status)
	assert.Equal(t, 1, e.events.count(EventPaymentFailed))
}

func TestWebhookFailureAfterCaptureIgnored(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	body := []byte(fmt.Sprintf(`{
		"event": "payment.failed",
		"payload": {"payment": {"entity": {"id": "pay_late", "order_id": %q, "error_code": "X"}}}
	}`, res.Order.TransactionID))
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))

	assert.Equal(t, entity.PaymentCompleted, e.reloadOrder(t, res.Order.ID).PaymentStatus)
}

func refundBody(paymentID string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{
		"event": "refund.processed",
		"payload": {"refund": {"entity": {
			"id": "rfnd_hook_1",
			"payment_id": %q,
			"amount": %d
		}}}
	}`, paymentID, amount))
}

func TestWebhookRefundFull(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	paymentID := e.reloadOrder(t, res.Order.ID).GatewayPaymentID
	body := refundBody(paymentID, res.Order.TotalPrice)
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))

	o := e.reloadOrder(t, res.Order.ID)
	assert.Equal(t, entity.PaymentRefunded, o.PaymentStatus)
	assert.Equal(t, "rfnd_hook_1", o.RefundID)
	assert.Equal(t, o.TotalPrice, o.RefundAmount)
	assert.NotNil(t, o.RefundedAt)
	assert.Equal(t, 1, e.events.count(EventPaymentRefunded))
}

func TestWebhookRefundPartial(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	paymentID := e.reloadOrder(t, res.Order.ID).GatewayPaymentID
	body := refundBody(paymentID, res.Order.TotalPrice-1)
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))

	assert.Equal(t, entity.PaymentPartiallyRefunded, e.reloadOrder(t, res.Order.ID).PaymentStatus)
}

func TestManualVerify(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	paymentID := "pay_manual_1"
	sig := e.gateway.SignPayment(res.Order.TransactionID, paymentID)

	o, err := e.pay.Verify(res.Order.ID, paymentID, sig)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCompleted, o.PaymentStatus)

	reloaded := e.reloadOrder(t, res.Order.ID)
	assert.Equal(t, entity.StatusPaymentVerified, reloaded.Status)
	assert.Equal(t, paymentID, reloaded.GatewayPaymentID)

	// replay is a no-op
	_, err = e.pay.Verify(res.Order.ID, paymentID, sig)
	require.NoError(t, err)
	assert.Equal(t, 1, e.events.count(EventPaymentCompleted))
}

func TestManualVerifyBadSignature(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	_, err := e.pay.Verify(res.Order.ID, "pay_manual_1", "not-a-signature")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, entity.PaymentPending, e.reloadOrder(t, res.Order.ID).PaymentStatus)
}

func TestInitiateRefundRequiresCompletedPayment(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	_, _, err := e.pay.InitiateRefund(context.Background(), res.Order.ID, 0, "test", "user:1")
	assert.ErrorIs(t, err, ErrPaymentNotCompleted)
}

func TestInitiateRefundDefaultsToFullAmount(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	refund, o, err := e.pay.InitiateRefund(context.Background(), res.Order.ID, 0, "goodwill", "user:1")
	require.NoError(t, err)
	assert.Equal(t, res.Order.TotalPrice, refund.Amount)
	assert.Equal(t, entity.PaymentRefundInitiated, o.PaymentStatus)
	assert.Equal(t, refund.ID, o.RefundID)
	assert.Equal(t, 1, e.events.count(EventPaymentRefundInitiated))

	// the refund.processed webhook settles the final state
	body := refundBody(e.reloadOrder(t, o.ID).GatewayPaymentID, refund.Amount)
	require.NoError(t, e.pay.HandleWebhook(body, e.gateway.SignWebhook(body)))
	assert.Equal(t, entity.PaymentRefunded, e.reloadOrder(t, o.ID).PaymentStatus)
}

func TestInitiateRefundGatewayFailure(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	e.gateway.FailRefunds = true
	_, _, err := e.pay.InitiateRefund(context.Background(), res.Order.ID, 0, "test", "user:1")
	assert.ErrorIs(t, err, ErrRefundFailed)
	assert.Equal(t, entity.PaymentCompleted, e.reloadOrder(t, res.Order.ID).PaymentStatus)
}

func TestPaymentStatusRead(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	st, err := e.pay.Status(res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Order.OrderNumber, st.OrderNumber)
	assert.Equal(t, entity.PaymentCompleted, st.PaymentStatus)
	assert.Equal(t, res.Order.TotalPrice, st.TotalPrice)

	_, err = e.pay.Status(99999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
