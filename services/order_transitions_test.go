package services

import (
	"context"
	"testing"

	"backend/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmRequiresVerifiedPayment(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})

	// still pending: money has not moved
	_, err := e.orders.Confirm(e.owner.ID, res.Order.ID, "")
	require.Error(t, err)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", svcErr.Code)

	e.capture(t, res.Order)
	o, err := e.orders.Confirm(e.owner.ID, res.Order.ID, "on it")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConfirmed, o.Status)
	assert.NotNil(t, o.ConfirmedAt)
	assert.Equal(t, 1, e.events.count(EventOrderConfirmed))
}

func TestConfirmDeniedForStranger(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	stranger := seedUser(t, e.db, "stranger@test.local", entity.RoleOwner)
	_, err := e.orders.Confirm(stranger.ID, res.Order.ID, "")
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestForwardTransitionChain(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	_, err := e.orders.Confirm(e.owner.ID, res.Order.ID, "")
	require.NoError(t, err)

	for _, target := range []string{
		entity.StatusPreparing,
		entity.StatusReadyForPickup,
		entity.StatusOutForDelivery,
		entity.StatusDelivered,
	} {
		o, err := e.orders.UpdateStatus(e.owner.ID, res.Order.ID, target, "")
		require.NoError(t, err, "transition to %s", target)
		assert.Equal(t, target, o.Status)
	}

	final := e.reloadOrder(t, res.Order.ID)
	assert.NotNil(t, final.ActualPickupTime)
	assert.NotNil(t, final.ActualDeliveryTime)
	assert.NotNil(t, final.CompletedAt)

	// full timeline: payment_verified, confirmed, then the four forward steps
	var entries []entity.OrderTimelineEntry
	require.NoError(t, e.db.Where("order_id = ?", res.Order.ID).Order("id ASC").Find(&entries).Error)
	statuses := make([]string, len(entries))
	for i, en := range entries {
		statuses[i] = en.Status
	}
	assert.Equal(t, []string{
		entity.StatusPaymentVerified,
		entity.StatusConfirmed,
		entity.StatusPreparing,
		entity.StatusReadyForPickup,
		entity.StatusOutForDelivery,
		entity.StatusDelivered,
	}, statuses)
}

func TestUpdateStatusRejectsSkips(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	_, err := e.orders.Confirm(e.owner.ID, res.Order.ID, "")
	require.NoError(t, err)

	// confirmed → delivered skips the chain
	_, err = e.orders.UpdateStatus(e.owner.ID, res.Order.ID, entity.StatusDelivered, "")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", svcErr.Code)
	assert.Contains(t, svcErr.Message, entity.StatusConfirmed)
	assert.Contains(t, svcErr.Message, entity.StatusDelivered)
}

func TestUpdateStatusNoBackwardMoves(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	_, err := e.orders.Confirm(e.owner.ID, res.Order.ID, "")
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(e.owner.ID, res.Order.ID, entity.StatusPreparing, "")
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(e.owner.ID, res.Order.ID, entity.StatusConfirmed, "")
	require.Error(t, err)
	assert.Equal(t, entity.StatusPreparing, e.reloadOrder(t, res.Order.ID).Status)
}

func TestRejectRestoresStockAndRefunds(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 4})
	e.capture(t, res.Order)

	o, err := e.orders.Reject(context.Background(), e.owner.ID, res.Order.ID, "out of ingredients")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, o.Status)

	reloaded := e.reloadOrder(t, o.ID)
	assert.Equal(t, "out of ingredients", reloaded.RejectionReason)
	assert.Equal(t, entity.PaymentRefunded, reloaded.PaymentStatus)
	assert.Equal(t, reloaded.TotalPrice, reloaded.RefundAmount)
	assert.Equal(t, 10, e.reloadItem(t, food.ID).Stock)
	assert.Equal(t, 1, e.events.count(EventOrderRejected))
}

func TestRejectRefundFailureKeepsRejection(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	e.gateway.FailRefunds = true
	o, err := e.orders.Reject(context.Background(), e.owner.ID, res.Order.ID, "closing early")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, o.Status)

	// rejection stands; payment stays completed for later reconciliation
	reloaded := e.reloadOrder(t, o.ID)
	assert.Equal(t, entity.StatusRejected, reloaded.Status)
	assert.Equal(t, entity.PaymentCompleted, reloaded.PaymentStatus)
	assert.Empty(t, reloaded.RefundID)
}

func TestRejectAfterPreparingNotAllowed(t *testing.T) {
	e := newEnv(t)
	food := seedFoodItem(t, e.db, e.restaurant.ID, 10000, 10)
	res := e.createOrder(t, OrderItemIn{FoodItemID: food.ID, Quantity: 1})
	e.capture(t, res.Order)

	_, err := e.orders.Confirm(e.owner.ID, res.Order.ID, "")
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(e.owner.ID, res.Order.ID, entity.StatusPreparing, "")
	require.NoError(t, err)

	_, err = e.orders.Reject(context.Background(), e.owner.ID, res.Order.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}
