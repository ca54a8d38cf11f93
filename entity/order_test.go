package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardTransitions(t *testing.T) {
	allowed := [][2]string{
		{StatusConfirmed, StatusPreparing},
		{StatusPreparing, StatusReadyForPickup},
		{StatusReadyForPickup, StatusOutForDelivery},
		{StatusOutForDelivery, StatusDelivered},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]string{
		{StatusPending, StatusConfirmed},         // confirmation has its own operation
		{StatusPaymentVerified, StatusPreparing}, // must be confirmed first
		{StatusConfirmed, StatusDelivered},       // no skipping
		{StatusPreparing, StatusConfirmed},       // no backward moves
		{StatusDelivered, StatusOutForDelivery},  // terminal
		{StatusCancelled, StatusPreparing},       // terminal
		{StatusConfirmed, StatusCancelled},       // cancellation has its own operation
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestCancelAndRejectWindows(t *testing.T) {
	assert.True(t, CanBeCancelled(StatusPending))
	assert.True(t, CanBeCancelled(StatusPaymentVerified))
	assert.True(t, CanBeCancelled(StatusConfirmed))
	assert.True(t, CanBeCancelled(StatusPreparing))
	assert.False(t, CanBeCancelled(StatusReadyForPickup))
	assert.False(t, CanBeCancelled(StatusDelivered))

	assert.True(t, CanBeRejected(StatusPaymentVerified))
	assert.True(t, CanBeRejected(StatusConfirmed))
	assert.False(t, CanBeRejected(StatusPending))
	assert.False(t, CanBeRejected(StatusPreparing))
}

func TestUpdateStatusStampsTimestampsOnce(t *testing.T) {
	o := &Order{Status: StatusPaymentVerified}

	entry, audit := o.UpdateStatus(StatusConfirmed, ByRestaurant, "ok")
	assert.Equal(t, StatusConfirmed, o.Status)
	require.NotNil(t, o.ConfirmedAt)
	first := *o.ConfirmedAt

	assert.Equal(t, StatusConfirmed, entry.Status)
	assert.Equal(t, ByRestaurant, entry.UpdatedBy)
	assert.Equal(t, "status_change", audit.Action)
	assert.Contains(t, audit.Details, StatusPaymentVerified)
	assert.Contains(t, audit.Details, StatusConfirmed)

	// moving on does not re-stamp confirmation
	o.UpdateStatus(StatusPreparing, ByRestaurant, "")
	assert.Equal(t, first, *o.ConfirmedAt)
	assert.Nil(t, o.CompletedAt)

	o.UpdateStatus(StatusReadyForPickup, ByRestaurant, "")
	o.UpdateStatus(StatusOutForDelivery, ByRestaurant, "")
	o.UpdateStatus(StatusDelivered, ByRestaurant, "")
	assert.NotNil(t, o.CompletedAt)
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusDelivered))
	assert.True(t, IsTerminalStatus(StatusCancelled))
	assert.True(t, IsTerminalStatus(StatusRefunded))
	assert.False(t, IsTerminalStatus(StatusRejected)) // refund may still follow
	assert.False(t, IsTerminalStatus(StatusPending))
}

func TestFoodItemStock(t *testing.T) {
	unlimited := &FoodItem{Stock: UnlimitedStock}
	assert.True(t, unlimited.IsInStock(1000))

	finite := &FoodItem{Stock: 3}
	assert.True(t, finite.IsInStock(3))
	assert.False(t, finite.IsInStock(4))

	empty := &FoodItem{Stock: 0}
	assert.False(t, empty.IsInStock(1))
}

func TestCustomizationTotal(t *testing.T) {
	item := &OrderItem{
		Customizations: []ItemCustomization{
			{Name: "Extra cheese", AdditionalPrice: 1500},
			{Name: "No onion"},
			{Name: "Large", AdditionalPrice: 3000},
		},
	}
	assert.Equal(t, int64(4500), item.CustomizationTotal())
}
