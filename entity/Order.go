package entity

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Order is the central aggregate. All monetary fields are integer minor
// currency units and are frozen at creation time; refund maths reference the
// frozen TotalPrice, never a recomputed one.
type Order struct {
	gorm.Model
	OrderNumber    string `gorm:"uniqueIndex;not null" json:"orderNumber"`
	IdempotencyKey string `gorm:"uniqueIndex;not null" json:"idempotencyKey"`

	UserID uint `gorm:"index;not null" json:"userId"`
	User   User `json:"-"`

	RestaurantID uint       `gorm:"index;not null" json:"restaurantId"`
	Restaurant   Restaurant `json:"-"`

	Items []OrderItem `json:"items"`

	// Pricing (minor units)
	Subtotal       int64 `json:"subtotal"`
	DeliveryFee    int64 `json:"deliveryFee"`
	Taxes          int64 `json:"taxes"`
	PlatformFee    int64 `json:"platformFee"`
	DiscountAmount int64 `json:"discountAmount"`
	TotalPrice     int64 `json:"totalPrice"`

	DeliveryAddress     string `json:"deliveryAddress"`
	SpecialInstructions string `json:"specialInstructions"`
	ContactlessDelivery bool   `json:"contactlessDelivery"`

	// Payment (gateway-facing fields live flat on the order; the opaque
	// gateway response is kept as raw JSON)
	PaymentMethod    string `json:"paymentMethod"`
	PaymentStatus    string `gorm:"index;default:pending" json:"paymentStatus"`
	PaymentID        string `gorm:"index" json:"paymentId"`
	TransactionID    string `gorm:"index" json:"transactionId"` // gateway provider order id
	PaymentGateway   string `json:"paymentGateway"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewayMethod    string `json:"gatewayMethod"`
	GatewayResponse  string `json:"-"`
	PaymentErrorCode string `json:"paymentErrorCode,omitempty"`
	PaymentErrorDesc string `json:"paymentErrorDesc,omitempty"`
	RefundID         string `json:"refundId,omitempty"`
	RefundAmount     int64  `json:"refundAmount,omitempty"`

	Status string `gorm:"index;default:pending" json:"status"`

	EstimatedPreparationTime int    `json:"estimatedPreparationTime"` // minutes
	RejectionReason          string `json:"rejectionReason,omitempty"`

	CapturedAt         *time.Time `json:"capturedAt,omitempty"`
	FailedAt           *time.Time `json:"failedAt,omitempty"`
	RefundedAt         *time.Time `json:"refundedAt,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	ActualPickupTime   *time.Time `json:"actualPickupTime,omitempty"`
	ActualDeliveryTime *time.Time `json:"actualDeliveryTime,omitempty"`

	Timeline  []OrderTimelineEntry `json:"timeline"`
	AuditLogs []OrderAuditLog      `json:"-"`
}

// UpdateStatus mutates the status in memory and returns the timeline and
// audit rows the caller must persist in the same transaction as the status
// write. ConfirmedAt is set once on the first entry into confirmed and
// CompletedAt once on entry into a terminal status.
func (o *Order) UpdateStatus(newStatus, updatedBy, note string) (OrderTimelineEntry, OrderAuditLog) {
	oldStatus := o.Status
	now := time.Now()
	o.Status = newStatus

	if newStatus == StatusConfirmed && o.ConfirmedAt == nil {
		o.ConfirmedAt = &now
	}
	if IsTerminalStatus(newStatus) && o.CompletedAt == nil {
		o.CompletedAt = &now
	}

	entry := OrderTimelineEntry{
		OrderID:   o.ID,
		Status:    newStatus,
		Note:      note,
		UpdatedBy: updatedBy,
	}
	audit := o.NewAuditLog("status_change", updatedBy, map[string]any{
		"from": oldStatus,
		"to":   newStatus,
		"note": note,
	}, "")
	return entry, audit
}

// NewAuditLog builds an append-only audit row for this order.
func (o *Order) NewAuditLog(action, performedBy string, details map[string]any, ip string) OrderAuditLog {
	return OrderAuditLog{
		OrderID:     o.ID,
		Action:      action,
		PerformedBy: performedBy,
		Details:     auditDetails(details),
		IPAddress:   ip,
	}
}

func auditDetails(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
