package entity

import "time"

// OrderAuditLog is the internal append-only record of state-affecting
// actions. Broader than the timeline: payment events, refunds and manual
// overrides land here too. Details holds a JSON object.
type OrderAuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	OrderID     uint      `gorm:"index;not null" json:"orderId"`
	Action      string    `json:"action"`
	PerformedBy string    `json:"performedBy"`
	Details     string    `json:"details,omitempty"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
