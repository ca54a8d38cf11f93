package entity

import "time"

// OrderTimelineEntry is one row of the customer-facing status history.
// Append-only: rows are only ever created, never updated or deleted, so the
// struct carries no UpdatedAt/DeletedAt.
type OrderTimelineEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OrderID   uint      `gorm:"index;not null" json:"orderId"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	UpdatedBy string    `json:"updatedBy"` // customer|restaurant|delivery|system
	CreatedAt time.Time `json:"createdAt"`
}
