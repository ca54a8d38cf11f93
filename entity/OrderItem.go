package entity

import (
	"gorm.io/gorm"
)

// OrderItem is a snapshot of a food item at order time. Name and unit price
// are copied from the catalog and never re-derived, so later menu edits do
// not drift the frozen order total.
type OrderItem struct {
	gorm.Model
	OrderID uint  `gorm:"index" json:"orderId"`
	Order   Order `json:"-"`

	FoodItemID uint     `json:"foodItemId"`
	FoodItem   FoodItem `json:"-"`

	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice int64  `json:"unitPrice"` // minor units, snapshot
	Total     int64  `json:"total"`     // (unitPrice + customizations) * qty

	Customizations      []ItemCustomization `gorm:"serializer:json" json:"customizations"`
	SpecialInstructions string              `json:"specialInstructions"`
	PreparationTime     int                 `json:"preparationTime"` // minutes, snapshot
}

type ItemCustomization struct {
	Name            string   `json:"name"`
	SelectedOptions []string `json:"selectedOptions"`
	AdditionalPrice int64    `json:"additionalPrice"`
}

// CustomizationTotal sums the per-unit surcharge of all customizations.
func (oi *OrderItem) CustomizationTotal() int64 {
	var sum int64
	for _, c := range oi.Customizations {
		sum += c.AdditionalPrice
	}
	return sum
}
