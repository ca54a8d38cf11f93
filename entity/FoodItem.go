package entity

import (
	"gorm.io/gorm"
)

// UnlimitedStock is the sentinel meaning the item never runs out.
const UnlimitedStock = -1

const DefaultPreparationTime = 20 // minutes

type FoodItem struct {
	gorm.Model
	RestaurantID uint       `gorm:"index;not null" json:"restaurantId"`
	Restaurant   Restaurant `json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"` // minor units

	PreparationTime int  `gorm:"default:20" json:"preparationTime"` // minutes
	IsAvailable     bool `gorm:"default:true" json:"isAvailable"`
	Stock           int  `gorm:"default:-1" json:"stock"`
	SoldCount       int  `json:"soldCount"`
}

// IsInStock reports whether qty units can be ordered right now.
func (f *FoodItem) IsInStock(qty int) bool {
	if f.Stock == UnlimitedStock {
		return true
	}
	return f.Stock >= qty
}
