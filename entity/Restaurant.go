package entity

import (
	"gorm.io/gorm"
)

type Restaurant struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`

	UserID uint `gorm:"index" json:"userId"` // owner (users.id)
	User   User `json:"-"`

	IsActive   bool `gorm:"default:true" json:"isActive"`
	IsVerified bool `gorm:"default:false" json:"isVerified"`

	MinimumOrder int64 `json:"minimumOrder"` // minor units
	DeliveryFee  int64 `json:"deliveryFee"`  // minor units, 0 = platform default

	FoodItems []FoodItem `json:"-"`
	Orders    []Order    `json:"-"`
}
