package configs

import (
	"backend/entity"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

func DB() *gorm.DB {
	return db
}

func ConnectDB(source string) {
	// TranslateError turns sqlite unique-constraint failures into
	// gorm.ErrDuplicatedKey, which the idempotency race handling relies on.
	database, err := gorm.Open(sqlite.Open(source), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("failed to connect database")
	}
	db = database
}

func SetupDatabase() {
	db.AutoMigrate(
		&entity.User{},
		&entity.Restaurant{},
		&entity.FoodItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.OrderTimelineEntry{},
		&entity.OrderAuditLog{},
	)
}
