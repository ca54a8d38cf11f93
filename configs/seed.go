package configs

import (
	"log"

	"backend/entity"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the initial admin account from the environment.
func SeedAdmin(cfg *Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}

	var count int64
	db.Model(&entity.User{}).Where("email = ?", cfg.AdminEmail).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := entity.User{
		Email:     cfg.AdminEmail,
		Password:  string(hash),
		FirstName: "Admin",
		LastName:  "Seed",
		Role:      entity.RoleAdmin,
	}
	return db.Create(&admin).Error
}

// SeedDemo loads a small demo catalog for local development. Gated behind
// SEED_DEMO=true so it never runs against a real database.
func SeedDemo() error {
	var count int64
	db.Model(&entity.Restaurant{}).Count(&count)
	if count > 0 {
		return nil
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("owner1234"), bcrypt.DefaultCost)
	owner := entity.User{
		Email:     "owner@demo.local",
		Password:  string(hash),
		FirstName: "Demo",
		LastName:  "Owner",
		Role:      entity.RoleOwner,
	}
	if err := db.Create(&owner).Error; err != nil {
		return err
	}

	rest := entity.Restaurant{
		Name:         "Demo Kitchen",
		Description:  "Seeded demo restaurant",
		Address:      "1 Demo Street",
		UserID:       owner.ID,
		IsActive:     true,
		IsVerified:   true,
		MinimumOrder: 10000,
	}
	if err := db.Create(&rest).Error; err != nil {
		return err
	}

	items := []entity.FoodItem{
		{RestaurantID: rest.ID, Name: "Margherita Pizza", Category: "mains", Price: 29900, PreparationTime: 25, IsAvailable: true, Stock: 50},
		{RestaurantID: rest.ID, Name: "Veg Burger", Category: "mains", Price: 14900, PreparationTime: 15, IsAvailable: true, Stock: entity.UnlimitedStock},
		{RestaurantID: rest.ID, Name: "Cold Coffee", Category: "drinks", Price: 9900, PreparationTime: 5, IsAvailable: true, Stock: entity.UnlimitedStock},
	}
	return db.Create(&items).Error
}
