package repository

import (
	"errors"

	"backend/entity"

	"gorm.io/gorm"
)

// CatalogRepository is the accessor for restaurant and food-item records.
// Stock mutations are conditional updates so concurrent orders on the same
// item cannot drive the counter negative.
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// ---------------- Restaurants ----------------

func (r *CatalogRepository) GetRestaurant(tx *gorm.DB, id uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	if err := tx.First(&rest, id).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *CatalogRepository) GetRestaurantByOwner(userID uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	if err := r.DB.Where("user_id = ?", userID).First(&rest).Error; err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *CatalogRepository) IsOwnedBy(restID, userID uint) (bool, error) {
	var cnt int64
	err := r.DB.Model(&entity.Restaurant{}).
		Where("id = ? AND user_id = ?", restID, userID).
		Count(&cnt).Error
	return cnt > 0, err
}

// ListRestaurants returns the public storefront: verified and active only.
func (r *CatalogRepository) ListRestaurants() ([]entity.Restaurant, error) {
	var out []entity.Restaurant
	err := r.DB.Where("is_active = ? AND is_verified = ?", true, true).
		Order("id ASC").Find(&out).Error
	return out, err
}

func (r *CatalogRepository) CreateRestaurant(rest *entity.Restaurant) error {
	return r.DB.Create(rest).Error
}

// ---------------- Food items ----------------

func (r *CatalogRepository) GetFoodItem(tx *gorm.DB, id uint) (*entity.FoodItem, error) {
	var f entity.FoodItem
	if err := tx.First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *CatalogRepository) ListFoodItems(restID uint, availableOnly bool) ([]entity.FoodItem, error) {
	q := r.DB.Where("restaurant_id = ?", restID)
	if availableOnly {
		q = q.Where("is_available = ?", true)
	}
	var out []entity.FoodItem
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

func (r *CatalogRepository) CreateFoodItem(f *entity.FoodItem) error {
	return r.DB.Create(f).Error
}

func (r *CatalogRepository) UpdateFoodItem(id uint, fields map[string]any) error {
	return r.DB.Model(&entity.FoodItem{}).Where("id = ?", id).Updates(fields).Error
}

// DecrementStock reserves qty units inside the caller's transaction.
// Unlimited-stock items only bump the sold counter; finite items decrement
// conditionally and report false when the stock no longer covers qty.
func (r *CatalogRepository) DecrementStock(tx *gorm.DB, item *entity.FoodItem, qty int) (bool, error) {
	if item.Stock == entity.UnlimitedStock {
		err := tx.Model(&entity.FoodItem{}).Where("id = ?", item.ID).
			Update("sold_count", gorm.Expr("sold_count + ?", qty)).Error
		return err == nil, err
	}
	res := tx.Model(&entity.FoodItem{}).
		Where("id = ? AND stock >= ?", item.ID, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"sold_count": gorm.Expr("sold_count + ?", qty),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RestoreStock undoes a reservation on rejection/cancellation. Unlimited
// items are skipped entirely, matching how the reservation was taken.
func (r *CatalogRepository) RestoreStock(tx *gorm.DB, foodItemID uint, qty int) error {
	return tx.Model(&entity.FoodItem{}).
		Where("id = ? AND stock <> ?", foodItemID, entity.UnlimitedStock).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"sold_count": gorm.Expr("CASE WHEN sold_count > ? THEN sold_count - ? ELSE 0 END", qty, qty),
		}).Error
}

// ---------------- Errors ----------------

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
