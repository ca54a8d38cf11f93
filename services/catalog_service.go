package services

import (
	"net/http"

	"backend/entity"
	"backend/repository"
)

var (
	ErrRestaurantNotFound = &Error{"RESTAURANT_NOT_FOUND", "restaurant not found", http.StatusNotFound}
	ErrFoodItemNotFound   = &Error{"FOOD_ITEM_NOT_FOUND", "food item not found", http.StatusNotFound}
	ErrRestaurantExists   = &Error{"RESTAURANT_EXISTS", "owner already has a restaurant", http.StatusConflict}
)

// CatalogService is the storefront side: restaurants and their menus.
type CatalogService struct {
	Catalog *repository.CatalogRepository
}

func NewCatalogService(catalog *repository.CatalogRepository) *CatalogService {
	return &CatalogService{Catalog: catalog}
}

// ----- Public storefront -----

func (s *CatalogService) ListRestaurants() ([]entity.Restaurant, error) {
	return s.Catalog.ListRestaurants()
}

func (s *CatalogService) RestaurantDetail(id uint) (*entity.Restaurant, []entity.FoodItem, error) {
	rest, err := s.Catalog.GetRestaurant(s.Catalog.DB, id)
	if repository.IsNotFound(err) {
		return nil, nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	items, err := s.Catalog.ListFoodItems(id, true)
	if err != nil {
		return nil, nil, err
	}
	return rest, items, nil
}

// ----- Owner side -----

type CreateRestaurantReq struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Address      string `json:"address" binding:"required"`
	Phone        string `json:"phone"`
	MinimumOrder int64  `json:"minimumOrder" binding:"min=0"`
	DeliveryFee  int64  `json:"deliveryFee" binding:"min=0"`
}

func (s *CatalogService) CreateRestaurant(ownerID uint, req *CreateRestaurantReq) (*entity.Restaurant, error) {
	if existing, err := s.Catalog.GetRestaurantByOwner(ownerID); err == nil && existing != nil {
		return nil, ErrRestaurantExists
	} else if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}

	rest := &entity.Restaurant{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Phone:        req.Phone,
		UserID:       ownerID,
		IsActive:     true,
		MinimumOrder: req.MinimumOrder,
		DeliveryFee:  req.DeliveryFee,
	}
	if err := s.Catalog.CreateRestaurant(rest); err != nil {
		return nil, err
	}
	return rest, nil
}

func (s *CatalogService) MyRestaurant(ownerID uint) (*entity.Restaurant, error) {
	rest, err := s.Catalog.GetRestaurantByOwner(ownerID)
	if repository.IsNotFound(err) {
		return nil, ErrRestaurantNotFound
	}
	return rest, err
}

type CreateFoodItemReq struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	Price           int64  `json:"price" binding:"required,min=1"`
	PreparationTime int    `json:"preparationTime"`
	Stock           *int   `json:"stock"` // nil or -1 means unlimited
}

func (s *CatalogService) CreateFoodItem(ownerID uint, req *CreateFoodItemReq) (*entity.FoodItem, error) {
	rest, err := s.MyRestaurant(ownerID)
	if err != nil {
		return nil, err
	}

	item := &entity.FoodItem{
		RestaurantID:    rest.ID,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Price:           req.Price,
		PreparationTime: req.PreparationTime,
		IsAvailable:     true,
		Stock:           entity.UnlimitedStock,
	}
	if item.PreparationTime <= 0 {
		item.PreparationTime = entity.DefaultPreparationTime
	}
	if req.Stock != nil && *req.Stock >= 0 {
		item.Stock = *req.Stock
	}
	if err := s.Catalog.CreateFoodItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

type UpdateFoodItemReq struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	Price           *int64  `json:"price"`
	PreparationTime *int    `json:"preparationTime"`
	IsAvailable     *bool   `json:"isAvailable"`
	Stock           *int    `json:"stock"`
}

// UpdateFoodItem patches only the fields present in the request, after
// verifying the item belongs to the caller's restaurant.
func (s *CatalogService) UpdateFoodItem(ownerID, itemID uint, req *UpdateFoodItemReq) (*entity.FoodItem, error) {
	item, err := s.ownedFoodItem(ownerID, itemID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Price != nil && *req.Price > 0 {
		fields["price"] = *req.Price
	}
	if req.PreparationTime != nil && *req.PreparationTime > 0 {
		fields["preparation_time"] = *req.PreparationTime
	}
	if req.IsAvailable != nil {
		fields["is_available"] = *req.IsAvailable
	}
	if req.Stock != nil {
		stock := *req.Stock
		if stock < 0 {
			stock = entity.UnlimitedStock
		}
		fields["stock"] = stock
	}
	if len(fields) == 0 {
		return item, nil
	}

	if err := s.Catalog.UpdateFoodItem(item.ID, fields); err != nil {
		return nil, err
	}
	return s.Catalog.GetFoodItem(s.Catalog.DB, item.ID)
}

func (s *CatalogService) MyFoodItems(ownerID uint) ([]entity.FoodItem, error) {
	rest, err := s.MyRestaurant(ownerID)
	if err != nil {
		return nil, err
	}
	return s.Catalog.ListFoodItems(rest.ID, false)
}

func (s *CatalogService) ownedFoodItem(ownerID, itemID uint) (*entity.FoodItem, error) {
	item, err := s.Catalog.GetFoodItem(s.Catalog.DB, itemID)
	if repository.IsNotFound(err) {
		return nil, ErrFoodItemNotFound
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.Catalog.IsOwnedBy(item.RestaurantID, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	return item, nil
}
