package controllers

import (
	"strconv"

	"backend/pkg/resp"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

type RestaurantController struct {
	Catalog *services.CatalogService
}

func NewRestaurantController(catalog *services.CatalogService) *RestaurantController {
	return &RestaurantController{Catalog: catalog}
}

// GET /restaurants
func (rc *RestaurantController) List(c *gin.Context) {
	rests, err := rc.Catalog.ListRestaurants()
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "restaurants", rests)
}

// GET /restaurants/:id
func (rc *RestaurantController) Detail(c *gin.Context) {
	id := paramUint(c, "id")
	rest, items, err := rc.Catalog.RestaurantDetail(id)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "restaurant", gin.H{"restaurant": rest, "menu": items})
}

// POST /owner/restaurants
func (rc *RestaurantController) Create(c *gin.Context) {
	var req services.CreateRestaurantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	rest, err := rc.Catalog.CreateRestaurant(utils.CurrentUserID(c), &req)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.Created(c, "restaurant created", rest)
}

// GET /owner/restaurants/me
func (rc *RestaurantController) Mine(c *gin.Context) {
	rest, err := rc.Catalog.MyRestaurant(utils.CurrentUserID(c))
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "restaurant", rest)
}

// POST /owner/food-items
func (rc *RestaurantController) CreateFoodItem(c *gin.Context) {
	var req services.CreateFoodItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	item, err := rc.Catalog.CreateFoodItem(utils.CurrentUserID(c), &req)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.Created(c, "food item created", item)
}

// PATCH /owner/food-items/:id
func (rc *RestaurantController) UpdateFoodItem(c *gin.Context) {
	var req services.UpdateFoodItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	item, err := rc.Catalog.UpdateFoodItem(utils.CurrentUserID(c), paramUint(c, "id"), &req)
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "food item updated", item)
}

// GET /owner/food-items
func (rc *RestaurantController) MyFoodItems(c *gin.Context) {
	items, err := rc.Catalog.MyFoodItems(utils.CurrentUserID(c))
	if err != nil {
		resp.FromError(c, err)
		return
	}
	resp.OK(c, "food items", items)
}

func paramUint(c *gin.Context, name string) uint {
	v, _ := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(v)
}
