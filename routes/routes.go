package routes

import (
	"backend/configs"
	"backend/controllers"
	"backend/entity"
	"backend/middlewares"
	"backend/pkg/metrics"
	"backend/services"
	"backend/ws"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Orders   *services.OrderService
	Payments *services.PaymentService
	Hub      *ws.NotifyHub
}

func RegisterRoutes(r *gin.Engine, cfg *configs.Config, deps Deps) {
	r.Use(middlewares.CORSMiddleware())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/metrics", metrics.Handler())

	authCtrl := controllers.NewAuthController(deps.Auth)
	restCtrl := controllers.NewRestaurantController(deps.Catalog)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	payCtrl := controllers.NewPaymentController(deps.Payments)

	// Auth
	a := r.Group("/auth")
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
	}
	a.GET("/me", middlewares.AuthMiddleware(cfg.JWTSecret), authCtrl.Me)

	// Public storefront
	r.GET("/restaurants", restCtrl.List)
	r.GET("/restaurants/:id", restCtrl.Detail)

	// Orders (customer)
	u := r.Group("/", middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		u.POST("/orders", orderCtrl.Create)
		u.GET("/orders", orderCtrl.ListMine)
		u.GET("/orders/:id", orderCtrl.Detail)
		u.POST("/orders/:id/cancel", orderCtrl.Cancel)

		u.POST("/payments/verify", payCtrl.Verify)
		u.GET("/payments/orders/:id/status", payCtrl.Status)
	}

	// Payment gateway callbacks (authenticated by signature, not JWT)
	r.POST("/payments/webhook", payCtrl.Webhook)

	// Restaurant owner
	owner := r.Group("/owner", middlewares.AuthMiddleware(cfg.JWTSecret, entity.RoleOwner, entity.RoleAdmin))
	{
		owner.POST("/restaurants", restCtrl.Create)
		owner.GET("/restaurants/me", restCtrl.Mine)
		owner.GET("/restaurants/:id/orders", orderCtrl.ListForRestaurant)
		owner.GET("/restaurants/:id/orders/:orderId", orderCtrl.DetailForRestaurant)

		owner.GET("/food-items", restCtrl.MyFoodItems)
		owner.POST("/food-items", restCtrl.CreateFoodItem)
		owner.PATCH("/food-items/:id", restCtrl.UpdateFoodItem)

		owner.POST("/orders/:id/confirm", orderCtrl.Confirm)
		owner.POST("/orders/:id/reject", orderCtrl.Reject)
		owner.PATCH("/orders/:id/status", orderCtrl.UpdateStatus)
	}

	// Admin
	admin := r.Group("/admin", middlewares.AuthMiddleware(cfg.JWTSecret, entity.RoleAdmin))
	{
		admin.POST("/orders/:id/refund", payCtrl.Refund)
	}

	// WebSocket notifications
	wsGroup := r.Group("/ws", middlewares.WSAuthMiddleware(cfg.JWTSecret))
	{
		wsGroup.GET("/orders", deps.Hub.HandleCustomer)
		wsGroup.GET("/restaurant", deps.Hub.HandleRestaurant)
	}
}
