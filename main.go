package main

import (
	"fmt"
	"log"

	"backend/configs"
	"backend/pkg/payment"
	"backend/repository"
	"backend/routes"
	"backend/services"
	"backend/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()

	configs.ConnectDB(cfg.DBSource)
	db := configs.DB()
	configs.SetupDatabase()

	if err := configs.SeedAdmin(cfg); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}
	if cfg.SeedDemo {
		if err := configs.SeedDemo(); err != nil {
			log.Fatalf("seed demo failed: %v", err)
		}
	}

	// Repositories
	orderRepo := repository.NewOrderRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Payment gateway
	var gateway payment.Gateway
	if cfg.UseMockGateway {
		gateway = payment.NewMockGateway(cfg.GatewayWebhookSecret)
		log.Println("using mock payment gateway")
	} else {
		gateway = payment.NewClient(payment.ClientConfig{
			BaseURL:       cfg.GatewayBaseURL,
			KeyID:         cfg.GatewayKeyID,
			KeySecret:     cfg.GatewayKeySecret,
			WebhookSecret: cfg.GatewayWebhookSecret,
		})
	}

	// Event fan-out: process log plus websocket push
	hub := ws.NewNotifyHub(catalogRepo)
	go hub.Run()
	events := services.MultiDispatcher{services.LogDispatcher{}, hub}

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	catalogSvc := services.NewCatalogService(catalogRepo)
	orderSvc := services.NewOrderService(db, orderRepo, catalogRepo, userRepo,
		services.DefaultPricingEngine(), gateway, events)
	paySvc := services.NewPaymentService(db, orderRepo, gateway, events)

	r := gin.Default()
	routes.RegisterRoutes(r, cfg, routes.Deps{
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Payments: paySvc,
		Hub:      hub,
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Println("server running at", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
