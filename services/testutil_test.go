package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"backend/entity"
	"backend/pkg/payment"
	"backend/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. cache=shared keeps
// every pooled connection on the same database; TranslateError makes unique
// violations surface as gorm.ErrDuplicatedKey like in production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Restaurant{},
		&entity.FoodItem{},
		&entity.Order{},
		&entity.OrderItem{},
		&entity.OrderTimelineEntry{},
		&entity.OrderAuditLog{},
	))
	return db
}

// recorderDispatcher captures dispatched events for assertions.
type recorderDispatcher struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorderDispatcher) Dispatch(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorderDispatcher) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Name
	}
	return out
}

func (r *recorderDispatcher) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Name == name {
			n++
		}
	}
	return n
}

// env bundles everything a service test needs.
type env struct {
	db      *gorm.DB
	orders  *OrderService
	pay     *PaymentService
	gateway *payment.MockGateway
	events  *recorderDispatcher

	customer   *entity.User
	owner      *entity.User
	restaurant *entity.Restaurant
}

const webhookSecret = "test-webhook-secret"

func newEnv(t *testing.T) *env {
	t.Helper()
	db := newTestDB(t)

	orderRepo := repository.NewOrderRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	userRepo := repository.NewUserRepository(db)

	gw := payment.NewMockGateway(webhookSecret)
	rec := &recorderDispatcher{}

	e := &env{
		db:      db,
		gateway: gw,
		events:  rec,
		orders: NewOrderService(db, orderRepo, catalogRepo, userRepo,
			DefaultPricingEngine(), gw, rec),
		pay: NewPaymentService(db, orderRepo, gw, rec),
	}

	e.customer = seedUser(t, db, "customer@test.local", entity.RoleCustomer)
	e.owner = seedUser(t, db, "owner@test.local", entity.RoleOwner)
	e.restaurant = seedRestaurant(t, db, e.owner.ID)
	return e
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *entity.User {
	t.Helper()
	u := &entity.User{
		Email:     email,
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedRestaurant(t *testing.T, db *gorm.DB, ownerID uint) *entity.Restaurant {
	t.Helper()
	r := &entity.Restaurant{
		Name:       "Test Kitchen",
		Address:    "1 Test Street",
		UserID:     ownerID,
		IsActive:   true,
		IsVerified: true,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func seedFoodItem(t *testing.T, db *gorm.DB, restID uint, price int64, stock int) *entity.FoodItem {
	t.Helper()
	f := &entity.FoodItem{
		RestaurantID:    restID,
		Name:            "Test Dish",
		Price:           price,
		PreparationTime: 15,
		IsAvailable:     true,
		Stock:           stock,
	}
	require.NoError(t, db.Create(f).Error)
	return f
}

func idemKey() string {
	return "idem-" + uuid.NewString()
}

// createOrder is the happy-path helper most tests start from.
func (e *env) createOrder(t *testing.T, items ...OrderItemIn) *CreateOrderRes {
	t.Helper()
	res, err := e.orders.Create(context.Background(), e.customer.ID, &CreateOrderReq{
		RestaurantID:    e.restaurant.ID,
		Items:           items,
		DeliveryAddress: "42 Delivery Lane",
		IdempotencyKey:  idemKey(),
	}, "127.0.0.1")
	require.NoError(t, err)
	return res
}

// capture drives the order through a payment.captured webhook.
func (e *env) capture(t *testing.T, o *entity.Order) {
	t.Helper()
	body := fmt.Sprintf(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_cap_%d",
			"order_id": %q,
			"amount": %d,
			"method": "card"
		}}}
	}`, o.ID, o.TransactionID, o.TotalPrice)
	require.NoError(t, e.pay.HandleWebhook([]byte(body), e.gateway.SignWebhook([]byte(body))))
}

func (e *env) reloadOrder(t *testing.T, id uint) *entity.Order {
	t.Helper()
	var o entity.Order
	require.NoError(t, e.db.Preload("Items").First(&o, id).Error)
	return &o
}

func (e *env) reloadItem(t *testing.T, id uint) *entity.FoodItem {
	t.Helper()
	var f entity.FoodItem
	require.NoError(t, e.db.First(&f, id).Error)
	return &f
}
