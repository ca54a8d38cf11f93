package services

import (
	"context"
	"errors"
	"log"

	"backend/entity"
	"backend/pkg/metrics"
	"backend/pkg/payment"
	"backend/repository"
	"backend/utils"

	"gorm.io/gorm"
)

// OrderService owns order creation and the customer-facing order operations.
// Creation runs as one transaction: stock reservations, the order row, its
// audit entry and the payment-intent registration all commit or roll back
// together.
type OrderService struct {
	DB       *gorm.DB
	Orders   *repository.OrderRepository
	Catalog  *repository.CatalogRepository
	Users    *repository.UserRepository
	Pricing  *PricingEngine
	Gateway  payment.Gateway
	Events   EventDispatcher
	Currency string
}

func NewOrderService(
	db *gorm.DB,
	orders *repository.OrderRepository,
	catalog *repository.CatalogRepository,
	users *repository.UserRepository,
	pricing *PricingEngine,
	gateway payment.Gateway,
	events EventDispatcher,
) *OrderService {
	return &OrderService{
		DB:       db,
		Orders:   orders,
		Catalog:  catalog,
		Users:    users,
		Pricing:  pricing,
		Gateway:  gateway,
		Events:   events,
		Currency: "INR",
	}
}

// ----- DTOs from controller -----

type OrderItemIn struct {
	FoodItemID          uint                       `json:"foodItemId" binding:"required"`
	Quantity            int                        `json:"quantity" binding:"required,min=1"`
	Customizations      []entity.ItemCustomization `json:"customizations"`
	SpecialInstructions string                     `json:"specialInstructions"`
}

type CreateOrderReq struct {
	RestaurantID        uint          `json:"restaurantId" binding:"required"`
	Items               []OrderItemIn `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress     string        `json:"deliveryAddress" binding:"required"`
	PaymentMethod       string        `json:"paymentMethod"`
	IdempotencyKey      string        `json:"idempotencyKey" binding:"required,min=10,max=100"`
	SpecialInstructions string        `json:"specialInstructions"`
	ContactlessDelivery bool          `json:"contactlessDelivery"`
}

type CreateOrderRes struct {
	Order    *entity.Order   `json:"order"`
	Intent   *payment.Intent `json:"paymentIntent,omitempty"`
	Existing bool            `json:"-"`
}

// Create runs the order-creation orchestration of one atomic transaction.
// A replayed idempotency key returns the already-persisted order with no
// side effects. Any failure before commit leaves no partial state: stock
// decrements and the order row roll back together.
func (s *OrderService) Create(ctx context.Context, userID uint, req *CreateOrderReq, clientIP string) (*CreateOrderRes, error) {
	if req.PaymentMethod == "" {
		req.PaymentMethod = entity.MethodCard
	}
	if !entity.ValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	// Fast path for client retries.
	if existing, err := s.Orders.GetByIdempotencyKey(s.DB, req.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return &CreateOrderRes{Order: existing, Existing: true}, nil
	}

	var (
		order  *entity.Order
		intent *payment.Intent
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		restaurant, err := s.Catalog.GetRestaurant(tx, req.RestaurantID)
		if repository.IsNotFound(err) {
			return ErrRestaurantUnavailable
		}
		if err != nil {
			return err
		}
		if !restaurant.IsActive || !restaurant.IsVerified {
			return ErrRestaurantUnavailable
		}

		user, err := s.Users.FindByID(userID)
		if repository.IsNotFound(err) {
			return ErrCustomerNotFound
		}
		if err != nil {
			return err
		}

		var (
			subtotal int64
			maxPrep  = entity.DefaultPreparationTime
			items    = make([]entity.OrderItem, 0, len(req.Items))
		)
		for _, in := range req.Items {
			food, err := s.Catalog.GetFoodItem(tx, in.FoodItemID)
			if repository.IsNotFound(err) {
				return ErrItemUnavailable
			}
			if err != nil {
				return err
			}
			if !food.IsAvailable {
				return ErrItemUnavailable
			}
			if food.RestaurantID != req.RestaurantID {
				return ErrMixedRestaurantItems
			}
			if !food.IsInStock(in.Quantity) {
				return ErrInsufficientStock
			}

			item := entity.OrderItem{
				FoodItemID:          food.ID,
				Name:                food.Name,
				Qty:                 in.Quantity,
				UnitPrice:           food.Price,
				Customizations:      in.Customizations,
				SpecialInstructions: in.SpecialInstructions,
				PreparationTime:     food.PreparationTime,
			}
			item.Total = (item.UnitPrice + item.CustomizationTotal()) * int64(in.Quantity)
			subtotal += item.Total
			if food.PreparationTime > maxPrep {
				maxPrep = food.PreparationTime
			}
			items = append(items, item)

			// Reserve stock in the same transaction. The conditional
			// update is the arbiter under concurrent orders.
			ok, err := s.Catalog.DecrementStock(tx, food, in.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientStock
			}
		}

		// Evaluated after summing all items, before fee computation.
		if subtotal < restaurant.MinimumOrder {
			return ErrMinimumOrderNotMet
		}

		quote, err := s.Pricing.Quote(subtotal, restaurant.DeliveryFee, 0)
		if err != nil {
			return err
		}

		order = &entity.Order{
			OrderNumber:              utils.NewOrderNumber(),
			IdempotencyKey:           req.IdempotencyKey,
			UserID:                   userID,
			RestaurantID:             restaurant.ID,
			Items:                    items,
			Subtotal:                 quote.Subtotal,
			DeliveryFee:              quote.DeliveryFee,
			Taxes:                    quote.Taxes,
			PlatformFee:              quote.PlatformFee,
			DiscountAmount:           quote.Discount,
			TotalPrice:               quote.Total,
			DeliveryAddress:          req.DeliveryAddress,
			SpecialInstructions:      req.SpecialInstructions,
			ContactlessDelivery:      req.ContactlessDelivery,
			PaymentMethod:            req.PaymentMethod,
			PaymentStatus:            entity.PaymentPending,
			Status:                   entity.StatusPending,
			EstimatedPreparationTime: maxPrep,
		}
		if err := s.Orders.Create(tx, order); err != nil {
			return err
		}

		audit := order.NewAuditLog("order_created", utils.Actor(userID), map[string]any{
			"items":         len(items),
			"totalPrice":    order.TotalPrice,
			"paymentMethod": order.PaymentMethod,
		}, clientIP)
		if err := s.Orders.AppendAudit(tx, &audit); err != nil {
			return err
		}

		// Gateway call inside the transaction: a failed or timed-out intent
		// aborts everything, including the stock decrements above.
		intent, err = s.Gateway.CreateIntent(ctx, order.TotalPrice, s.Currency, order.OrderNumber, payment.CustomerInfo{
			Name:  user.FirstName + " " + user.LastName,
			Email: user.Email,
			Phone: user.PhoneNumber,
		})
		if err != nil {
			log.Printf("payment intent failed for order %s: %v", order.OrderNumber, err)
			return ErrPaymentIntentFailed
		}

		fields := map[string]any{
			"payment_id":       intent.ID,
			"transaction_id":   intent.ProviderOrderID,
			"payment_gateway":  s.Gateway.Name(),
			"gateway_response": intent.Raw,
		}
		if err := s.Orders.UpdateFields(tx, order.ID, fields); err != nil {
			return err
		}
		order.PaymentID = intent.ID
		order.TransactionID = intent.ProviderOrderID
		order.PaymentGateway = s.Gateway.Name()
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a creation race on the idempotency key; the winner's order
		// is the canonical one.
		if existing, lookupErr := s.Orders.GetByIdempotencyKey(s.DB, req.IdempotencyKey); lookupErr == nil && existing != nil {
			return &CreateOrderRes{Order: existing, Existing: true}, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	dispatch(s.Events, Event{
		Name:         EventOrderCreated,
		OrderID:      order.ID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		Data:         map[string]any{"orderNumber": order.OrderNumber, "totalPrice": order.TotalPrice},
	})

	return &CreateOrderRes{Order: order, Intent: intent}, nil
}

// ----- Queries -----

func (s *OrderService) DetailForUser(userID, orderID uint) (*entity.Order, error) {
	o, err := s.Orders.GetForUser(userID, orderID)
	if repository.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

func (s *OrderService) ListForUser(userID uint, status string, page, limit int) ([]entity.Order, int64, error) {
	return s.Orders.ListForUser(userID, status, page, limit)
}

// ListForRestaurant lists a restaurant's orders after an ownership check.
// A "pending" filter means payment_verified: orders whose money arrived but
// which the restaurant has not acted on yet.
func (s *OrderService) ListForRestaurant(ownerID, restID uint, status string, page, limit int) ([]entity.Order, int64, error) {
	ok, err := s.Catalog.IsOwnedBy(restID, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrAccessDenied
	}
	if status == "pending" {
		status = entity.StatusPaymentVerified
	}
	return s.Orders.ListForRestaurant(restID, status, page, limit)
}

func (s *OrderService) DetailForRestaurant(ownerID, restID, orderID uint) (*entity.Order, error) {
	ok, err := s.Catalog.IsOwnedBy(restID, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}
	o, err := s.Orders.GetForRestaurant(restID, orderID)
	if repository.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// Cancel is the customer-initiated exit. Allowed until the food leaves the
// kitchen; restores stock in the same transaction and initiates a refund
// when money already moved.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID uint, reason string) (*entity.Order, error) {
	o, err := s.Orders.GetForUser(userID, orderID)
	if repository.IsNotFound(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if !entity.CanBeCancelled(o.Status) {
		return nil, ErrOrderNotCancellable
	}

	fromStatus := o.Status
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		affected, err := s.Orders.UpdateStatusGuard(tx, o.ID, fromStatus, entity.StatusCancelled)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderNotCancellable
		}

		entry, audit := o.UpdateStatus(entity.StatusCancelled, entity.ByCustomer, reason)
		if err := s.Orders.AppendTimeline(tx, &entry); err != nil {
			return err
		}
		if err := s.Orders.AppendAudit(tx, &audit); err != nil {
			return err
		}
		if err := s.Orders.UpdateFields(tx, o.ID, map[string]any{"completed_at": o.CompletedAt}); err != nil {
			return err
		}

		for _, item := range o.Items {
			if err := s.Catalog.RestoreStock(tx, item.FoodItemID, item.Qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.refundAfterTerminal(ctx, o, "order cancelled: "+reason, entity.ByCustomer)

	dispatch(s.Events, Event{
		Name:         EventOrderCancelled,
		OrderID:      o.ID,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Data:         map[string]any{"reason": reason},
	})
	return o, nil
}
