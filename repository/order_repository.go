package repository

import (
	"errors"

	"backend/entity"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders ----------------

func (r *OrderRepository) Create(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) Get(orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := r.DB.Preload("Items").First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetDetail loads the order with its items and timeline for API responses.
func (r *OrderRepository) GetDetail(orderID uint) (*entity.Order, error) {
	var o entity.Order
	err := r.DB.
		Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, orderID).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByIdempotencyKey returns (nil, nil) when no order carries the key.
func (r *OrderRepository) GetByIdempotencyKey(tx *gorm.DB, key string) (*entity.Order, error) {
	var o entity.Order
	err := tx.Preload("Items").Where("idempotency_key = ?", key).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByPaymentRef locates an order by gateway payment id or by the gateway's
// provider order id (transaction id). Webhooks may carry either.
func (r *OrderRepository) GetByPaymentRef(paymentID, transactionID string) (*entity.Order, error) {
	var o entity.Order
	err := r.DB.Preload("Items").
		Where("payment_id = ? OR gateway_payment_id = ?", paymentID, paymentID).
		Or("transaction_id = ? AND transaction_id <> ''", transactionID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetForUser(userID, orderID uint) (*entity.Order, error) {
	var o entity.Order
	err := r.DB.Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND user_id = ?", orderID, userID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetForRestaurant(restID, orderID uint) (*entity.Order, error) {
	var o entity.Order
	err := r.DB.Preload("Items").
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ? AND restaurant_id = ?", orderID, restID).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListForUser(userID uint, status string, page, limit int) ([]entity.Order, int64, error) {
	return r.list(r.DB.Where("user_id = ?", userID), status, page, limit)
}

func (r *OrderRepository) ListForRestaurant(restID uint, status string, page, limit int) ([]entity.Order, int64, error) {
	return r.list(r.DB.Where("restaurant_id = ?", restID), status, page, limit)
}

func (r *OrderRepository) list(db *gorm.DB, status string, page, limit int) ([]entity.Order, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	q := db.Model(&entity.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []entity.Order
	err := q.Preload("Items").
		Order("id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&out).Error
	return out, total, err
}

// UpdateStatusGuard is the compare-and-swap on order status: the write only
// lands when the current status still matches from. A racing caller sees
// zero rows affected and must fail its transition.
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to string) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// UpdateFields patches order columns inside the caller's transaction.
func (r *OrderRepository) UpdateFields(tx *gorm.DB, orderID uint, fields map[string]any) error {
	return tx.Model(&entity.Order{}).Where("id = ?", orderID).Updates(fields).Error
}

// ---------------- Timeline & audit (append-only) ----------------

func (r *OrderRepository) AppendTimeline(tx *gorm.DB, e *entity.OrderTimelineEntry) error {
	return tx.Create(e).Error
}

func (r *OrderRepository) AppendAudit(tx *gorm.DB, a *entity.OrderAuditLog) error {
	return tx.Create(a).Error
}

func (r *OrderRepository) AuditLogs(orderID uint) ([]entity.OrderAuditLog, error) {
	var logs []entity.OrderAuditLog
	err := r.DB.Where("order_id = ?", orderID).Order("id ASC").Find(&logs).Error
	return logs, err
}

func (r *OrderRepository) TimelineEntries(orderID uint) ([]entity.OrderTimelineEntry, error) {
	var entries []entity.OrderTimelineEntry
	err := r.DB.Where("order_id = ?", orderID).Order("id ASC").Find(&entries).Error
	return entries, err
}
