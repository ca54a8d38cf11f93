package services

import "errors"

// DefaultDeliveryFee applies when a restaurant has no fee configured:
// 20 currency units, expressed in minor units.
const DefaultDeliveryFee int64 = 2000

// RateFunc maps a subtotal to a fee, both in minor units. Implementations
// must be pure and deterministic.
type RateFunc func(subtotal int64) int64

// PricingEngine computes the monetary breakdown of an order. No side
// effects; callers validate inputs before quoting.
type PricingEngine struct {
	taxes       RateFunc
	platformFee RateFunc
}

func NewPricingEngine(taxes, platformFee RateFunc) *PricingEngine {
	return &PricingEngine{taxes: taxes, platformFee: platformFee}
}

// DefaultPricingEngine uses the platform's percentage rates: 5% tax and
// 2% platform fee, integer-truncated.
func DefaultPricingEngine() *PricingEngine {
	return NewPricingEngine(
		func(subtotal int64) int64 { return subtotal * 5 / 100 },
		func(subtotal int64) int64 { return subtotal * 2 / 100 },
	)
}

type Quote struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Taxes       int64 `json:"taxes"`
	PlatformFee int64 `json:"platformFee"`
	Discount    int64 `json:"discount"`
	Total       int64 `json:"total"`
}

// Quote prices an order. deliveryFee of 0 falls back to the platform
// default. Fails only on negative input.
func (p *PricingEngine) Quote(subtotal, deliveryFee, discount int64) (Quote, error) {
	if subtotal < 0 || deliveryFee < 0 || discount < 0 {
		return Quote{}, errors.New("pricing: negative input")
	}
	if deliveryFee == 0 {
		deliveryFee = DefaultDeliveryFee
	}

	q := Quote{
		Subtotal:    subtotal,
		DeliveryFee: deliveryFee,
		Taxes:       p.taxes(subtotal),
		PlatformFee: p.platformFee(subtotal),
		Discount:    discount,
	}
	q.Total = q.Subtotal + q.DeliveryFee + q.Taxes + q.PlatformFee - q.Discount
	if q.Total < 0 {
		return Quote{}, errors.New("pricing: discount exceeds order value")
	}
	return q, nil
}
