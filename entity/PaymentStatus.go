package entity

// Settlement states. This axis tracks money movement and is independent from
// the order status chain.
const (
	PaymentPending           = "pending"
	PaymentProcessing        = "processing"
	PaymentCompleted         = "completed"
	PaymentFailed            = "failed"
	PaymentRefundInitiated   = "refund_initiated"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
)
