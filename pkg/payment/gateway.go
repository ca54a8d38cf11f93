// Package payment is the adapter edge to the external payment gateway. The
// core only sees this interface; amounts crossing it are integer minor
// currency units, the same representation the order aggregate stores.
package payment

import "context"

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Intent is a created payment intent. ID is the gateway payment identifier,
// ProviderOrderID the gateway-side order (transaction) identifier that later
// webhooks reference.
type Intent struct {
	ID              string `json:"id"`
	ProviderOrderID string `json:"providerOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	Raw             string `json:"-"`
}

type RefundResult struct {
	ID        string `json:"id"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type Gateway interface {
	// CreateIntent registers the charge with the gateway. receipt is our
	// order number, echoed back in gateway dashboards and webhooks.
	CreateIntent(ctx context.Context, amount int64, currency, receipt string, customer CustomerInfo) (*Intent, error)

	// VerifyPaymentSignature checks the signature a client presents after
	// checkout against the provider order id and payment id.
	VerifyPaymentSignature(providerOrderID, paymentID, signature string) bool

	// InitiateRefund asks the gateway to return amount to the customer.
	// The refund clears asynchronously; a refund.processed webhook follows.
	InitiateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*RefundResult, error)

	// VerifyWebhookSignature authenticates a raw webhook body before any
	// event is dispatched to the reconciliation engine.
	VerifyWebhookSignature(payload []byte, signature string) bool

	// Name identifies the gateway in order records ("razorpay", "mock").
	Name() string
}
