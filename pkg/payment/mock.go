package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// MockGateway is an in-process gateway for local development and tests. It
// remembers created intents so refunds and signature checks behave like the
// real thing, and can be flipped into failure modes.
type MockGateway struct {
	mu      sync.Mutex
	secret  string
	intents map[string]*Intent // keyed by provider order id

	FailIntents bool
	FailRefunds bool
}

func NewMockGateway(secret string) *MockGateway {
	return &MockGateway{
		secret:  secret,
		intents: make(map[string]*Intent),
	}
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) CreateIntent(ctx context.Context, amount int64, currency, receipt string, customer CustomerInfo) (*Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailIntents {
		return nil, errors.New("mock gateway: intent creation disabled")
	}

	intent := &Intent{
		ID:              "pay_" + uuid.NewString(),
		ProviderOrderID: "order_" + uuid.NewString(),
		Amount:          amount,
		Currency:        currency,
		Status:          "created",
	}
	m.intents[intent.ProviderOrderID] = intent
	return intent, nil
}

func (m *MockGateway) VerifyPaymentSignature(providerOrderID, paymentID, signature string) bool {
	return VerifyHMAC(m.secret, PaymentMessage(providerOrderID, paymentID), signature)
}

func (m *MockGateway) InitiateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*RefundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailRefunds {
		return nil, errors.New("mock gateway: refunds disabled")
	}
	return &RefundResult{
		ID:        "rfnd_" + uuid.NewString(),
		PaymentID: paymentID,
		Amount:    amount,
		Status:    "processed",
	}, nil
}

func (m *MockGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return VerifyHMAC(m.secret, payload, signature)
}

// SignWebhook produces the signature the mock expects, for tests and local
// webhook replays.
func (m *MockGateway) SignWebhook(payload []byte) string {
	return Sign(m.secret, payload)
}

// SignPayment produces a valid checkout signature for a known intent.
func (m *MockGateway) SignPayment(providerOrderID, paymentID string) string {
	return Sign(m.secret, PaymentMessage(providerOrderID, paymentID))
}
