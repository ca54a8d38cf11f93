package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	secret := "s3cret"
	payload := []byte(`{"event":"payment.captured"}`)

	sig := Sign(secret, payload)
	assert.True(t, VerifyHMAC(secret, payload, sig))
	assert.False(t, VerifyHMAC("other", payload, sig))
	assert.False(t, VerifyHMAC(secret, []byte("tampered"), sig))
	assert.False(t, VerifyHMAC(secret, payload, ""))
	assert.False(t, VerifyHMAC(secret, payload, "zz-not-hex"))
}

func TestPaymentMessageFormat(t *testing.T) {
	assert.Equal(t, []byte("order_1|pay_1"), PaymentMessage("order_1", "pay_1"))
}

func TestMockGatewayRoundTrip(t *testing.T) {
	gw := NewMockGateway("hook-secret")

	intent, err := gw.CreateIntent(context.Background(), 12345, "INR", "ORD1", CustomerInfo{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, int64(12345), intent.Amount)
	assert.NotEmpty(t, intent.ID)
	assert.NotEmpty(t, intent.ProviderOrderID)

	sig := gw.SignPayment(intent.ProviderOrderID, "pay_x")
	assert.True(t, gw.VerifyPaymentSignature(intent.ProviderOrderID, "pay_x", sig))
	assert.False(t, gw.VerifyPaymentSignature(intent.ProviderOrderID, "pay_y", sig))

	body := []byte(`{"event":"x"}`)
	assert.True(t, gw.VerifyWebhookSignature(body, gw.SignWebhook(body)))
}

func TestMockGatewayFailureModes(t *testing.T) {
	gw := NewMockGateway("s")
	gw.FailIntents = true
	_, err := gw.CreateIntent(context.Background(), 1, "INR", "r", CustomerInfo{})
	assert.Error(t, err)

	gw.FailRefunds = true
	_, err = gw.InitiateRefund(context.Background(), "pay_1", 1, "r")
	assert.Error(t, err)
}
