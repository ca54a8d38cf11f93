package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex HMAC-SHA256 of data, the scheme razorpay-style
// gateways use for both webhook bodies and checkout signatures.
func Sign(secret string, data []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC compares a presented signature in constant time.
func VerifyHMAC(secret string, data []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Sign(secret, data)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// PaymentMessage is the canonical string signed after checkout:
// "<providerOrderId>|<paymentId>".
func PaymentMessage(providerOrderID, paymentID string) []byte {
	return []byte(providerOrderID + "|" + paymentID)
}
