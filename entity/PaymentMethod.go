package entity

const (
	MethodCard           = "card"
	MethodUPI            = "upi"
	MethodWallet         = "wallet"
	MethodCashOnDelivery = "cash_on_delivery"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCard, MethodUPI, MethodWallet, MethodCashOnDelivery:
		return true
	}
	return false
}
