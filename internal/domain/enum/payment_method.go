package enum

import "strings"

// PaymentMethod is free text on the sheet; these are the values the till offers.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentCard         PaymentMethod = "Card"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentEasypaisa    PaymentMethod = "Easypaisa"
	PaymentJazzCash     PaymentMethod = "JazzCash"
)

// IsCash reports whether change has to be handed back for this method.
func (p PaymentMethod) IsCash() bool {
	return strings.EqualFold(strings.TrimSpace(string(p)), string(PaymentCash))
}

func (p PaymentMethod) String() string {
	return string(p)
}
