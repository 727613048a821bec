package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the store/business header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string   `json:"store_name"`
	Address   string   `json:"address,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	TaxIDs    []string `json:"tax_ids,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name     string          `json:"name"`
	Weight   string          `json:"weight,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Label is the printed item name, with the pack size when there is one.
func (i ReceiptItem) Label() string {
	if i.Weight == "" {
		return i.Name
	}
	return i.Name + " (" + i.Weight + ")"
}

// Receipt is a value object representing a printable bill.
// It is composed from a sale at print time and never stored.
type Receipt struct {
	Header        ReceiptHeader   `json:"header"`
	OrderNumber   string          `json:"order_number"`
	Date          string          `json:"date"`
	Time          string          `json:"time"`
	Cashier       string          `json:"cashier"`
	Customer      string          `json:"customer"`
	PaymentMethod string          `json:"payment_method"`
	Items         []ReceiptItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Change        decimal.Decimal `json:"change"`
	// ShowCashDetails is set for cash sales, where paid and change are printed.
	ShowCashDetails bool   `json:"show_cash_details"`
	Terms           string `json:"terms,omitempty"`
}
