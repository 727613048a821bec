package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModeRequest switches the terminal between scanning and searching.
type ModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=scan search"`
}

// KeyInputRequest carries keystrokes from a keyboard-wedge scanner. At
// defaults to the time the request arrives.
type KeyInputRequest struct {
	Chars string     `json:"chars" binding:"required"`
	At    *time.Time `json:"at"`
}

// ScanRequest submits a whole barcode.
type ScanRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

// SearchRequest filters the terminal's product snapshot.
type SearchRequest struct {
	Term string `form:"q"`
}

// AddToCartRequest adds one unit of a product.
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// UpdateQuantityRequest changes a cart line by delta.
type UpdateQuantityRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
	Delta int  `json:"delta" binding:"required"`
}

// TaxRequest either sets the tax or moves it by delta.
type TaxRequest struct {
	Value *decimal.Decimal `json:"value"`
	Delta *decimal.Decimal `json:"delta"`
}

// PaymentRequest sets the payment method and the amount handed over.
type PaymentRequest struct {
	Method     string           `json:"method"`
	AmountPaid *decimal.Decimal `json:"amount_paid"`
}

// CustomerRequest names the customer on the bill.
type CustomerRequest struct {
	Name string `json:"name"`
}

// TransactionsRequest controls the transactions read.
type TransactionsRequest struct {
	Refresh bool `form:"refresh"`
}
