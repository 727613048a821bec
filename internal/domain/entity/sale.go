package entity

import (
	"strconv"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// WalkInCustomer is the customer name used when the cashier leaves it blank.
const WalkInCustomer = "Walk-in Customer"

// Sale is one order header on the sales sheet.
type Sale struct {
	OrderNumber   string             `json:"order_number"`
	CustomerName  string             `json:"customer_name"`
	TotalItems    int                `json:"total_items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Date          string             `json:"date"`
	Time          string             `json:"time"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Change        decimal.Decimal    `json:"change"`
	Tax           decimal.Decimal    `json:"tax"`
	SoldBy        string             `json:"sold_by"`
	Items         []SaleItem         `json:"items,omitempty"`
}

// SaleItem is one line of an order on the sale-items sheet.
type SaleItem struct {
	OrderNumber string          `json:"order_number"`
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Category    string          `json:"category,omitempty"`
	Weight      string          `json:"weight,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// LegacySale is a single-product sale row from the first sales sheet.
type LegacySale struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	SoldBy       string          `json:"sold_by,omitempty"`
}

// OrderNumberValue parses the order number, 0 when it is not numeric.
func (s *Sale) OrderNumberValue() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s.OrderNumber), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Validate checks the header fields the sales sheet requires.
func (s *Sale) Validate() []apperror.FieldError {
	var errs []apperror.FieldError
	if strings.TrimSpace(s.OrderNumber) == "" {
		errs = append(errs, apperror.FieldError{Field: "order_number", Message: "Order number is required"})
	}
	if s.TotalItems <= 0 {
		errs = append(errs, apperror.FieldError{Field: "total_items", Message: "Total items must be a positive number"})
	}
	if !s.TotalAmount.IsPositive() {
		errs = append(errs, apperror.FieldError{Field: "total_amount", Message: "Total amount must be a positive number"})
	}
	if strings.TrimSpace(string(s.PaymentMethod)) == "" {
		errs = append(errs, apperror.FieldError{Field: "payment_method", Message: "Payment method is required"})
	}
	return errs
}

// Validate checks the fields every sale line needs.
func (i *SaleItem) Validate() []apperror.FieldError {
	var errs []apperror.FieldError
	if strings.TrimSpace(i.OrderNumber) == "" {
		errs = append(errs, apperror.FieldError{Field: "order_number", Message: "Order number is required"})
	}
	if strings.TrimSpace(i.ProductName) == "" {
		errs = append(errs, apperror.FieldError{Field: "product_name", Message: "Product name is required"})
	}
	if i.Quantity <= 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity", Message: "Valid quantity is required"})
	}
	if i.Price.IsNegative() {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "Valid price is required"})
	}
	return errs
}

// NormalizeSale maps every sale shape the sheet has produced (v2 snake_case,
// camelCase and legacy single-product rows) onto Sale.
func NormalizeSale(rec map[string]interface{}) Sale {
	s := Sale{
		OrderNumber:   cellString(rec, "order_number", "orderNumber", "sale_id", "saleId"),
		CustomerName:  cellString(rec, "customer_name", "customerName"),
		TotalItems:    cellInt(rec, "total_items", "totalItems", "quantity_sold", "quantitySold"),
		TotalAmount:   cellDecimal(rec, "total_amount", "totalAmount", "total_price", "totalPrice"),
		Date:          cellString(rec, "date", "sale_date", "saleDate"),
		Time:          cellString(rec, "time", "sale_time", "saleTime"),
		PaymentMethod: enum.PaymentMethod(cellString(rec, "payment_method", "paymentMethod")),
		AmountPaid:    cellDecimal(rec, "amount_paid", "amountPaid"),
		Change:        cellDecimal(rec, "change"),
		Tax:           cellDecimal(rec, "tax"),
		SoldBy:        cellString(rec, "sold_by", "soldBy"),
	}
	if s.CustomerName == "" {
		s.CustomerName = WalkInCustomer
	}
	if s.PaymentMethod == "" {
		s.PaymentMethod = enum.PaymentCash
	}
	if st := cellDecimal(rec, "subtotal"); !st.IsZero() {
		s.Subtotal = st
	} else {
		s.Subtotal = s.TotalAmount.Sub(s.Tax)
	}

	// Legacy rows describe a single product inline.
	if name := cellString(rec, "product_name", "productName"); name != "" {
		qty := s.TotalItems
		s.Items = []SaleItem{{
			OrderNumber: s.OrderNumber,
			ProductID:   cellString(rec, "product_id", "productId"),
			ProductName: name,
			Quantity:    qty,
			LineTotal:   s.TotalAmount,
			Price:       unitPrice(s.TotalAmount, qty),
		}}
	}
	return s
}

// NormalizeSaleItem maps a sale-items row onto SaleItem.
func NormalizeSaleItem(rec map[string]interface{}) SaleItem {
	item := SaleItem{
		OrderNumber: cellString(rec, "order_number", "orderNumber"),
		ProductID:   cellString(rec, "product_id", "productId"),
		ProductName: cellString(rec, "product_name", "productName"),
		Quantity:    cellInt(rec, "quantity"),
		Category:    cellString(rec, "category"),
		Weight:      cellString(rec, "weight"),
		Unit:        cellString(rec, "unit"),
		Price:       cellDecimal(rec, "price"),
		LineTotal:   cellDecimal(rec, "line_total", "lineTotal", "total"),
	}
	if item.LineTotal.IsZero() && item.Quantity > 0 {
		item.LineTotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	return item
}

func unitPrice(total decimal.Decimal, qty int) decimal.Decimal {
	if qty <= 0 {
		return total
	}
	return total.Div(decimal.NewFromInt(int64(qty))).Round(2)
}
