package request

import (
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRequest represents a product create or update request. Prices
// accept JSON numbers or numeric strings.
type ProductRequest struct {
	Name            string           `json:"product_name"`
	Category        string           `json:"category"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	Quantity        *int             `json:"quantity"`
	MinimumQuantity *int             `json:"minimum_quantity"`
	Barcode         string           `json:"barcode" binding:"omitempty,max=64"`
	Weight          string           `json:"weight"`
	Unit            string           `json:"unit"`
}

// ToInput converts the request to a product write for id.
func (r *ProductRequest) ToInput(id string) *entity.ProductInput {
	return &entity.ProductInput{
		ID:              id,
		Name:            strings.TrimSpace(r.Name),
		Category:        strings.TrimSpace(r.Category),
		PurchasePrice:   r.PurchasePrice,
		SalePrice:       r.SalePrice,
		Quantity:        r.Quantity,
		MinimumQuantity: r.MinimumQuantity,
		Barcode:         strings.TrimSpace(r.Barcode),
		Weight:          strings.TrimSpace(r.Weight),
		Unit:            strings.TrimSpace(r.Unit),
	}
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	SortBy   string `form:"sort_by"`
	Refresh  bool   `form:"refresh"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}

// LowStockRequest sets the fallback reorder level.
type LowStockRequest struct {
	Threshold int `form:"threshold" binding:"omitempty,min=0"`
}

// BarcodeCheckRequest asks whether a barcode is free.
type BarcodeCheckRequest struct {
	Barcode   string `form:"barcode" binding:"required"`
	ExcludeID string `form:"exclude_id"`
}

// GenerateBarcodeRequest picks the barcode form.
type GenerateBarcodeRequest struct {
	Custom bool `form:"custom"`
}
