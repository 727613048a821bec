package request

import (
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleLookupRequest controls the sales history reads.
type SaleLookupRequest struct {
	Refresh bool `form:"refresh"`
}

// LegacySaleRequest records a single-product sale.
type LegacySaleRequest struct {
	ProductID    string           `json:"product_id" binding:"required"`
	ProductName  string           `json:"product_name"`
	QuantitySold int              `json:"quantity_sold" binding:"required,min=1"`
	TotalPrice   *decimal.Decimal `json:"total_price"`
}

// ToEntity converts the request to a legacy sale row.
func (r *LegacySaleRequest) ToEntity() *entity.LegacySale {
	sale := &entity.LegacySale{
		ProductID:    strings.TrimSpace(r.ProductID),
		ProductName:  strings.TrimSpace(r.ProductName),
		QuantitySold: r.QuantitySold,
	}
	if r.TotalPrice != nil {
		sale.TotalPrice = *r.TotalPrice
	}
	return sale
}
