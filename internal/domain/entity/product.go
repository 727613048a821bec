package entity

import (
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// DefaultMinimumQuantity applies when a product row has no usable minimum.
const DefaultMinimumQuantity = 10

// MaxProductNameLength bounds product names accepted for writes.
const MaxProductNameLength = 200

// Product is one row of the inventory sheet.
type Product struct {
	ID              string          `json:"product_id"`
	Name            string          `json:"product_name"`
	Category        string          `json:"category"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	Quantity        int             `json:"quantity"`
	MinimumQuantity int             `json:"minimum_quantity"`
	Barcode         string          `json:"barcode"`
	Weight          string          `json:"weight"`
	Unit            string          `json:"unit"`
	AddedBy         string          `json:"added_by,omitempty"`
}

// MinQuantity returns the reorder level, defaulting when the sheet has none.
func (p *Product) MinQuantity() int {
	if p.MinimumQuantity <= 0 {
		return DefaultMinimumQuantity
	}
	return p.MinimumQuantity
}

// IsOutOfStock reports whether nothing is left to sell.
func (p *Product) IsOutOfStock() bool {
	return p.Quantity <= 0
}

// IsLowStock reports whether stock is positive but under the reorder level.
func (p *Product) IsLowStock() bool {
	return p.Quantity > 0 && p.Quantity < p.MinQuantity()
}

// ProductFromRecord builds a Product from a decoded sheet row. Cells may
// arrive as strings or numbers; unparseable numbers become zero.
func ProductFromRecord(rec map[string]interface{}) Product {
	return Product{
		ID:              cellString(rec, "product_id", "productId", "id"),
		Name:            cellString(rec, "product_name", "productName", "name"),
		Category:        cellString(rec, "category"),
		PurchasePrice:   cellDecimal(rec, "purchase_price", "purchasePrice"),
		SalePrice:       cellDecimal(rec, "sale_price", "salePrice", "price"),
		Quantity:        cellInt(rec, "quantity"),
		MinimumQuantity: cellInt(rec, "minimum_quantity", "minimumQuantity", "min_qty"),
		Barcode:         cellString(rec, "barcode"),
		Weight:          cellString(rec, "weight"),
		Unit:            cellString(rec, "unit"),
		AddedBy:         cellString(rec, "added_by", "addedBy"),
	}
}

// ProductInput carries a product write. Numeric fields are pointers so a
// missing value can be told apart from zero.
type ProductInput struct {
	ID              string           `json:"product_id,omitempty"`
	Name            string           `json:"product_name"`
	Category        string           `json:"category"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
	Quantity        *int             `json:"quantity"`
	MinimumQuantity *int             `json:"minimum_quantity"`
	Barcode         string           `json:"barcode,omitempty"`
	Weight          string           `json:"weight,omitempty"`
	Unit            string           `json:"unit,omitempty"`
}

// InputFromProduct turns a stored product back into a full write, used when
// only the stock level changes.
func InputFromProduct(p Product) *ProductInput {
	purchase, sale := p.PurchasePrice, p.SalePrice
	qty, minQty := p.Quantity, p.MinimumQuantity
	return &ProductInput{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		PurchasePrice:   &purchase,
		SalePrice:       &sale,
		Quantity:        &qty,
		MinimumQuantity: &minQty,
		Barcode:         p.Barcode,
		Weight:          p.Weight,
		Unit:            p.Unit,
	}
}

// Validate checks the fields every product write needs.
func (in *ProductInput) Validate() []apperror.FieldError {
	var errs []apperror.FieldError
	add := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		add("product_name", "Product name is required")
	case len([]rune(in.Name)) > MaxProductNameLength:
		add("product_name", "Product name must be less than 200 characters")
	}
	if strings.TrimSpace(in.Category) == "" {
		add("category", "Category is required")
	}

	switch {
	case in.PurchasePrice == nil:
		add("purchase_price", "Purchase price is required")
	case in.PurchasePrice.IsNegative():
		add("purchase_price", "Purchase price must be a valid positive number")
	}
	switch {
	case in.SalePrice == nil:
		add("sale_price", "Sale price is required")
	case in.SalePrice.IsNegative():
		add("sale_price", "Sale price must be a valid positive number")
	}
	switch {
	case in.Quantity == nil:
		add("quantity", "Quantity is required")
	case *in.Quantity < 0:
		add("quantity", "Quantity must be a valid positive number")
	}
	switch {
	case in.MinimumQuantity == nil:
		add("minimum_quantity", "Minimum quantity is required")
	case *in.MinimumQuantity < 0:
		add("minimum_quantity", "Minimum quantity must be a valid positive number")
	}
	return errs
}

// ValidateCatalogEntry adds the rules the inventory screen enforces on top
// of Validate: a product must say how much of what it is.
func (in *ProductInput) ValidateCatalogEntry() []apperror.FieldError {
	errs := in.Validate()
	if strings.TrimSpace(in.Weight) == "" {
		errs = append(errs, apperror.FieldError{Field: "weight", Message: "Weight/Quantity is required"})
	}
	if strings.TrimSpace(in.Unit) == "" {
		errs = append(errs, apperror.FieldError{Field: "unit", Message: "Unit is required"})
	}
	return errs
}

// Capacity is the sheet's answer to "is there room for another row".
type Capacity struct {
	Available     bool `json:"available"`
	TotalRows     int  `json:"total_rows"`
	UsedRows      int  `json:"used_rows"`
	AvailableRows int  `json:"available_rows"`
	// Warning is set when the sheet could not be asked and the numbers are a guess.
	Warning bool   `json:"warning,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProductResult is what a successful product write returns.
type ProductResult struct {
	ProductID string `json:"product_id,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
	Message   string `json:"message,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

func cellString(rec map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			if s := strings.TrimSpace(cast.ToString(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func cellInt(rec map[string]interface{}, keys ...string) int {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			if s, isStr := v.(string); isStr {
				v = strings.TrimSpace(s)
			}
			if n, err := cast.ToFloat64E(v); err == nil {
				return int(n)
			}
		}
	}
	return 0
}

func cellDecimal(rec map[string]interface{}, keys ...string) decimal.Decimal {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			if s, isStr := v.(string); isStr {
				s = strings.TrimSpace(s)
				if s == "" {
					continue
				}
				if d, err := decimal.NewFromString(s); err == nil {
					return d
				}
				continue
			}
			if f, err := cast.ToFloat64E(v); err == nil {
				return decimal.NewFromFloat(f)
			}
		}
	}
	return decimal.Zero
}
