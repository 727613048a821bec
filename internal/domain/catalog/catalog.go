// Package catalog holds the pure helpers the inventory and reception
// screens run over a product list: search, filters, sorting and stock
// aggregates. Nothing here touches the network.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel groups products with no category.
const UncategorizedLabel = "Uncategorized"

// LowStockThreshold is the reorder level used when a product has none.
const LowStockThreshold = entity.DefaultMinimumQuantity

// Search matches term case-insensitively against name, category, barcode,
// id, weight and unit. An empty term returns products unchanged.
func Search(products []entity.Product, term string) []entity.Product {
	if term == "" {
		return products
	}
	term = strings.ToLower(term)
	out := make([]entity.Product, 0)
	for _, p := range products {
		if containsFold(p.Name, term) ||
			containsFold(p.Category, term) ||
			strings.Contains(p.Barcode, term) ||
			containsFold(p.ID, term) ||
			containsFold(p.Weight, term) ||
			containsFold(p.Unit, term) {
			out = append(out, p)
		}
	}
	return out
}

// SearchForSale is the narrower match the till uses: id, name, category
// and barcode only.
func SearchForSale(products []entity.Product, term string) []entity.Product {
	if term == "" {
		return products
	}
	term = strings.ToLower(term)
	out := make([]entity.Product, 0)
	for _, p := range products {
		if containsFold(p.ID, term) ||
			containsFold(p.Name, term) ||
			containsFold(p.Category, term) ||
			strings.Contains(p.Barcode, term) {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(s, lowerTerm string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerTerm)
}

// FilterByCategory keeps products whose category equals category exactly.
// An empty category returns products unchanged.
func FilterByCategory(products []entity.Product, category string) []entity.Product {
	if category == "" {
		return products
	}
	out := make([]entity.Product, 0)
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// UniqueCategories returns the distinct non-empty categories, sorted.
func UniqueCategories(products []entity.Product) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// CategoryCounts counts products per category.
func CategoryCounts(products []entity.Product) map[string]int {
	counts := make(map[string]int)
	for _, p := range products {
		c := p.Category
		if c == "" {
			c = UncategorizedLabel
		}
		counts[c]++
	}
	return counts
}

// Sort returns a sorted copy. Unknown orderings sort by name.
func Sort(products []entity.Product, by enum.ProductSort) []entity.Product {
	out := make([]entity.Product, len(products))
	copy(out, products)

	var less func(a, b entity.Product) bool
	switch by {
	case enum.SortByPriceLow:
		less = func(a, b entity.Product) bool { return a.SalePrice.LessThan(b.SalePrice) }
	case enum.SortByPriceHigh:
		less = func(a, b entity.Product) bool { return a.SalePrice.GreaterThan(b.SalePrice) }
	case enum.SortByCategory:
		less = func(a, b entity.Product) bool { return a.Category < b.Category }
	case enum.SortByQuantityLow:
		less = func(a, b entity.Product) bool { return a.Quantity < b.Quantity }
	case enum.SortByQuantityHigh:
		less = func(a, b entity.Product) bool { return a.Quantity > b.Quantity }
	case enum.SortByLowStock:
		// Below-minimum products first; relative order otherwise kept.
		less = func(a, b entity.Product) bool { return belowMinimum(a) && !belowMinimum(b) }
	default:
		less = func(a, b entity.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func belowMinimum(p entity.Product) bool {
	return p.Quantity < p.MinQuantity()
}

// LowStock keeps products with stock above zero but below their minimum.
// threshold stands in for a missing minimum.
func LowStock(products []entity.Product, threshold int) []entity.Product {
	if threshold <= 0 {
		threshold = LowStockThreshold
	}
	out := make([]entity.Product, 0)
	for _, p := range products {
		min := p.MinimumQuantity
		if min <= 0 {
			min = threshold
		}
		if p.Quantity > 0 && p.Quantity < min {
			out = append(out, p)
		}
	}
	return out
}

// OutOfStock keeps products with no stock left.
func OutOfStock(products []entity.Product) []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range products {
		if p.IsOutOfStock() {
			out = append(out, p)
		}
	}
	return out
}

// InventoryValue is the stock valued at purchase price.
func InventoryValue(products []entity.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// FindByID returns the product with the given id.
func FindByID(products []entity.Product, id string) (entity.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Product{}, false
}

// FindByBarcode compares digits only, so a barcode stored with spaces or
// dashes still matches a clean scan.
func FindByBarcode(products []entity.Product, code string) (entity.Product, bool) {
	want := utils.DigitsOnly(code)
	if want == "" {
		return entity.Product{}, false
	}
	for _, p := range products {
		if p.Barcode != "" && utils.DigitsOnly(p.Barcode) == want {
			return p, true
		}
	}
	return entity.Product{}, false
}

// IsDuplicateProduct reports whether another product already has the same
// name, weight and unit (trimmed, case-insensitive).
func IsDuplicateProduct(products []entity.Product, in *entity.ProductInput, excludeID string) bool {
	name, weight, unit := normKey(in.Name), normKey(in.Weight), normKey(in.Unit)
	for _, p := range products {
		if excludeID != "" && p.ID == excludeID {
			continue
		}
		if normKey(p.Name) == name && normKey(p.Weight) == weight && normKey(p.Unit) == unit {
			return true
		}
	}
	return false
}

// IsDuplicateBarcode reports whether another product uses barcode.
func IsDuplicateBarcode(products []entity.Product, barcode, excludeID string) bool {
	if barcode == "" {
		return false
	}
	for _, p := range products {
		if excludeID != "" && p.ID == excludeID {
			continue
		}
		if p.Barcode == barcode {
			return true
		}
	}
	return false
}

func normKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ProductView is a product with placeholders filled in for display.
type ProductView struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Quantity      int             `json:"quantity"`
	MinQuantity   int             `json:"min_qty"`
	Barcode       string          `json:"barcode"`
	Weight        string          `json:"weight"`
	Unit          string          `json:"unit"`
	Color         string          `json:"color"`
}

// DisplayProduct fills missing fields with "N/A" or "-".
func DisplayProduct(p entity.Product) ProductView {
	return ProductView{
		ID:            orPlaceholder(p.ID, "N/A"),
		Name:          orPlaceholder(p.Name, "N/A"),
		Category:      orPlaceholder(p.Category, "N/A"),
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Quantity:      p.Quantity,
		MinQuantity:   p.MinQuantity(),
		Barcode:       orPlaceholder(p.Barcode, "N/A"),
		Weight:        orPlaceholder(p.Weight, "-"),
		Unit:          orPlaceholder(p.Unit, "-"),
		Color:         CategoryColor(p.Category),
	}
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// FormatQuantity renders "<qty> <weight> <unit>", leaving the unit out when
// the weight already names it.
func FormatQuantity(p entity.Product) string {
	out := strconv.Itoa(p.Quantity)
	if p.Weight != "" {
		out += " " + p.Weight
	}
	if p.Unit != "" && !strings.Contains(p.Weight, p.Unit) {
		out += " " + p.Unit
	}
	return out
}
