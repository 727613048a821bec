package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/catalog"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/pagination"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"github.com/shopspring/decimal"
)

// barcodeAttempts bounds how often a generated barcode is redrawn on collision.
const barcodeAttempts = 5

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
	activity    *ActivityLogService
	now         func() time.Time
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, activity *ActivityLogService) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		activity:    activity,
		now:         time.Now,
	}
}

// ProductQuery narrows and orders the product list.
type ProductQuery struct {
	Search     string
	Category   string
	Sort       enum.ProductSort
	Force      bool
	Pagination *pagination.PaginationParams
}

// ListProducts searches, filters and sorts the inventory. Without
// pagination params the whole list comes back on one page.
func (s *ProductService) ListProducts(ctx context.Context, q *ProductQuery) *pagination.PaginatedResult[entity.Product] {
	products := s.productRepo.List(ctx, q.Force)
	products = catalog.Search(products, strings.TrimSpace(q.Search))
	products = catalog.FilterByCategory(products, q.Category)
	products = catalog.Sort(products, q.Sort)

	if q.Pagination == nil {
		perPage := len(products)
		if perPage == 0 {
			perPage = 1
		}
		return pagination.NewPaginatedResult(products, pagination.NewPagination(1, perPage, int64(len(products))))
	}
	return pagination.Paginate(products, q.Pagination)
}

// GetProduct returns one product by id.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	p, ok := catalog.FindByID(s.productRepo.List(ctx, false), id)
	if !ok {
		return nil, apperror.NewNotFoundError("Product")
	}
	return &p, nil
}

// FindByBarcode looks a scanned code up in the inventory.
func (s *ProductService) FindByBarcode(ctx context.Context, code string) (*entity.Product, error) {
	p, ok := catalog.FindByBarcode(s.productRepo.List(ctx, false), code)
	if !ok {
		return nil, apperror.NewNotFoundError("Product")
	}
	return &p, nil
}

// LowStock returns products below their reorder level.
func (s *ProductService) LowStock(ctx context.Context, threshold int) []entity.Product {
	return catalog.LowStock(s.productRepo.List(ctx, false), threshold)
}

// OutOfStock returns products with nothing left.
func (s *ProductService) OutOfStock(ctx context.Context) []entity.Product {
	return catalog.OutOfStock(s.productRepo.List(ctx, false))
}

// Categories returns the categories in use.
func (s *ProductService) Categories(ctx context.Context) []string {
	return catalog.UniqueCategories(s.productRepo.List(ctx, false))
}

// ProductStats is the owner dashboard summary of the inventory.
type ProductStats struct {
	TotalProducts  int             `json:"total_products"`
	Categories     int             `json:"categories"`
	LowStock       int             `json:"low_stock"`
	OutOfStock     int             `json:"out_of_stock"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	ValueDisplay   string          `json:"inventory_value_display"`
	CategoryCounts map[string]int  `json:"category_counts"`
}

// Stats aggregates the inventory.
func (s *ProductService) Stats(ctx context.Context) *ProductStats {
	products := s.productRepo.List(ctx, false)
	value := catalog.InventoryValue(products)
	return &ProductStats{
		TotalProducts:  len(products),
		Categories:     len(catalog.UniqueCategories(products)),
		LowStock:       len(catalog.LowStock(products, catalog.LowStockThreshold)),
		OutOfStock:     len(catalog.OutOfStock(products)),
		InventoryValue: value,
		ValueDisplay:   utils.FormatPrice(value),
		CategoryCounts: catalog.CategoryCounts(products),
	}
}

// ProductOptions are the pick lists of the add-item form.
type ProductOptions struct {
	Categories   []string `json:"categories"`
	Weights      []string `json:"weights"`
	Units        []string `json:"units"`
	CustomOption string   `json:"custom_option"`
}

// Options returns the pick lists.
func (s *ProductService) Options() *ProductOptions {
	return &ProductOptions{
		Categories:   catalog.Categories,
		Weights:      catalog.Weights,
		Units:        catalog.Units,
		CustomOption: catalog.CustomOption,
	}
}

// CreateProduct adds a product after the add-item form's checks.
func (s *ProductService) CreateProduct(ctx context.Context, input *entity.ProductInput) (*entity.ProductResult, error) {
	if errs := input.ValidateCatalogEntry(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	products := s.productRepo.List(ctx, false)
	if catalog.IsDuplicateProduct(products, input, "") {
		return nil, apperror.NewConflictError(apperror.KindDuplicateProduct,
			fmt.Sprintf("%s (%s %s) already exists", strings.TrimSpace(input.Name), input.Weight, input.Unit))
	}

	res, err := s.productRepo.Add(ctx, input)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, "Added product: "+strings.TrimSpace(input.Name))
	return res, nil
}

// UpdateProduct rewrites a product.
func (s *ProductService) UpdateProduct(ctx context.Context, input *entity.ProductInput) (*entity.ProductResult, error) {
	if strings.TrimSpace(input.ID) == "" {
		return s.productRepo.Update(ctx, input)
	}
	if errs := input.ValidateCatalogEntry(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	products := s.productRepo.List(ctx, false)
	if catalog.IsDuplicateProduct(products, input, input.ID) {
		return nil, apperror.NewConflictError(apperror.KindDuplicateProduct,
			fmt.Sprintf("%s (%s %s) already exists", strings.TrimSpace(input.Name), input.Weight, input.Unit))
	}
	if barcode := strings.TrimSpace(input.Barcode); catalog.IsDuplicateBarcode(products, barcode, input.ID) {
		return nil, apperror.New(apperror.KindBarcodeDuplicate, "This barcode is already assigned to another product")
	}

	res, err := s.productRepo.Update(ctx, input)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, "Updated product: "+strings.TrimSpace(input.Name))
	return res, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	name := id
	if p, ok := catalog.FindByID(s.productRepo.List(ctx, false), id); ok {
		name = p.Name
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, "Deleted product: "+name)
	return nil
}

// GenerateBarcode draws a barcode not used by any known product. custom
// selects the CUST-prefixed form instead of EAN-13.
func (s *ProductService) GenerateBarcode(ctx context.Context, custom bool) string {
	products := s.productRepo.List(ctx, false)
	var code string
	for i := 0; i < barcodeAttempts; i++ {
		if custom {
			code = utils.GenerateCustomBarcode(s.now())
		} else {
			code = utils.GenerateBarcodeNumber()
		}
		if !catalog.IsDuplicateBarcode(products, code, "") {
			break
		}
	}
	return code
}

// CheckBarcode asks the sheet whether barcode is taken by another product.
func (s *ProductService) CheckBarcode(ctx context.Context, barcode, excludeID string) (bool, error) {
	return s.productRepo.CheckDuplicateBarcode(ctx, barcode, excludeID)
}

// Capacity reports the room left on the inventory sheet.
func (s *ProductService) Capacity(ctx context.Context) entity.Capacity {
	return s.productRepo.CheckCapacity(ctx)
}

type productCSVRow struct {
	ID              string `csv:"product_id"`
	Name            string `csv:"product_name"`
	Category        string `csv:"category"`
	PurchasePrice   string `csv:"purchase_price"`
	SalePrice       string `csv:"sale_price"`
	Quantity        int    `csv:"quantity"`
	MinimumQuantity int    `csv:"minimum_quantity"`
	Barcode         string `csv:"barcode"`
	Weight          string `csv:"weight"`
	Unit            string `csv:"unit"`
}

// ExportCSV writes the inventory, sorted by name, as CSV.
func (s *ProductService) ExportCSV(ctx context.Context, w io.Writer) error {
	products := catalog.Sort(s.productRepo.List(ctx, false), enum.SortByName)
	rows := make([]*productCSVRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, &productCSVRow{
			ID:              p.ID,
			Name:            p.Name,
			Category:        p.Category,
			PurchasePrice:   p.PurchasePrice.StringFixed(2),
			SalePrice:       p.SalePrice.StringFixed(2),
			Quantity:        p.Quantity,
			MinimumQuantity: p.MinQuantity(),
			Barcode:         p.Barcode,
			Weight:          p.Weight,
			Unit:            p.Unit,
		})
	}
	return gocsv.Marshal(rows, w)
}
