package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/catalog"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// SalesService serves the sales sheets outside the checkout terminal: the
// owner's sales history and the old single-product sales sheet.
type SalesService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	activity    *ActivityLogService
}

// NewSalesService creates a new sales service
func NewSalesService(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, activity *ActivityLogService) *SalesService {
	return &SalesService{saleRepo: saleRepo, productRepo: productRepo, activity: activity}
}

// List returns every sale header.
func (s *SalesService) List(ctx context.Context, force bool) []entity.Sale {
	return s.saleRepo.List(ctx, force)
}

// Get returns one sale with its lines. refresh drops the cached lines first.
func (s *SalesService) Get(ctx context.Context, order string, refresh bool) (*entity.Sale, error) {
	order = strings.TrimSpace(order)
	if order == "" {
		return nil, apperror.NewBadRequestError("Order number is required")
	}
	if refresh {
		s.saleRepo.InvalidateItems(order)
	}

	for _, sale := range s.saleRepo.List(ctx, refresh) {
		if sale.OrderNumber != order {
			continue
		}
		if items := s.saleRepo.Items(ctx, order); len(items) > 0 {
			sale.Items = items
		}
		return &sale, nil
	}
	return nil, apperror.New(apperror.KindNotFound, fmt.Sprintf("Sale #%s not found", order))
}

// Legacy returns the rows of the first sales sheet.
func (s *SalesService) Legacy(ctx context.Context) []entity.Sale {
	return s.saleRepo.ListLegacy(ctx)
}

// RecordLegacySale writes a single-product sale. A missing name or total is
// taken from the product list.
func (s *SalesService) RecordLegacySale(ctx context.Context, sale *entity.LegacySale) error {
	if p, ok := catalog.FindByID(s.productRepo.List(ctx, false), sale.ProductID); ok {
		if strings.TrimSpace(sale.ProductName) == "" {
			sale.ProductName = p.Name
		}
		if sale.TotalPrice.IsZero() {
			sale.TotalPrice = p.SalePrice.Mul(decimal.NewFromInt(int64(sale.QuantitySold)))
		}
	}

	if err := s.saleRepo.AddLegacy(ctx, sale); err != nil {
		return err
	}
	s.activity.Record(ctx, fmt.Sprintf("Sold %d x %s", sale.QuantitySold, sale.ProductName))
	return nil
}
