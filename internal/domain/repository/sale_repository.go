package repository

import (
	"context"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
)

// SaleRepository defines the sales operations of the remote sheet
type SaleRepository interface {
	// List never fails: on a transport error it returns the last good list or an empty one.
	List(ctx context.Context, force bool) []entity.Sale
	// Fetch always reads the sheet and reports failures.
	Fetch(ctx context.Context) ([]entity.Sale, error)
	Items(ctx context.Context, orderNumber string) []entity.SaleItem
	InvalidateItems(orderNumber string)
	Add(ctx context.Context, sale *entity.Sale) (string, error)
	AddItem(ctx context.Context, item *entity.SaleItem) error
	AddLegacy(ctx context.Context, sale *entity.LegacySale) error
	ListLegacy(ctx context.Context) []entity.Sale
}
