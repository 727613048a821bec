package repository

import (
	"context"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
)

// ProductRepository defines the inventory operations of the remote sheet
type ProductRepository interface {
	// List never fails: on a transport error it returns the last good list or an empty one.
	List(ctx context.Context, force bool) []entity.Product
	Add(ctx context.Context, input *entity.ProductInput) (*entity.ProductResult, error)
	Update(ctx context.Context, input *entity.ProductInput) (*entity.ProductResult, error)
	Delete(ctx context.Context, productID string) error
	CheckDuplicateBarcode(ctx context.Context, barcode, excludeID string) (bool, error)
	CheckCapacity(ctx context.Context) entity.Capacity
}
