package sheets

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/spf13/cast"
)

var _ repository.ProductRepository = (*ProductStore)(nil)

// ProductStore is the inventory sheet.
type ProductStore struct {
	c *Client
}

// List returns the products, from cache when fresh unless force is set.
// A failed fetch serves the last good list, or an empty one.
func (s *ProductStore) List(ctx context.Context, force bool) []entity.Product {
	c := s.c
	if !force {
		if v, ok := c.products.fresh(c.now()); ok {
			return slices.Clone(v)
		}
	}

	v, _, _ := c.reads.Do("getProducts", func() (interface{}, error) {
		env, err := c.get(ctx, "getProducts", c.timeouts.Read, nil)
		if err == nil && !env.ok() {
			err = apperror.NewBackendError(env.str("error"), env.str("message"), apperror.KindBackend)
		}
		if err != nil {
			c.log.Warnw("load products failed, serving last known list", "error", err)
			if last, ok := c.products.last(); ok {
				return last, nil
			}
			return []entity.Product{}, nil
		}

		rows := env.records("products", "data")
		products := make([]entity.Product, 0, len(rows))
		for _, row := range rows {
			products = append(products, entity.ProductFromRecord(row))
		}
		c.products.store(products, c.now())
		return products, nil
	})
	return slices.Clone(v.([]entity.Product))
}

// Add creates a product after checking the sheet still has room for it.
func (s *ProductStore) Add(ctx context.Context, in *entity.ProductInput) (*entity.ProductResult, error) {
	c := s.c
	if errs := in.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	name := strings.TrimSpace(in.Name)
	release, ok := c.pending.Acquire(fmt.Sprintf("addProduct_%s_%d", name, c.now().UnixMilli()))
	if !ok {
		return nil, apperror.NewDuplicateRequestError("Request already in progress. Please wait.")
	}
	defer release()

	capacity := s.CheckCapacity(ctx)
	if !capacity.Available {
		msg := capacity.Message
		if msg == "" {
			msg = "Sheet is full. Please add more rows."
		}
		return nil, apperror.New(apperror.KindCapacityExceeded, msg)
	}

	c.products.invalidate()
	payload := productPayload(in)
	payload["product_name"] = name
	payload["added_by"] = repository.ActorFrom(ctx, "admin")

	env, err := c.post(ctx, "addProduct", c.timeouts.Write, payload)
	if err != nil {
		return nil, err
	}
	if !env.ok() {
		return nil, apperror.NewBackendError(env.str("error"), orString(env.str("message"), "Failed to add product"), apperror.KindBackend)
	}

	res := &entity.ProductResult{
		ProductID: env.str("product_id", "productId"),
		Barcode:   env.str("barcode"),
		Message:   env.str("message"),
	}
	if capacity.Warning {
		res.Warning = capacity.Message
	}
	return res, nil
}

// Update rewrites an existing product row.
func (s *ProductStore) Update(ctx context.Context, in *entity.ProductInput) (*entity.ProductResult, error) {
	c := s.c
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "product_id", Message: "Product ID is required for update"},
		})
	}
	if errs := in.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	release, ok := c.pending.Acquire(fmt.Sprintf("updateProduct_%s_%d", id, c.now().UnixMilli()))
	if !ok {
		return nil, apperror.NewDuplicateRequestError("Update already in progress. Please wait.")
	}
	defer release()

	c.products.invalidate()
	payload := productPayload(in)
	payload["product_id"] = id
	payload["product_name"] = strings.TrimSpace(in.Name)
	payload["barcode"] = strings.TrimSpace(in.Barcode)
	payload["updated_by"] = repository.ActorFrom(ctx, "admin")

	env, err := c.post(ctx, "updateProduct", c.timeouts.Write, payload)
	if err != nil {
		return nil, err
	}
	if !env.ok() {
		if env.flag("barcodeDuplicate") || env.str("error") == string(apperror.KindBarcodeDuplicate) {
			return nil, apperror.New(apperror.KindBarcodeDuplicate,
				orString(env.str("message"), "This barcode is already assigned to another product"))
		}
		return nil, apperror.NewBackendError(env.str("error"), orString(env.str("message"), "Failed to update product"), apperror.KindUpdateFailed)
	}

	return &entity.ProductResult{
		ProductID: orString(env.str("product_id", "productId"), id),
		Barcode:   orString(env.str("barcode"), strings.TrimSpace(in.Barcode)),
		Message:   env.str("message"),
	}, nil
}

// Delete removes a product row.
func (s *ProductStore) Delete(ctx context.Context, productID string) error {
	c := s.c
	id := strings.TrimSpace(productID)
	if id == "" {
		return apperror.NewValidationError([]apperror.FieldError{
			{Field: "product_id", Message: "Product ID is required for deletion"},
		})
	}

	c.products.invalidate()
	env, err := c.post(ctx, "deleteProduct", c.timeouts.Read, map[string]interface{}{
		"product_id": id,
		"deleted_by": repository.ActorFrom(ctx, "admin"),
	})
	if err != nil {
		return err
	}
	if !env.ok() {
		return apperror.NewBackendError(env.str("error"), orString(env.str("message"), "Failed to delete product"), apperror.KindDeleteFailed)
	}
	return nil
}

// CheckDuplicateBarcode asks the sheet whether another product uses barcode.
func (s *ProductStore) CheckDuplicateBarcode(ctx context.Context, barcode, excludeID string) (bool, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return false, apperror.NewValidationError([]apperror.FieldError{
			{Field: "barcode", Message: "Barcode is required"},
		})
	}

	env, err := s.c.post(ctx, "checkDuplicateBarcode", s.c.timeouts.Lookup, map[string]interface{}{
		"barcode":            barcode,
		"exclude_product_id": strings.TrimSpace(excludeID),
	})
	if err != nil {
		return false, err
	}
	if !env.ok() {
		return false, apperror.NewBackendError(env.str("error"), orString(env.str("message"), "Failed to check barcode"), apperror.KindBackend)
	}
	return env.flag("isDuplicate"), nil
}

// CheckCapacity reports whether the sheet has a free row. When the sheet
// cannot be reached it answers available with a warning.
func (s *ProductStore) CheckCapacity(ctx context.Context) entity.Capacity {
	c := s.c
	env, err := c.post(ctx, "checkCapacity", c.timeouts.Lookup, nil)
	if err != nil {
		c.log.Warnw("capacity check failed, proceeding", "error", err)
		return entity.Capacity{
			Available:     true,
			Warning:       true,
			Message:       "Could not verify capacity. Proceeding with caution.",
			TotalRows:     c.capGuess,
			AvailableRows: c.capGuess,
		}
	}

	capacity := entity.Capacity{
		Available:     true,
		TotalRows:     cast.ToInt(firstOf(env, "totalRows", "total_rows")),
		UsedRows:      cast.ToInt(firstOf(env, "usedRows", "used_rows")),
		AvailableRows: cast.ToInt(firstOf(env, "availableRows", "available_rows")),
		Message:       env.str("message"),
	}
	if v, ok := env["available"]; ok {
		capacity.Available = cast.ToBool(v)
	}
	return capacity
}

func productPayload(in *entity.ProductInput) map[string]interface{} {
	payload := map[string]interface{}{
		"category": strings.TrimSpace(in.Category),
		"weight":   strings.TrimSpace(in.Weight),
		"unit":     strings.TrimSpace(in.Unit),
	}
	if in.PurchasePrice != nil {
		payload["purchase_price"] = in.PurchasePrice.InexactFloat64()
	}
	if in.SalePrice != nil {
		payload["sale_price"] = in.SalePrice.InexactFloat64()
	}
	if in.Quantity != nil {
		payload["quantity"] = *in.Quantity
	}
	if in.MinimumQuantity != nil {
		payload["minimum_quantity"] = *in.MinimumQuantity
	}
	return payload
}

func firstOf(env envelope, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := env[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
