package sheets

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
)

var _ repository.SaleRepository = (*SaleStore)(nil)

// SaleStore is the sales and sale-items sheets.
type SaleStore struct {
	c *Client
}

// List returns all sale headers, newest rows as the sheet orders them.
func (s *SaleStore) List(ctx context.Context, force bool) []entity.Sale {
	c := s.c
	if !force {
		if v, ok := c.sales.fresh(c.now()); ok {
			return slices.Clone(v)
		}
	}

	v, _, _ := c.reads.Do("getSalesV2", func() (interface{}, error) {
		sales, err := s.fetch(ctx)
		if err != nil {
			c.log.Warnw("load sales failed, serving last known list", "error", err)
			if last, ok := c.sales.last(); ok {
				return last, nil
			}
			return []entity.Sale{}, nil
		}
		c.sales.store(sales, c.now())
		return sales, nil
	})
	return slices.Clone(v.([]entity.Sale))
}

// Fetch loads all sale headers and reports a failed read instead of
// serving the last known list.
func (s *SaleStore) Fetch(ctx context.Context) ([]entity.Sale, error) {
	c := s.c
	v, err, _ := c.reads.Do("getSalesV2:strict", func() (interface{}, error) {
		sales, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.sales.store(sales, c.now())
		return sales, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]entity.Sale)), nil
}

func (s *SaleStore) fetch(ctx context.Context) ([]entity.Sale, error) {
	body, err := s.c.getRaw(ctx, "getSalesV2", s.c.timeouts.Read, nil)
	if err != nil {
		return nil, err
	}
	decoded, err := decodeLoose(body)
	if err != nil {
		return nil, apperror.NewTransportError(apperror.KindNetwork)
	}
	rows, ok := salesRecords(decoded)
	if !ok {
		return nil, apperror.New(apperror.KindBackend, "Failed to load sales")
	}

	sales := make([]entity.Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, entity.NormalizeSale(row))
	}
	return sales, nil
}

// Items returns the lines of one order, cached per order number.
func (s *SaleStore) Items(ctx context.Context, orderNumber string) []entity.SaleItem {
	c := s.c
	order := strings.TrimSpace(orderNumber)
	if order == "" {
		return []entity.SaleItem{}
	}
	if items, ok := c.saleItems.Get(order); ok {
		return slices.Clone(items)
	}

	v, _, _ := c.reads.Do("getSaleItems:"+order, func() (interface{}, error) {
		env, err := c.get(ctx, "getSaleItems", c.timeouts.Lookup, url.Values{"order_number": {order}})
		if err == nil && !env.ok() {
			err = apperror.NewBackendError(env.str("error"), env.str("message"), apperror.KindBackend)
		}
		if err != nil {
			c.log.Warnw("load sale items failed", "order_number", order, "error", err)
			return []entity.SaleItem{}, nil
		}

		rows := env.records("items", "saleItems", "data")
		items := make([]entity.SaleItem, 0, len(rows))
		for _, row := range rows {
			item := entity.NormalizeSaleItem(row)
			if item.OrderNumber == "" {
				item.OrderNumber = order
			}
			items = append(items, item)
		}
		c.saleItems.Add(order, items)
		return items, nil
	})
	return slices.Clone(v.([]entity.SaleItem))
}

// InvalidateItems drops the cached lines of one order.
func (s *SaleStore) InvalidateItems(orderNumber string) {
	s.c.saleItems.Remove(strings.TrimSpace(orderNumber))
}

// Add records a sale header and returns its order number.
func (s *SaleStore) Add(ctx context.Context, sale *entity.Sale) (string, error) {
	c := s.c
	if errs := sale.Validate(); len(errs) > 0 {
		return "", apperror.NewValidationError(errs)
	}

	order := strings.TrimSpace(sale.OrderNumber)
	release, ok := c.pending.Acquire(fmt.Sprintf("addSale_%s_%d", order, c.now().UnixMilli()))
	if !ok {
		return "", apperror.NewDuplicateRequestError("Sale submission already in progress. Please wait.")
	}
	defer release()

	customer := strings.TrimSpace(sale.CustomerName)
	if customer == "" {
		customer = entity.WalkInCustomer
	}
	soldBy := sale.SoldBy
	if soldBy == "" {
		soldBy = repository.ActorFrom(ctx, "system")
	}

	env, err := c.post(ctx, "addSaleV2", c.timeouts.Write, map[string]interface{}{
		"order_number":   order,
		"customer_name":  customer,
		"total_items":    sale.TotalItems,
		"total_amount":   sale.TotalAmount.InexactFloat64(),
		"date":           sale.Date,
		"time":           sale.Time,
		"payment_method": string(sale.PaymentMethod),
		"amount_paid":    sale.AmountPaid.InexactFloat64(),
		"change":         sale.Change.InexactFloat64(),
		"tax":            sale.Tax.InexactFloat64(),
		"sold_by":        soldBy,
	})
	c.sales.invalidate()
	if err != nil {
		return "", err
	}
	if !env.ok() {
		return "", apperror.NewBackendError(env.str("error"), orString(env.str("message"), "Failed to record sale"), apperror.KindSaleFailed)
	}
	return orString(env.str("order_number", "orderNumber"), order), nil
}

// AddItem records one line of an order.
func (s *SaleStore) AddItem(ctx context.Context, item *entity.SaleItem) error {
	c := s.c
	if errs := item.Validate(); len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}

	order := strings.TrimSpace(item.OrderNumber)
	env, err := c.post(ctx, "addSaleItem", c.timeouts.Write, map[string]interface{}{
		"order_number": order,
		"product_name": strings.TrimSpace(item.ProductName),
		"quantity":     item.Quantity,
		"category":     item.Category,
		"weight":       item.Weight,
		"unit":         item.Unit,
		"price":        item.Price.InexactFloat64(),
		"line_total":   item.LineTotal.InexactFloat64(),
		"product_id":   item.ProductID,
	})
	c.saleItems.Remove(order)
	if err != nil {
		return err
	}
	if !env.ok() {
		return apperror.NewBackendError(env.str("error"), orString(env.str("message"), "Failed to add sale item"), apperror.KindItemAddFailed)
	}
	return nil
}

// AddLegacy records a single-product sale on the first sales sheet.
func (s *SaleStore) AddLegacy(ctx context.Context, sale *entity.LegacySale) error {
	c := s.c
	var errs []apperror.FieldError
	if strings.TrimSpace(sale.ProductID) == "" {
		errs = append(errs, apperror.FieldError{Field: "product_id", Message: "Product ID is required"})
	}
	if sale.QuantitySold <= 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity_sold", Message: "Valid quantity is required"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}

	soldBy := sale.SoldBy
	if soldBy == "" {
		soldBy = repository.ActorFrom(ctx, "system")
	}
	env, err := c.post(ctx, "addSale", c.timeouts.Write, map[string]interface{}{
		"product_id":    sale.ProductID,
		"product_name":  sale.ProductName,
		"quantity_sold": sale.QuantitySold,
		"total_price":   sale.TotalPrice.InexactFloat64(),
		"sold_by":       soldBy,
	})
	c.sales.invalidate()
	if err != nil {
		return err
	}
	if !env.ok() {
		return apperror.NewBackendError(env.str("error"), orString(env.str("message"), "Failed to record sale"), apperror.KindSaleFailed)
	}
	return nil
}

// ListLegacy reads the first sales sheet. Failures yield an empty list.
func (s *SaleStore) ListLegacy(ctx context.Context) []entity.Sale {
	c := s.c
	env, err := c.post(ctx, "getSales", c.timeouts.Read, nil)
	if err == nil && !env.ok() {
		err = apperror.NewBackendError(env.str("error"), env.str("message"), apperror.KindBackend)
	}
	if err != nil {
		c.log.Warnw("load legacy sales failed", "error", err)
		return []entity.Sale{}
	}

	rows := env.records("sales", "data")
	sales := make([]entity.Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, entity.NormalizeSale(row))
	}
	return sales
}
