package entity

import (
	"testing"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func milk(qty int) Product {
	return Product{
		ID:        "P001",
		Name:      "Milk Pack",
		Category:  "Dairy Products",
		SalePrice: decimal.RequireFromString("100"),
		Quantity:  qty,
		Weight:    "1 KG",
	}
}

func TestCartAddMergesAndCapsAtStock(t *testing.T) {
	var c Cart

	_, err := c.Add(milk(2))
	require.NoError(t, err)
	item, err := c.Add(milk(2))
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.Total.Equal(decimal.RequireFromString("200")))

	_, err = c.Add(milk(2))
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStockLimit))
	assert.Equal(t, "Only 2 items available", err.Error())

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.TotalQuantity())
}

func TestCartAddRejectsOutOfStock(t *testing.T) {
	var c Cart

	_, err := c.Add(milk(0))
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindOutOfStock))
	assert.Equal(t, "Milk Pack is out of stock", err.Error())
	assert.True(t, c.IsEmpty())
}

func TestCartUpdateQuantity(t *testing.T) {
	var c Cart
	_, err := c.Add(milk(3))
	require.NoError(t, err)

	removed, err := c.UpdateQuantity(0, 2, 3)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 3, c.TotalQuantity())

	_, err = c.UpdateQuantity(0, 1, 3)
	assert.True(t, apperror.IsKind(err, apperror.KindStockLimit))
	assert.Equal(t, 3, c.TotalQuantity(), "rejected update leaves the line alone")

	removed, err = c.UpdateQuantity(0, -3, 3)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, c.IsEmpty())

	_, err = c.UpdateQuantity(5, 1, 3)
	assert.Error(t, err)
}

func TestCartRemoveAndClear(t *testing.T) {
	var c Cart
	_, _ = c.Add(milk(5))
	second := milk(5)
	second.ID, second.Name = "P002", "Bread"
	_, _ = c.Add(second)

	removed, err := c.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, "Milk Pack", removed.Name)
	assert.Equal(t, "Bread", c.Items()[0].Name)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Subtotal().IsZero())
}

func TestComputeTotals(t *testing.T) {
	got := ComputeTotals(decimal.RequireFromString("200.00"), decimal.NewFromInt(1), decimal.RequireFromString("250"))

	assert.Equal(t, "201.00", got.Total.StringFixed(2))
	assert.Equal(t, "49.00", got.Change.StringFixed(2))

	short := ComputeTotals(decimal.RequireFromString("200.00"), decimal.NewFromInt(1), decimal.RequireFromString("100"))
	assert.True(t, short.Change.IsZero())
}
