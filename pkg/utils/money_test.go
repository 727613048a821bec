package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "Rs. 1,234.00", FormatPrice(decimal.NewFromInt(1234)))
	assert.Equal(t, "Rs. 200.00", FormatPrice(decimal.RequireFromString("200")))
	assert.Equal(t, "Rs. 0.00", FormatPrice(decimal.Zero))
	assert.Equal(t, "Rs. 1,250,000.50", FormatPrice(decimal.RequireFromString("1250000.5")))
}

func TestParseAmount(t *testing.T) {
	assert.True(t, ParseAmount("250.75").Equal(decimal.RequireFromString("250.75")))
	assert.True(t, ParseAmount("abc").IsZero())
}
