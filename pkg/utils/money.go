package utils

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// CurrencyPrefix is printed before every amount.
const CurrencyPrefix = "Rs. "

// FormatAmount renders v with two decimals and thousands separators: 1,234.50.
func FormatAmount(v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

// FormatPrice renders v as a rupee price: Rs. 1,234.50.
func FormatPrice(v decimal.Decimal) string {
	return CurrencyPrefix + FormatAmount(v)
}

// ParseAmount parses a user-entered amount; anything unparseable is zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
