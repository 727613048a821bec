package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBarcodeNumberIsValidEAN13(t *testing.T) {
	for i := 0; i < 500; i++ {
		code := GenerateBarcodeNumber()
		require.Len(t, code, 13)
		require.True(t, strings.HasPrefix(code, BarcodePrefix), code)
		require.True(t, ValidEAN13(code), code)
	}
}

func TestEAN13CheckDigit(t *testing.T) {
	// 4006381333931 is a well known valid EAN-13.
	assert.Equal(t, 1, EAN13CheckDigit("400638133393"))
	assert.True(t, ValidEAN13("4006381333931"))
	assert.False(t, ValidEAN13("4006381333932"))
	assert.False(t, ValidEAN13("400638133393"))
	assert.False(t, ValidEAN13("40063813339X1"))
}

func TestGenerateCustomBarcode(t *testing.T) {
	now := time.UnixMilli(1_700_000_123_456)
	code := GenerateCustomBarcode(now)

	require.Len(t, code, 16)
	assert.True(t, strings.HasPrefix(code, "CUST00123456"), code)
	assert.Equal(t, code[12:], DigitsOnly(code[12:]))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "6291234567890", DigitsOnly(" 629-1234 567890\n"))
	assert.Equal(t, "", DigitsOnly("abc"))
}
