package utils

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// BarcodePrefix opens every generated retail barcode.
const BarcodePrefix = "629"

// GenerateBarcodeNumber returns a 13-digit EAN-13 compatible code:
// the prefix, nine random digits and the check digit.
func GenerateBarcodeNumber() string {
	body := fmt.Sprintf("%s%09d", BarcodePrefix, rand.Intn(1_000_000_000))
	return body + strconv.Itoa(EAN13CheckDigit(body))
}

// EAN13CheckDigit computes the check digit for a 12-digit body. Digits are
// weighted 1 and 3 alternately from the left; non-digits are skipped.
func EAN13CheckDigit(body string) int {
	sum := 0
	i := 0
	for _, r := range body {
		if r < '0' || r > '9' {
			continue
		}
		d := int(r - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
		i++
	}
	return (10 - sum%10) % 10
}

// ValidEAN13 reports whether code is 13 digits with a correct check digit.
func ValidEAN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return EAN13CheckDigit(code[:12]) == int(code[12]-'0')
}

// GenerateCustomBarcode returns "CUST" + the last 8 digits of the unix
// millisecond clock + 4 random digits.
func GenerateCustomBarcode(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return fmt.Sprintf("CUST%s%04d", ms, rand.Intn(10000))
}

// DigitsOnly strips everything but ASCII digits. Scanners and sheet cells
// both tend to add stray whitespace or separators around barcodes.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < unicode.MaxASCII && r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
