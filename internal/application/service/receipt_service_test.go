package service

import (
	"errors"
	"testing"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceipts(printerType string, primary, secondary printer.Printer) *ReceiptService {
	svc := NewReceiptService(printer.NewFallbackPrinter(primary, secondary), ReceiptOptions{
		Header: entity.ReceiptHeader{
			StoreName: "Hafsa Pharmacy & Mir Mart",
			Phone:     "0300-0000000",
			TaxIDs:    []string{"NTN: 1234567-8"},
		},
		Terms:        "No return without receipt",
		PrinterType:  printerType,
		FallbackType: printer.TypeSpool,
	})
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 21, 7, 0, 0, time.Local) }
	return svc
}

func cardSale() *entity.Sale {
	return &entity.Sale{
		OrderNumber:   "50000000042",
		SoldBy:        "sana",
		PaymentMethod: enum.PaymentMethod("Card"),
		Subtotal:      money(300),
		Tax:           money(1),
		TotalAmount:   money(301),
		Date:          "2025-03-01",
		Time:          "09:00 AM",
		Items: []entity.SaleItem{
			{ProductName: "Panadol", Weight: "500 mg", Quantity: 2, Price: money(150), LineTotal: money(300)},
		},
	}
}

func TestBuildReceiptUsesPrintTime(t *testing.T) {
	svc := newReceipts(printer.TypeUSB, &stubPrinter{}, nil)

	r := svc.BuildReceipt(cardSale())
	assert.Equal(t, "10/03/2025", r.Date)
	assert.Equal(t, "09:07 PM", r.Time)
	assert.Equal(t, entity.WalkInCustomer, r.Customer)
	assert.Equal(t, "sana", r.Cashier)
	assert.False(t, r.ShowCashDetails)
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Panadol (500 mg)", r.Items[0].Label())
}

func TestFormatReceipt(t *testing.T) {
	svc := newReceipts(printer.TypeUSB, &stubPrinter{}, nil)

	card := string(FormatReceipt(svc.BuildReceipt(cardSale()), printer.Width80mm))
	for _, want := range []string{
		"HAFSA PHARMACY & MIR MART",
		"Tel: 0300-0000000",
		"Order #:",
		"50000000042",
		"Panadol (500 mg)",
		"FBR Tax:",
		"Rs. 1.00",
		"GRAND TOTAL:",
		"Rs. 301.00",
		"Terms & Conditions:",
		"--- Cut Here ---",
	} {
		assert.Contains(t, card, want)
	}
	assert.NotContains(t, card, "Amount Paid:")

	sale := cardSale()
	sale.PaymentMethod = enum.PaymentCash
	sale.AmountPaid = money(500)
	sale.Change = money(199)
	cash := string(FormatReceipt(svc.BuildReceipt(sale), printer.Width80mm))
	assert.Contains(t, cash, "Amount Paid:")
	assert.Contains(t, cash, "Rs. 199.00")
}

func TestRenderHTML(t *testing.T) {
	svc := newReceipts(printer.TypeNone, &stubPrinter{}, nil)

	html, err := svc.RenderHTML(svc.BuildReceipt(cardSale()))
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Bill #50000000042</title>")
	assert.Contains(t, html, "payment-method-card")
	assert.Contains(t, html, "Panadol (500 mg)")
	assert.NotContains(t, html, "Amount Paid:")
}

func TestPrintFallsBack(t *testing.T) {
	primary := &stubPrinter{}
	secondary := &stubPrinter{}
	svc := newReceipts(printer.TypeNetwork, primary, secondary)
	r := svc.BuildReceipt(cardSale())

	surface, err := svc.Print(r)
	require.NoError(t, err)
	assert.Equal(t, printer.SurfacePrimary, surface)

	primary.err = errors.New("paper out")
	surface, err = svc.Print(r)
	require.NoError(t, err)
	assert.Equal(t, printer.SurfaceSecondary, surface)
	assert.Equal(t, 1, primary.count())
	assert.Equal(t, 1, secondary.count())

	secondary.err = errors.New("spooler down")
	_, err = svc.Print(r)
	assert.ErrorContains(t, err, "failed to print receipt")
}

func TestPrinterStatus(t *testing.T) {
	primary := &stubPrinter{err: errors.New("unplugged")}
	svc := newReceipts(printer.TypeUSB, primary, &stubPrinter{})

	st := svc.GetStatus()
	assert.True(t, st.Configured)
	assert.True(t, st.Connected)
	assert.False(t, st.PrimaryConnected)
	assert.Equal(t, printer.TypeUSB, st.Type)
	assert.Equal(t, printer.TypeSpool, st.FallbackType)

	assert.False(t, newReceipts(printer.TypeNone, &stubPrinter{}, nil).HasPrinter())
	assert.False(t, newReceipts("", &stubPrinter{}, nil).HasPrinter())
}

func TestTestPrint(t *testing.T) {
	primary := &stubPrinter{}
	svc := newReceipts(printer.TypeUSB, primary, nil)

	r, surface, err := svc.TestPrint()
	require.NoError(t, err)
	assert.Equal(t, printer.SurfacePrimary, surface)
	assert.Equal(t, "TEST-001", r.OrderNumber)
	assert.Len(t, r.Items, 2)
	assert.Equal(t, 1, primary.count())

	primary.err = errors.New("offline")
	r, _, err = svc.TestPrint()
	assert.Error(t, err)
	assert.NotNil(t, r)
}
