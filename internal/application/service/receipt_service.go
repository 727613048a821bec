package service

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/printer"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Receipt date and time layouts.
const (
	ReceiptDateLayout = "02/01/2006"
	ReceiptTimeLayout = "03:04 PM"
)

// ReceiptOptions configures how receipts look and where they go.
type ReceiptOptions struct {
	Header       entity.ReceiptHeader
	Terms        string
	CharWidth    int
	PrinterType  string
	FallbackType string
}

// ReceiptService builds bills and sends them to the receipt printer.
type ReceiptService struct {
	printer *printer.FallbackPrinter
	opts    ReceiptOptions
	html    *template.Template
	now     func() time.Time
}

// NewReceiptService creates a new receipt service.
func NewReceiptService(p *printer.FallbackPrinter, opts ReceiptOptions) *ReceiptService {
	if opts.CharWidth <= 0 {
		opts.CharWidth = printer.Width80mm
	}
	return &ReceiptService{
		printer: p,
		opts:    opts,
		html:    template.Must(template.New("receipt").Funcs(receiptFuncs).Parse(receiptHTML)),
		now:     time.Now,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured       bool   `json:"configured"`
	Connected        bool   `json:"connected"`
	PrimaryConnected bool   `json:"primary_connected"`
	Type             string `json:"type"`
	FallbackType     string `json:"fallback_type,omitempty"`
}

// HasPrinter reports whether a receipt printer is configured. Without one
// the bill is printed from the browser page.
func (s *ReceiptService) HasPrinter() bool {
	return s.opts.PrinterType != printer.TypeNone && s.opts.PrinterType != ""
}

// GetStatus returns printer connection status.
func (s *ReceiptService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured:       s.HasPrinter(),
		Connected:        s.printer.IsConnected(),
		PrimaryConnected: s.printer.PrimaryConnected(),
		Type:             s.opts.PrinterType,
		FallbackType:     s.opts.FallbackType,
	}
}

// BuildReceipt composes the bill for sale. Like the paper bill, the date and
// time printed are those of printing, not of the sale.
func (s *ReceiptService) BuildReceipt(sale *entity.Sale) *entity.Receipt {
	printedAt := s.now()
	r := &entity.Receipt{
		Header:          s.opts.Header,
		OrderNumber:     sale.OrderNumber,
		Date:            printedAt.Format(ReceiptDateLayout),
		Time:            printedAt.Format(ReceiptTimeLayout),
		Cashier:         sale.SoldBy,
		Customer:        sale.CustomerName,
		PaymentMethod:   sale.PaymentMethod.String(),
		Subtotal:        sale.Subtotal,
		Tax:             sale.Tax,
		Total:           sale.TotalAmount,
		AmountPaid:      sale.AmountPaid,
		Change:          sale.Change,
		ShowCashDetails: sale.PaymentMethod.IsCash(),
		Terms:           s.opts.Terms,
	}
	if r.Customer == "" {
		r.Customer = entity.WalkInCustomer
	}
	for _, it := range sale.Items {
		r.Items = append(r.Items, entity.ReceiptItem{
			Name:     it.ProductName,
			Weight:   it.Weight,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    it.LineTotal,
		})
	}
	return r
}

// Print sends r to the printer chain and reports which surface printed it.
func (s *ReceiptService) Print(r *entity.Receipt) (string, error) {
	surface, err := s.printer.PrintVia(FormatReceipt(r, s.opts.CharWidth))
	if err != nil {
		zap.S().Errorw("receipt not printed", "order_number", r.OrderNumber, "error", err)
		return "", fmt.Errorf("failed to print receipt: %w", err)
	}
	if surface != printer.SurfacePrimary {
		zap.S().Warnw("receipt printed on fallback surface", "order_number", r.OrderNumber, "surface", surface)
	}
	return surface, nil
}

// RenderHTML renders r as a printable 80mm page.
func (s *ReceiptService) RenderHTML(r *entity.Receipt) (string, error) {
	var buf bytes.Buffer
	if err := s.html.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TestPrint sends a test page to the printer.
// The receipt is returned even when printing fails so the caller can show it.
func (s *ReceiptService) TestPrint() (*entity.Receipt, string, error) {
	receipt := s.BuildReceipt(&entity.Sale{
		OrderNumber:   "TEST-001",
		CustomerName:  entity.WalkInCustomer,
		SoldBy:        "System",
		PaymentMethod: "Cash",
		Subtotal:      decimal.NewFromInt(20),
		TotalAmount:   decimal.NewFromInt(20),
		AmountPaid:    decimal.NewFromInt(20),
		Items: []entity.SaleItem{
			{ProductName: "Test Item 1", Quantity: 1, Price: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(10)},
			{ProductName: "Test Item 2", Weight: "500 g", Quantity: 2, Price: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(10)},
		},
	})

	surface, err := s.Print(receipt)
	if err != nil {
		return receipt, "", fmt.Errorf("test print failed: %w", err)
	}
	return receipt, surface, nil
}

// itemColumns splits the paper width into item, qty, price and total.
func itemColumns(width int) (name, qty, price, total int) {
	if width >= printer.Width80mm {
		qty, price, total = 5, 11, 11
	} else {
		qty, price, total = 4, 9, 9
	}
	return width - qty - price - total, qty, price, total
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, width int) []byte {
	doc := printer.NewDocument(width)
	nameW, qtyW, priceW, totalW := itemColumns(doc.Width())

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Wrap(strings.ToUpper(r.Header.StoreName)).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Wrap(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.TextF("Tel: %s", r.Header.Phone)
	}
	if len(r.Header.TaxIDs) > 0 {
		doc.Wrap(strings.Join(r.Header.TaxIDs, " | "))
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.SetBold(true).KeyValue("Order #:", r.OrderNumber).SetBold(false).
		KeyValue("Cashier:", r.Cashier).
		KeyValue("Date:", r.Date).
		KeyValue("Time:", r.Time).
		KeyValue("Customer:", r.Customer).
		Separator('-')

	// Items
	doc.SetBold(true).Row(
		printer.Column{Text: "Item", Width: nameW},
		printer.Column{Text: "Qty", Width: qtyW, Right: true},
		printer.Column{Text: "Price", Width: priceW, Right: true},
		printer.Column{Text: "Total", Width: totalW, Right: true},
	).SetBold(false)

	for _, item := range r.Items {
		label := item.Label()
		if len([]rune(label)) > nameW {
			doc.Wrap(label)
			label = ""
		}
		doc.Row(
			printer.Column{Text: label, Width: nameW},
			printer.Column{Text: strconv.Itoa(item.Quantity), Width: qtyW, Right: true},
			printer.Column{Text: utils.FormatAmount(item.Price), Width: priceW, Right: true},
			printer.Column{Text: utils.FormatAmount(item.Total), Width: totalW, Right: true},
		)
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("Subtotal:", utils.FormatPrice(r.Subtotal)).
		KeyValue("FBR Tax:", utils.FormatPrice(r.Tax)).
		Separator('=').
		SetBold(true).
		KeyValue("GRAND TOTAL:", utils.FormatPrice(r.Total)).
		SetBold(false).
		Separator('-').
		KeyValue("Payment Method:", r.PaymentMethod)

	if r.ShowCashDetails {
		doc.KeyValue("Amount Paid:", utils.FormatPrice(r.AmountPaid)).
			KeyValue("Change:", utils.FormatPrice(r.Change))
	}

	// Footer
	if r.Terms != "" {
		doc.Separator('-').
			SetBold(true).Text("Terms & Conditions:").SetBold(false).
			Wrap(r.Terms)
	}

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("--- Cut Here ---").
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

var receiptFuncs = template.FuncMap{
	"price":  utils.FormatPrice,
	"amount": utils.FormatAmount,
	"upper":  strings.ToUpper,
	"join":   strings.Join,
	"paymentClass": func(method string) string {
		return "payment-method-" + strings.ReplaceAll(strings.ToLower(method), " ", "-")
	},
}

const receiptHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Bill #{{.OrderNumber}}</title>
<style>
@media print { @page { margin: 0; size: 80mm auto; } body { margin: 0; } }
body { font-family: Arial, sans-serif; font-size: 12px; }
.receipt { width: 80mm; margin: 0 auto; padding: 1mm 3mm; }
.center { text-align: center; }
.row { display: flex; justify-content: space-between; margin-bottom: 1mm; }
.grand { font-weight: bold; border-top: 2px solid #000; padding-top: 2mm; }
table { width: 100%; border-collapse: collapse; font-size: 11px; }
th { border-bottom: 1px solid #000; }
td.num, th.num { text-align: right; }
.cut { height: 18mm; text-align: center; color: #999; font-size: 10px; }
</style>
</head>
<body>
<div class="receipt">
  <div class="center">
    <h2>{{upper .Header.StoreName}}</h2>
    <p>{{with .Header.Address}}{{.}}<br>{{end}}{{with .Header.Phone}}Tel: {{.}}<br>{{end}}{{join .Header.TaxIDs " | "}}</p>
  </div>
  <div class="row"><strong>Order #:</strong><strong>{{.OrderNumber}}</strong></div>
  <div class="row"><strong>Cashier:</strong><span>{{.Cashier}}</span></div>
  <div class="row"><strong>Date:</strong><span>{{.Date}}</span></div>
  <div class="row"><strong>Time:</strong><span>{{.Time}}</span></div>
  <div class="row"><strong>Customer:</strong><strong>{{.Customer}}</strong></div>
  <table>
    <thead><tr><th>Item</th><th>Qty</th><th class="num">Price</th><th class="num">Total</th></tr></thead>
    <tbody>
    {{- range .Items}}
      <tr><td>{{.Label}}</td><td class="center">{{.Quantity}}</td><td class="num">{{amount .Price}}</td><td class="num">{{amount .Total}}</td></tr>
    {{- end}}
    </tbody>
  </table>
  <div class="row"><span>Subtotal:</span><span>{{price .Subtotal}}</span></div>
  <div class="row"><span>FBR Tax:</span><span>{{price .Tax}}</span></div>
  <div class="row grand"><span>GRAND TOTAL:</span><span>{{price .Total}}</span></div>
  <div class="row"><span>Payment Method:</span><span class="{{paymentClass .PaymentMethod}}">{{.PaymentMethod}}</span></div>
  {{- if .ShowCashDetails}}
  <div class="row"><span>Amount Paid:</span><span>{{price .AmountPaid}}</span></div>
  <div class="row"><span>Change:</span><span>{{price .Change}}</span></div>
  {{- end}}
  {{- with .Terms}}
  <p><strong>Terms &amp; Conditions:</strong> {{.}}</p>
  {{- end}}
  <div class="cut">--- Cut Here ---</div>
</div>
</body>
</html>
`
