package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/catalog"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Transaction is one row of the till's sales list.
type Transaction struct {
	OrderNumber   string             `json:"order_number"`
	Time          string             `json:"time"`
	CustomerName  string             `json:"customer_name"`
	TotalItems    int                `json:"total_items"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	Status        string             `json:"status"`
}

// TerminalState is what the reception view renders.
type TerminalState struct {
	Cashier       string             `json:"cashier"`
	Mode          enum.ScanMode      `json:"mode"`
	SearchTerm    string             `json:"search_term,omitempty"`
	Cart          []entity.CartItem  `json:"cart"`
	TotalQuantity int                `json:"total_quantity"`
	Totals        entity.Totals      `json:"totals"`
	CustomerName  string             `json:"customer_name"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	OrderNumber   string             `json:"order_number"`
	Processing    bool               `json:"processing"`
	ProductCount  int                `json:"product_count"`
	Prints        []PrintJob         `json:"prints,omitempty"`
}

// Terminal is the checkout state of one cashier's reception view. All
// methods are safe for concurrent use.
type Terminal struct {
	svc     *ReceptionService
	cashier string

	mu           sync.Mutex
	products     []entity.Product
	cart         entity.Cart
	tax          decimal.Decimal
	mode         enum.ScanMode
	searchTerm   string
	customer     string
	payment      enum.PaymentMethod
	paid         decimal.Decimal
	orderNumber  int64
	processing   bool
	transactions []Transaction
	prints       map[string]*PrintJob
	scanner      scanBuffer
	closed       bool

	persistMu sync.Mutex
	tasks     sync.WaitGroup
}

func newTerminal(svc *ReceptionService, cashier string) *Terminal {
	return &Terminal{
		svc:      svc,
		cashier:  cashier,
		tax:      svc.opts.DefaultTax,
		customer: entity.WalkInCustomer,
		payment:  enum.PaymentCash,
		paid:     decimal.Zero,
		prints:   make(map[string]*PrintJob),
	}
}

// Cashier is the username sales from this terminal are attributed to.
func (t *Terminal) Cashier() string {
	return t.cashier
}

func (t *Terminal) actorCtx(ctx context.Context) context.Context {
	return repository.WithActor(ctx, t.cashier)
}

// Mount loads products, the next order number and today's transactions.
func (t *Terminal) Mount(ctx context.Context) *TerminalState {
	t.LoadProducts(ctx, false)
	t.UpdateOrderNumber(ctx)
	t.Transactions(ctx, false)
	return t.State()
}

// State returns a snapshot of the terminal.
func (t *Terminal) State() *TerminalState {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := &TerminalState{
		Cashier:       t.cashier,
		Mode:          t.mode,
		SearchTerm:    t.searchTerm,
		Cart:          t.cart.Items(),
		TotalQuantity: t.cart.TotalQuantity(),
		Totals:        t.totalsLocked(),
		CustomerName:  t.customer,
		PaymentMethod: t.payment,
		OrderNumber:   strconv.FormatInt(t.orderNumber, 10),
		Processing:    t.processing,
		ProductCount:  len(t.products),
	}
	for _, job := range t.prints {
		st.Prints = append(st.Prints, *job)
	}
	slices.SortFunc(st.Prints, func(a, b PrintJob) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return st
}

// LoadProducts replaces the product snapshot.
func (t *Terminal) LoadProducts(ctx context.Context, force bool) []entity.Product {
	products := t.svc.productRepo.List(ctx, force)

	t.mu.Lock()
	t.products = products
	t.mu.Unlock()
	return slices.Clone(products)
}

// Products returns the product snapshot.
func (t *Terminal) Products() []entity.Product {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.products)
}

// SearchProducts filters the snapshot for the sale screen. An empty term
// lists everything.
func (t *Terminal) SearchProducts(term string) []entity.Product {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.searchTerm = term
	return t.searchLocked(term)
}

func (t *Terminal) searchLocked(term string) []entity.Product {
	return slices.Clone(catalog.SearchForSale(t.products, strings.TrimSpace(term)))
}

// Mode returns where keyboard input currently goes.
func (t *Terminal) Mode() enum.ScanMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// SetScanMode routes input to the barcode scanner.
func (t *Terminal) SetScanMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setModeLocked(enum.ScanModeScan)
}

// SetSearchMode routes input to the product search.
func (t *Terminal) SetSearchMode() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.setModeLocked(enum.ScanModeSearch)
}

// setModeLocked switches mode. Either switch drops whatever the scanner
// and the search box were holding.
func (t *Terminal) setModeLocked(m enum.ScanMode) {
	t.mode = m
	t.searchTerm = ""
	t.scanner.reset()
}

func (t *Terminal) productLocked(id string) (entity.Product, bool) {
	return catalog.FindByID(t.products, id)
}

// AddToCart puts one unit of productID in the cart.
func (t *Terminal) AddToCart(productID string) (*entity.CartItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.productLocked(productID)
	if !ok {
		return nil, apperror.NewNotFoundError("Product")
	}
	return t.cart.Add(p)
}

// UpdateQuantity changes the quantity of cart line index by delta.
func (t *Terminal) UpdateQuantity(index, delta int) (removed bool, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.cart.Item(index)
	if !ok {
		return false, apperror.NewBadRequestError("Cart item not found")
	}
	available := item.Quantity
	if p, ok := t.productLocked(item.ProductID); ok {
		available = p.Quantity
	}
	return t.cart.UpdateQuantity(index, delta, available)
}

// RemoveFromCart drops cart line index.
func (t *Terminal) RemoveFromCart(index int) (entity.CartItem, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cart.Remove(index)
}

// ClearCart empties the cart and resets customer, amount paid and tax.
func (t *Terminal) ClearCart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetSaleLocked()
}

func (t *Terminal) resetSaleLocked() {
	t.cart.Clear()
	t.customer = entity.WalkInCustomer
	t.paid = decimal.Zero
	t.tax = t.svc.opts.DefaultTax
}

// SetTax sets the tax amount. Negative values become zero.
func (t *Terminal) SetTax(v decimal.Decimal) entity.Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tax = clampZero(v)
	return t.totalsLocked()
}

// AdjustTax moves the tax amount by delta, never below zero.
func (t *Terminal) AdjustTax(delta decimal.Decimal) entity.Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tax = clampZero(t.tax.Add(delta))
	return t.totalsLocked()
}

// SetPaymentMethod sets how the customer pays. Blank means cash.
func (t *Terminal) SetPaymentMethod(m enum.PaymentMethod) entity.Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	if strings.TrimSpace(string(m)) == "" {
		m = enum.PaymentCash
	}
	t.payment = enum.PaymentMethod(strings.TrimSpace(string(m)))
	return t.totalsLocked()
}

// SetAmountPaid records what the customer handed over.
func (t *Terminal) SetAmountPaid(v decimal.Decimal) entity.Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paid = clampZero(v)
	return t.totalsLocked()
}

// SetCustomerName sets the name printed on the bill.
func (t *Terminal) SetCustomerName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.customer = name
}

// Totals returns the money summary of the cart.
func (t *Terminal) Totals() entity.Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalsLocked()
}

func (t *Terminal) totalsLocked() entity.Totals {
	return entity.ComputeTotals(t.cart.Subtotal(), t.tax, t.paid)
}

func clampZero(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// OrderNumber is the number the next sale will get.
func (t *Terminal) OrderNumber() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.orderNumber
}

// UpdateOrderNumber sets the next order number to one past the highest
// on the sales sheet. When the sheet cannot be read a time based number is
// used instead. Two tills can still hand out the same number.
func (t *Terminal) UpdateOrderNumber(ctx context.Context) int64 {
	base := t.svc.opts.OrderNumberBase

	var next int64
	sales, err := t.svc.saleRepo.Fetch(ctx)
	if err != nil {
		next = base + t.svc.now().UnixMilli()%1000000
		zap.S().Warnw("order number from clock", "order_number", next, "error", err)
	} else {
		highest := base
		for i := range sales {
			if n := sales[i].OrderNumberValue(); n >= base && n > highest {
				highest = n
			}
		}
		next = highest + 1
	}

	t.mu.Lock()
	t.orderNumber = next
	t.mu.Unlock()
	return next
}

// Transactions returns today's sales, or the most recent ones when there
// are none today.
func (t *Terminal) Transactions(ctx context.Context, force bool) []Transaction {
	sales := t.svc.saleRepo.List(ctx, force)

	now := t.svc.now()
	isoToday, localToday := now.Format("2006-01-02"), now.Format(ReceiptDateLayout)

	var picked []entity.Sale
	for _, s := range sales {
		d := strings.TrimSpace(s.Date)
		if d != "" && (d == isoToday || d == localToday) {
			picked = append(picked, s)
		}
	}
	if len(picked) == 0 {
		picked = sales[:min(len(sales), t.svc.opts.RecentTransactions)]
	}

	out := make([]Transaction, 0, len(picked))
	for i := range picked {
		out = append(out, transactionOf(&picked[i]))
	}

	t.mu.Lock()
	t.transactions = out
	t.mu.Unlock()
	return slices.Clone(out)
}

// RecentTransactions returns the list as last loaded, including sales
// still being saved.
func (t *Terminal) RecentTransactions() []Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.transactions)
}

func transactionOf(s *entity.Sale) Transaction {
	customer := s.CustomerName
	if customer == "" {
		customer = entity.WalkInCustomer
	}
	payment := s.PaymentMethod
	if payment == "" {
		payment = enum.PaymentCash
	}
	return Transaction{
		OrderNumber:   s.OrderNumber,
		Time:          displayTime(s.Time),
		CustomerName:  customer,
		TotalItems:    s.TotalItems,
		TotalAmount:   s.TotalAmount,
		PaymentMethod: payment,
		Status:        "Completed",
	}
}

// displayTime renders a stored "HH:MM[:SS]" time as "h:mm AM". Values that
// already carry a meridiem, or don't parse, are shown as stored.
func displayTime(stored string) string {
	s := strings.TrimSpace(stored)
	if s == "" {
		return "N/A"
	}
	upper := strings.ToUpper(s)
	if strings.Contains(upper, "AM") || strings.Contains(upper, "PM") {
		return s
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return s
	}
	hours, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return s
	}
	meridiem := "AM"
	if hours >= 12 {
		meridiem = "PM"
	}
	h := hours % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%s %s", h, parts[1], meridiem)
}

// Reprint rebuilds the bill of order from the sheet and prints it again.
func (t *Terminal) Reprint(ctx context.Context, order string) (*entity.Receipt, string, error) {
	sale, err := t.loadSale(ctx, order)
	if err != nil {
		return nil, "", err
	}
	receipt := t.svc.receipts.BuildReceipt(sale)
	surface, err := t.svc.receipts.Print(receipt)
	if err != nil {
		return receipt, "", apperror.New(apperror.KindInternal, "Failed to reprint bill")
	}
	zap.S().Infow("bill reprinted", "order_number", sale.OrderNumber, "surface", surface)
	return receipt, surface, nil
}

// ReceiptHTML renders the bill of order as a printable page.
func (t *Terminal) ReceiptHTML(ctx context.Context, order string) (string, error) {
	sale, err := t.loadSale(ctx, order)
	if err != nil {
		return "", err
	}
	return t.svc.receipts.RenderHTML(t.svc.receipts.BuildReceipt(sale))
}

func (t *Terminal) loadSale(ctx context.Context, order string) (*entity.Sale, error) {
	order = strings.TrimSpace(order)
	if order == "" {
		return nil, apperror.NewBadRequestError("Order number is required")
	}

	var sale *entity.Sale
	for _, s := range t.svc.saleRepo.List(ctx, false) {
		if s.OrderNumber == order {
			s := s
			sale = &s
			break
		}
	}
	if sale == nil {
		return nil, apperror.New(apperror.KindNotFound, fmt.Sprintf("Sale #%s not found", order))
	}

	if items := t.svc.saleRepo.Items(ctx, order); len(items) > 0 {
		sale.Items = items
	}
	sale.Subtotal = sale.TotalAmount.Sub(sale.Tax)
	return sale, nil
}

func (t *Terminal) close() {
	t.mu.Lock()
	t.closed = true
	t.scanner.reset()
	for _, job := range t.prints {
		if job.timer != nil {
			job.timer.Stop()
		}
	}
	t.mu.Unlock()

	t.tasks.Wait()
}
