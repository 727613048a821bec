package service

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/printer"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// --- repositories ---

type fakeProducts struct {
	mu        sync.Mutex
	items     []entity.Product
	added     []entity.ProductInput
	updated   []entity.ProductInput
	deleted   []string
	updateErr error
}

var _ repository.ProductRepository = (*fakeProducts)(nil)

func (f *fakeProducts) List(ctx context.Context, force bool) []entity.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

func (f *fakeProducts) Add(ctx context.Context, in *entity.ProductInput) (*entity.ProductResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, *in)
	return &entity.ProductResult{ProductID: "P-NEW"}, nil
}

func (f *fakeProducts) Update(ctx context.Context, in *entity.ProductInput) (*entity.ProductResult, error) {
	if in.ID == "" {
		return nil, apperror.New(apperror.KindValidation, "Product ID is required for update")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = append(f.updated, *in)
	return &entity.ProductResult{ProductID: in.ID}, nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeProducts) CheckDuplicateBarcode(ctx context.Context, barcode, excludeID string) (bool, error) {
	return false, nil
}

func (f *fakeProducts) CheckCapacity(ctx context.Context) entity.Capacity {
	return entity.Capacity{Available: true, TotalRows: 10000, AvailableRows: 10000 - len(f.items)}
}

func (f *fakeProducts) updates() []entity.ProductInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.updated)
}

type fakeSales struct {
	mu       sync.Mutex
	sales    []entity.Sale
	items    map[string][]entity.SaleItem
	added    []entity.Sale
	lines    []entity.SaleItem
	actors   []string
	legacy   []entity.LegacySale
	dropped  []string
	fetchErr error
	addErr   error
	itemErr  error
}

var _ repository.SaleRepository = (*fakeSales)(nil)

func (f *fakeSales) List(ctx context.Context, force bool) []entity.Sale {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sales)
}

func (f *fakeSales) Fetch(ctx context.Context) ([]entity.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return slices.Clone(f.sales), nil
}

func (f *fakeSales) Items(ctx context.Context, order string) []entity.SaleItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items[order])
}

func (f *fakeSales) InvalidateItems(order string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped = append(f.dropped, order)
}

func (f *fakeSales) Add(ctx context.Context, sale *entity.Sale) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return "", f.addErr
	}
	header := *sale
	header.Items = nil
	f.added = append(f.added, header)
	f.sales = append([]entity.Sale{header}, f.sales...)
	f.actors = append(f.actors, repository.ActorFrom(ctx, ""))
	return sale.OrderNumber, nil
}

func (f *fakeSales) AddItem(ctx context.Context, item *entity.SaleItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemErr != nil {
		return f.itemErr
	}
	f.lines = append(f.lines, *item)
	return nil
}

func (f *fakeSales) AddLegacy(ctx context.Context, sale *entity.LegacySale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.legacy = append(f.legacy, *sale)
	return nil
}

func (f *fakeSales) ListLegacy(ctx context.Context) []entity.Sale {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Sale, 0, len(f.legacy))
	for _, l := range f.legacy {
		out = append(out, entity.NormalizeSale(map[string]interface{}{
			"product_id":    l.ProductID,
			"product_name":  l.ProductName,
			"quantity_sold": l.QuantitySold,
			"total_price":   l.TotalPrice.String(),
			"sold_by":       l.SoldBy,
		}))
	}
	return out
}

type fakeUsers struct {
	users   []entity.User
	session *entity.Session
	err     error
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*entity.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.session == nil || f.session.Username != username {
		return nil, apperror.ErrInvalidCredentials
	}
	s := *f.session
	return &s, nil
}

func (f *fakeUsers) List(ctx context.Context) []entity.User {
	return f.users
}

type fakeSessions struct {
	mu      sync.Mutex
	current *entity.Session
}

func (f *fakeSessions) Get() (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil, nil
	}
	s := *f.current
	return &s, nil
}

func (f *fakeSessions) Save(s *entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *s
	f.current = &c
	return nil
}

func (f *fakeSessions) Delete() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = nil
	return nil
}

type fakeLogs struct {
	mu      sync.Mutex
	entries []entity.ActivityLog
}

func (f *fakeLogs) Add(ctx context.Context, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entity.ActivityLog{User: repository.ActorFrom(ctx, "system"), Action: action})
}

func (f *fakeLogs) List(ctx context.Context) []entity.ActivityLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.entries)
}

func (f *fakeLogs) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.User+": "+e.Action)
	}
	return out
}

// --- printers ---

type stubPrinter struct {
	mu   sync.Mutex
	err  error
	jobs [][]byte
}

func (p *stubPrinter) Print(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *stubPrinter) Close() error { return nil }

func (p *stubPrinter) IsConnected() bool { return p.err == nil }

func (p *stubPrinter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// --- timers ---

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (ft *fakeTimers) after(d time.Duration, f func()) timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

// fire runs every live timer of duration d.
func (ft *fakeTimers) fire(d time.Duration) int {
	ft.mu.Lock()
	var due []*fakeTimer
	rest := ft.timers[:0]
	for _, t := range ft.timers {
		if t.d == d && !t.stopped {
			due = append(due, t)
			continue
		}
		rest = append(rest, t)
	}
	ft.timers = rest
	ft.mu.Unlock()

	for _, t := range due {
		t.stopped = true
		t.f()
	}
	return len(due)
}

func (ft *fakeTimers) live(d time.Duration) int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	n := 0
	for _, t := range ft.timers {
		if t.d == d && !t.stopped {
			n++
		}
	}
	return n
}

// --- fixtures ---

type events struct {
	mu     sync.Mutex
	topics []string
}

func (e *events) add(topic string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.topics = append(e.topics, topic)
}

func (e *events) list() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.topics)
}

type receptionFixture struct {
	svc       *ReceptionService
	products  *fakeProducts
	sales     *fakeSales
	logs      *fakeLogs
	primary   *stubPrinter
	secondary *stubPrinter
	timers    *fakeTimers
	events    *events
	now       time.Time
}

func money(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func product(id, name, barcode string, price int64, qty int) entity.Product {
	return entity.Product{
		ID:              id,
		Name:            name,
		Category:        "Medicine",
		PurchasePrice:   money(price - 10),
		SalePrice:       money(price),
		Quantity:        qty,
		MinimumQuantity: 5,
		Barcode:         barcode,
		Weight:          "500",
		Unit:            "mg",
	}
}

// newReceptionFixture wires a reception service around fakes. printerType
// picks whether the primary surface counts as a real printer.
func newReceptionFixture(t *testing.T, printerType string, products ...entity.Product) *receptionFixture {
	t.Helper()

	pool, err := ants.NewPool(4)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	f := &receptionFixture{
		products:  &fakeProducts{items: products},
		sales:     &fakeSales{items: map[string][]entity.SaleItem{}},
		logs:      &fakeLogs{},
		primary:   &stubPrinter{},
		secondary: &stubPrinter{},
		timers:    &fakeTimers{},
		events:    &events{},
		now:       time.Date(2025, 3, 10, 14, 5, 0, 0, time.Local),
	}

	bus := EventBus.New()
	for _, topic := range []string{TopicSalePersisted, TopicPrintAwaiting} {
		topic := topic
		require.NoError(t, bus.Subscribe(topic, func(order string) { f.events.add(topic) }))
	}
	require.NoError(t, bus.Subscribe(TopicPrintCompleted, func(order, surface string) {
		f.events.add(TopicPrintCompleted)
	}))
	require.NoError(t, bus.Subscribe(TopicSalePersistFailed, func(order string, err error) {
		f.events.add(TopicSalePersistFailed)
	}))
	require.NoError(t, bus.Subscribe(TopicPrintResolved, func(order string, ok bool) {
		f.events.add(TopicPrintResolved)
	}))

	receipts := NewReceiptService(printer.NewFallbackPrinter(f.primary, f.secondary), ReceiptOptions{
		Header:      entity.ReceiptHeader{StoreName: "HAFSA PHARMACY & MIR MART"},
		Terms:       "No return without receipt",
		PrinterType: printerType,
	})
	receipts.now = func() time.Time { return f.now }

	f.svc = NewReceptionService(f.products, f.sales, receipts, NewActivityLogService(f.logs, pool), pool, bus, DefaultReceptionOptions())
	f.svc.now = func() time.Time { return f.now }
	f.svc.afterFunc = f.timers.after
	return f
}

func (f *receptionFixture) open(t *testing.T) *Terminal {
	t.Helper()
	term, err := f.svc.Open(&entity.Session{Username: "sana"})
	require.NoError(t, err)
	return term
}
