package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	panadol = product("P-1", "Panadol", "8964-0001", 150, 10)
	surbex  = product("P-2", "Surbex Z", "89640002", 420, 1)
	soldOut = product("P-3", "Brufen", "89640003", 90, 0)
)

func TestOpenReusesTerminalPerCashier(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone)

	a := f.open(t)
	b := f.open(t)
	assert.Same(t, a, b)

	_, err := f.svc.Open(nil)
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))

	f.svc.Close("sana")
	_, ok := f.svc.Terminal("sana")
	assert.False(t, ok)
}

func TestMountLoadsProductsAndOrderNumber(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol, surbex)
	f.sales.sales = []entity.Sale{{OrderNumber: "50000000041", Date: "2025-03-10"}}
	term := f.open(t)

	st := term.Mount(context.Background())

	assert.Equal(t, 2, st.ProductCount)
	assert.Equal(t, "50000000042", st.OrderNumber)
	assert.Equal(t, entity.WalkInCustomer, st.CustomerName)
	assert.Equal(t, enum.PaymentCash, st.PaymentMethod)
	assert.True(t, money(1).Equal(st.Totals.Tax))
	assert.Len(t, term.RecentTransactions(), 1)
}

func TestAddToCartRespectsStock(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, surbex, soldOut)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)

	_, err := term.AddToCart("P-3")
	assert.True(t, apperror.IsKind(err, apperror.KindOutOfStock))
	assert.Empty(t, term.State().Cart)

	_, err = term.AddToCart("P-2")
	require.NoError(t, err)
	_, err = term.AddToCart("P-2")
	assert.True(t, apperror.IsKind(err, apperror.KindStockLimit))
	assert.Equal(t, 1, term.State().TotalQuantity)

	_, err = term.AddToCart("nope")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestUpdateQuantityBoundedByStock(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, surbex, panadol)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)
	_, _ = term.AddToCart("P-2")
	_, _ = term.AddToCart("P-1")

	_, err := term.UpdateQuantity(0, 1)
	assert.True(t, apperror.IsKind(err, apperror.KindStockLimit))

	removed, err := term.UpdateQuantity(1, 3)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = term.UpdateQuantity(0, -1)
	require.NoError(t, err)
	assert.True(t, removed)

	cart := term.State().Cart
	require.Len(t, cart, 1)
	assert.Equal(t, 4, cart[0].Quantity)
	assert.True(t, money(600).Equal(cart[0].Total))
}

func TestTotalsAndTax(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)
	_, _ = term.AddToCart("P-1")
	_, _ = term.AddToCart("P-1")

	totals := term.SetAmountPaid(money(500))
	assert.True(t, money(300).Equal(totals.Subtotal))
	assert.True(t, money(301).Equal(totals.Total))
	assert.True(t, money(199).Equal(totals.Change))

	totals = term.AdjustTax(money(-5))
	assert.True(t, totals.Tax.IsZero(), "tax never goes negative")

	totals = term.SetTax(money(-3))
	assert.True(t, totals.Tax.IsZero())

	totals = term.SetAmountPaid(money(10))
	assert.True(t, totals.Change.IsZero(), "change never goes negative")
}

func TestClearCartResetsSale(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)
	_, _ = term.AddToCart("P-1")
	term.SetCustomerName("Ayesha")
	term.SetAmountPaid(money(1000))
	term.SetTax(money(12))

	term.ClearCart()

	st := term.State()
	assert.Empty(t, st.Cart)
	assert.Equal(t, entity.WalkInCustomer, st.CustomerName)
	assert.True(t, st.Totals.AmountPaid.IsZero())
	assert.True(t, money(1).Equal(st.Totals.Tax))
}

func TestModeSwitchClearsScannerAndSearch(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	term := f.open(t)
	base := f.now

	res := term.KeyInput("8964", base)
	assert.Equal(t, 4, res.Buffered)

	term.SetSearchMode()
	term.SearchProducts("pan")
	assert.Equal(t, enum.ScanModeSearch, term.Mode())
	assert.False(t, term.KeyInput("1", base).Accepted, "keys go to the search box in search mode")

	term.SetScanMode()
	st := term.State()
	assert.Equal(t, enum.ScanModeScan, st.Mode)
	assert.Empty(t, st.SearchTerm)
	assert.Equal(t, 1, term.KeyInput("1", base.Add(time.Millisecond)).Buffered)
}

func TestSearchProductsMatchesFields(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol, surbex)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)

	assert.Len(t, term.SearchProducts("SURBEX"), 1)
	assert.Len(t, term.SearchProducts("p-1"), 1)
	assert.Len(t, term.SearchProducts("medicine"), 2)
	assert.Len(t, term.SearchProducts("89640002"), 1)
	assert.Len(t, term.SearchProducts(""), 2)
}

func TestKeyInputBurstIsLookedUpAfterIdle(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)
	idle := f.svc.opts.ScanIdle

	var res KeyInputResult
	for i, ch := range "89640001" {
		res = term.KeyInput(string(ch), f.now.Add(time.Duration(i)*10*time.Millisecond))
	}
	assert.True(t, res.Armed)
	assert.Equal(t, 1, f.timers.live(idle))

	require.Equal(t, 1, f.timers.fire(idle))

	scan := term.LastScan()
	require.NotNil(t, scan)
	assert.True(t, scan.Found)
	assert.Equal(t, "Product found: Panadol", scan.Message)
	assert.Equal(t, 1, term.State().TotalQuantity)
}

func TestKeyInputRearmsWhileTyping(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone)
	term := f.open(t)
	idle := f.svc.opts.ScanIdle

	for i, ch := range "8964000123" {
		term.KeyInput(string(ch), f.now.Add(time.Duration(i)*5*time.Millisecond))
	}
	assert.Equal(t, 1, f.timers.live(idle), "only the latest idle timer is live")
}

func TestKeyInputGapStartsNewCode(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone)
	term := f.open(t)

	term.KeyInput("8964", f.now)
	res := term.KeyInput("0001", f.now.Add(300*time.Millisecond))

	assert.Equal(t, 4, res.Buffered)
	assert.False(t, res.Armed)
	assert.Zero(t, f.timers.live(f.svc.opts.ScanIdle))
}

func TestProcessBarcode(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol, soldOut)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)

	assert.Nil(t, term.ProcessBarcode("12"), "short codes are ignored")

	hit := term.ProcessBarcode(" 8964 0001 ")
	require.NotNil(t, hit)
	assert.True(t, hit.Found)
	assert.Equal(t, 1, term.State().TotalQuantity)

	out := term.ProcessBarcode("89640003")
	assert.True(t, out.Found)
	assert.Equal(t, "Brufen is out of stock", out.Message)

	miss := term.ProcessBarcode("ABC-123-999")
	require.NotNil(t, miss)
	assert.False(t, miss.Found)
	assert.Equal(t, "Product not found for barcode: 123999", miss.Message)
	st := term.State()
	assert.Equal(t, enum.ScanModeSearch, st.Mode)
	assert.Equal(t, "123999", st.SearchTerm)
}

func TestUpdateOrderNumber(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone)
	f.sales.sales = []entity.Sale{
		{OrderNumber: "50000000005"},
		{OrderNumber: "abc"},
		{OrderNumber: "49999999999"},
		{OrderNumber: "50000000003"},
	}
	term := f.open(t)

	assert.Equal(t, int64(50000000006), term.UpdateOrderNumber(context.Background()))

	f.sales.sales = nil
	assert.Equal(t, int64(50000000001), term.UpdateOrderNumber(context.Background()))

	f.sales.fetchErr = apperror.NewTransportError(apperror.KindNetwork)
	want := int64(50000000000) + f.now.UnixMilli()%1000000
	assert.Equal(t, want, term.UpdateOrderNumber(context.Background()))
}

func TestCheckoutValidation(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)
	term.SetCustomerName("  ")

	_, err := term.Checkout(context.Background())
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Equal(t, "Cart is empty! Add products first., Customer name is required, Amount paid must be at least Rs. 1.00", appErr.Message)

	term.SetCustomerName("Ayesha")
	_, _ = term.AddToCart("P-1")
	term.SetAmountPaid(money(100))
	_, err = term.Checkout(context.Background())
	appErr = apperror.GetAppError(err)
	require.NotNil(t, appErr)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "Amount paid must be at least Rs. 151.00", appErr.Errors[0].Message)

	assert.Empty(t, f.sales.added)
	assert.Zero(t, f.primary.count())
}

func TestCheckoutRejectsReentry(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	term := f.open(t)
	term.LoadProducts(context.Background(), false)
	_, _ = term.AddToCart("P-1")
	term.SetPaymentMethod(enum.PaymentCard)

	term.mu.Lock()
	term.processing = true
	term.mu.Unlock()

	_, err := term.Checkout(context.Background())
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateRequest))
	assert.Equal(t, MsgSaleInProgress, apperror.GetAppError(err).Message)
	assert.Equal(t, 1, term.State().TotalQuantity, "cart untouched")
}

func TestCheckoutPrintsResetsAndPersists(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork, panadol)
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)

	_, _ = term.AddToCart("P-1")
	_, _ = term.AddToCart("P-1")
	term.SetCustomerName("Ayesha")
	term.SetAmountPaid(money(500))

	res, err := term.Checkout(ctx)
	require.NoError(t, err)

	sale := res.Sale
	assert.Equal(t, "50000000001", sale.OrderNumber)
	assert.Equal(t, "Ayesha", sale.CustomerName)
	assert.Equal(t, 2, sale.TotalItems)
	assert.True(t, money(300).Equal(sale.Subtotal))
	assert.True(t, money(301).Equal(sale.TotalAmount))
	assert.True(t, money(199).Equal(sale.Change))
	assert.Equal(t, "2025-03-10", sale.Date)
	assert.Equal(t, "02:05 PM", sale.Time)
	assert.Equal(t, "sana", sale.SoldBy)

	assert.Equal(t, enum.PrintCompleted, res.Print.State)
	assert.Equal(t, 1, f.primary.count())
	assert.True(t, res.Receipt.ShowCashDetails)

	st := term.State()
	assert.Empty(t, st.Cart)
	assert.Equal(t, "50000000002", st.OrderNumber)
	assert.Equal(t, entity.WalkInCustomer, st.CustomerName)
	assert.Equal(t, enum.ScanModeScan, st.Mode)
	assert.False(t, st.Processing)

	require.NoError(t, res.Task.Wait(ctx))
	assert.NoError(t, res.Task.Err())

	require.Len(t, f.sales.added, 1)
	assert.Equal(t, []string{"sana"}, f.sales.actors)
	require.Len(t, f.sales.lines, 1)
	assert.Equal(t, 2, f.sales.lines[0].Quantity)
	assert.Equal(t, "50000000001", f.sales.lines[0].OrderNumber)

	updates := f.products.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, 8, *updates[0].Quantity)
	assert.Equal(t, 8, term.Products()[0].Quantity, "snapshot follows the decrement")

	txs := term.RecentTransactions()
	require.NotEmpty(t, txs)
	assert.Equal(t, "50000000001", txs[0].OrderNumber)
	assert.Contains(t, f.events.list(), TopicSalePersisted)
	assert.Contains(t, f.events.list(), TopicPrintCompleted)
}

func TestCheckoutSkipsStockForUnknownOrOversold(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork, panadol)
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	_, _ = term.AddToCart("P-1")
	term.SetPaymentMethod(enum.PaymentEasypaisa)

	// stock dropped to zero elsewhere before the write ran
	term.setStock("P-1", 0)

	res, err := term.Checkout(ctx)
	require.NoError(t, err)
	require.NoError(t, res.Task.Wait(ctx))
	assert.Empty(t, f.products.updates())
	assert.False(t, res.Receipt.ShowCashDetails)
}

func TestCheckoutPersistFailureIsPublished(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork, panadol)
	f.sales.addErr = apperror.New(apperror.KindSaleFailed, "Failed to record sale")
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	_, _ = term.AddToCart("P-1")
	term.SetAmountPaid(money(200))

	res, err := term.Checkout(ctx)
	require.NoError(t, err, "the cashier is not held up by a failed save")

	err = res.Task.Wait(ctx)
	assert.True(t, apperror.IsKind(err, apperror.KindSaleFailed))
	assert.Empty(t, f.sales.lines)
	assert.Empty(t, f.products.updates())
	assert.Contains(t, f.events.list(), TopicSalePersistFailed)
	assert.Empty(t, term.State().Cart)
}

func TestCheckoutLineFailureStillDecrementsStock(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork, panadol)
	f.sales.itemErr = errors.New("sheet locked")
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	_, _ = term.AddToCart("P-1")
	term.SetAmountPaid(money(200))

	res, err := term.Checkout(ctx)
	require.NoError(t, err)

	err = res.Task.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Panadol")
	assert.Len(t, f.sales.added, 1)
	assert.Len(t, f.products.updates(), 1)
}

func TestPrintAwaitsConfirmationWithoutPrinter(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	timeout := f.svc.opts.PrintTimeout

	checkout := func() *CheckoutResult {
		_, _ = term.AddToCart("P-1")
		term.SetAmountPaid(money(200))
		res, err := term.Checkout(ctx)
		require.NoError(t, err)
		require.NoError(t, res.Task.Wait(ctx))
		return res
	}

	first := checkout()
	assert.Equal(t, enum.PrintPending, first.Print.State)
	assert.Equal(t, 1, f.timers.live(timeout))

	require.Equal(t, 1, f.timers.fire(timeout))
	jobs := term.Prints()
	require.Len(t, jobs, 1)
	assert.Equal(t, enum.PrintAwaitingConfirmation, jobs[0].State)
	assert.Contains(t, f.events.list(), TopicPrintAwaiting)

	job, err := term.ResolvePrint(first.Sale.OrderNumber, false)
	require.NoError(t, err)
	assert.Equal(t, enum.PrintFailed, job.State)
	assert.Equal(t, MsgPrintMayHaveFailed, job.Message)

	second := checkout()
	job, err = term.ConfirmPrint(second.Sale.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, enum.PrintCompleted, job.State)
	assert.Zero(t, f.timers.live(timeout), "confirmation stops the timer")

	_, err = term.ConfirmPrint("1")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestPrintFallsBackToSecondarySurface(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork, panadol)
	f.primary.err = printer.ErrNotConnected
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	_, _ = term.AddToCart("P-1")
	term.SetAmountPaid(money(200))

	res, err := term.Checkout(ctx)
	require.NoError(t, err)

	assert.Equal(t, printer.SurfaceSecondary, res.Print.Surface)
	assert.Equal(t, enum.PrintPending, res.Print.State)
	assert.Equal(t, 1, f.secondary.count())
}

func TestPrintFailureDoesNotBlockSale(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork, panadol)
	f.primary.err = printer.ErrNotConnected
	f.secondary.err = errors.New("spool dir missing")
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	_, _ = term.AddToCart("P-1")
	term.SetAmountPaid(money(200))

	res, err := term.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, enum.PrintPending, res.Print.State)
	assert.NotEmpty(t, res.Print.Message)
	require.NoError(t, res.Task.Wait(ctx))
	assert.Len(t, f.sales.added, 1)
}

func TestSweepPrints(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone, panadol)
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	_, _ = term.AddToCart("P-1")
	term.SetAmountPaid(money(200))
	res, err := term.Checkout(ctx)
	require.NoError(t, err)
	require.NoError(t, res.Task.Wait(ctx))
	order := res.Sale.OrderNumber

	f.now = f.now.Add(f.svc.opts.PrintTimeout + time.Second)
	f.svc.SweepPrints()
	require.Len(t, term.Prints(), 1)
	assert.Equal(t, enum.PrintAwaitingConfirmation, term.Prints()[0].State)

	_, err = term.ResolvePrint(order, true)
	require.NoError(t, err)
	assert.Equal(t, enum.PrintConfirmed, term.Prints()[0].State)

	f.now = f.now.Add(printRetention * f.svc.opts.PrintTimeout)
	f.svc.SweepPrints()
	assert.Empty(t, term.Prints())
}

func TestTransactionsPreferToday(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone)
	f.sales.sales = []entity.Sale{
		{OrderNumber: "50000000003", Date: "2025-03-10", Time: "14:05", TotalAmount: money(301)},
		{OrderNumber: "50000000002", Date: "10/03/2025", Time: "09:15 AM"},
		{OrderNumber: "50000000001", Date: "2025-03-09", Time: "18:00"},
	}
	term := f.open(t)

	txs := term.Transactions(context.Background(), true)
	require.Len(t, txs, 2)
	assert.Equal(t, "2:05 PM", txs[0].Time)
	assert.Equal(t, "09:15 AM", txs[1].Time)
	assert.Equal(t, entity.WalkInCustomer, txs[0].CustomerName)
	assert.Equal(t, enum.PaymentCash, txs[0].PaymentMethod)
	assert.Equal(t, "Completed", txs[0].Status)
}

func TestTransactionsFallBackToRecent(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNone)
	for i := 0; i < 12; i++ {
		f.sales.sales = append(f.sales.sales, entity.Sale{
			OrderNumber: strconv.Itoa(50000000100 - i),
			Date:        "2025-02-01",
		})
	}
	term := f.open(t)

	txs := term.Transactions(context.Background(), false)
	require.Len(t, txs, 10)
	assert.Equal(t, "50000000100", txs[0].OrderNumber)
}

func TestDisplayTime(t *testing.T) {
	cases := map[string]string{
		"":         "N/A",
		"00:30":    "12:30 AM",
		"12:00":    "12:00 PM",
		"23:59:10": "11:59 PM",
		"03:04 PM": "03:04 PM",
		"noon":     "noon",
		"xx:10":    "xx:10",
	}
	for in, want := range cases {
		assert.Equal(t, want, displayTime(in), in)
	}
}

func TestReprintRebuildsFromSheet(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork)
	f.sales.sales = []entity.Sale{{
		OrderNumber:   "50000000009",
		CustomerName:  "Bilal",
		TotalAmount:   money(301),
		Tax:           money(1),
		PaymentMethod: enum.PaymentCash,
		AmountPaid:    money(500),
		Change:        money(199),
		SoldBy:        "sana",
	}}
	f.sales.items["50000000009"] = []entity.SaleItem{
		{OrderNumber: "50000000009", ProductName: "Panadol", Weight: "500 mg", Quantity: 2, Price: money(150), LineTotal: money(300)},
	}
	term := f.open(t)

	receipt, surface, err := term.Reprint(context.Background(), "50000000009")
	require.NoError(t, err)
	assert.Equal(t, printer.SurfacePrimary, surface)
	assert.True(t, money(300).Equal(receipt.Subtotal))
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "Panadol (500 mg)", receipt.Items[0].Label())
	assert.Equal(t, 1, f.primary.count())

	html, err := term.ReceiptHTML(context.Background(), "50000000009")
	require.NoError(t, err)
	assert.Contains(t, html, "Bill #50000000009")

	_, _, err = term.Reprint(context.Background(), "42")
	appErr := apperror.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperror.KindNotFound, appErr.Kind)
	assert.Equal(t, "Sale #42 not found", appErr.Message)
}

func TestCloseAllWaitsForPersistence(t *testing.T) {
	f := newReceptionFixture(t, printer.TypeNetwork, panadol)
	ctx := context.Background()
	term := f.open(t)
	term.Mount(ctx)
	_, _ = term.AddToCart("P-1")
	term.SetAmountPaid(money(200))
	res, err := term.Checkout(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.CloseAll(ctx))

	select {
	case <-res.Task.Done():
	default:
		t.Fatal("persistence still running after CloseAll")
	}
	_, ok := f.svc.Terminal("sana")
	assert.False(t, ok)
}
