package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/printer"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"go.uber.org/zap"
)

// Print confirmation messages.
const (
	MsgPrintUnconfirmed   = "Did the bill print successfully?"
	MsgPrintMayHaveFailed = "Printing may have failed. Please check your printer."
	MsgSaleInProgress     = "Sale is already being processed. Please wait."
)

// settled print jobs are kept this many print timeouts before the sweep drops them
const printRetention = 10

// PrintJob follows one bill from dispatch until the cashier knows it came out.
type PrintJob struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"order_number"`
	State       enum.PrintState `json:"state"`
	Surface     string          `json:"surface,omitempty"`
	Message     string          `json:"message,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	timer timer
}

// PersistTask is the background save of one sale.
type PersistTask struct {
	OrderNumber string

	done chan struct{}
	err  error
}

// Done is closed once every write of the sale has been attempted.
func (p *PersistTask) Done() <-chan struct{} {
	return p.done
}

// Err returns the joined write failures. It is nil until Done is closed.
func (p *PersistTask) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx ends.
func (p *PersistTask) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckoutResult is what the cashier sees right after a sale.
type CheckoutResult struct {
	Sale    *entity.Sale    `json:"sale"`
	Receipt *entity.Receipt `json:"receipt"`
	Print   PrintJob        `json:"print"`
	Task    *PersistTask    `json:"-"`
}

func (t *Terminal) validateLocked() []apperror.FieldError {
	var errs []apperror.FieldError
	if t.cart.IsEmpty() {
		errs = append(errs, apperror.FieldError{Field: "cart", Message: "Cart is empty! Add products first."})
	}
	if strings.TrimSpace(t.customer) == "" {
		errs = append(errs, apperror.FieldError{Field: "customer_name", Message: "Customer name is required"})
	}
	if t.payment.IsCash() {
		total := t.totalsLocked().Total
		if t.paid.LessThan(total) {
			errs = append(errs, apperror.FieldError{
				Field:   "amount_paid",
				Message: fmt.Sprintf("Amount paid must be at least Rs. %s", total.StringFixed(2)),
			})
		}
	}
	return errs
}

// Checkout completes the sale in the cart: the bill is printed and the
// till is reset at once, while the sheet writes run in the background.
func (t *Terminal) Checkout(ctx context.Context) (*CheckoutResult, error) {
	t.mu.Lock()
	if errs := t.validateLocked(); len(errs) > 0 {
		t.mu.Unlock()
		return nil, apperror.NewValidationError(errs)
	}
	if t.processing {
		t.mu.Unlock()
		return nil, apperror.NewDuplicateRequestError(MsgSaleInProgress)
	}
	t.processing = true
	needOrder := t.orderNumber < t.svc.opts.OrderNumberBase+1
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.processing = false
		t.mu.Unlock()
	}()

	if needOrder {
		t.UpdateOrderNumber(ctx)
	}

	t.mu.Lock()
	sale := t.buildSaleLocked()
	t.mu.Unlock()

	receipt := t.svc.receipts.BuildReceipt(sale)
	job := t.startPrint(sale.OrderNumber)
	surface, perr := t.svc.receipts.Print(receipt)
	printed := t.settlePrint(job, surface, perr)

	t.mu.Lock()
	t.transactions = append([]Transaction{transactionOf(sale)}, t.transactions...)
	t.resetSaleLocked()
	t.orderNumber++
	t.setModeLocked(enum.ScanModeScan)
	t.mu.Unlock()

	zap.S().Infow("sale completed",
		"order_number", sale.OrderNumber,
		"cashier", t.cashier,
		"total", sale.TotalAmount.StringFixed(2),
		"payment_method", sale.PaymentMethod,
		"print_state", printed.State.String(),
	)

	return &CheckoutResult{
		Sale:    sale,
		Receipt: receipt,
		Print:   printed,
		Task:    t.persist(ctx, sale),
	}, nil
}

func (t *Terminal) buildSaleLocked() *entity.Sale {
	now := t.svc.now()
	order := strconv.FormatInt(t.orderNumber, 10)
	totals := t.totalsLocked()

	sale := &entity.Sale{
		OrderNumber:   order,
		CustomerName:  strings.TrimSpace(t.customer),
		TotalItems:    t.cart.TotalQuantity(),
		Subtotal:      totals.Subtotal,
		TotalAmount:   totals.Total,
		Date:          now.Format("2006-01-02"),
		Time:          now.Format(ReceiptTimeLayout),
		PaymentMethod: t.payment,
		AmountPaid:    t.paid,
		Change:        totals.Change,
		Tax:           t.tax,
		SoldBy:        t.cashier,
	}
	for _, it := range t.cart.Items() {
		sale.Items = append(sale.Items, entity.SaleItem{
			OrderNumber: order,
			ProductID:   it.ProductID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			Category:    it.Category,
			Weight:      it.Weight,
			Unit:        it.Unit,
			Price:       it.Price,
			LineTotal:   it.Total,
		})
	}
	return sale
}

// persist queues the sheet writes of sale on the worker pool.
func (t *Terminal) persist(ctx context.Context, sale *entity.Sale) *PersistTask {
	task := &PersistTask{OrderNumber: sale.OrderNumber, done: make(chan struct{})}
	bg := t.actorCtx(context.WithoutCancel(ctx))

	t.tasks.Add(1)
	err := t.svc.pool.Submit(func() {
		defer t.tasks.Done()
		defer close(task.done)
		task.err = t.persistSale(bg, sale)
		t.afterPersist(bg, sale, task.err)
	})
	if err != nil {
		task.err = fmt.Errorf("queue sale #%s: %w", sale.OrderNumber, err)
		t.afterPersist(bg, sale, task.err)
		close(task.done)
		t.tasks.Done()
	}
	return task
}

func (t *Terminal) afterPersist(ctx context.Context, sale *entity.Sale, err error) {
	if err != nil {
		zap.S().Errorw("sale not fully saved", "order_number", sale.OrderNumber, "error", err)
		t.svc.publish(TopicSalePersistFailed, sale.OrderNumber, err)
		return
	}
	zap.S().Infow("sale saved", "order_number", sale.OrderNumber, "items", len(sale.Items))
	t.svc.publish(TopicSalePersisted, sale.OrderNumber)
	t.Transactions(ctx, true)
}

// persistSale writes the header, then each line, then the new stock level
// of every product sold. Sales of one terminal are written in order.
func (t *Terminal) persistSale(ctx context.Context, sale *entity.Sale) error {
	t.persistMu.Lock()
	defer t.persistMu.Unlock()

	if _, err := t.svc.saleRepo.Add(ctx, sale); err != nil {
		return fmt.Errorf("save sale #%s: %w", sale.OrderNumber, err)
	}

	var errs []error
	for i := range sale.Items {
		item := sale.Items[i]
		if err := t.svc.saleRepo.AddItem(ctx, &item); err != nil {
			errs = append(errs, fmt.Errorf("save line %q: %w", item.ProductName, err))
		}
	}

	for _, item := range sale.Items {
		t.mu.Lock()
		p, ok := t.productLocked(item.ProductID)
		t.mu.Unlock()
		if !ok {
			continue
		}
		qty := p.Quantity - item.Quantity
		if qty < 0 {
			continue
		}

		in := entity.InputFromProduct(p)
		in.Quantity = &qty
		if _, err := t.svc.productRepo.Update(ctx, in); err != nil {
			errs = append(errs, fmt.Errorf("update stock of %q: %w", p.Name, err))
			continue
		}
		t.setStock(p.ID, qty)
	}
	return errors.Join(errs...)
}

func (t *Terminal) setStock(productID string, qty int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.products {
		if t.products[i].ID == productID {
			t.products[i].Quantity = qty
			return
		}
	}
}

// startPrint opens a confirmation for order. Unless something settles it
// first, it turns into a question for the cashier after the print timeout.
func (t *Terminal) startPrint(order string) *PrintJob {
	now := t.svc.now()
	job := &PrintJob{
		ID:          utils.ShortID(),
		OrderNumber: order,
		State:       enum.PrintPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	id := job.ID
	job.timer = t.svc.afterFunc(t.svc.opts.PrintTimeout, func() { t.expirePrint(order, id) })

	t.mu.Lock()
	if old, ok := t.prints[order]; ok && old.timer != nil {
		old.timer.Stop()
	}
	t.prints[order] = job
	t.mu.Unlock()
	return job
}

// settlePrint records what the printer chain did. Only a configured
// printer taking the job on the primary surface counts as printed; the
// browser page and the spool directory wait for a confirmation.
func (t *Terminal) settlePrint(job *PrintJob, surface string, perr error) PrintJob {
	t.mu.Lock()
	job.Surface = surface
	job.UpdatedAt = t.svc.now()
	completed := false
	switch {
	case perr != nil:
		job.Message = perr.Error()
	case surface == printer.SurfacePrimary && t.svc.receipts.HasPrinter():
		if job.State == enum.PrintPending {
			t.closePrintLocked(job, enum.PrintCompleted, "")
			completed = true
		}
	}
	out := *job
	t.mu.Unlock()

	if completed {
		t.svc.publish(TopicPrintCompleted, out.OrderNumber, out.Surface)
	}
	return out
}

func (t *Terminal) closePrintLocked(job *PrintJob, state enum.PrintState, msg string) {
	if job.timer != nil {
		job.timer.Stop()
		job.timer = nil
	}
	job.State = state
	job.Message = msg
	job.UpdatedAt = t.svc.now()
}

func (t *Terminal) expirePrint(order, id string) {
	t.mu.Lock()
	job, ok := t.prints[order]
	if !ok || job.ID != id || job.State != enum.PrintPending {
		t.mu.Unlock()
		return
	}
	job.timer = nil
	job.State = enum.PrintAwaitingConfirmation
	job.Message = MsgPrintUnconfirmed
	job.UpdatedAt = t.svc.now()
	t.mu.Unlock()

	zap.S().Warnw("print not confirmed", "order_number", order)
	t.svc.publish(TopicPrintAwaiting, order)
}

// ConfirmPrint records that the bill of order came out.
func (t *Terminal) ConfirmPrint(order string) (PrintJob, error) {
	t.mu.Lock()
	job, ok := t.prints[order]
	if !ok {
		t.mu.Unlock()
		return PrintJob{}, apperror.New(apperror.KindNotFound, fmt.Sprintf("No print pending for order #%s", order))
	}
	changed := !job.State.Closed()
	if changed {
		t.closePrintLocked(job, enum.PrintCompleted, "")
	}
	out := *job
	t.mu.Unlock()

	if changed {
		t.svc.publish(TopicPrintCompleted, order, out.Surface)
	}
	return out, nil
}

// ResolvePrint records the cashier's answer to whether the bill printed.
func (t *Terminal) ResolvePrint(order string, ok bool) (PrintJob, error) {
	t.mu.Lock()
	job, found := t.prints[order]
	if !found {
		t.mu.Unlock()
		return PrintJob{}, apperror.New(apperror.KindNotFound, fmt.Sprintf("No print pending for order #%s", order))
	}
	changed := !job.State.Closed()
	if changed {
		if ok {
			t.closePrintLocked(job, enum.PrintConfirmed, "")
		} else {
			t.closePrintLocked(job, enum.PrintFailed, MsgPrintMayHaveFailed)
		}
	}
	out := *job
	t.mu.Unlock()

	if changed {
		t.svc.publish(TopicPrintResolved, order, ok)
	}
	return out, nil
}

// Prints returns the print jobs of this terminal, oldest first.
func (t *Terminal) Prints() []PrintJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PrintJob, 0, len(t.prints))
	for _, job := range t.prints {
		out = append(out, *job)
	}
	slices.SortFunc(out, func(a, b PrintJob) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// sweepPrints catches pending jobs whose timer never fired and forgets
// jobs settled long ago.
func (t *Terminal) sweepPrints() {
	now := t.svc.now()
	timeout := t.svc.opts.PrintTimeout

	var expired []PrintJob
	t.mu.Lock()
	for order, job := range t.prints {
		switch {
		case job.State == enum.PrintPending && now.Sub(job.CreatedAt) >= timeout:
			expired = append(expired, *job)
		case job.State.Closed() && now.Sub(job.UpdatedAt) >= printRetention*timeout:
			delete(t.prints, order)
		}
	}
	t.mu.Unlock()

	for _, job := range expired {
		t.expirePrint(job.OrderNumber, job.ID)
	}
}
