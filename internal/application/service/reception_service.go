package service

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/repository"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Event bus topics published by the reception terminal.
const (
	TopicSalePersisted     = "sale:persisted"
	TopicSalePersistFailed = "sale:persist_failed"
	TopicPrintCompleted    = "print:completed"
	TopicPrintAwaiting     = "print:awaiting_confirmation"
	TopicPrintResolved     = "print:resolved"
)

// ReceptionOptions tunes the checkout terminal.
type ReceptionOptions struct {
	OrderNumberBase    int64
	DefaultTax         decimal.Decimal
	ScanGap            time.Duration
	ScanIdle           time.Duration
	ScanMinLength      int
	PrintTimeout       time.Duration
	RecentTransactions int
}

// DefaultReceptionOptions mirrors the till's stock behaviour.
func DefaultReceptionOptions() ReceptionOptions {
	return ReceptionOptions{
		OrderNumberBase:    50000000000,
		DefaultTax:         decimal.NewFromInt(1),
		ScanGap:            200 * time.Millisecond,
		ScanIdle:           100 * time.Millisecond,
		ScanMinLength:      8,
		PrintTimeout:       20 * time.Second,
		RecentTransactions: 10,
	}
}

// timer is the part of *time.Timer the terminal needs.
type timer interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer {
	return time.AfterFunc(d, f)
}

// ReceptionService owns the reception terminals of this process, one per
// signed-in cashier.
type ReceptionService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	receipts    *ReceiptService
	activity    *ActivityLogService
	pool        *ants.Pool
	bus         EventBus.Bus
	opts        ReceptionOptions

	now       func() time.Time
	afterFunc afterFunc

	mu        sync.Mutex
	terminals map[string]*Terminal
}

// NewReceptionService creates a new reception service
func NewReceptionService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	receipts *ReceiptService,
	activity *ActivityLogService,
	pool *ants.Pool,
	bus EventBus.Bus,
	opts ReceptionOptions,
) *ReceptionService {
	def := DefaultReceptionOptions()
	if opts.OrderNumberBase <= 0 {
		opts.OrderNumberBase = def.OrderNumberBase
	}
	if opts.DefaultTax.IsNegative() {
		opts.DefaultTax = decimal.Zero
	}
	if opts.ScanGap <= 0 {
		opts.ScanGap = def.ScanGap
	}
	if opts.ScanIdle <= 0 {
		opts.ScanIdle = def.ScanIdle
	}
	if opts.ScanMinLength <= 0 {
		opts.ScanMinLength = def.ScanMinLength
	}
	if opts.PrintTimeout <= 0 {
		opts.PrintTimeout = def.PrintTimeout
	}
	if opts.RecentTransactions <= 0 {
		opts.RecentTransactions = def.RecentTransactions
	}
	return &ReceptionService{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		receipts:    receipts,
		activity:    activity,
		pool:        pool,
		bus:         bus,
		opts:        opts,
		now:         time.Now,
		afterFunc:   realAfterFunc,
		terminals:   make(map[string]*Terminal),
	}
}

// Open returns the terminal of the cashier in session, creating it when
// this is the first reception view they mount.
func (s *ReceptionService) Open(session *entity.Session) (*Terminal, error) {
	if session == nil || session.Username == "" {
		return nil, apperror.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.terminals[session.Username]; ok {
		return t, nil
	}
	t := newTerminal(s, session.Username)
	s.terminals[session.Username] = t
	zap.S().Infow("reception terminal opened", "cashier", session.Username)
	return t, nil
}

// Terminal returns the open terminal of username.
func (s *ReceptionService) Terminal(username string) (*Terminal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.terminals[username]
	return t, ok
}

// Close tears down the terminal of username. Background persistence that
// is already queued still runs to completion.
func (s *ReceptionService) Close(username string) {
	s.mu.Lock()
	t, ok := s.terminals[username]
	delete(s.terminals, username)
	s.mu.Unlock()

	if ok {
		t.close()
		zap.S().Infow("reception terminal closed", "cashier", username)
	}
}

// CloseAll tears down every terminal, waiting for persistence up to ctx.
func (s *ReceptionService) CloseAll(ctx context.Context) error {
	s.mu.Lock()
	terms := make([]*Terminal, 0, len(s.terminals))
	for name, t := range s.terminals {
		terms = append(terms, t)
		delete(s.terminals, name)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, t := range terms {
			t.close()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepPrints expires overdue print confirmations on every terminal and
// drops settled ones.
func (s *ReceptionService) SweepPrints() {
	for _, t := range s.snapshot() {
		t.sweepPrints()
	}
}

// RefreshProducts reloads the product list of every terminal.
func (s *ReceptionService) RefreshProducts(ctx context.Context) {
	for _, t := range s.snapshot() {
		t.LoadProducts(ctx, true)
	}
}

func (s *ReceptionService) snapshot() []*Terminal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Terminal, 0, len(s.terminals))
	for _, t := range s.terminals {
		out = append(out, t)
	}
	return out
}

func (s *ReceptionService) publish(topic string, args ...interface{}) {
	if s.bus != nil {
		s.bus.Publish(topic, args...)
	}
}
