// Package sheets talks to the spreadsheet web app that is the shop's system
// of record. Reads are cached per resource and never fail; writes are
// validated locally, de-duplicated while in flight and return typed errors.
package sheets

import (
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/dedup"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Timeouts bounds each class of call.
type Timeouts struct {
	Write  time.Duration // product and sale writes
	Read   time.Duration // product and sales lists, delete, legacy sales, login
	Lookup time.Duration // sale items, barcode check, capacity, users, logs
	Log    time.Duration // addLog
}

// DefaultTimeouts are the limits the shop's web app is known to fit in.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Write:  20 * time.Second,
		Read:   15 * time.Second,
		Lookup: 10 * time.Second,
		Log:    5 * time.Second,
	}
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeouts      Timeouts
	CacheTTL      time.Duration
	SaleItemsSize int
	SaleItemsTTL  time.Duration
	HTTPClient    *http.Client
	Now           func() time.Time
	CapacityGuess int
}

// Client is the remote spreadsheet gateway. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	timeouts Timeouts
	now      func() time.Time
	capGuess int

	pending *dedup.Registry
	reads   singleflight.Group

	products  *resourceCache[[]entity.Product]
	sales     *resourceCache[[]entity.Sale]
	saleItems *expirable.LRU[string, []entity.SaleItem]

	log *zap.SugaredLogger
}

// NewClient creates a Client. Zero option values take defaults.
func NewClient(opts Options) *Client {
	def := DefaultTimeouts()
	t := opts.Timeouts
	if t.Write <= 0 {
		t.Write = def.Write
	}
	if t.Read <= 0 {
		t.Read = def.Read
	}
	if t.Lookup <= 0 {
		t.Lookup = def.Lookup
	}
	if t.Log <= 0 {
		t.Log = def.Log
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.SaleItemsSize <= 0 {
		opts.SaleItemsSize = 256
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CapacityGuess <= 0 {
		opts.CapacityGuess = 10000
	}

	return &Client{
		baseURL:   opts.BaseURL,
		http:      opts.HTTPClient,
		timeouts:  t,
		now:       opts.Now,
		capGuess:  opts.CapacityGuess,
		pending:   dedup.New(),
		products:  newResourceCache[[]entity.Product](opts.CacheTTL),
		sales:     newResourceCache[[]entity.Sale](opts.CacheTTL),
		saleItems: expirable.NewLRU[string, []entity.SaleItem](opts.SaleItemsSize, nil, opts.SaleItemsTTL),
		log:       zap.S().Named("sheets"),
	}
}

// PendingWrites is the number of writes currently in flight.
func (c *Client) PendingWrites() int {
	return c.pending.Len()
}

// Products adapts the client to repository.ProductRepository.
func (c *Client) Products() *ProductStore { return &ProductStore{c: c} }

// Sales adapts the client to repository.SaleRepository.
func (c *Client) Sales() *SaleStore { return &SaleStore{c: c} }

// Users adapts the client to repository.UserRepository.
func (c *Client) Users() *UserStore { return &UserStore{c: c} }

// Logs adapts the client to repository.ActivityLogRepository.
func (c *Client) Logs() *LogStore { return &LogStore{c: c} }
