package service

import (
	"strings"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/catalog"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"go.uber.org/zap"
)

// minBarcodeLength is the shortest code worth looking up.
const minBarcodeLength = 3

// ScanResult is the outcome of one processed barcode.
type ScanResult struct {
	Barcode string           `json:"barcode"`
	Found   bool             `json:"found"`
	Product *entity.Product  `json:"product,omitempty"`
	Item    *entity.CartItem `json:"item,omitempty"`
	Matches []entity.Product `json:"matches,omitempty"`
	Message string           `json:"message"`
	Error   string           `json:"error,omitempty"`
}

// KeyInputResult reports what the scanner did with a burst of keys.
type KeyInputResult struct {
	Accepted bool `json:"accepted"`
	Buffered int  `json:"buffered"`
	Armed    bool `json:"armed"`
}

// scanBuffer accumulates keystrokes from a keyboard-wedge scanner.
type scanBuffer struct {
	buf   string
	last  time.Time
	timer timer
	gen   uint64
	// result of the last code processed from the buffer
	result *ScanResult
}

func (b *scanBuffer) reset() {
	b.buf = ""
	b.disarm()
}

func (b *scanBuffer) disarm() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
}

// KeyInput feeds characters typed at time at into the scanner. Scanners
// type fast: a pause longer than the scan gap starts a new code. Once the
// buffer is long enough, a short idle period ends the code and it is
// looked up.
func (t *Terminal) KeyInput(chars string, at time.Time) KeyInputResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.mode != enum.ScanModeScan {
		return KeyInputResult{}
	}

	opts := t.svc.opts
	sb := &t.scanner
	if !sb.last.IsZero() && at.Sub(sb.last) > opts.ScanGap {
		sb.reset()
	}
	sb.last = at
	sb.buf += chars

	res := KeyInputResult{Accepted: true, Buffered: len(sb.buf)}
	if len(sb.buf) < opts.ScanMinLength {
		return res
	}

	sb.disarm()
	gen := sb.gen
	sb.timer = t.svc.afterFunc(opts.ScanIdle, func() { t.flushScan(gen) })
	res.Armed = true
	return res
}

func (t *Terminal) flushScan(gen uint64) {
	t.mu.Lock()
	sb := &t.scanner
	if t.closed || sb.gen != gen {
		t.mu.Unlock()
		return
	}
	code := strings.TrimSpace(sb.buf)
	sb.buf = ""
	sb.timer = nil
	t.mu.Unlock()

	t.ProcessBarcode(code)
}

// LastScan returns the result of the most recent barcode processed.
func (t *Terminal) LastScan() *ScanResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scanner.result
}

// ProcessBarcode looks code up and adds the product to the cart. Only
// digits are compared. On a miss the terminal drops into search mode with
// the code as the search term. Codes shorter than three characters are
// ignored and give nil.
func (t *Terminal) ProcessBarcode(code string) *ScanResult {
	code = strings.TrimSpace(code)
	if len(code) < minBarcodeLength {
		return nil
	}
	cleaned := utils.DigitsOnly(code)

	t.mu.Lock()
	defer t.mu.Unlock()

	res := &ScanResult{Barcode: cleaned}
	t.scanner.result = res

	if p, ok := catalog.FindByBarcode(t.products, cleaned); ok {
		res.Found = true
		res.Product = &p
		item, err := t.cart.Add(p)
		if err != nil {
			res.Error = err.Error()
			res.Message = err.Error()
			return res
		}
		res.Item = item
		res.Message = "Product found: " + p.Name
		return res
	}

	t.setModeLocked(enum.ScanModeSearch)
	t.searchTerm = cleaned
	res.Matches = t.searchLocked(cleaned)
	res.Message = "Product not found for barcode: " + cleaned
	zap.S().Infow("barcode not found", "barcode", cleaned, "cashier", t.cashier)
	return res
}
