package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/application/service"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/request"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/presentation/http/dto/response"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
)

// MsgTerminalNotOpen is returned for reception calls made before mount.
const MsgTerminalNotOpen = "Reception is not open. Load the reception page first."

// ReceptionHandler handles the checkout terminal of the signed-in cashier.
type ReceptionHandler struct {
	receptionService *service.ReceptionService
}

// NewReceptionHandler creates a new reception handler
func NewReceptionHandler(receptionService *service.ReceptionService) *ReceptionHandler {
	return &ReceptionHandler{receptionService: receptionService}
}

// terminal returns the cashier's open terminal, or writes an error.
func (h *ReceptionHandler) terminal(c *gin.Context) (*service.Terminal, bool) {
	t, ok := h.receptionService.Terminal(GetUsername(c))
	if !ok {
		response.Error(c, apperror.NewBadRequestError(MsgTerminalNotOpen))
		return nil, false
	}
	return t, true
}

func cartIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		response.BadRequest(c, "Invalid cart index")
		return 0, false
	}
	return index, true
}

// Mount opens the terminal and loads products, order number and today's
// transactions.
// @Summary Mount reception
// @Tags reception
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /reception/mount [post]
func (h *ReceptionHandler) Mount(c *gin.Context) {
	t, err := h.receptionService.Open(GetSession(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	state := t.Mount(c.Request.Context())
	response.OK(c, "Reception ready", gin.H{
		"state":        state,
		"products":     t.Products(),
		"transactions": t.RecentTransactions(),
	})
}

// Close tears the terminal down.
func (h *ReceptionHandler) Close(c *gin.Context) {
	h.receptionService.Close(GetUsername(c))
	response.OK(c, "Reception closed", nil)
}

// State returns the terminal snapshot.
func (h *ReceptionHandler) State(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	response.OK(c, "Reception state retrieved", t.State())
}

// Products returns the terminal's product snapshot, reloading it on ?refresh=true.
func (h *ReceptionHandler) Products(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.TransactionsRequest
	_ = c.ShouldBindQuery(&req)
	if req.Refresh {
		response.OK(c, "Products reloaded", t.LoadProducts(c.Request.Context(), true))
		return
	}
	response.OK(c, "Products retrieved", t.Products())
}

// SetMode switches between scanning and searching.
func (h *ReceptionHandler) SetMode(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	if enum.ParseScanMode(req.Mode) == enum.ScanModeSearch {
		t.SetSearchMode()
	} else {
		t.SetScanMode()
	}
	response.OK(c, "Mode changed", gin.H{"mode": t.Mode()})
}

// KeyInput feeds scanner keystrokes to the terminal.
func (h *ReceptionHandler) KeyInput(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.KeyInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	at := time.Now()
	if req.At != nil {
		at = *req.At
	}
	response.OK(c, "Input received", gin.H{
		"input":     t.KeyInput(req.Chars, at),
		"last_scan": t.LastScan(),
	})
}

// Scan processes a whole barcode.
func (h *ReceptionHandler) Scan(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	res := t.ProcessBarcode(req.Barcode)
	if res == nil {
		response.BadRequest(c, "Barcode is too short")
		return
	}
	response.OK(c, res.Message, gin.H{"scan": res, "state": t.State()})
}

// Search filters the product snapshot.
func (h *ReceptionHandler) Search(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.SearchRequest
	_ = c.ShouldBindQuery(&req)
	response.OK(c, "Products found", t.SearchProducts(req.Term))
}

// AddToCart adds one unit of a product.
func (h *ReceptionHandler) AddToCart(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	item, err := t.AddToCart(req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Added to cart", gin.H{"item": item, "state": t.State()})
}

// UpdateQuantity moves a cart line's quantity.
func (h *ReceptionHandler) UpdateQuantity(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	removed, err := t.UpdateQuantity(*req.Index, req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart updated", gin.H{"removed": removed, "state": t.State()})
}

// RemoveFromCart drops a cart line.
func (h *ReceptionHandler) RemoveFromCart(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	index, ok := cartIndex(c)
	if !ok {
		return
	}

	item, err := t.RemoveFromCart(index)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Removed from cart", gin.H{"item": item, "state": t.State()})
}

// ClearCart starts the sale over.
func (h *ReceptionHandler) ClearCart(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	t.ClearCart()
	response.OK(c, "Cart cleared", t.State())
}

// SetTax sets the tax or moves it by delta.
func (h *ReceptionHandler) SetTax(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.TaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	switch {
	case req.Value != nil:
		response.OK(c, "Tax updated", t.SetTax(*req.Value))
	case req.Delta != nil:
		response.OK(c, "Tax updated", t.AdjustTax(*req.Delta))
	default:
		response.BadRequest(c, "value or delta is required")
	}
}

// SetPayment sets the payment method and amount paid.
func (h *ReceptionHandler) SetPayment(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	if req.Method != "" {
		t.SetPaymentMethod(enum.PaymentMethod(req.Method))
	}
	if req.AmountPaid != nil {
		t.SetAmountPaid(*req.AmountPaid)
	}
	response.OK(c, "Payment updated", t.Totals())
}

// SetCustomer names the customer.
func (h *ReceptionHandler) SetCustomer(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}
	t.SetCustomerName(req.Name)
	response.OK(c, "Customer updated", gin.H{"customer_name": req.Name})
}

// Checkout completes the sale. The sheet writes finish after the response.
// @Summary Checkout
// @Tags reception
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /reception/checkout [post]
func (h *ReceptionHandler) Checkout(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}

	result, err := t.Checkout(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale completed successfully", gin.H{
		"sale":       result.Sale,
		"receipt":    result.Receipt,
		"print":      result.Print,
		"persisting": result.Task != nil,
		"state":      t.State(),
	})
}

// Transactions lists today's sales.
func (h *ReceptionHandler) Transactions(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.TransactionsRequest
	_ = c.ShouldBindQuery(&req)
	response.OK(c, "Transactions retrieved", t.Transactions(c.Request.Context(), req.Refresh))
}

// Reprint prints a stored sale again.
func (h *ReceptionHandler) Reprint(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}

	receipt, surface, err := t.Reprint(c.Request.Context(), c.Param("order"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Bill sent to printer", gin.H{"receipt": receipt, "surface": surface})
}

// Receipt renders a stored sale as a printable page.
func (h *ReceptionHandler) Receipt(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}

	page, err := t.ReceiptHTML(c.Request.Context(), c.Param("order"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.HTML(c, page)
}

// Prints lists the terminal's print confirmations.
func (h *ReceptionHandler) Prints(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	response.OK(c, "Print jobs retrieved", t.Prints())
}

// ConfirmPrint records that the printer finished a bill.
func (h *ReceptionHandler) ConfirmPrint(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}

	job, err := t.ConfirmPrint(c.Param("order"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Print confirmed", job)
}

// ResolvePrint records the cashier's answer for a bill nobody confirmed.
func (h *ReceptionHandler) ResolvePrint(c *gin.Context) {
	t, ok := h.terminal(c)
	if !ok {
		return
	}
	var req request.ResolvePrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindError(err))
		return
	}

	job, err := t.ResolvePrint(c.Param("order"), *req.OK)
	if err != nil {
		response.Error(c, err)
		return
	}
	msg := "Print confirmed"
	if !*req.OK {
		msg = service.MsgPrintMayHaveFailed
	}
	response.OK(c, msg, job)
}
