package request

// ResolvePrintRequest is the cashier's answer to "did the bill print?".
type ResolvePrintRequest struct {
	OK *bool `json:"ok" binding:"required"`
}
