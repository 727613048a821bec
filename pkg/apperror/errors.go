package apperror

import (
	"errors"
	"net/http"
	"strings"
)

// Kind is the machine-readable error code carried next to the HTTP status.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindDuplicateRequest Kind = "DUPLICATE_REQUEST"
	KindNetwork          Kind = "NETWORK_ERROR"
	KindTimeout          Kind = "TIMEOUT"
	KindServer           Kind = "SERVER_ERROR"
	KindBackend          Kind = "BACKEND_ERROR"
	KindBarcodeDuplicate Kind = "BARCODE_DUPLICATE"
	KindCapacityExceeded Kind = "CAPACITY_EXCEEDED"
	KindUpdateFailed     Kind = "UPDATE_FAILED"
	KindDeleteFailed     Kind = "DELETE_FAILED"
	KindSaleFailed       Kind = "SALE_FAILED"
	KindItemAddFailed    Kind = "ITEM_ADD_FAILED"
	KindOutOfStock       Kind = "OUT_OF_STOCK"
	KindStockLimit       Kind = "STOCK_LIMIT"
	KindDuplicateProduct Kind = "DUPLICATE_PRODUCT"
	KindNotFound         Kind = "NOT_FOUND"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindForbidden        Kind = "FORBIDDEN"
	KindBadRequest       Kind = "BAD_REQUEST"
	KindRateLimited      Kind = "TOO_MANY_REQUESTS"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// User-facing transport messages.
const (
	MsgTimeout = "Request took too long. Please check your connection and try again."
	MsgServer  = "Server error occurred. Please try again later."
	MsgNetwork = "Could not connect to the server. Please check your internet connection."
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"error"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid credentials"}
	ErrLoginNetwork       = &AppError{Code: http.StatusBadGateway, Kind: KindNetwork, Message: "Network error. Please check API connection."}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid token"}
	ErrSessionEnded       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Session has ended, please log in again"}
)

// statusFor maps a kind to the HTTP status the presentation layer answers with.
func statusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindDuplicateRequest, KindBarcodeDuplicate, KindDuplicateProduct, KindOutOfStock, KindStockLimit:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCapacityExceeded:
		return http.StatusInsufficientStorage
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// New creates an error of the given kind with the status that kind maps to.
func New(kind Kind, message string) *AppError {
	return &AppError{
		Code:    statusFor(kind),
		Kind:    kind,
		Message: message,
	}
}

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindInternal,
		Message: message,
	}
}

// NewValidationError creates a new validation error. The message lists every
// field failure so callers that only read the message still see all of them.
func NewValidationError(fieldErrors []FieldError) *AppError {
	msgs := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msgs = append(msgs, fe.Message)
	}
	message := "Validation failed"
	if len(msgs) > 0 {
		message = strings.Join(msgs, ", ")
	}
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: message,
		Errors:  fieldErrors,
	}
}

// NewDuplicateRequestError rejects a request whose twin is still in flight.
func NewDuplicateRequestError(message string) *AppError {
	if message == "" {
		message = "Request is already being processed"
	}
	return New(KindDuplicateRequest, message)
}

// NewTransportError creates a TIMEOUT, SERVER_ERROR or NETWORK_ERROR with its fixed message.
func NewTransportError(kind Kind) *AppError {
	switch kind {
	case KindTimeout:
		return New(KindTimeout, MsgTimeout)
	case KindServer:
		return New(KindServer, MsgServer)
	default:
		return New(KindNetwork, MsgNetwork)
	}
}

// NewBackendError wraps a success=false answer from the remote endpoint.
// An empty code falls back to def.
func NewBackendError(code string, message string, def Kind) *AppError {
	kind := Kind(strings.TrimSpace(code))
	if kind == "" {
		kind = def
	}
	if message == "" {
		message = "Operation failed"
	}
	return New(kind, message)
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return New(KindNotFound, resource+" not found")
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(kind Kind, message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    kind,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return New(KindBadRequest, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the machine code of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given machine code.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
