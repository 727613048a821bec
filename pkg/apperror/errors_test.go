package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidationErrorJoinsMessages(t *testing.T) {
	err := NewValidationError([]FieldError{
		{Field: "product_name", Message: "Product name is required"},
		{Field: "quantity", Message: "Valid quantity is required"},
	})

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	assert.Equal(t, "Product name is required, Valid quantity is required", err.Message)
	assert.Len(t, err.Errors, 2)
}

func TestNewBackendErrorDefaultsKind(t *testing.T) {
	err := NewBackendError("", "Sheet is locked", KindUpdateFailed)
	assert.Equal(t, KindUpdateFailed, err.Kind)
	assert.Equal(t, "Sheet is locked", err.Message)

	dup := NewBackendError("BARCODE_DUPLICATE", "Barcode already used", KindUpdateFailed)
	assert.Equal(t, KindBarcodeDuplicate, dup.Kind)
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestTransportErrorMessages(t *testing.T) {
	assert.Equal(t, MsgTimeout, NewTransportError(KindTimeout).Message)
	assert.Equal(t, MsgServer, NewTransportError(KindServer).Message)
	assert.Equal(t, MsgNetwork, NewTransportError(KindNetwork).Message)
	assert.Equal(t, http.StatusGatewayTimeout, NewTransportError(KindTimeout).Code)
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", NewDuplicateRequestError("Sale is already being processed"))

	assert.True(t, IsKind(wrapped, KindDuplicateRequest))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
