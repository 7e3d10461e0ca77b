package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"client error keeps its message", New(ErrInvalidInput, "Quantity must be a positive integer"), "Quantity must be a positive integer"},
		{"client error without message", New(ErrDuplicateRequest, ""), "duplicate request"},
		{"integrity detail is hidden", Newf(ErrIntegrityViolation, "item %d: quantity on hand is %d", 7, -5), "ledger integrity violation"},
		{"overflow detail is hidden", Newf(ErrQuantityOverflow, "transaction %d overflows", 3), "ledger quantity overflow"},
		{"storage hint passes through", Wrap(ErrStorageUnavailable, errors.New("dial tcp: refused"), "storage is unavailable"), "storage is unavailable"},
		{"plain error", errors.New("boom"), "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(New(ErrUnknownItem, "")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(New(ErrUnauthorized, "")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(New(ErrDuplicateRequest, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New(ErrIntegrityViolation, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New(ErrQuantityOverflow, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New(ErrStorageUnavailable, "")))
}
