package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"supercrm/internal/domain"
	"supercrm/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{fmt.Errorf("invoice.Send: %w", domain.ErrInvoiceNotFound), http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInsufficientRole, http.StatusForbidden, "INSUFFICIENT_ROLE"},
		{domain.ErrDuplicateInvoiceNumber, http.StatusConflict, "DUPLICATE_INVOICE_NUMBER"},
		{domain.ErrInvalidGSTRate, http.StatusBadRequest, "INVALID_GST_RATE"},
		{domain.ErrOverpayment, http.StatusUnprocessableEntity, "OVERPAYMENT"},
		{domain.ErrInvalidCounterpartyKind, http.StatusBadRequest, "INVALID_COUNTERPARTY_KIND"},
		{domain.ErrInvalidPartyType, http.StatusBadRequest, "INVALID_PARTY_TYPE"},
		{domain.ErrInvalidVendorType, http.StatusBadRequest, "INVALID_VENDOR_TYPE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestHandleError_WritesEnvelope(t *testing.T) {
	c, w := newContext(http.MethodGet, "/api/v1/invoices/x", nil)
	handler.HandleError(c, domain.ErrInvalidStatusTransition)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", env.Error.Code)
}
