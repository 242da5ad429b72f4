package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"supercrm/internal/domain"
	"supercrm/internal/logger"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrCounterpartyNotFound):
		return http.StatusNotFound, "COUNTERPARTY_NOT_FOUND", "counterparty not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInsufficientRole):
		return http.StatusForbidden, "INSUFFICIENT_ROLE", "insufficient role for this action"
	case errors.Is(err, domain.ErrCounterpartyMismatch):
		return http.StatusUnprocessableEntity, "COUNTERPARTY_MISMATCH", "counterparty kind does not match invoice type"
	case errors.Is(err, domain.ErrDuplicateInvoiceNumber):
		return http.StatusConflict, "DUPLICATE_INVOICE_NUMBER", "invoice number already issued; retry"
	case errors.Is(err, domain.ErrSequenceExhausted):
		return http.StatusConflict, "SEQUENCE_EXHAUSTED", "invoice numbers exhausted for this financial year"
	case errors.Is(err, domain.ErrNoLineItems):
		return http.StatusBadRequest, "NO_LINE_ITEMS", "invoice requires at least one line item"
	case errors.Is(err, domain.ErrInvalidInvoiceType):
		return http.StatusBadRequest, "INVALID_INVOICE_TYPE", "invalid invoice type; allowed: client, freelancer, contractor, vendor"
	case errors.Is(err, domain.ErrInvalidCounterpartyKind):
		return http.StatusBadRequest, "INVALID_COUNTERPARTY_KIND", "invalid counterparty kind; allowed: contact, freelancer, contractor, vendor"
	case errors.Is(err, domain.ErrInvalidPartyType):
		return http.StatusBadRequest, "INVALID_PARTY_TYPE", "invalid party type; allowed: individual, huf, company, firm, other"
	case errors.Is(err, domain.ErrInvalidVendorType):
		return http.StatusBadRequest, "INVALID_VENDOR_TYPE", "invalid vendor type; allowed: supplier, service"
	case errors.Is(err, domain.ErrInvalidGSTRate):
		return http.StatusBadRequest, "INVALID_GST_RATE", "gst rate must be one of 0, 5, 12, 18, 28"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "INVALID_AMOUNT", "invalid amount"
	case errors.Is(err, domain.ErrInvalidStateCode):
		return http.StatusBadRequest, "INVALID_STATE_CODE", "invalid GST state code"
	case errors.Is(err, domain.ErrInvalidGSTIN):
		return http.StatusBadRequest, "INVALID_GSTIN", "invalid GSTIN"
	case errors.Is(err, domain.ErrInvalidPAN):
		return http.StatusBadRequest, "INVALID_PAN", "invalid PAN"
	case errors.Is(err, domain.ErrUnknownTDSSection):
		return http.StatusBadRequest, "UNKNOWN_TDS_SECTION", "unknown TDS section; allowed: 194A, 194C, 194H, 194I, 194J"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict, "INVALID_STATUS_TRANSITION", "invoice cannot move to the requested status"
	case errors.Is(err, domain.ErrInvoiceNotDeletable):
		return http.StatusConflict, "INVOICE_NOT_DELETABLE", "only draft invoices can be deleted; cancel instead"
	case errors.Is(err, domain.ErrOverpayment):
		return http.StatusUnprocessableEntity, "OVERPAYMENT", "payment exceeds amount due"
	case errors.Is(err, domain.ErrRecipientEmailMissing):
		return http.StatusUnprocessableEntity, "RECIPIENT_EMAIL_MISSING", "counterparty has no email address"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	}
	RespondError(c, status, code, msg)
}
