package handler_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"supercrm/internal/domain"
	"supercrm/internal/export"
	"supercrm/internal/handler"
	"supercrm/internal/service"
	"supercrm/mocks"
)

func newInvoiceHandler() (*handler.InvoiceHandler, *mocks.MockInvoiceService) {
	mockSvc := new(mocks.MockInvoiceService)
	return handler.NewInvoiceHandler(mockSvc), mockSvc
}

func invoiceBody(rate interface{}) map[string]interface{} {
	return map[string]interface{}{
		"invoice_type":    "client",
		"counterparty_id": uuid.New().String(),
		"items": []map[string]interface{}{
			{"description": "Consulting", "hsn_sac": "998311", "quantity": 2, "unit_price": "5000.00", "gst_rate": rate},
		},
	}
}

func TestInvoiceHandler_Create_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	userID := uuid.New()

	detail := &service.InvoiceDetail{Invoice: &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV/2024-25/00012",
		Status:        domain.InvoiceStatusDraft,
	}}
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateInvoiceInput) bool {
		return in.CreatedBy == userID &&
			len(in.Items) == 1 &&
			in.Items[0].UnitPrice.Equal(decimal.NewFromInt(5000)) &&
			in.Items[0].GSTRate.Equal(decimal.NewFromInt(18))
	})).Return(detail, nil)

	c, w := newContext(http.MethodPost, "/api/v1/invoices", invoiceBody(18))
	setAuthContext(c, userID, "accountant")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got service.InvoiceDetail
	decodeData(t, w, &got)
	assert.Equal(t, "INV/2024-25/00012", got.Invoice.InvoiceNumber)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_Create_ValidationErrors(t *testing.T) {
	noItems := invoiceBody(18)
	noItems["items"] = []interface{}{}

	badType := invoiceBody(18)
	badType["invoice_type"] = "quote"

	badPOS := invoiceBody(18)
	badPOS["place_of_supply"] = "99"

	zeroQty := invoiceBody(18)
	zeroQty["items"] = []map[string]interface{}{{"description": "x", "quantity": 0, "unit_price": 10, "gst_rate": 18}}

	tests := []struct {
		name string
		body interface{}
	}{
		{"non-standard rate", invoiceBody(7)},
		{"no items", noItems},
		{"unknown type", badType},
		{"unknown place of supply", badPOS},
		{"zero quantity", zeroQty},
		{"malformed json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newInvoiceHandler()
			c, w := newContext(http.MethodPost, "/api/v1/invoices", tt.body)
			setAuthContext(c, uuid.New(), "admin")

			h.Create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)
			mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceHandler_Create_MissingUser(t *testing.T) {
	h, _ := newInvoiceHandler()
	c, w := newContext(http.MethodPost, "/api/v1/invoices", invoiceBody(18))

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvoiceHandler_Create_DomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
		name string
	}{
		{domain.ErrCounterpartyMismatch, http.StatusUnprocessableEntity, "COUNTERPARTY_MISMATCH"},
		{domain.ErrCounterpartyNotFound, http.StatusNotFound, "COUNTERPARTY_NOT_FOUND"},
		{domain.ErrSequenceExhausted, http.StatusConflict, "SEQUENCE_EXHAUSTED"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newInvoiceHandler()
			mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := newContext(http.MethodPost, "/api/v1/invoices", invoiceBody(18))
			setAuthContext(c, uuid.New(), "admin")
			h.Create(c)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.name, decode(t, w).Error.Code)
		})
	}
}

func TestInvoiceHandler_Preview(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("Preview", mock.Anything, mock.Anything).Return(&service.InvoiceDetail{Invoice: &domain.Invoice{}}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/invoices/preview", invoiceBody(0))
	setAuthContext(c, uuid.New(), "viewer")
	h.Preview(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_List(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	filter := domain.InvoiceFilter{
		InvoiceType:   domain.InvoiceTypeVendor,
		Status:        domain.InvoiceStatusOverdue,
		FinancialYear: "2024-25",
	}
	mockSvc.On("List", mock.Anything, filter, 40, 20).Return([]domain.Invoice{{InvoiceNumber: "FVE/2024-25/00001"}}, 41, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices?invoice_type=vendor&status=overdue&financial_year=2024-25&offset=40&limit=500", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, handler.PagMeta{Total: 41, Offset: 40, Limit: 20}, *env.Meta)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_List_InvalidType(t *testing.T) {
	h, _ := newInvoiceHandler()
	c, w := newContext(http.MethodGet, "/api/v1/invoices?invoice_type=estimate", nil)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INVOICE_TYPE", decode(t, w).Error.Code)
}

func TestInvoiceHandler_GetByID(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/"+id.String(), nil)
	withID(c, id.String())
	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INVOICE_NOT_FOUND", decode(t, w).Error.Code)

	c, w = newContext(http.MethodGet, "/api/v1/invoices/nope", nil)
	withID(c, "nope")
	h.GetByID(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_GetByNumber(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("GetByNumber", mock.Anything, "INV/2024-25/00001").
		Return(&service.InvoiceDetail{Invoice: &domain.Invoice{InvoiceNumber: "INV/2024-25/00001"}}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/by-number?number=INV%2F2024-25%2F00001", nil)
	h.GetByNumber(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInvoiceHandler_Transitions(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name   string
		method string
		call   func(h *handler.InvoiceHandler) func(*gin.Context)
		err    error
		want   int
	}{
		{"send", "Send", func(h *handler.InvoiceHandler) func(*gin.Context) { return h.Send }, nil, http.StatusOK},
		{"send twice", "Send", func(h *handler.InvoiceHandler) func(*gin.Context) { return h.Send }, domain.ErrInvalidStatusTransition, http.StatusConflict},
		{"send without email", "Send", func(h *handler.InvoiceHandler) func(*gin.Context) { return h.Send }, domain.ErrRecipientEmailMissing, http.StatusUnprocessableEntity},
		{"viewed", "MarkViewed", func(h *handler.InvoiceHandler) func(*gin.Context) { return h.MarkViewed }, nil, http.StatusOK},
		{"cancel paid", "Cancel", func(h *handler.InvoiceHandler) func(*gin.Context) { return h.Cancel }, domain.ErrInvalidStatusTransition, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mockSvc := newInvoiceHandler()
			if tt.err != nil {
				mockSvc.On(tt.method, mock.Anything, id).Return(nil, tt.err)
			} else {
				mockSvc.On(tt.method, mock.Anything, id).Return(&domain.Invoice{ID: id}, nil)
			}

			c, w := newContext(http.MethodPost, "/api/v1/invoices/"+id.String(), nil)
			withID(c, id.String())
			tt.call(h)(c)

			assert.Equal(t, tt.want, w.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestInvoiceHandler_RecordPayment(t *testing.T) {
	id := uuid.New()

	h, mockSvc := newInvoiceHandler()
	mockSvc.On("RecordPayment", mock.Anything, id, mock.MatchedBy(func(in service.RecordPaymentInput) bool {
		return in.Amount.Equal(decimal.RequireFromString("2500.50"))
	})).Return(&domain.Invoice{ID: id, Status: domain.InvoiceStatusPartial}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/invoices/"+id.String()+"/payments", `{"amount":"2500.50"}`)
	withID(c, id.String())
	h.RecordPayment(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newContext(http.MethodPost, "/api/v1/invoices/"+id.String()+"/payments", `{"amount":0}`)
	withID(c, id.String())
	h.RecordPayment(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockSvc.AssertNumberOfCalls(t, "RecordPayment", 1)
}

func TestInvoiceHandler_Delete(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("Delete", mock.Anything, id).Return(domain.ErrInvoiceNotDeletable)

	c, w := newContext(http.MethodDelete, "/api/v1/invoices/"+id.String(), nil)
	withID(c, id.String())
	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVOICE_NOT_DELETABLE", decode(t, w).Error.Code)
}

func TestInvoiceHandler_DownloadPDF(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("RenderPDF", mock.Anything, id).Return([]byte("%PDF-1.3 test"), "INV-2024-25-00012.pdf", nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/"+id.String()+"/pdf", nil)
	withID(c, id.String())
	h.DownloadPDF(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="INV-2024-25-00012.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 test", w.Body.String())
}

func TestInvoiceHandler_DocumentURL(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("DocumentURL", mock.Anything, id).Return("https://signed.example/x.pdf", nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/"+id.String()+"/document-url", nil)
	withID(c, id.String())
	h.DocumentURL(c)

	var got map[string]string
	decodeData(t, w, &got)
	assert.Equal(t, "https://signed.example/x.pdf", got["url"])
}

func exportInvoices() []domain.Invoice {
	return []domain.Invoice{{
		InvoiceNumber: "INV/2024-25/00001",
		InvoiceType:   domain.InvoiceTypeClient,
		FinancialYear: "2024-25",
		InvoiceDate:   time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.NewFromInt(118),
	}}
}

func TestInvoiceHandler_Export_CSV(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("ListByFinancialYear", mock.Anything, "2024-25").Return(exportInvoices(), nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/export?financial_year=2024-25", nil)
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="invoices_2024-25_`)
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), export.BOM))
	assert.Contains(t, w.Body.String(), "INV/2024-25/00001")
}

func TestInvoiceHandler_Export_XLSX(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("ListByFinancialYear", mock.Anything, "2023-24").Return(exportInvoices(), nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/export?financial_year=2023-24&format=xlsx", nil)
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestInvoiceHandler_Export_BadFormat(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	c, w := newContext(http.MethodGet, "/api/v1/invoices/export?format=pdf", nil)
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ListByFinancialYear", mock.Anything, mock.Anything)
}
