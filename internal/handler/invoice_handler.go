package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"supercrm/internal/domain"
	"supercrm/internal/export"
	"supercrm/internal/middleware"
	"supercrm/internal/numbering"
	"supercrm/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	now            func() time.Time
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		now:            func() time.Time { return time.Now().In(service.IST) },
	}
}

// Create handles POST /api/v1/invoices
// @Summary Create an invoice
// @Description Assign the next number for the financial year, compute GST and TDS, and store the invoice with its line items
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body service.CreateInvoiceInput true "Invoice details"
// @Success 201 {object} APIResponse{data=service.InvoiceDetail} "Invoice created"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 403 {object} APIResponse "Insufficient role"
// @Failure 404 {object} APIResponse "Counterparty not found"
// @Failure 409 {object} APIResponse "Sequence exhausted or duplicate number"
// @Failure 422 {object} APIResponse "Counterparty kind does not match invoice type"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	input, ok := h.bindInvoice(c)
	if !ok {
		return
	}

	detail, err := h.invoiceService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, detail)
}

// Preview handles POST /api/v1/invoices/preview
// @Summary Preview an invoice
// @Description Compute taxes and totals without assigning a number or storing anything
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body service.CreateInvoiceInput true "Invoice details"
// @Success 200 {object} APIResponse{data=service.InvoiceDetail} "Computed invoice"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Counterparty not found"
// @Security BearerAuth
// @Router /invoices/preview [post]
func (h *InvoiceHandler) Preview(c *gin.Context) {
	input, ok := h.bindInvoice(c)
	if !ok {
		return
	}

	detail, err := h.invoiceService.Preview(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

func (h *InvoiceHandler) bindInvoice(c *gin.Context) (service.CreateInvoiceInput, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return service.CreateInvoiceInput{}, false
	}

	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return service.CreateInvoiceInput{}, false
	}
	input.CreatedBy = userID
	return input, true
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param invoice_type query string false "client, freelancer, contractor or vendor"
// @Param status query string false "Invoice status"
// @Param financial_year query string false "Financial year, e.g. 2024-25"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Invoice,meta=PagMeta} "List of invoices"
// @Failure 400 {object} APIResponse "Invalid invoice type"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	filter := domain.InvoiceFilter{
		InvoiceType:   domain.InvoiceType(c.Query("invoice_type")),
		Status:        domain.InvoiceStatus(c.Query("status")),
		FinancialYear: c.Query("financial_year"),
	}
	if filter.InvoiceType != "" && !domain.ValidInvoiceTypes[filter.InvoiceType] {
		HandleError(c, domain.ErrInvalidInvoiceType)
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get invoice by ID
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse{data=service.InvoiceDetail} "Invoice with line items"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	detail, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// GetByNumber handles GET /api/v1/invoices/by-number?number=INV/2024-25/00001
// @Summary Get invoice by number
// @Tags invoices
// @Produce json
// @Param number query string true "Invoice number, e.g. INV/2024-25/00001"
// @Success 200 {object} APIResponse{data=service.InvoiceDetail} "Invoice with line items"
// @Failure 400 {object} APIResponse "Missing number"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/by-number [get]
func (h *InvoiceHandler) GetByNumber(c *gin.Context) {
	number := c.Query("number")
	if number == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "number is required")
		return
	}

	detail, err := h.invoiceService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, detail)
}

// Send handles POST /api/v1/invoices/:id/send
// @Summary Send an invoice
// @Description Render the PDF, archive it and email it to the counterparty
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Invoice} "Invoice sent"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 403 {object} APIResponse "Insufficient role"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Failure 409 {object} APIResponse "Invoice is not a draft"
// @Failure 422 {object} APIResponse "Counterparty has no email"
// @Security BearerAuth
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.transition(c, h.invoiceService.Send)
}

// MarkViewed handles POST /api/v1/invoices/:id/viewed
// @Summary Mark an invoice viewed
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Invoice} "Invoice viewed"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 403 {object} APIResponse "Insufficient role"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Failure 409 {object} APIResponse "Invalid status transition"
// @Security BearerAuth
// @Router /invoices/{id}/viewed [post]
func (h *InvoiceHandler) MarkViewed(c *gin.Context) {
	h.transition(c, h.invoiceService.MarkViewed)
}

// Cancel handles POST /api/v1/invoices/:id/cancel
// @Summary Cancel an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Invoice} "Invoice cancelled"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 403 {object} APIResponse "Insufficient role"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Failure 409 {object} APIResponse "Invalid status transition"
// @Security BearerAuth
// @Router /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.transition(c, h.invoiceService.Cancel)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	inv, err := fn(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
// @Summary Record a payment
// @Description Apply a payment against the amount due; the invoice becomes paid when nothing is left
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param request body service.RecordPaymentInput true "Payment"
// @Success 200 {object} APIResponse{data=domain.Invoice} "Payment recorded"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 403 {object} APIResponse "Insufficient role"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Failure 409 {object} APIResponse "Invoice cannot take payments"
// @Failure 422 {object} APIResponse "Payment exceeds amount due"
// @Security BearerAuth
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	var input service.RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "amount must be greater than zero")
		return
	}

	inv, err := h.invoiceService.RecordPayment(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete a draft invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse "Invoice deleted"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 403 {object} APIResponse "Insufficient role"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Failure 409 {object} APIResponse "Invoice is not a draft"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// DownloadPDF handles GET /api/v1/invoices/:id/pdf
// @Summary Download invoice PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {file} binary "Invoice PDF"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	data, name, err := h.invoiceService.RenderPDF(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", data)
}

// DocumentURL handles GET /api/v1/invoices/:id/document-url
// @Summary Get archived PDF URL
// @Description Presigned URL for the PDF archived when the invoice was sent
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse "Presigned URL"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice or document not found"
// @Security BearerAuth
// @Router /invoices/{id}/document-url [get]
func (h *InvoiceHandler) DocumentURL(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	url, err := h.invoiceService.DocumentURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Export handles GET /api/v1/invoices/export?financial_year=2024-25&format=csv|xlsx
// @Summary Export invoices
// @Description Export a financial year of invoices as CSV or XLSX
// @Tags invoices
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param financial_year query string false "Financial year, defaults to the current one"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} binary "Export file"
// @Failure 400 {object} APIResponse "Invalid format"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	fy := c.DefaultQuery("financial_year", numbering.FinancialYear(h.now()))
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	invoices, err := h.invoiceService.ListByFinancialYear(c.Request.Context(), fy)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = xlsxContentType
		err = export.WriteXLSX(&buf, invoices)
	} else {
		err = export.WriteCSV(&buf, invoices)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(fy, format, h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("X-Total-Count", strconv.Itoa(len(invoices)))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func parseInvoiceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
