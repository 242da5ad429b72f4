package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
	"supercrm/internal/numbering"
	"supercrm/internal/service"
	"supercrm/internal/tax/gst"
	"supercrm/internal/tax/tds"
)

// TaxHandler exposes the GST, TDS and numbering calculators. None of its
// endpoints touch storage.
type TaxHandler struct {
	sellerStateCode string
}

// NewTaxHandler creates a new TaxHandler. sellerStateCode is used when a
// request does not name the supplier's state.
func NewTaxHandler(sellerStateCode string) *TaxHandler {
	return &TaxHandler{sellerStateCode: sellerStateCode}
}

type gstRequest struct {
	TaxableValue    decimal.Decimal `json:"taxable_value" binding:"gte=0"`
	GSTRate         decimal.Decimal `json:"gst_rate" binding:"gst_rate"`
	BuyerStateCode  string          `json:"buyer_state_code" binding:"required,state_code"`
	SellerStateCode string          `json:"seller_state_code" binding:"omitempty,state_code"`
}

type gstLineRequest struct {
	TaxableValue decimal.Decimal `json:"taxable_value" binding:"gte=0"`
	GSTRate      decimal.Decimal `json:"gst_rate" binding:"gst_rate"`
}

type gstInvoiceRequest struct {
	Lines           []gstLineRequest `json:"lines" binding:"required,min=1,dive"`
	BuyerStateCode  string           `json:"buyer_state_code" binding:"required,state_code"`
	SellerStateCode string           `json:"seller_state_code" binding:"omitempty,state_code"`
}

type tdsRequest struct {
	Amount           decimal.Decimal  `json:"amount" binding:"gt=0"`
	Section          tds.Section      `json:"section" binding:"required"`
	PartyType        domain.PartyType `json:"party_type" binding:"omitempty,oneof=individual huf company firm other"`
	IsProfessional   bool             `json:"is_professional"`
	IsTechnical      bool             `json:"is_technical"`
	IsPlantMachinery bool             `json:"is_plant_machinery"`
	CumulativeAmount decimal.Decimal  `json:"cumulative_amount" binding:"gte=0"`
	HasPAN           *bool            `json:"has_pan" binding:"required"`
}

type tdsInvoiceRequest struct {
	InvoiceType domain.InvoiceType `json:"invoice_type" binding:"required,oneof=freelancer contractor vendor"`
	Amount      decimal.Decimal    `json:"amount" binding:"gt=0"`
	VendorType  domain.VendorType  `json:"vendor_type" binding:"omitempty,oneof=supplier service"`
	PartyType   domain.PartyType   `json:"party_type" binding:"omitempty,oneof=individual huf company firm other"`
	HasPAN      *bool              `json:"has_pan" binding:"required"`
}

func (h *TaxHandler) intraState(buyer, seller string) bool {
	if seller == "" {
		seller = h.sellerStateCode
	}
	return gst.IsIntraState(buyer, seller)
}

// CalculateGST handles POST /api/v1/tax/gst
// @Summary Calculate GST
// @Description Split GST on one taxable value into CGST and SGST or IGST
// @Tags tax
// @Accept json
// @Produce json
// @Param request body gstRequest true "Taxable value, rate and states"
// @Success 200 {object} APIResponse{data=gst.Result} "GST split"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/gst [post]
func (h *TaxHandler) CalculateGST(c *gin.Context) {
	var req gstRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	RespondOK(c, gst.Calculate(req.TaxableValue, req.GSTRate, h.intraState(req.BuyerStateCode, req.SellerStateCode)))
}

// CalculateInvoiceGST handles POST /api/v1/tax/gst/invoice
// @Summary Calculate invoice GST
// @Description Compute GST line by line and sum the components
// @Tags tax
// @Accept json
// @Produce json
// @Param request body gstInvoiceRequest true "Lines and states"
// @Success 200 {object} APIResponse{data=gst.InvoiceResult} "Invoice GST"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/gst/invoice [post]
func (h *TaxHandler) CalculateInvoiceGST(c *gin.Context) {
	var req gstInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	lines := make([]gst.TaxableLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = gst.TaxableLine{TaxableValue: l.TaxableValue, GSTRate: l.GSTRate}
	}
	RespondOK(c, gst.CalculateInvoice(lines, h.intraState(req.BuyerStateCode, req.SellerStateCode)))
}

// CalculateTDS handles POST /api/v1/tax/tds
// @Summary Calculate TDS
// @Description Apply the statutory section table including the aggregate threshold
// @Tags tax
// @Accept json
// @Produce json
// @Param request body tdsRequest true "Payment and section"
// @Success 200 {object} APIResponse{data=tds.Result} "TDS result"
// @Failure 400 {object} APIResponse "Invalid request or unknown section"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/tds [post]
func (h *TaxHandler) CalculateTDS(c *gin.Context) {
	var req tdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	partyType := req.PartyType
	if partyType == "" {
		partyType = domain.PartyIndividual
	}
	res, err := tds.Calculate(tds.Input{
		Amount:           req.Amount,
		Section:          tds.Section(strings.ToUpper(string(req.Section))),
		PartyType:        partyType,
		IsProfessional:   req.IsProfessional,
		IsTechnical:      req.IsTechnical,
		IsPlantMachinery: req.IsPlantMachinery,
		CumulativeAmount: req.CumulativeAmount,
		HasPAN:           *req.HasPAN,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// CalculateInvoiceTDS handles POST /api/v1/tax/tds/invoice
// @Summary Calculate invoice TDS
// @Description Withholding applied when an invoice is raised for a freelancer, contractor or vendor
// @Tags tax
// @Accept json
// @Produce json
// @Param request body tdsInvoiceRequest true "Invoice type and amount"
// @Success 200 {object} APIResponse{data=tds.Result} "TDS result"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/tds/invoice [post]
func (h *TaxHandler) CalculateInvoiceTDS(c *gin.Context) {
	var req tdsInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	partyType := req.PartyType
	if partyType == "" {
		partyType = domain.PartyIndividual
	}

	hasPAN := *req.HasPAN
	var res tds.Result
	switch req.InvoiceType {
	case domain.InvoiceTypeFreelancer:
		res = tds.ForFreelancerInvoice(req.Amount, hasPAN)
	case domain.InvoiceTypeContractor:
		res = tds.ForContractorInvoice(req.Amount, partyType, hasPAN)
	default:
		res = tds.ForVendorInvoice(req.Amount, req.VendorType, partyType, hasPAN)
	}
	RespondOK(c, res)
}

// TDSSections handles GET /api/v1/tax/tds/sections
// @Summary List TDS sections
// @Tags tax
// @Produce json
// @Success 200 {object} APIResponse "Supported sections"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/tds/sections [get]
func (h *TaxHandler) TDSSections(c *gin.Context) {
	type section struct {
		Section     tds.Section `json:"section"`
		Description string      `json:"description"`
	}
	out := make([]section, 0, len(tds.Sections()))
	for _, s := range tds.Sections() {
		out = append(out, section{Section: s, Description: tds.Description(s)})
	}
	RespondOK(c, out)
}

// LookupGSTIN handles GET /api/v1/tax/gstin/:gstin
// @Summary Look up a GSTIN
// @Tags tax
// @Produce json
// @Param gstin path string true "15-character GSTIN"
// @Success 200 {object} APIResponse "State, PAN and intra-state flag"
// @Failure 400 {object} APIResponse "Invalid GSTIN"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/gstin/{gstin} [get]
func (h *TaxHandler) LookupGSTIN(c *gin.Context) {
	gstin := strings.ToUpper(strings.TrimSpace(c.Param("gstin")))
	if !gst.ValidGSTIN(gstin) {
		HandleError(c, domain.ErrInvalidGSTIN)
		return
	}

	stateCode, _ := gst.StateCodeFromGSTIN(gstin)
	stateName, _ := gst.StateName(stateCode)
	pan, _ := gst.PANFromGSTIN(gstin)
	RespondOK(c, gin.H{
		"gstin":       gstin,
		"state_code":  stateCode,
		"state_name":  stateName,
		"pan":         pan,
		"intra_state": gst.IsIntraState(stateCode, h.sellerStateCode),
	})
}

// FinancialYear handles GET /api/v1/tax/financial-year?date=2024-07-15
// @Summary Financial year for a date
// @Tags tax
// @Produce json
// @Param date query string false "Date as YYYY-MM-DD, defaults to today in IST"
// @Success 200 {object} APIResponse "Financial year"
// @Failure 400 {object} APIResponse "Invalid date"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/financial-year [get]
func (h *TaxHandler) FinancialYear(c *gin.Context) {
	date := time.Now().In(service.IST)
	if q := c.Query("date"); q != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q, service.IST)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}
	RespondOK(c, gin.H{
		"date":           date.Format("2006-01-02"),
		"financial_year": numbering.FinancialYear(date),
	})
}

// ParseInvoiceNumber handles GET /api/v1/tax/invoice-number?number=INV/2024-25/00001
// @Summary Parse an invoice number
// @Tags tax
// @Produce json
// @Param number query string true "Invoice number, e.g. INV/2024-25/00001"
// @Success 200 {object} APIResponse "Prefix, financial year and sequence"
// @Failure 400 {object} APIResponse "Malformed number"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /tax/invoice-number [get]
func (h *TaxHandler) ParseInvoiceNumber(c *gin.Context) {
	number := c.Query("number")
	n, ok := numbering.Parse(number)
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_INVOICE_NUMBER", "invoice number must look like PREFIX/YYYY-YY/NNNNN")
		return
	}
	RespondOK(c, gin.H{
		"number":         number,
		"prefix":         n.Prefix,
		"financial_year": n.FinancialYear,
		"sequence":       n.Sequence,
		"valid":          numbering.Valid(number),
	})
}
