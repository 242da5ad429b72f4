package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supercrm/internal/handler"
	"supercrm/internal/tax/gst"
	"supercrm/internal/tax/tds"
)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestTaxHandler_CalculateGST(t *testing.T) {
	h := handler.NewTaxHandler("29")

	t.Run("intra-state uses seller default", func(t *testing.T) {
		c, w := newContext(http.MethodPost, "/api/v1/tax/gst",
			`{"taxable_value":"10000","gst_rate":18,"buyer_state_code":"29"}`)
		h.CalculateGST(c)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res gst.Result
		decodeData(t, w, &res)
		assert.Equal(t, gst.TypeCGSTSGST, res.GSTType)
		assertDecimal(t, "900", res.CGSTAmount)
		assertDecimal(t, "900", res.SGSTAmount)
		assertDecimal(t, "0", res.IGSTAmount)
		assertDecimal(t, "11800", res.TotalAmount)
	})

	t.Run("inter-state", func(t *testing.T) {
		c, w := newContext(http.MethodPost, "/api/v1/tax/gst",
			`{"taxable_value":"10000","gst_rate":18,"buyer_state_code":"27"}`)
		h.CalculateGST(c)

		var res gst.Result
		decodeData(t, w, &res)
		assert.Equal(t, gst.TypeIGST, res.GSTType)
		assertDecimal(t, "1800", res.IGSTAmount)
	})

	t.Run("explicit seller state", func(t *testing.T) {
		c, w := newContext(http.MethodPost, "/api/v1/tax/gst",
			`{"taxable_value":"10000","gst_rate":5,"buyer_state_code":"27","seller_state_code":"27"}`)
		h.CalculateGST(c)

		var res gst.Result
		decodeData(t, w, &res)
		assert.Equal(t, gst.TypeCGSTSGST, res.GSTType)
		assertDecimal(t, "250", res.CGSTAmount)
	})
}

func TestTaxHandler_CalculateGST_Rejects(t *testing.T) {
	h := handler.NewTaxHandler("29")
	bodies := map[string]string{
		"bad state":      `{"taxable_value":"100","gst_rate":18,"buyer_state_code":"99"}`,
		"missing state":  `{"taxable_value":"100","gst_rate":18}`,
		"off-slab rate":  `{"taxable_value":"100","gst_rate":7,"buyer_state_code":"29"}`,
		"negative value": `{"taxable_value":"-1","gst_rate":18,"buyer_state_code":"29"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, w := newContext(http.MethodPost, "/api/v1/tax/gst", body)
			h.CalculateGST(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestTaxHandler_CalculateInvoiceGST(t *testing.T) {
	h := handler.NewTaxHandler("29")
	c, w := newContext(http.MethodPost, "/api/v1/tax/gst/invoice", `{
		"buyer_state_code": "07",
		"lines": [
			{"taxable_value": "333.33", "gst_rate": 18},
			{"taxable_value": "333.33", "gst_rate": 18},
			{"taxable_value": "333.33", "gst_rate": 18},
			{"taxable_value": "90", "gst_rate": 5}
		]
	}`)
	h.CalculateInvoiceGST(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res gst.InvoiceResult
	decodeData(t, w, &res)
	assert.Equal(t, gst.TypeIGST, res.GSTType)
	assert.Len(t, res.Lines, 4)
	assertDecimal(t, "1089.99", res.TaxableValue)
	// 3 x 60.00 + 4.50 summed per line.
	assertDecimal(t, "184.5", res.IGSTAmount)
}

func TestTaxHandler_CalculateTDS(t *testing.T) {
	h := handler.NewTaxHandler("29")
	c, w := newContext(http.MethodPost, "/api/v1/tax/tds",
		`{"amount":"50000","section":"194j","is_professional":true,"has_pan":true}`)
	h.CalculateTDS(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res tds.Result
	decodeData(t, w, &res)
	assert.Equal(t, tds.Section194J, res.Section)
	assert.True(t, res.IsThresholdMet)
	assertDecimal(t, "10", res.TDSRate)
	assertDecimal(t, "5000", res.TDSAmount)
	assertDecimal(t, "45000", res.NetAmount)
}

func TestTaxHandler_CalculateTDS_NoPAN(t *testing.T) {
	h := handler.NewTaxHandler("29")
	c, w := newContext(http.MethodPost, "/api/v1/tax/tds",
		`{"amount":"40000","section":"194C","party_type":"company","has_pan":false}`)
	h.CalculateTDS(c)

	var res tds.Result
	decodeData(t, w, &res)
	assert.True(t, res.HigherRateApplied)
	assertDecimal(t, "20", res.TDSRate)
	assertDecimal(t, "8000", res.TDSAmount)
}

func TestTaxHandler_PANStatusIsRequired(t *testing.T) {
	h := handler.NewTaxHandler("29")

	c, w := newContext(http.MethodPost, "/api/v1/tax/tds",
		`{"amount":"50000","section":"194J","is_professional":true}`)
	h.CalculateTDS(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)

	c, w = newContext(http.MethodPost, "/api/v1/tax/tds/invoice", `{"invoice_type":"freelancer","amount":"50000"}`)
	h.CalculateInvoiceTDS(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)
}

func TestTaxHandler_CalculateTDS_UnknownSection(t *testing.T) {
	h := handler.NewTaxHandler("29")
	c, w := newContext(http.MethodPost, "/api/v1/tax/tds", `{"amount":"50000","section":"194Z","has_pan":true}`)
	h.CalculateTDS(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_TDS_SECTION", decode(t, w).Error.Code)
}

func TestTaxHandler_CalculateInvoiceTDS(t *testing.T) {
	h := handler.NewTaxHandler("29")
	tests := []struct {
		name    string
		body    string
		section tds.Section
		amount  string
	}{
		{"freelancer", `{"invoice_type":"freelancer","amount":"50000","has_pan":true}`, tds.Section194J, "5000"},
		{"contractor individual", `{"invoice_type":"contractor","amount":"50000","has_pan":true}`, tds.Section194C, "500"},
		{"supplier company", `{"invoice_type":"vendor","vendor_type":"supplier","party_type":"company","amount":"100000","has_pan":true}`, tds.Section194C, "2000"},
		{"below threshold", `{"invoice_type":"freelancer","amount":"29999","has_pan":true}`, tds.Section194J, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(http.MethodPost, "/api/v1/tax/tds/invoice", tt.body)
			h.CalculateInvoiceTDS(c)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var res tds.Result
			decodeData(t, w, &res)
			assert.Equal(t, tt.section, res.Section)
			assertDecimal(t, tt.amount, res.TDSAmount)
		})
	}

	c, w := newContext(http.MethodPost, "/api/v1/tax/tds/invoice", `{"invoice_type":"client","amount":"50000"}`)
	h.CalculateInvoiceTDS(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaxHandler_TDSSections(t *testing.T) {
	h := handler.NewTaxHandler("29")
	c, w := newContext(http.MethodGet, "/api/v1/tax/tds/sections", nil)
	h.TDSSections(c)

	var out []map[string]string
	decodeData(t, w, &out)
	require.Len(t, out, 5)
	assert.Equal(t, "194A", out[0]["section"])
	assert.NotEmpty(t, out[0]["description"])
}

func TestTaxHandler_LookupGSTIN(t *testing.T) {
	h := handler.NewTaxHandler("29")

	c, w := newContext(http.MethodGet, "/api/v1/tax/gstin/27aapfu0939f1zv", nil)
	c.Params = gin.Params{{Key: "gstin", Value: "27aapfu0939f1zv"}}
	h.LookupGSTIN(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]interface{}
	decodeData(t, w, &out)
	assert.Equal(t, "27AAPFU0939F1ZV", out["gstin"])
	assert.Equal(t, "27", out["state_code"])
	assert.Equal(t, "Maharashtra", out["state_name"])
	assert.Equal(t, "AAPFU0939F", out["pan"])
	assert.Equal(t, false, out["intra_state"])

	c, w = newContext(http.MethodGet, "/api/v1/tax/gstin/123", nil)
	c.Params = gin.Params{{Key: "gstin", Value: "123"}}
	h.LookupGSTIN(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_GSTIN", decode(t, w).Error.Code)
}

func TestTaxHandler_FinancialYear(t *testing.T) {
	h := handler.NewTaxHandler("29")
	tests := map[string]string{
		"2025-03-31": "2024-25",
		"2025-04-01": "2025-26",
		"2000-01-15": "1999-00",
	}
	for date, want := range tests {
		c, w := newContext(http.MethodGet, "/api/v1/tax/financial-year?date="+date, nil)
		h.FinancialYear(c)

		var out map[string]string
		decodeData(t, w, &out)
		assert.Equal(t, want, out["financial_year"], date)
	}

	c, w := newContext(http.MethodGet, "/api/v1/tax/financial-year?date=31/03/2025", nil)
	h.FinancialYear(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaxHandler_ParseInvoiceNumber(t *testing.T) {
	h := handler.NewTaxHandler("29")

	c, w := newContext(http.MethodGet, "/api/v1/tax/invoice-number?number=FCO/2024-25/00042", nil)
	h.ParseInvoiceNumber(c)
	var out map[string]interface{}
	decodeData(t, w, &out)
	assert.Equal(t, "FCO", out["prefix"])
	assert.Equal(t, "2024-25", out["financial_year"])
	assert.EqualValues(t, 42, out["sequence"])
	assert.Equal(t, true, out["valid"])

	c, w = newContext(http.MethodGet, "/api/v1/tax/invoice-number?number=ABC/2024-25/00001", nil)
	h.ParseInvoiceNumber(c)
	out = nil
	decodeData(t, w, &out)
	assert.Equal(t, false, out["valid"])

	c, w = newContext(http.MethodGet, "/api/v1/tax/invoice-number?number=INV-2024-1", nil)
	h.ParseInvoiceNumber(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
