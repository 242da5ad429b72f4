package document_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supercrm/internal/config"
	"supercrm/internal/document"
	"supercrm/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func company() config.CompanyConfig {
	return config.CompanyConfig{
		Name:        "SUPER CRM Private Limited",
		Address:     "Koramangala, Bengaluru",
		StateCode:   "29",
		GSTIN:       "29AABCS1234K1Z2",
		PAN:         "AABCS1234K",
		BankName:    "HDFC Bank",
		BankAccount: "50200012345678",
		BankIFSC:    "HDFC0000123",
	}
}

func sampleInvoice() (*domain.Invoice, []domain.InvoiceLineItem, *domain.Counterparty) {
	due := time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC)
	inv := &domain.Invoice{
		ID:             uuid.New(),
		InvoiceNumber:  "FCO/2024-25/00007",
		InvoiceType:    domain.InvoiceTypeFreelancer,
		InvoiceDate:    time.Date(2024, time.October, 31, 0, 0, 0, 0, time.UTC),
		DueDate:        &due,
		PlaceOfSupply:  "29",
		GSTType:        "cgst_sgst",
		Subtotal:       d("52000"),
		DiscountAmount: d("2000"),
		TaxableAmount:  d("50000"),
		CGSTAmount:     d("4500"),
		SGSTAmount:     d("4500"),
		TotalGST:       d("9000"),
		TDSSection:     strPtr("194J"),
		TDSRate:        d("10"),
		TDSAmount:      d("5000"),
		TotalAmount:    d("59000"),
		AmountDue:      d("54000"),
		Status:         domain.InvoiceStatusDraft,
		Notes:          "Design sprint, October",
	}
	items := []domain.InvoiceLineItem{
		{Description: "UX research", HSNSAC: "998311", Quantity: d("10"), UnitPrice: d("3000"), Discount: d("2000"),
			TaxableValue: d("28000"), GSTRate: d("18"), CGSTAmount: d("2520"), SGSTAmount: d("2520"), GSTAmount: d("5040"), TotalAmount: d("33040")},
		{Description: "Prototype build", HSNSAC: "998314", Quantity: d("1"), UnitPrice: d("22000"),
			TaxableValue: d("22000"), GSTRate: d("18"), CGSTAmount: d("1980"), SGSTAmount: d("1980"), GSTAmount: d("3960"), TotalAmount: d("25960")},
	}
	cp := &domain.Counterparty{
		Kind:      domain.CounterpartyFreelancer,
		Name:      "Asha Rao",
		Email:     "asha@example.in",
		StateCode: "29",
		PAN:       strPtr("ABCPR1234F"),
	}
	return inv, items, cp
}

func TestBuilder_Build(t *testing.T) {
	inv, items, cp := sampleInvoice()
	data := document.NewBuilder(company()).Build(inv, items, cp)

	assert.Equal(t, "PURCHASE VOUCHER", data.Title)
	assert.Equal(t, "FCO/2024-25/00007", data.InvoiceNumber)
	assert.Equal(t, "Karnataka (29)", data.PlaceOfSupply)
	assert.True(t, data.IntraState)
	assert.Equal(t, "Karnataka", data.Company.StateName)
	assert.Equal(t, "ABCPR1234F", data.Party.PAN)
	assert.Equal(t, "Karnataka", data.Party.StateName)

	require.Len(t, data.Lines, 2)
	assert.Equal(t, 1, data.Lines[0].No)
	assert.Equal(t, 2, data.Lines[1].No)

	require.Len(t, data.TaxSummary, 1)
	assert.True(t, data.TaxSummary[0].TaxableValue.Equal(d("50000")))
	assert.True(t, data.TaxSummary[0].CGST.Equal(d("4500")))

	require.NotNil(t, data.TDS)
	assert.Equal(t, "194J", data.TDS.Section)
	assert.True(t, data.TDS.NetPayable.Equal(d("54000")))
	assert.True(t, data.RoundOff.IsZero())
	assert.Equal(t, "Rupees Fifty Four Thousand Only", data.AmountInWords)
}

func TestBuilder_ClientInvoiceWithRoundOff(t *testing.T) {
	inv, items, cp := sampleInvoice()
	inv.InvoiceType = domain.InvoiceTypeClient
	inv.TDSSection = nil
	inv.TDSRate = decimal.Zero
	inv.TDSAmount = decimal.Zero
	inv.TaxableAmount = d("100.10")
	inv.TotalGST = d("5")
	inv.TotalAmount = d("105")

	data := document.NewBuilder(company()).Build(inv, items, cp)
	assert.Equal(t, "TAX INVOICE", data.Title)
	assert.Nil(t, data.TDS)
	assert.True(t, data.RoundOff.Equal(d("-0.1")), data.RoundOff.String())
	assert.Equal(t, "Rupees One Hundred Five Only", data.AmountInWords)
}

func TestBuilder_TaxSummaryOrderedByRate(t *testing.T) {
	inv, _, cp := sampleInvoice()
	items := []domain.InvoiceLineItem{
		{TaxableValue: d("100"), GSTRate: d("28"), IGSTAmount: d("28")},
		{TaxableValue: d("200"), GSTRate: d("5"), IGSTAmount: d("10")},
		{TaxableValue: d("300"), GSTRate: d("28"), IGSTAmount: d("84")},
	}
	data := document.NewBuilder(company()).Build(inv, items, cp)
	require.Len(t, data.TaxSummary, 2)
	assert.True(t, data.TaxSummary[0].Rate.Equal(d("5")))
	assert.True(t, data.TaxSummary[1].TaxableValue.Equal(d("400")))
	assert.True(t, data.TaxSummary[1].IGST.Equal(d("112")))
}

func TestBuilder_NilCounterparty(t *testing.T) {
	inv, items, _ := sampleInvoice()
	data := document.NewBuilder(company()).Build(inv, items, nil)
	assert.Empty(t, data.Party.Name)
}

func TestPDFRenderer_Render(t *testing.T) {
	inv, items, cp := sampleInvoice()
	data := document.NewBuilder(company()).Build(inv, items, cp)

	r := document.NewPDFRenderer()
	out, err := r.Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "application/pdf", r.ContentType())
}
