// Package gst computes Indian Goods and Services Tax splits for invoice lines.
//
// Intra-state supplies are taxed as equal CGST and SGST halves; inter-state
// supplies carry the full rate as IGST. All amounts are decimal rupees.
package gst

import (
	"github.com/shopspring/decimal"
)

// Type identifies which GST regime applies to a supply.
type Type string

const (
	TypeCGSTSGST Type = "cgst_sgst"
	TypeIGST     Type = "igst"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// StandardRates is the set of GST slab rates issued on invoices.
var StandardRates = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// TaxableLine is a single taxable value with its GST slab rate.
type TaxableLine struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
}

// Result is the GST split for one taxable value.
type Result struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGSTRate     decimal.Decimal `json:"cgst_rate"`
	SGSTRate     decimal.Decimal `json:"sgst_rate"`
	IGSTRate     decimal.Decimal `json:"igst_rate"`
	CGSTAmount   decimal.Decimal `json:"cgst_amount"`
	SGSTAmount   decimal.Decimal `json:"sgst_amount"`
	IGSTAmount   decimal.Decimal `json:"igst_amount"`
	TotalGST     decimal.Decimal `json:"total_gst"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	GSTType      Type            `json:"gst_type"`
}

// Calculate splits gstRate on taxableValue into CGST/SGST or IGST.
//
// Each component is rounded to the paisa on its own. CGST and SGST are then
// forced equal by taking the larger of the two for both, so the state and
// central halves never differ. The total amount is rounded to the whole rupee.
// Rates outside StandardRates are accepted as-is; see ValidRate.
func Calculate(taxableValue, gstRate decimal.Decimal, isIntraState bool) Result {
	r := Result{
		TaxableValue: taxableValue,
		CGSTRate:     decimal.Zero,
		SGSTRate:     decimal.Zero,
		IGSTRate:     decimal.Zero,
		GSTType:      TypeIGST,
	}
	if isIntraState {
		half := gstRate.Div(two)
		r.CGSTRate = half
		r.SGSTRate = half
		r.GSTType = TypeCGSTSGST
	} else {
		r.IGSTRate = gstRate
	}

	r.CGSTAmount = componentAmount(taxableValue, r.CGSTRate)
	r.SGSTAmount = componentAmount(taxableValue, r.SGSTRate)
	r.IGSTAmount = componentAmount(taxableValue, r.IGSTRate)

	if isIntraState {
		larger := decimal.Max(r.CGSTAmount, r.SGSTAmount)
		r.CGSTAmount = larger
		r.SGSTAmount = larger
	}

	r.TotalGST = r.CGSTAmount.Add(r.SGSTAmount).Add(r.IGSTAmount).Round(2)
	r.TotalAmount = taxableValue.Add(r.TotalGST).Round(0)
	return r
}

func componentAmount(taxableValue, rate decimal.Decimal) decimal.Decimal {
	return taxableValue.Mul(rate).Div(hundred).Round(2)
}

// IsIntraState reports whether buyer and seller sit in the same state.
func IsIntraState(buyerStateCode, sellerStateCode string) bool {
	return buyerStateCode == sellerStateCode
}

// InvoiceResult aggregates per-line GST results for a whole invoice.
type InvoiceResult struct {
	TaxableValue decimal.Decimal `json:"taxable_value"`
	CGSTAmount   decimal.Decimal `json:"cgst_amount"`
	SGSTAmount   decimal.Decimal `json:"sgst_amount"`
	IGSTAmount   decimal.Decimal `json:"igst_amount"`
	TotalGST     decimal.Decimal `json:"total_gst"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	GSTType      Type            `json:"gst_type"`
	Lines        []Result        `json:"lines"`
}

// CalculateInvoice runs Calculate on every line and sums each component.
// Tax is never recomputed on the summed taxable value.
func CalculateInvoice(lines []TaxableLine, isIntraState bool) InvoiceResult {
	out := InvoiceResult{
		TaxableValue: decimal.Zero,
		CGSTAmount:   decimal.Zero,
		SGSTAmount:   decimal.Zero,
		IGSTAmount:   decimal.Zero,
		GSTType:      TypeIGST,
		Lines:        make([]Result, 0, len(lines)),
	}
	if isIntraState {
		out.GSTType = TypeCGSTSGST
	}

	for _, line := range lines {
		res := Calculate(line.TaxableValue, line.GSTRate, isIntraState)
		out.Lines = append(out.Lines, res)
		out.TaxableValue = out.TaxableValue.Add(res.TaxableValue)
		out.CGSTAmount = out.CGSTAmount.Add(res.CGSTAmount)
		out.SGSTAmount = out.SGSTAmount.Add(res.SGSTAmount)
		out.IGSTAmount = out.IGSTAmount.Add(res.IGSTAmount)
	}

	out.TotalGST = out.CGSTAmount.Add(out.SGSTAmount).Add(out.IGSTAmount).Round(2)
	out.TotalAmount = out.TaxableValue.Add(out.TotalGST).Round(0)
	return out
}

// ValidRate reports whether rate is one of the standard GST slabs.
func ValidRate(rate decimal.Decimal) bool {
	for _, r := range StandardRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}
