package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
)

const (
	pdfMargin = 12.0
	pdfWidth  = 210.0 - 2*pdfMargin
)

// PDFRenderer lays out invoice data on an A4 page.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

func (r *PDFRenderer) Render(d *Data) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(d.Title+" "+d.InvoiceNumber, false)
	pdf.SetAuthor(d.Company.Name, false)
	pdf.AddPage()

	writeHeader(pdf, d)
	writeParties(pdf, d)
	writeLines(pdf, d)
	writeTotals(pdf, d)
	writeTaxSummary(pdf, d)
	writeFooter(pdf, d)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, d *Data) {
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(pdfWidth, 9, d.Company.Name, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, line := range nonEmpty(
		d.Company.Address,
		labelled("GSTIN", d.Company.GSTIN)+"  "+labelled("PAN", d.Company.PAN),
		labelled("Email", d.Company.Email)+"  "+labelled("Phone", d.Company.Phone),
	) {
		pdf.CellFormat(pdfWidth, 4.5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 13)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(pdfWidth, 9, d.Title, "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	half := pdfWidth / 2
	pdf.CellFormat(half, 6, "Invoice No: "+d.InvoiceNumber, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, "Date: "+d.InvoiceDate.Format("02-Jan-2006"), "RB", 1, "R", false, 0, "")
	due := "-"
	if d.DueDate != nil {
		due = d.DueDate.Format("02-Jan-2006")
	}
	pdf.CellFormat(half, 6, "Place of Supply: "+d.PlaceOfSupply, "LB", 0, "L", false, 0, "")
	pdf.CellFormat(half, 6, "Due Date: "+due, "RB", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func writeParties(pdf *gofpdf.Fpdf, d *Data) {
	heading := "BILL TO"
	if d.InvoiceType != domain.InvoiceTypeClient {
		heading = "PAYEE"
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(pdfWidth, 6, heading, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	state := d.Party.StateName
	if d.Party.StateCode != "" {
		state = strings.TrimSpace(state + " (" + d.Party.StateCode + ")")
	}
	for _, line := range nonEmpty(
		d.Party.Name,
		d.Party.Address,
		state,
		labelled("GSTIN", d.Party.GSTIN),
		labelled("PAN", d.Party.PAN),
		labelled("Email", d.Party.Email),
	) {
		pdf.CellFormat(pdfWidth, 4.5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func writeLines(pdf *gofpdf.Fpdf, d *Data) {
	headers := []string{"#", "Description", "HSN/SAC", "Qty", "Rate", "Taxable", "GST %", "Tax", "Amount"}
	widths := []float64{8, 52, 18, 14, 20, 22, 12, 18, 22}
	aligns := []string{"C", "L", "C", "R", "R", "R", "C", "R", "R"}

	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, l := range d.Lines {
		tax := l.CGST.Add(l.SGST).Add(l.IGST)
		cells := []string{
			fmt.Sprintf("%d", l.No),
			truncate(l.Description, 38),
			l.HSNSAC,
			l.Quantity.String(),
			money(l.UnitPrice),
			money(l.TaxableValue),
			l.GSTRate.String(),
			money(tax),
			money(l.Total),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func writeTotals(pdf *gofpdf.Fpdf, d *Data) {
	label, value := 150.0, pdfWidth-150.0
	row := func(name string, amount decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 9)
		pdf.CellFormat(label, 5.5, name, "", 0, "R", false, 0, "")
		pdf.CellFormat(value, 5.5, money(amount), "", 1, "R", false, 0, "")
	}

	row("Subtotal:", d.Subtotal, false)
	if d.Discount.IsPositive() {
		row("Discount:", d.Discount.Neg(), false)
	}
	row("Taxable Value:", d.TaxableAmount, false)
	if d.IntraState {
		row("CGST:", d.CGST, false)
		row("SGST:", d.SGST, false)
	} else {
		row("IGST:", d.IGST, false)
	}
	if !d.RoundOff.IsZero() {
		row("Round Off:", d.RoundOff, false)
	}
	row("TOTAL:", d.Total, true)
	if d.TDS != nil {
		row(fmt.Sprintf("TDS u/s %s @ %s%%:", d.TDS.Section, d.TDS.Rate.String()), d.TDS.Amount.Neg(), false)
		row("NET PAYABLE:", d.TDS.NetPayable, true)
	}
	if d.AmountPaid.IsPositive() {
		row("Paid:", d.AmountPaid, false)
		row("Balance Due:", d.AmountDue, true)
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(pdfWidth, 5, d.AmountInWords, "", "L", false)
	pdf.Ln(2)
}

func writeTaxSummary(pdf *gofpdf.Fpdf, d *Data) {
	if len(d.TaxSummary) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(240, 240, 240)
	w := pdfWidth / 5
	for _, h := range []string{"GST %", "Taxable", "CGST", "SGST", "IGST"} {
		pdf.CellFormat(w, 6, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, r := range d.TaxSummary {
		for _, c := range []string{r.Rate.String(), money(r.TaxableValue), money(r.CGST), money(r.SGST), money(r.IGST)} {
			pdf.CellFormat(w, 5.5, c, "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func writeFooter(pdf *gofpdf.Fpdf, d *Data) {
	if d.Company.BankAccount != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(pdfWidth, 5, "Bank Details", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		for _, line := range nonEmpty(
			labelled("Bank", d.Company.BankName),
			labelled("A/c No", d.Company.BankAccount),
			labelled("IFSC", d.Company.BankIFSC),
			labelled("Branch", d.Company.BankBranch),
		) {
			pdf.CellFormat(pdfWidth, 4.5, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
	if d.Notes != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(pdfWidth, 5, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(pdfWidth, 4.5, d.Notes, "", "L", false)
	}
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(pdfWidth, 5, "For "+d.Company.Name, "", 1, "R", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(pdfWidth, 5, "Authorised Signatory", "", 1, "R", false, 0, "")
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func nonEmpty(lines ...string) []string {
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
