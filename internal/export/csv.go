// Package export writes the invoice register as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the register header row.
var columns = []string{
	"Invoice Number",
	"Invoice Type",
	"Financial Year",
	"Invoice Date",
	"Due Date",
	"Status",
	"Place of Supply",
	"GST Type",
	"Subtotal",
	"Discount",
	"Taxable Amount",
	"CGST",
	"SGST",
	"IGST",
	"Total GST",
	"Total",
	"TDS Section",
	"TDS Rate",
	"TDS Amount",
	"Amount Paid",
	"Amount Due",
	"Created At",
}

// Columns returns a copy of the register header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invs []domain.Invoice) error {
	for i := range invs {
		if err := w.csv.Write(invoiceToRow(&invs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a complete register, BOM included, to out.
func WriteCSV(out io.Writer, invs []domain.Invoice) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteInvoices(invs); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func invoiceToRow(inv *domain.Invoice) []string {
	row := make([]string, len(columns))
	row[0] = inv.InvoiceNumber
	row[1] = string(inv.InvoiceType)
	row[2] = inv.FinancialYear
	row[3] = inv.InvoiceDate.Format("2006-01-02")
	row[4] = formatDate(inv.DueDate)
	row[5] = string(inv.Status)
	row[6] = inv.PlaceOfSupply
	row[7] = inv.GSTType
	row[8] = formatMoney(inv.Subtotal)
	row[9] = formatMoney(inv.DiscountAmount)
	row[10] = formatMoney(inv.TaxableAmount)
	row[11] = formatMoney(inv.CGSTAmount)
	row[12] = formatMoney(inv.SGSTAmount)
	row[13] = formatMoney(inv.IGSTAmount)
	row[14] = formatMoney(inv.TotalGST)
	row[15] = formatMoney(inv.TotalAmount)
	if inv.TDSSection != nil {
		row[16] = *inv.TDSSection
		row[17] = inv.TDSRate.String()
	}
	row[18] = formatMoney(inv.TDSAmount)
	row[19] = formatMoney(inv.AmountPaid)
	row[20] = formatMoney(inv.AmountDue)
	row[21] = inv.CreatedAt.Format(time.RFC3339)
	return row
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a label for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: invoices_{label}_{YYYY-MM-DD}.{ext}
func BuildFilename(label, ext string, now time.Time) string {
	name := "invoices"
	if s := SanitizeFilename(label); s != "" {
		name += "_" + s
	}
	return fmt.Sprintf("%s_%s.%s", name, now.Format("2006-01-02"), ext)
}
