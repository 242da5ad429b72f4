package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"supercrm/internal/domain"
)

// SheetName is the worksheet holding the register.
const SheetName = "Invoices"

// moneyCells returns the register columns that are written as numbers rather
// than text, keyed by zero-based column index.
func moneyCells(inv *domain.Invoice) map[int]decimal.Decimal {
	return map[int]decimal.Decimal{
		8:  inv.Subtotal,
		9:  inv.DiscountAmount,
		10: inv.TaxableAmount,
		11: inv.CGSTAmount,
		12: inv.SGSTAmount,
		13: inv.IGSTAmount,
		14: inv.TotalGST,
		15: inv.TotalAmount,
		18: inv.TDSAmount,
		19: inv.AmountPaid,
		20: inv.AmountDue,
	}
}

// WriteXLSX writes the register as a single-sheet workbook to out.
func WriteXLSX(out io.Writer, invs []domain.Invoice) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range invs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		money := moneyCells(&invs[i])
		row := invoiceToRow(&invs[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			if d, ok := money[j]; ok {
				values[j] = d.InexactFloat64()
				continue
			}
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	_, err := f.WriteTo(out)
	return err
}
