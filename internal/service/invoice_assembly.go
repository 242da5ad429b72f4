package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
	"supercrm/internal/tax/gst"
	"supercrm/internal/tax/tds"
)

// LineItemInput is one line as entered on the invoice form.
type LineItemInput struct {
	Description string          `json:"description" binding:"required,max=500"`
	HSNSAC      string          `json:"hsn_sac" binding:"omitempty,max=8"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"gte=0"`
	Discount    decimal.Decimal `json:"discount" binding:"gte=0"`
	GSTRate     decimal.Decimal `json:"gst_rate" binding:"gst_rate"`
}

// CreateInvoiceInput is the DTO for creating or previewing an invoice.
type CreateInvoiceInput struct {
	InvoiceType    domain.InvoiceType `json:"invoice_type" binding:"required,oneof=client freelancer contractor vendor"`
	CounterpartyID uuid.UUID          `json:"counterparty_id" binding:"required"`
	InvoiceDate    *time.Time         `json:"invoice_date"`
	DueDate        *time.Time         `json:"due_date"`
	PlaceOfSupply  string             `json:"place_of_supply" binding:"omitempty,state_code"`
	Notes          string             `json:"notes" binding:"max=2000"`
	Items          []LineItemInput    `json:"items" binding:"required,min=1,dive"`
	CreatedBy      uuid.UUID          `json:"-"`
}

// assembly is a fully computed but not yet numbered invoice.
type assembly struct {
	invoice *domain.Invoice
	items   []domain.InvoiceLineItem
	tds     *tds.Result
}

func validateItems(items []LineItemInput) error {
	if len(items) == 0 {
		return domain.ErrNoLineItems
	}
	for i := range items {
		it := &items[i]
		if !gst.ValidRate(it.GSTRate) {
			return domain.ErrInvalidGSTRate
		}
		if !it.Quantity.IsPositive() || it.UnitPrice.IsNegative() || it.Discount.IsNegative() {
			return domain.ErrInvalidAmount
		}
		if it.Discount.GreaterThan(it.Quantity.Mul(it.UnitPrice)) {
			return domain.ErrInvalidAmount
		}
	}
	return nil
}

// lineAmounts returns the gross amount and taxable value of a line, both to the paisa.
func lineAmounts(it *LineItemInput) (gross, taxable decimal.Decimal) {
	gross = it.Quantity.Mul(it.UnitPrice).Round(2)
	taxable = gross.Sub(it.Discount).Round(2)
	return gross, taxable
}

// assemble computes per-line and aggregate GST for the input. Tax is always
// computed line by line and summed, never on the summed taxable value.
func assemble(in *CreateInvoiceInput, placeOfSupply string, intraState bool, invoiceDate time.Time, dueDate *time.Time) *assembly {
	lines := make([]gst.TaxableLine, len(in.Items))
	subtotal := decimal.Zero
	discount := decimal.Zero
	for i := range in.Items {
		gross, taxable := lineAmounts(&in.Items[i])
		subtotal = subtotal.Add(gross)
		discount = discount.Add(in.Items[i].Discount)
		lines[i] = gst.TaxableLine{TaxableValue: taxable, GSTRate: in.Items[i].GSTRate}
	}
	res := gst.CalculateInvoice(lines, intraState)

	inv := &domain.Invoice{
		ID:             uuid.New(),
		InvoiceType:    in.InvoiceType,
		CounterpartyID: in.CounterpartyID,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
		PlaceOfSupply:  placeOfSupply,
		GSTType:        string(res.GSTType),
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  res.TaxableValue,
		CGSTAmount:     res.CGSTAmount,
		SGSTAmount:     res.SGSTAmount,
		IGSTAmount:     res.IGSTAmount,
		TotalGST:       res.TotalGST,
		TDSRate:        decimal.Zero,
		TDSAmount:      decimal.Zero,
		TotalAmount:    res.TotalAmount,
		AmountPaid:     decimal.Zero,
		AmountDue:      res.TotalAmount,
		Status:         domain.InvoiceStatusDraft,
		Notes:          in.Notes,
		CreatedBy:      in.CreatedBy,
	}

	items := make([]domain.InvoiceLineItem, len(in.Items))
	for i := range in.Items {
		src := &in.Items[i]
		line := res.Lines[i]
		items[i] = domain.InvoiceLineItem{
			ID:           uuid.New(),
			InvoiceID:    inv.ID,
			Position:     i + 1,
			Description:  src.Description,
			HSNSAC:       src.HSNSAC,
			Quantity:     src.Quantity,
			UnitPrice:    src.UnitPrice,
			Discount:     src.Discount,
			TaxableValue: line.TaxableValue,
			GSTRate:      src.GSTRate,
			CGSTAmount:   line.CGSTAmount,
			SGSTAmount:   line.SGSTAmount,
			IGSTAmount:   line.IGSTAmount,
			GSTAmount:    line.TotalGST,
			TotalAmount:  line.TotalAmount,
		}
	}
	return &assembly{invoice: inv, items: items}
}

// applyTDS records withholding on the invoice. Amount due is what the
// company actually pays out: total less tax withheld.
func (a *assembly) applyTDS(res tds.Result) {
	section := string(res.Section)
	a.tds = &res
	a.invoice.TDSSection = &section
	a.invoice.TDSRate = res.TDSRate
	a.invoice.TDSAmount = res.TDSAmount
	a.invoice.AmountDue = a.invoice.TotalAmount.Sub(res.TDSAmount)
}
