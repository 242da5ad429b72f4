// Package document assembles the data printed on an invoice and renders it.
package document

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"supercrm/internal/config"
	"supercrm/internal/domain"
	"supercrm/internal/tax/gst"
)

// Company is the issuer letterhead.
type Company struct {
	Name        string
	Address     string
	StateCode   string
	StateName   string
	GSTIN       string
	PAN         string
	Email       string
	Phone       string
	BankName    string
	BankAccount string
	BankIFSC    string
	BankBranch  string
}

// Party is the counterparty block.
type Party struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	StateCode string
	StateName string
	GSTIN     string
	PAN       string
}

// Line is one printed line item.
type Line struct {
	No           int
	Description  string
	HSNSAC       string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	TaxableValue decimal.Decimal
	GSTRate      decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
	IGST         decimal.Decimal
	Total        decimal.Decimal
}

// TaxRow summarises tax per GST rate.
type TaxRow struct {
	Rate         decimal.Decimal
	TaxableValue decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
	IGST         decimal.Decimal
}

// TDS is the withholding block, present only when tax was withheld.
type TDS struct {
	Section    string
	Rate       decimal.Decimal
	Amount     decimal.Decimal
	NetPayable decimal.Decimal
}

// Data is everything a renderer needs; it holds no layout decisions.
type Data struct {
	Title         string
	InvoiceNumber string
	InvoiceType   domain.InvoiceType
	Status        domain.InvoiceStatus
	InvoiceDate   time.Time
	DueDate       *time.Time
	PlaceOfSupply string
	IntraState    bool

	Company Company
	Party   Party
	Lines   []Line

	TaxSummary    []TaxRow
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxableAmount decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	TotalGST      decimal.Decimal
	RoundOff      decimal.Decimal
	Total         decimal.Decimal
	TDS           *TDS
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	AmountInWords string
	Notes         string
}

// Builder combines a persisted invoice with the static letterhead.
type Builder struct {
	company Company
}

func NewBuilder(cfg config.CompanyConfig) *Builder {
	name, _ := gst.StateName(cfg.StateCode)
	return &Builder{company: Company{
		Name:        cfg.Name,
		Address:     cfg.Address,
		StateCode:   cfg.StateCode,
		StateName:   name,
		GSTIN:       cfg.GSTIN,
		PAN:         cfg.PAN,
		Email:       cfg.Email,
		Phone:       cfg.Phone,
		BankName:    cfg.BankName,
		BankAccount: cfg.BankAccount,
		BankIFSC:    cfg.BankIFSC,
		BankBranch:  cfg.BankBranch,
	}}
}

// Title returns the document heading for an invoice type.
func Title(t domain.InvoiceType) string {
	if t == domain.InvoiceTypeClient {
		return "TAX INVOICE"
	}
	return "PURCHASE VOUCHER"
}

func (b *Builder) Build(inv *domain.Invoice, items []domain.InvoiceLineItem, cp *domain.Counterparty) *Data {
	data := &Data{
		Title:         Title(inv.InvoiceType),
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceType:   inv.InvoiceType,
		Status:        inv.Status,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		PlaceOfSupply: placeOfSupply(inv.PlaceOfSupply),
		IntraState:    inv.GSTType == string(gst.TypeCGSTSGST),
		Company:       b.company,
		Party:         party(cp),
		Subtotal:      inv.Subtotal,
		Discount:      inv.DiscountAmount,
		TaxableAmount: inv.TaxableAmount,
		CGST:          inv.CGSTAmount,
		SGST:          inv.SGSTAmount,
		IGST:          inv.IGSTAmount,
		TotalGST:      inv.TotalGST,
		Total:         inv.TotalAmount,
		AmountPaid:    inv.AmountPaid,
		AmountDue:     inv.AmountDue,
		Notes:         inv.Notes,
	}
	data.RoundOff = inv.TotalAmount.Sub(inv.TaxableAmount.Add(inv.TotalGST))

	byRate := map[string]*TaxRow{}
	for i := range items {
		it := &items[i]
		data.Lines = append(data.Lines, Line{
			No:           i + 1,
			Description:  it.Description,
			HSNSAC:       it.HSNSAC,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Discount:     it.Discount,
			TaxableValue: it.TaxableValue,
			GSTRate:      it.GSTRate,
			CGST:         it.CGSTAmount,
			SGST:         it.SGSTAmount,
			IGST:         it.IGSTAmount,
			Total:        it.TotalAmount,
		})

		key := it.GSTRate.String()
		row, ok := byRate[key]
		if !ok {
			row = &TaxRow{Rate: it.GSTRate}
			byRate[key] = row
		}
		row.TaxableValue = row.TaxableValue.Add(it.TaxableValue)
		row.CGST = row.CGST.Add(it.CGSTAmount)
		row.SGST = row.SGST.Add(it.SGSTAmount)
		row.IGST = row.IGST.Add(it.IGSTAmount)
	}
	for _, row := range byRate {
		data.TaxSummary = append(data.TaxSummary, *row)
	}
	sort.Slice(data.TaxSummary, func(i, j int) bool {
		return data.TaxSummary[i].Rate.LessThan(data.TaxSummary[j].Rate)
	})

	payable := inv.TotalAmount
	if inv.TDSAmount.IsPositive() {
		section := ""
		if inv.TDSSection != nil {
			section = *inv.TDSSection
		}
		data.TDS = &TDS{
			Section:    section,
			Rate:       inv.TDSRate,
			Amount:     inv.TDSAmount,
			NetPayable: inv.NetPayable(),
		}
		payable = inv.NetPayable()
	}
	data.AmountInWords = AmountInWords(payable)
	return data
}

func placeOfSupply(code string) string {
	if name, ok := gst.StateName(code); ok {
		return name + " (" + code + ")"
	}
	return code
}

func party(cp *domain.Counterparty) Party {
	if cp == nil {
		return Party{}
	}
	p := Party{
		Name:      cp.Name,
		Email:     cp.Email,
		Phone:     cp.Phone,
		Address:   cp.Address,
		StateCode: cp.StateCode,
	}
	p.StateName, _ = gst.StateName(cp.StateCode)
	if cp.GSTIN != nil {
		p.GSTIN = *cp.GSTIN
	}
	if cp.PAN != nil {
		p.PAN = *cp.PAN
	}
	return p
}
