package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Counterparty is a contact, freelancer, contractor or vendor record from the CRM.
type Counterparty struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	Kind       CounterpartyKind `db:"kind" json:"kind"`
	Name       string           `db:"name" json:"name"`
	Email      string           `db:"email" json:"email"`
	Phone      string           `db:"phone" json:"phone"`
	Address    string           `db:"address" json:"address"`
	StateCode  string           `db:"state_code" json:"state_code"`
	GSTIN      *string          `db:"gstin" json:"gstin"`
	PAN        *string          `db:"pan" json:"pan"`
	PartyType  PartyType        `db:"party_type" json:"party_type"`
	VendorType *VendorType      `db:"vendor_type" json:"vendor_type"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// HasPAN reports whether a PAN is on record.
func (c *Counterparty) HasPAN() bool {
	return c.PAN != nil && *c.PAN != ""
}

// Invoice is the persisted invoice header.
type Invoice struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	InvoiceNumber  string          `db:"invoice_number" json:"invoice_number"`
	NumberPrefix   string          `db:"number_prefix" json:"-"`
	FinancialYear  string          `db:"financial_year" json:"financial_year"`
	SequenceNo     int             `db:"sequence_no" json:"-"`
	InvoiceType    InvoiceType     `db:"invoice_type" json:"invoice_type"`
	CounterpartyID uuid.UUID       `db:"counterparty_id" json:"counterparty_id"`
	InvoiceDate    time.Time       `db:"invoice_date" json:"invoice_date"`
	DueDate        *time.Time      `db:"due_date" json:"due_date"`
	PlaceOfSupply  string          `db:"place_of_supply" json:"place_of_supply"`
	GSTType        string          `db:"gst_type" json:"gst_type"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TaxableAmount  decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	CGSTAmount     decimal.Decimal `db:"cgst_amount" json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `db:"sgst_amount" json:"sgst_amount"`
	IGSTAmount     decimal.Decimal `db:"igst_amount" json:"igst_amount"`
	TotalGST       decimal.Decimal `db:"total_gst" json:"total_gst"`
	TDSSection     *string         `db:"tds_section" json:"tds_section"`
	TDSRate        decimal.Decimal `db:"tds_rate" json:"tds_rate"`
	TDSAmount      decimal.Decimal `db:"tds_amount" json:"tds_amount"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	AmountPaid     decimal.Decimal `db:"amount_paid" json:"amount_paid"`
	AmountDue      decimal.Decimal `db:"amount_due" json:"amount_due"`
	Status         InvoiceStatus   `db:"status" json:"status"`
	Notes          string          `db:"notes" json:"notes"`
	DocumentKey    *string         `db:"document_key" json:"-"`
	CreatedBy      uuid.UUID       `db:"created_by" json:"created_by"`
	SentAt         *time.Time      `db:"sent_at" json:"sent_at"`
	PaidAt         *time.Time      `db:"paid_at" json:"paid_at"`
	CancelledAt    *time.Time      `db:"cancelled_at" json:"cancelled_at"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// NetPayable is the total less any tax withheld at source.
func (i *Invoice) NetPayable() decimal.Decimal {
	return i.TotalAmount.Sub(i.TDSAmount)
}

// InvoiceLineItem is one priced line on an invoice.
type InvoiceLineItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	InvoiceID    uuid.UUID       `db:"invoice_id" json:"invoice_id"`
	Position     int             `db:"position" json:"position"`
	Description  string          `db:"description" json:"description"`
	HSNSAC       string          `db:"hsn_sac" json:"hsn_sac"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice    decimal.Decimal `db:"unit_price" json:"unit_price"`
	Discount     decimal.Decimal `db:"discount" json:"discount"`
	TaxableValue decimal.Decimal `db:"taxable_value" json:"taxable_value"`
	GSTRate      decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	CGSTAmount   decimal.Decimal `db:"cgst_amount" json:"cgst_amount"`
	SGSTAmount   decimal.Decimal `db:"sgst_amount" json:"sgst_amount"`
	IGSTAmount   decimal.Decimal `db:"igst_amount" json:"igst_amount"`
	GSTAmount    decimal.Decimal `db:"gst_amount" json:"gst_amount"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	InvoiceType   InvoiceType
	Status        InvoiceStatus
	FinancialYear string
}
