package domain

import "errors"

var (
	ErrNotFound                = errors.New("resource not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientRole        = errors.New("insufficient role for this action")
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrCounterpartyNotFound    = errors.New("counterparty not found")
	ErrCounterpartyMismatch    = errors.New("counterparty kind does not match invoice type")
	ErrDuplicateInvoiceNumber  = errors.New("invoice number already issued")
	ErrSequenceExhausted       = errors.New("invoice sequence exhausted for financial year")
	ErrNoLineItems             = errors.New("invoice requires at least one line item")
	ErrInvalidInvoiceType      = errors.New("invalid invoice type")
	ErrInvalidGSTRate          = errors.New("gst rate must be one of 0, 5, 12, 18, 28")
	ErrInvalidAmount           = errors.New("amount must be non-negative")
	ErrInvalidStateCode        = errors.New("invalid GST state code")
	ErrInvalidGSTIN            = errors.New("invalid GSTIN")
	ErrInvalidPAN              = errors.New("invalid PAN")
	ErrInvalidStatusTransition = errors.New("invalid invoice status transition")
	ErrInvoiceNotDeletable     = errors.New("only draft invoices can be deleted")
	ErrOverpayment             = errors.New("payment exceeds amount due")
	ErrRecipientEmailMissing   = errors.New("counterparty has no email address")
	ErrUnknownTDSSection       = errors.New("unknown TDS section")
	ErrInvalidCounterpartyKind = errors.New("invalid counterparty kind")
	ErrInvalidPartyType        = errors.New("invalid party type")
	ErrInvalidVendorType       = errors.New("invalid vendor type")
)
