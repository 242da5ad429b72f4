package port

import (
	"context"
	"time"
)

// InvoiceEmail carries what the recipient needs to open an issued invoice.
type InvoiceEmail struct {
	ToEmail       string
	ToName        string
	CompanyName   string
	InvoiceNumber string
	AmountDue     string
	DueDate       *time.Time
	DocumentURL   string
}

// InvoiceMailer defines the contract for delivering invoices by email.
type InvoiceMailer interface {
	SendInvoice(ctx context.Context, msg InvoiceEmail) error
}
