package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
)

// InvoiceRepository defines the contract for reading and mutating persisted invoices.
// Creation goes through InvoiceTransactor so numbering and inserts share one transaction.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceLineItem, error)
	List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	ListByFinancialYear(ctx context.Context, financialYear string) ([]domain.Invoice, error)
	// SumTaxableForCounterparty totals non-cancelled taxable amounts already
	// invoiced by a counterparty in a financial year.
	SumTaxableForCounterparty(ctx context.Context, counterpartyID uuid.UUID, financialYear string) (decimal.Decimal, error)
	// UpdateStatus moves an invoice from one status to another. It returns
	// domain.ErrInvalidStatusTransition if the invoice is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.InvoiceStatus, at time.Time) error
	// RecordPayment atomically applies a payment and returns the updated invoice.
	RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal, at time.Time) (*domain.Invoice, error)
	UpdateDocumentKey(ctx context.Context, id uuid.UUID, key string) error
	// MarkOverdue flags every open invoice whose due date is before asOf.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	// Delete removes a draft invoice and its line items.
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceUnitOfWork is the set of writes performed while creating an invoice.
// All calls share a single database transaction.
type InvoiceUnitOfWork interface {
	NextSequence(ctx context.Context, prefix, financialYear string) (int, error)
	InsertInvoice(ctx context.Context, inv *domain.Invoice) error
	InsertLineItems(ctx context.Context, items []domain.InvoiceLineItem) error
}

// InvoiceTransactor runs fn inside a transaction that is committed when fn
// returns nil and rolled back otherwise.
type InvoiceTransactor interface {
	WithinTx(ctx context.Context, fn func(uow InvoiceUnitOfWork) error) error
}
