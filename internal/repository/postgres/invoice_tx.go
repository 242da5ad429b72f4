package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"supercrm/internal/domain"
	"supercrm/internal/port"
)

const invoiceNumberConstraint = "invoices_invoice_number_key"

type invoiceTransactor struct {
	db *sqlx.DB
}

// NewInvoiceTransactor creates a transactor for invoice creation.
func NewInvoiceTransactor(db *sqlx.DB) port.InvoiceTransactor {
	return &invoiceTransactor{db: db}
}

func (t *invoiceTransactor) WithinTx(ctx context.Context, fn func(uow port.InvoiceUnitOfWork) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceTransactor.WithinTx begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&invoiceUnitOfWork{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceTransactor.WithinTx commit: %w", err)
	}
	return nil
}

type invoiceUnitOfWork struct {
	tx *sqlx.Tx
}

// NextSequence increments the counter for (prefix, financial year). The row
// lock taken by the upsert is held until the surrounding transaction ends, so
// concurrent creators queue here. A fresh counter starts above any number
// already present in invoices.
func (u *invoiceUnitOfWork) NextSequence(ctx context.Context, prefix, financialYear string) (int, error) {
	query := `INSERT INTO invoice_sequences (prefix, financial_year, last_number)
		VALUES ($1, $2, COALESCE(
			(SELECT MAX(sequence_no) FROM invoices WHERE number_prefix = $1 AND financial_year = $2), 0) + 1)
		ON CONFLICT (prefix, financial_year)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1, updated_at = NOW()
		RETURNING last_number`
	var next int
	if err := u.tx.QueryRowxContext(ctx, query, prefix, financialYear).Scan(&next); err != nil {
		return 0, fmt.Errorf("invoiceUnitOfWork.NextSequence: %w", err)
	}
	return next, nil
}

func (u *invoiceUnitOfWork) InsertInvoice(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (id, invoice_number, number_prefix, financial_year, sequence_no,
		invoice_type, counterparty_id, invoice_date, due_date, place_of_supply, gst_type,
		subtotal, discount_amount, taxable_amount, cgst_amount, sgst_amount, igst_amount, total_gst,
		tds_section, tds_rate, tds_amount, total_amount, amount_paid, amount_due,
		status, notes, document_key, created_by, created_at, updated_at)
		VALUES (:id, :invoice_number, :number_prefix, :financial_year, :sequence_no,
		:invoice_type, :counterparty_id, :invoice_date, :due_date, :place_of_supply, :gst_type,
		:subtotal, :discount_amount, :taxable_amount, :cgst_amount, :sgst_amount, :igst_amount, :total_gst,
		:tds_section, :tds_rate, :tds_amount, :total_amount, :amount_paid, :amount_due,
		:status, :notes, :document_key, :created_by, :created_at, :updated_at)`
	if _, err := u.tx.NamedExecContext(ctx, query, inv); err != nil {
		if uniqueViolation(err, invoiceNumberConstraint) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return fmt.Errorf("invoiceUnitOfWork.InsertInvoice: %w", err)
	}
	return nil
}

func (u *invoiceUnitOfWork) InsertLineItems(ctx context.Context, items []domain.InvoiceLineItem) error {
	if len(items) == 0 {
		return domain.ErrNoLineItems
	}
	query := `INSERT INTO invoice_line_items (id, invoice_id, position, description, hsn_sac,
		quantity, unit_price, discount, taxable_value, gst_rate,
		cgst_amount, sgst_amount, igst_amount, gst_amount, total_amount, created_at)
		VALUES (:id, :invoice_id, :position, :description, :hsn_sac,
		:quantity, :unit_price, :discount, :taxable_value, :gst_rate,
		:cgst_amount, :sgst_amount, :igst_amount, :gst_amount, :total_amount, :created_at)`
	if _, err := u.tx.NamedExecContext(ctx, query, items); err != nil {
		return fmt.Errorf("invoiceUnitOfWork.InsertLineItems: %w", err)
	}
	return nil
}
