package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"supercrm/internal/domain"
	"supercrm/internal/port"
)

// openStatuses are the statuses that still expect a payment.
var openStatuses = []domain.InvoiceStatus{
	domain.InvoiceStatusSent,
	domain.InvoiceStatusViewed,
	domain.InvoiceStatusPartial,
	domain.InvoiceStatusOverdue,
}

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE invoice_number = $1", number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByNumber: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceLineItem, error) {
	var items []domain.InvoiceLineItem
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM invoice_line_items WHERE invoice_id = $1 ORDER BY position ASC", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListLineItems: %w", err)
	}
	return items, nil
}

func (r *invoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	where, args := invoiceFilterClause(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM invoices%s ORDER BY invoice_date DESC, invoice_number DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	var invoices []domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func invoiceFilterClause(f domain.InvoiceFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(col, val string) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.InvoiceType != "" {
		add("invoice_type", string(f.InvoiceType))
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if f.FinancialYear != "" {
		add("financial_year", f.FinancialYear)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *invoiceRepo) ListByFinancialYear(ctx context.Context, financialYear string) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices WHERE financial_year = $1
		ORDER BY number_prefix ASC, sequence_no ASC`, financialYear)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListByFinancialYear: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepo) SumTaxableForCounterparty(ctx context.Context, counterpartyID uuid.UUID, financialYear string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.GetContext(ctx, &sum,
		`SELECT COALESCE(SUM(taxable_amount), 0) FROM invoices
		WHERE counterparty_id = $1 AND financial_year = $2 AND status <> $3`,
		counterpartyID, financialYear, string(domain.InvoiceStatusCancelled))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invoiceRepo.SumTaxableForCounterparty: %w", err)
	}
	return sum, nil
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.InvoiceStatus, at time.Time) error {
	query := `UPDATE invoices SET status = $1, updated_at = $2,
		sent_at = CASE WHEN $1 = 'sent' THEN $2 ELSE sent_at END,
		cancelled_at = CASE WHEN $1 = 'cancelled' THEN $2 ELSE cancelled_at END
		WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, string(to), at, id, string(from))
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvalidStatusTransition
	}
	return nil
}

func (r *invoiceRepo) RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal, at time.Time) (*domain.Invoice, error) {
	query := `UPDATE invoices SET
		amount_paid = amount_paid + $1,
		amount_due = amount_due - $1,
		status = CASE WHEN amount_due - $1 <= 0 THEN 'paid' ELSE 'partial' END,
		paid_at = CASE WHEN amount_due - $1 <= 0 THEN $2 ELSE paid_at END,
		updated_at = $2
		WHERE id = $3 AND status = ANY($4) AND amount_due >= $1
		RETURNING *`
	statuses := make([]string, len(openStatuses))
	for i, s := range openStatuses {
		statuses[i] = string(s)
	}

	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, query, amount, at, id, statuses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("invoiceRepo.RecordPayment: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) UpdateDocumentKey(ctx context.Context, id uuid.UUID, key string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE invoices SET document_key = $1, updated_at = $2 WHERE id = $3",
		key, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateDocumentKey: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status = 'overdue', updated_at = $1
		WHERE status IN ('sent', 'viewed', 'partial')
		AND due_date IS NOT NULL AND due_date < $2`,
		asOf, asOf.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("invoiceRepo.MarkOverdue: %w", err)
	}
	return result.RowsAffected()
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM invoices WHERE id = $1 AND status = $2", id, string(domain.InvoiceStatusDraft))
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotDeletable
	}
	return nil
}
