package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supercrm/internal/domain"
)

func TestInvoiceRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT \\* FROM invoices WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewInvoiceRepo(db).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestInvoiceRepo_UpdateStatus_StaleStatus(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	at := time.Now().UTC()
	mock.ExpectExec("UPDATE invoices SET status").
		WithArgs("sent", at, id, "draft").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewInvoiceRepo(db).UpdateStatus(context.Background(), id, domain.InvoiceStatusDraft, domain.InvoiceStatusSent, at)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_Delete_OnlyDrafts(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	mock.ExpectExec("DELETE FROM invoices").
		WithArgs(id, "draft").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewInvoiceRepo(db).Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotDeletable)
}

func TestInvoiceRepo_MarkOverdue(t *testing.T) {
	db, mock := newMockDB(t)
	asOf := time.Date(2024, time.December, 1, 2, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE invoices SET status = 'overdue'").
		WithArgs(asOf, "2024-12-01").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewInvoiceRepo(db).MarkOverdue(context.Background(), asOf)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestInvoiceFilterClause(t *testing.T) {
	where, args := invoiceFilterClause(domain.InvoiceFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = invoiceFilterClause(domain.InvoiceFilter{
		InvoiceType:   domain.InvoiceTypeVendor,
		FinancialYear: "2024-25",
	})
	assert.Equal(t, " WHERE invoice_type = $1 AND financial_year = $2", where)
	assert.Equal(t, []interface{}{"vendor", "2024-25"}, args)
}

func TestInvoiceRepo_List(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM invoices WHERE status = \\$1").
		WithArgs("paid").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM invoices WHERE status = \\$1 ORDER BY .* LIMIT \\$2 OFFSET \\$3").
		WithArgs("paid", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"invoice_number", "status"}).AddRow("INV/2024-25/00001", "paid"))

	invoices, total, err := NewInvoiceRepo(db).List(context.Background(), domain.InvoiceFilter{Status: domain.InvoiceStatusPaid}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV/2024-25/00001", invoices[0].InvoiceNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounterpartyRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT \\* FROM counterparties").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewCounterpartyRepo(db).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrCounterpartyNotFound)
}
