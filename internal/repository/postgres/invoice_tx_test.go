package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supercrm/internal/domain"
	"supercrm/internal/port"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO invoice_sequences").
		WithArgs("INV", "2024-25").
		WillReturnRows(sqlmock.NewRows([]string{"last_number"}).AddRow(3))
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO invoice_line_items").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	inv := &domain.Invoice{ID: uuid.New(), InvoiceNumber: "INV/2024-25/00003"}
	items := []domain.InvoiceLineItem{
		{ID: uuid.New(), InvoiceID: inv.ID, Quantity: decimal.NewFromInt(1)},
		{ID: uuid.New(), InvoiceID: inv.ID, Quantity: decimal.NewFromInt(2)},
	}

	var seq int
	err := NewInvoiceTransactor(db).WithinTx(context.Background(), func(uow port.InvoiceUnitOfWork) error {
		var err error
		seq, err = uow.NextSequence(context.Background(), "INV", "2024-25")
		if err != nil {
			return err
		}
		if err := uow.InsertInvoice(context.Background(), inv); err != nil {
			return err
		}
		return uow.InsertLineItems(context.Background(), items)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnLineItemFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO invoice_line_items").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := NewInvoiceTransactor(db).WithinTx(context.Background(), func(uow port.InvoiceUnitOfWork) error {
		if err := uow.InsertInvoice(context.Background(), &domain.Invoice{ID: uuid.New()}); err != nil {
			return err
		}
		return uow.InsertLineItems(context.Background(), []domain.InvoiceLineItem{{ID: uuid.New()}})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InsertLineItems")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertInvoice_DuplicateNumber(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO invoices").WillReturnError(&pgconn.PgError{
		Code:           "23505",
		ConstraintName: invoiceNumberConstraint,
	})
	mock.ExpectRollback()

	err := NewInvoiceTransactor(db).WithinTx(context.Background(), func(uow port.InvoiceUnitOfWork) error {
		return uow.InsertInvoice(context.Background(), &domain.Invoice{ID: uuid.New()})
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoiceNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertLineItems_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := NewInvoiceTransactor(db).WithinTx(context.Background(), func(uow port.InvoiceUnitOfWork) error {
		return uow.InsertLineItems(context.Background(), nil)
	})
	assert.ErrorIs(t, err, domain.ErrNoLineItems)
}

func TestUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "invoices_invoice_number_key"}
	assert.True(t, uniqueViolation(err, ""))
	assert.True(t, uniqueViolation(err, "invoices_invoice_number_key"))
	assert.False(t, uniqueViolation(err, "other"))
	assert.False(t, uniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, uniqueViolation(errors.New("boom"), ""))
}
