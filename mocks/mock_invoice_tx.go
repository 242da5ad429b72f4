package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"supercrm/internal/domain"
	"supercrm/internal/port"
)

// MockInvoiceUnitOfWork is a mock implementation of port.InvoiceUnitOfWork.
type MockInvoiceUnitOfWork struct {
	mock.Mock
}

func (m *MockInvoiceUnitOfWork) NextSequence(ctx context.Context, prefix, financialYear string) (int, error) {
	args := m.Called(ctx, prefix, financialYear)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceUnitOfWork) InsertInvoice(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceUnitOfWork) InsertLineItems(ctx context.Context, items []domain.InvoiceLineItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

// MockInvoiceTransactor runs fn against UOW. Committed and RolledBack record
// how the last transaction ended.
type MockInvoiceTransactor struct {
	UOW        *MockInvoiceUnitOfWork
	Committed  bool
	RolledBack bool
}

// NewMockInvoiceTransactor returns a transactor with an empty unit of work.
func NewMockInvoiceTransactor() *MockInvoiceTransactor {
	return &MockInvoiceTransactor{UOW: new(MockInvoiceUnitOfWork)}
}

func (m *MockInvoiceTransactor) WithinTx(_ context.Context, fn func(uow port.InvoiceUnitOfWork) error) error {
	m.Committed, m.RolledBack = false, false
	if err := fn(m.UOW); err != nil {
		m.RolledBack = true
		return err
	}
	m.Committed = true
	return nil
}
