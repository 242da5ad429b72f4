package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"supercrm/internal/port"
)

// MockInvoiceMailer is a mock implementation of port.InvoiceMailer.
type MockInvoiceMailer struct {
	mock.Mock
}

func (m *MockInvoiceMailer) SendInvoice(ctx context.Context, msg port.InvoiceEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
