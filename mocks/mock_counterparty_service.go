package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"supercrm/internal/domain"
	"supercrm/internal/service"
)

// MockCounterpartyService is a mock implementation of service.CounterpartyService.
type MockCounterpartyService struct {
	mock.Mock
}

func (m *MockCounterpartyService) Create(ctx context.Context, input service.CreateCounterpartyInput) (*domain.Counterparty, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counterparty), args.Error(1)
}

func (m *MockCounterpartyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counterparty), args.Error(1)
}

func (m *MockCounterpartyService) List(ctx context.Context, kind domain.CounterpartyKind, offset, limit int) ([]domain.Counterparty, int, error) {
	args := m.Called(ctx, kind, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Counterparty), args.Int(1), args.Error(2)
}
