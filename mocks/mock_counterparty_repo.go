package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"supercrm/internal/domain"
)

// MockCounterpartyRepo is a mock implementation of port.CounterpartyRepository.
type MockCounterpartyRepo struct {
	mock.Mock
}

func (m *MockCounterpartyRepo) Create(ctx context.Context, cp *domain.Counterparty) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockCounterpartyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepo) List(ctx context.Context, kind domain.CounterpartyKind, offset, limit int) ([]domain.Counterparty, int, error) {
	args := m.Called(ctx, kind, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Counterparty), args.Int(1), args.Error(2)
}
