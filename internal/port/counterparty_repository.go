package port

import (
	"context"

	"github.com/google/uuid"

	"supercrm/internal/domain"
)

// CounterpartyRepository defines the contract for contact, freelancer,
// contractor and vendor records.
type CounterpartyRepository interface {
	Create(ctx context.Context, cp *domain.Counterparty) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error)
	List(ctx context.Context, kind domain.CounterpartyKind, offset, limit int) ([]domain.Counterparty, int, error)
}
