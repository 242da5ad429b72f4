package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"supercrm/internal/domain"
	"supercrm/internal/port"
)

type counterpartyRepo struct {
	db *sqlx.DB
}

// NewCounterpartyRepo creates a new PostgreSQL-backed CounterpartyRepository.
func NewCounterpartyRepo(db *sqlx.DB) port.CounterpartyRepository {
	return &counterpartyRepo{db: db}
}

func (r *counterpartyRepo) Create(ctx context.Context, cp *domain.Counterparty) error {
	cp.ID = uuid.New()
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	query := `INSERT INTO counterparties (id, kind, name, email, phone, address, state_code,
		gstin, pan, party_type, vendor_type, created_at, updated_at)
		VALUES (:id, :kind, :name, :email, :phone, :address, :state_code,
		:gstin, :pan, :party_type, :vendor_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cp); err != nil {
		return fmt.Errorf("counterpartyRepo.Create: %w", err)
	}
	return nil
}

func (r *counterpartyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error) {
	var cp domain.Counterparty
	err := r.db.GetContext(ctx, &cp, "SELECT * FROM counterparties WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCounterpartyNotFound
		}
		return nil, fmt.Errorf("counterpartyRepo.GetByID: %w", err)
	}
	return &cp, nil
}

func (r *counterpartyRepo) List(ctx context.Context, kind domain.CounterpartyKind, offset, limit int) ([]domain.Counterparty, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM counterparties WHERE ($1 = '' OR kind = $1)", string(kind))
	if err != nil {
		return nil, 0, fmt.Errorf("counterpartyRepo.List count: %w", err)
	}

	var cps []domain.Counterparty
	err = r.db.SelectContext(ctx, &cps,
		`SELECT * FROM counterparties WHERE ($1 = '' OR kind = $1)
		ORDER BY name ASC LIMIT $2 OFFSET $3`, string(kind), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("counterpartyRepo.List: %w", err)
	}
	return cps, total, nil
}
