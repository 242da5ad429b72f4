package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"supercrm/internal/domain"
	"supercrm/internal/logger"
	"supercrm/internal/port"
	"supercrm/internal/tax/gst"
)

// CreateCounterpartyInput is the DTO for registering a counterparty.
type CreateCounterpartyInput struct {
	Kind       domain.CounterpartyKind `json:"kind" binding:"required,oneof=contact freelancer contractor vendor"`
	Name       string                  `json:"name" binding:"required,max=255"`
	Email      string                  `json:"email" binding:"omitempty,email"`
	Phone      string                  `json:"phone" binding:"max=32"`
	Address    string                  `json:"address" binding:"max=1000"`
	StateCode  string                  `json:"state_code" binding:"omitempty,state_code"`
	GSTIN      string                  `json:"gstin" binding:"omitempty,gstin"`
	PAN        string                  `json:"pan" binding:"omitempty,pan"`
	PartyType  domain.PartyType        `json:"party_type" binding:"omitempty,oneof=individual huf company firm other"`
	VendorType domain.VendorType       `json:"vendor_type" binding:"omitempty,oneof=supplier service"`
}

// CounterpartyService defines the counterparty management contract.
type CounterpartyService interface {
	Create(ctx context.Context, input CreateCounterpartyInput) (*domain.Counterparty, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error)
	List(ctx context.Context, kind domain.CounterpartyKind, offset, limit int) ([]domain.Counterparty, int, error)
}

type counterpartyService struct {
	repo port.CounterpartyRepository
}

// NewCounterpartyService creates a new CounterpartyService implementation.
func NewCounterpartyService(repo port.CounterpartyRepository) CounterpartyService {
	return &counterpartyService{repo: repo}
}

func (s *counterpartyService) Create(ctx context.Context, input CreateCounterpartyInput) (*domain.Counterparty, error) {
	if !domain.ValidCounterpartyKinds[input.Kind] {
		return nil, domain.ErrInvalidCounterpartyKind
	}

	gstin := strings.ToUpper(strings.TrimSpace(input.GSTIN))
	pan := strings.ToUpper(strings.TrimSpace(input.PAN))
	stateCode := strings.TrimSpace(input.StateCode)

	if gstin != "" {
		if !gst.ValidGSTIN(gstin) {
			return nil, domain.ErrInvalidGSTIN
		}
		fromGSTIN, _ := gst.StateCodeFromGSTIN(gstin)
		if stateCode == "" {
			stateCode = fromGSTIN
		} else if stateCode != fromGSTIN {
			return nil, domain.ErrInvalidStateCode
		}
		embedded, _ := gst.PANFromGSTIN(gstin)
		if pan == "" {
			pan = embedded
		} else if pan != embedded {
			return nil, domain.ErrInvalidPAN
		}
	}
	if stateCode == "" || !gst.ValidStateCode(stateCode) {
		return nil, domain.ErrInvalidStateCode
	}
	if pan != "" && !gst.ValidPAN(pan) {
		return nil, domain.ErrInvalidPAN
	}

	partyType := input.PartyType
	if partyType == "" {
		partyType = domain.PartyIndividual
	}
	if !domain.ValidPartyTypes[partyType] {
		return nil, domain.ErrInvalidPartyType
	}

	cp := &domain.Counterparty{
		Kind:      input.Kind,
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     input.Phone,
		Address:   input.Address,
		StateCode: stateCode,
		PartyType: partyType,
	}
	if gstin != "" {
		cp.GSTIN = &gstin
	}
	if pan != "" {
		cp.PAN = &pan
	}
	if input.Kind == domain.CounterpartyVendor {
		vt := input.VendorType
		if vt == "" {
			vt = domain.VendorService
		}
		if !domain.ValidVendorTypes[vt] {
			return nil, domain.ErrInvalidVendorType
		}
		cp.VendorType = &vt
	}

	if err := s.repo.Create(ctx, cp); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("counterparty_id", cp.ID.String()).
		Str("kind", string(cp.Kind)).
		Bool("has_pan", cp.HasPAN()).
		Msg("counterparty created")
	return cp, nil
}

func (s *counterpartyService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Counterparty, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *counterpartyService) List(ctx context.Context, kind domain.CounterpartyKind, offset, limit int) ([]domain.Counterparty, int, error) {
	if kind != "" && !domain.ValidCounterpartyKinds[kind] {
		return []domain.Counterparty{}, 0, nil
	}
	return s.repo.List(ctx, kind, offset, limit)
}
