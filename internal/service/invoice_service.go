package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"supercrm/internal/config"
	"supercrm/internal/document"
	"supercrm/internal/domain"
	"supercrm/internal/logger"
	"supercrm/internal/numbering"
	"supercrm/internal/port"
	"supercrm/internal/tax/gst"
	"supercrm/internal/tax/tds"
)

// IST is the zone used for invoice dates and financial-year boundaries.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// InvoiceDetail is an invoice with its line items and counterparty.
type InvoiceDetail struct {
	Invoice      *domain.Invoice          `json:"invoice"`
	Items        []domain.InvoiceLineItem `json:"items"`
	Counterparty *domain.Counterparty     `json:"counterparty"`
	TDS          *tds.Result              `json:"tds,omitempty"`
}

// RecordPaymentInput is the DTO for recording a payment against an invoice.
type RecordPaymentInput struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
}

// InvoiceService defines the invoice lifecycle contract.
type InvoiceService interface {
	Preview(ctx context.Context, input CreateInvoiceInput) (*InvoiceDetail, error)
	Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceDetail, error)
	GetByID(ctx context.Context, id uuid.UUID) (*InvoiceDetail, error)
	GetByNumber(ctx context.Context, number string) (*InvoiceDetail, error)
	List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error)
	ListByFinancialYear(ctx context.Context, financialYear string) ([]domain.Invoice, error)
	Send(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	MarkViewed(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*domain.Invoice, error)
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	DocumentURL(ctx context.Context, id uuid.UUID) (string, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

type invoiceService struct {
	invoiceRepo      port.InvoiceRepository
	transactor       port.InvoiceTransactor
	counterpartyRepo port.CounterpartyRepository
	storage          port.ObjectStorage
	mailer           port.InvoiceMailer
	renderer         port.DocumentRenderer
	builder          *document.Builder
	company          config.CompanyConfig
	tax              config.TaxConfig
	s3               config.S3Config
	now              func() time.Time
}

// InvoiceServiceDeps bundles the collaborators of InvoiceService.
type InvoiceServiceDeps struct {
	InvoiceRepo      port.InvoiceRepository
	Transactor       port.InvoiceTransactor
	CounterpartyRepo port.CounterpartyRepository
	Storage          port.ObjectStorage
	Mailer           port.InvoiceMailer
	Renderer         port.DocumentRenderer
	Company          config.CompanyConfig
	Tax              config.TaxConfig
	S3               config.S3Config
	Now              func() time.Time
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(deps InvoiceServiceDeps) InvoiceService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().In(IST) }
	}
	return &invoiceService{
		invoiceRepo:      deps.InvoiceRepo,
		transactor:       deps.Transactor,
		counterpartyRepo: deps.CounterpartyRepo,
		storage:          deps.Storage,
		mailer:           deps.Mailer,
		renderer:         deps.Renderer,
		builder:          document.NewBuilder(deps.Company),
		company:          deps.Company,
		tax:              deps.Tax,
		s3:               deps.S3,
		now:              now,
	}
}

func (s *invoiceService) Preview(ctx context.Context, input CreateInvoiceInput) (*InvoiceDetail, error) {
	a, cp, err := s.compute(ctx, &input)
	if err != nil {
		return nil, err
	}
	a.invoice.FinancialYear = numbering.FinancialYear(s.now())
	return &InvoiceDetail{Invoice: a.invoice, Items: a.items, Counterparty: cp, TDS: a.tds}, nil
}

func (s *invoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceDetail, error) {
	a, cp, err := s.compute(ctx, &input)
	if err != nil {
		return nil, err
	}
	inv := a.invoice
	err = s.transactor.WithinTx(ctx, func(uow port.InvoiceUnitOfWork) error {
		num, err := numbering.NewGenerator(uow, s.now).NextFor(ctx, input.InvoiceType)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		inv.InvoiceNumber = num.String()
		inv.NumberPrefix = num.Prefix
		inv.FinancialYear = num.FinancialYear
		inv.SequenceNo = num.Sequence
		inv.CreatedAt = now
		inv.UpdatedAt = now
		for i := range a.items {
			a.items[i].CreatedAt = now
		}

		if err := uow.InsertInvoice(ctx, inv); err != nil {
			return err
		}
		return uow.InsertLineItems(ctx, a.items)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateInvoiceNumber) || errors.Is(err, domain.ErrSequenceExhausted) {
			return nil, err
		}
		return nil, fmt.Errorf("invoice.Create: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("invoice_id", inv.ID.String()).
		Str("invoice_number", inv.InvoiceNumber).
		Str("invoice_type", string(inv.InvoiceType)).
		Str("total", inv.TotalAmount.String()).
		Msg("invoice created")

	return &InvoiceDetail{Invoice: inv, Items: a.items, Counterparty: cp, TDS: a.tds}, nil
}

// compute validates the input and produces the invoice and its lines without
// touching the numbering sequence.
func (s *invoiceService) compute(ctx context.Context, input *CreateInvoiceInput) (*assembly, *domain.Counterparty, error) {
	if !domain.ValidInvoiceTypes[input.InvoiceType] {
		return nil, nil, domain.ErrInvalidInvoiceType
	}
	if err := validateItems(input.Items); err != nil {
		return nil, nil, err
	}

	cp, err := s.counterpartyRepo.GetByID(ctx, input.CounterpartyID)
	if err != nil {
		return nil, nil, err
	}
	if cp.Kind != input.InvoiceType.CounterpartyKind() {
		return nil, nil, domain.ErrCounterpartyMismatch
	}

	placeOfSupply := input.PlaceOfSupply
	if placeOfSupply == "" {
		placeOfSupply = cp.StateCode
	}
	if !gst.ValidStateCode(placeOfSupply) {
		return nil, nil, domain.ErrInvalidStateCode
	}

	invoiceDate := s.now()
	if input.InvoiceDate != nil {
		invoiceDate = *input.InvoiceDate
	}
	dueDate := input.DueDate
	if dueDate == nil && s.company.PaymentTermsDays > 0 {
		d := invoiceDate.AddDate(0, 0, s.company.PaymentTermsDays)
		dueDate = &d
	}

	intra := gst.IsIntraState(placeOfSupply, s.company.StateCode)
	a := assemble(input, placeOfSupply, intra, invoiceDate, dueDate)

	if input.InvoiceType.WithholdsTDS() {
		res, err := s.withholding(ctx, input.InvoiceType, cp, a.invoice.TaxableAmount)
		if err != nil {
			return nil, nil, err
		}
		a.applyTDS(res)
	}
	return a, cp, nil
}

// withholding computes TDS on the taxable amount using the configured policy.
func (s *invoiceService) withholding(ctx context.Context, t domain.InvoiceType, cp *domain.Counterparty, taxable decimal.Decimal) (tds.Result, error) {
	var vendorType domain.VendorType
	if cp.VendorType != nil {
		vendorType = *cp.VendorType
	}

	if s.tax.TDSPolicy != config.TDSPolicyStatutory {
		switch t {
		case domain.InvoiceTypeFreelancer:
			return tds.ForFreelancerInvoice(taxable, cp.HasPAN()), nil
		case domain.InvoiceTypeContractor:
			return tds.ForContractorInvoice(taxable, cp.PartyType, cp.HasPAN()), nil
		default:
			return tds.ForVendorInvoice(taxable, vendorType, cp.PartyType, cp.HasPAN()), nil
		}
	}

	kind := tds.PaymentVendor
	switch t {
	case domain.InvoiceTypeFreelancer:
		kind = tds.PaymentFreelancer
	case domain.InvoiceTypeContractor:
		kind = tds.PaymentContractor
	}
	section := tds.DetermineSection(kind, vendorType)

	cumulative, err := s.invoiceRepo.SumTaxableForCounterparty(ctx, cp.ID, numbering.FinancialYear(s.now()))
	if err != nil {
		return tds.Result{}, fmt.Errorf("invoice.withholding: %w", err)
	}
	return tds.Calculate(tds.Input{
		Amount:           taxable,
		Section:          section,
		PartyType:        cp.PartyType,
		IsProfessional:   section == tds.Section194J,
		CumulativeAmount: cumulative,
		HasPAN:           cp.HasPAN(),
	})
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceDetail, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, inv)
}

func (s *invoiceService) GetByNumber(ctx context.Context, number string) (*InvoiceDetail, error) {
	if !numbering.Valid(number) {
		return nil, domain.ErrInvoiceNotFound
	}
	inv, err := s.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, inv)
}

func (s *invoiceService) detail(ctx context.Context, inv *domain.Invoice) (*InvoiceDetail, error) {
	items, err := s.invoiceRepo.ListLineItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	cp, err := s.counterpartyRepo.GetByID(ctx, inv.CounterpartyID)
	if err != nil && !errors.Is(err, domain.ErrCounterpartyNotFound) {
		return nil, err
	}
	return &InvoiceDetail{Invoice: inv, Items: items, Counterparty: cp}, nil
}

func (s *invoiceService) List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, filter, offset, limit)
}

func (s *invoiceService) ListByFinancialYear(ctx context.Context, financialYear string) ([]domain.Invoice, error) {
	return s.invoiceRepo.ListByFinancialYear(ctx, financialYear)
}

// Send renders the invoice, archives the PDF, emails the counterparty a link
// and moves the invoice from draft to sent.
func (s *invoiceService) Send(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv := d.Invoice
	if !inv.Status.CanTransition(domain.InvoiceStatusSent) {
		return nil, domain.ErrInvalidStatusTransition
	}
	if d.Counterparty == nil {
		return nil, domain.ErrCounterpartyNotFound
	}
	if d.Counterparty.Email == "" {
		return nil, domain.ErrRecipientEmailMissing
	}

	key, err := s.archive(ctx, d)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.GetPresignedURL(ctx, s.s3.Bucket, key, s.s3.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("invoice.Send presign: %w", err)
	}

	err = s.mailer.SendInvoice(ctx, port.InvoiceEmail{
		ToEmail:       d.Counterparty.Email,
		ToName:        d.Counterparty.Name,
		CompanyName:   s.company.Name,
		InvoiceNumber: inv.InvoiceNumber,
		AmountDue:     inv.AmountDue.StringFixed(2),
		DueDate:       inv.DueDate,
		DocumentURL:   url,
	})
	if err != nil {
		return nil, fmt.Errorf("invoice.Send email: %w", err)
	}

	at := time.Now().UTC()
	if err := s.invoiceRepo.UpdateStatus(ctx, id, inv.Status, domain.InvoiceStatusSent, at); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatusSent
	inv.SentAt = &at

	log := logger.FromContext(ctx)
	log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Str("to", d.Counterparty.Email).
		Msg("invoice sent")
	return inv, nil
}

// archive renders the invoice and stores it, returning the object key.
func (s *invoiceService) archive(ctx context.Context, d *InvoiceDetail) (string, error) {
	data := s.builder.Build(d.Invoice, d.Items, d.Counterparty)
	pdf, err := s.renderer.Render(data)
	if err != nil {
		return "", fmt.Errorf("invoice.archive render: %w", err)
	}

	key := DocumentKey(d.Invoice)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3.Bucket,
		Key:         key,
		Body:        bytes.NewReader(pdf),
		ContentType: s.renderer.ContentType(),
		Size:        int64(len(pdf)),
	})
	if err != nil {
		return "", fmt.Errorf("invoice.archive upload: %w", err)
	}
	if err := s.invoiceRepo.UpdateDocumentKey(ctx, d.Invoice.ID, key); err != nil {
		if delErr := s.storage.Delete(ctx, s.s3.Bucket, key); delErr != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(delErr).Str("key", key).Msg("failed to remove unreferenced invoice document")
		}
		return "", err
	}
	d.Invoice.DocumentKey = &key
	return key, nil
}

// DocumentKey is the archive object key for an invoice's PDF.
func DocumentKey(inv *domain.Invoice) string {
	return fmt.Sprintf("invoices/%s/%s.pdf", inv.FinancialYear, FileName(inv.InvoiceNumber))
}

// FileName turns an invoice number into a filesystem-safe name.
func FileName(number string) string {
	return strings.ReplaceAll(number, "/", "-")
}

func (s *invoiceService) MarkViewed(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == domain.InvoiceStatusViewed {
		return inv, nil
	}
	if inv.Status != domain.InvoiceStatusSent {
		return nil, domain.ErrInvalidStatusTransition
	}
	if err := s.invoiceRepo.UpdateStatus(ctx, id, inv.Status, domain.InvoiceStatusViewed, time.Now().UTC()); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatusViewed
	return inv, nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*domain.Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	amount := input.Amount.Round(2)

	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransition(domain.InvoiceStatusPartial) && !inv.Status.CanTransition(domain.InvoiceStatusPaid) {
		return nil, domain.ErrInvalidStatusTransition
	}
	if amount.GreaterThan(inv.AmountDue) {
		return nil, domain.ErrOverpayment
	}

	updated, err := s.invoiceRepo.RecordPayment(ctx, id, amount, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("invoice_number", updated.InvoiceNumber).
		Str("amount", amount.String()).
		Str("status", string(updated.Status)).
		Msg("payment recorded")
	return updated, nil
}

func (s *invoiceService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransition(domain.InvoiceStatusCancelled) {
		return nil, domain.ErrInvalidStatusTransition
	}
	at := time.Now().UTC()
	if err := s.invoiceRepo.UpdateStatus(ctx, id, inv.Status, domain.InvoiceStatusCancelled, at); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatusCancelled
	inv.CancelledAt = &at
	return inv, nil
}

// Delete erases a draft. Anything that has been sent is kept and must be cancelled instead.
func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv.Status != domain.InvoiceStatusDraft {
		return domain.ErrInvoiceNotDeletable
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// RenderPDF returns the archived copy when one exists, otherwise a fresh render.
func (s *invoiceService) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	d, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	name := FileName(d.Invoice.InvoiceNumber) + ".pdf"

	if d.Invoice.DocumentKey != nil {
		data, err := s.storage.Download(ctx, s.s3.Bucket, *d.Invoice.DocumentKey)
		if err == nil {
			return data, name, nil
		}
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("invoice_number", d.Invoice.InvoiceNumber).Msg("archived pdf unavailable, re-rendering")
	}

	out, err := s.renderer.Render(s.builder.Build(d.Invoice, d.Items, d.Counterparty))
	if err != nil {
		return nil, "", fmt.Errorf("invoice.RenderPDF: %w", err)
	}
	return out, name, nil
}

func (s *invoiceService) DocumentURL(ctx context.Context, id uuid.UUID) (string, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if inv.DocumentKey == nil {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, s.s3.Bucket, *inv.DocumentKey, s.s3.PresignExpiry)
}

func (s *invoiceService) MarkOverdue(ctx context.Context) (int64, error) {
	return s.invoiceRepo.MarkOverdue(ctx, s.now())
}
