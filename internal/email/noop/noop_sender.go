package noop

import (
	"context"

	"supercrm/internal/logger"
	"supercrm/internal/port"
)

type noopMailer struct{}

// NewNoopMailer creates an InvoiceMailer that only logs the outgoing message.
func NewNoopMailer() port.InvoiceMailer {
	return &noopMailer{}
}

func (m *noopMailer) SendInvoice(_ context.Context, msg port.InvoiceEmail) error {
	log := logger.WithComponent("email.noop")
	log.Info().
		Str("to", msg.ToEmail).
		Str("invoice_number", msg.InvoiceNumber).
		Str("url", msg.DocumentURL).
		Msg("invoice email suppressed")
	return nil
}
