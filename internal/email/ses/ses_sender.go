package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"supercrm/internal/port"
)

type sesMailer struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESMailer creates a new SES-backed InvoiceMailer.
func NewSESMailer(region, fromAddress, fromName string) (port.InvoiceMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesMailer{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesMailer) SendInvoice(ctx context.Context, msg port.InvoiceEmail) error {
	subject, htmlBody, textBody := buildInvoiceMessage(msg)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{msg.ToEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildInvoiceMessage(msg port.InvoiceEmail) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("Invoice %s from %s", msg.InvoiceNumber, msg.CompanyName)

	due := ""
	if msg.DueDate != nil {
		due = fmt.Sprintf(" by %s", msg.DueDate.Format("02 Jan 2006"))
	}

	textBody = fmt.Sprintf("Hi %s,\n\nPlease find invoice %s for INR %s%s at the link below:\n%s\n\n%s",
		msg.ToName, msg.InvoiceNumber, msg.AmountDue, due, msg.DocumentURL, msg.CompanyName)

	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice %s</h2>
  <p>Hi %s,</p>
  <p>Amount payable: <strong>INR %s</strong>%s.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Invoice</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`,
		html.EscapeString(msg.InvoiceNumber),
		html.EscapeString(msg.ToName),
		html.EscapeString(msg.AmountDue),
		html.EscapeString(due),
		html.EscapeString(msg.DocumentURL),
		html.EscapeString(msg.DocumentURL),
		html.EscapeString(msg.CompanyName))
	return subject, htmlBody, textBody
}
