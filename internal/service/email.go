package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"carscene-backend/internal/logger"
)

type sendGridEmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridEmailService creates the transactional email sender used for
// membership workflow notifications.
func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendInvitationEmail(ctx context.Context, toEmail, toName, clubName, inviterName string) error {
	subject := fmt.Sprintf("You've been invited to join %s", clubName)
	plain := fmt.Sprintf(
		"Hi %s,\n\n%s has invited you to join %s on Car Scene NZ.\n\nOpen your inbox in the app to accept or decline.\n",
		toName, inviterName, clubName,
	)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p><strong>%s</strong> has invited you to join <strong>%s</strong> on Car Scene NZ.</p><p>Open your inbox in the app to accept or decline.</p>",
		toName, inviterName, clubName,
	)
	return s.send(ctx, toEmail, toName, subject, plain, html)
}

func (s *sendGridEmailService) SendMembershipResultEmail(ctx context.Context, toEmail, toName, clubName string, accepted bool) error {
	var subject, plain, html string
	if accepted {
		subject = fmt.Sprintf("Welcome to %s", clubName)
		plain = fmt.Sprintf("Hi %s,\n\nYour membership in %s has been approved. See you at the next meet!\n", toName, clubName)
		html = fmt.Sprintf("<p>Hi %s,</p><p>Your membership in <strong>%s</strong> has been approved. See you at the next meet!</p>", toName, clubName)
	} else {
		subject = fmt.Sprintf("Update on your request to join %s", clubName)
		plain = fmt.Sprintf("Hi %s,\n\nYour request to join %s was not approved this time.\n", toName, clubName)
		html = fmt.Sprintf("<p>Hi %s,</p><p>Your request to join <strong>%s</strong> was not approved this time.</p>", toName, clubName)
	}
	return s.send(ctx, toEmail, toName, subject, plain, html)
}

func (s *sendGridEmailService) send(ctx context.Context, toEmail, toName, subject, plain, html string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	logger.ExternalServiceCall("sendgrid", "Send", "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d", response.StatusCode)
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "Send", nil, "status", response.StatusCode)
	return nil
}

// NoopEmailService is used when no SendGrid key is configured (local dev).
type NoopEmailService struct{}

func (NoopEmailService) SendInvitationEmail(ctx context.Context, toEmail, toName, clubName, inviterName string) error {
	logger.Debug("Email disabled, skipping invitation email", "to", toEmail, "club", clubName)
	return nil
}

func (NoopEmailService) SendMembershipResultEmail(ctx context.Context, toEmail, toName, clubName string, accepted bool) error {
	logger.Debug("Email disabled, skipping membership result email", "to", toEmail, "club", clubName)
	return nil
}
