package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"carscene-backend/internal/logger"
)

// Sender delivers push notifications to registered device tokens.
// Best-effort like the realtime broadcast: failures are logged, never
// surfaced.
type Sender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string)
}

type fcmSender struct {
	client *messaging.Client
}

// NewFCMSender initializes a Firebase Cloud Messaging sender from a service
// account credentials file.
func NewFCMSender(ctx context.Context, credentialsFile string) (Sender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}
	return &fcmSender{client: client}, nil
}

func (s *fcmSender) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) {
	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}
		logger.ExternalServiceCall("fcm", "Send", "title", title)
		if _, err := s.client.Send(ctx, msg); err != nil {
			logger.ExternalServiceResult("fcm", "Send", err)
			continue
		}
		logger.ExternalServiceResult("fcm", "Send", nil)
	}
}

// NoopSender is used when push is not configured.
type NoopSender struct{}

func (NoopSender) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) {
}
