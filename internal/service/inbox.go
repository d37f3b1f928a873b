package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carscene-backend/internal/cache"
	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/repository"
)

const (
	defaultInboxPageSize = 20
	maxInboxPageSize     = 100
)

type inboxService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	cache    cache.Invalidator
	notifier *Notifier
}

func NewInboxService(messages repository.MessageRepository, users repository.UserRepository, invalidator cache.Invalidator, n *Notifier) InboxService {
	return &inboxService{messages: messages, users: users, cache: invalidator, notifier: n}
}

func (s *inboxService) GetInbox(ctx context.Context, userID, page, pageSize int32) ([]domain.Message, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultInboxPageSize
	}
	if pageSize > maxInboxPageSize {
		pageSize = maxInboxPageSize
	}
	offset := (page - 1) * pageSize
	return s.messages.ListByRecipient(ctx, userID, pageSize, offset)
}

func (s *inboxService) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	return s.messages.UnreadCount(ctx, userID)
}

// MarkAsRead is scoped to the caller's own rows; marking someone else's
// message reports not found rather than leaking its existence.
func (s *inboxService) MarkAsRead(ctx context.Context, userID, messageID int32) error {
	if messageID <= 0 {
		return fmt.Errorf("%w: message_id is required", domain.ErrValidation)
	}
	if err := s.messages.MarkAsRead(ctx, messageID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: message not found", domain.ErrNotFound)
		}
		return err
	}
	s.cache.InvalidateTags(ctx, cache.InboxTag(userID))
	return nil
}

func (s *inboxService) SendDirectMessage(ctx context.Context, senderID, recipientID int32, subject, body string) (*domain.Message, error) {
	logger.EnterMethod("InboxService.SendDirectMessage", "senderId", senderID, "recipientId", recipientID)

	if recipientID <= 0 || body == "" {
		return nil, fmt.Errorf("%w: recipient_id and message are required", domain.ErrValidation)
	}
	if recipientID == senderID {
		return nil, fmt.Errorf("%w: cannot message yourself", domain.ErrValidation)
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: recipient not found", domain.ErrNotFound)
		}
		return nil, err
	}
	if subject == "" {
		subject = fmt.Sprintf("Message from %s", sender.DisplayName)
	}

	msg := &domain.Message{
		MessageType: domain.MessageTypeDirect,
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
		Status:      domain.MessageStatusResolved,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		logger.ExitMethodWithError("InboxService.SendDirectMessage", err)
		return nil, err
	}

	s.notifier.MessageDelivered(ctx, msg, fmt.Sprintf("New message from %s", sender.DisplayName), subject)
	logger.ExitMethod("InboxService.SendDirectMessage", "messageId", msg.ID)
	return msg, nil
}
