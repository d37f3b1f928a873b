package service

import (
	"context"
	"strconv"

	"carscene-backend/internal/cache"
	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/push"
	"carscene-backend/internal/realtime"
	"carscene-backend/internal/repository"
)

// Notifier bundles the best-effort side effects that follow a committed inbox
// write: cache invalidation so the recipient's next inbox fetch is fresh,
// realtime broadcast for connected clients, and a push notification for
// everyone else. None of these can fail the request; the database row is
// already the source of truth.
type Notifier struct {
	users       repository.UserRepository
	cache       cache.Invalidator
	broadcaster realtime.Broadcaster
	push        push.Sender
}

func NewNotifier(users repository.UserRepository, invalidator cache.Invalidator, broadcaster realtime.Broadcaster, pushSender push.Sender) *Notifier {
	return &Notifier{
		users:       users,
		cache:       invalidator,
		broadcaster: broadcaster,
		push:        pushSender,
	}
}

// MessageDelivered runs the post-commit fan-out for one inbox row.
func (n *Notifier) MessageDelivered(ctx context.Context, msg *domain.Message, pushTitle, pushBody string) {
	n.cache.InvalidateTags(ctx, cache.InboxTag(msg.RecipientID))
	n.broadcaster.NewMessage(ctx, msg.RecipientID, msg)
	n.broadcaster.BadgeIncrement(ctx, msg.RecipientID)

	if pushTitle == "" {
		return
	}
	tokens, err := n.users.ListDeviceTokens(ctx, msg.RecipientID)
	if err != nil {
		logger.Warn("Could not load device tokens for push", "userId", msg.RecipientID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}
	raw := make([]string, 0, len(tokens))
	for _, t := range tokens {
		raw = append(raw, t.Token)
	}
	n.push.SendToTokens(ctx, raw, pushTitle, pushBody, map[string]string{
		"message_id":   strconv.FormatInt(int64(msg.ID), 10),
		"message_type": string(msg.MessageType),
	})
}
