package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	EventNewMessage     = "message:new"
	EventBadgeIncrement = "badge:increment"
)

// Event is the payload published on a recipient's inbox channel. Delivery is
// best-effort: the database row is the source of truth and a dropped event
// only delays the UI until the next fetch.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedOn string         `json:"created_on"`
}

// Broadcaster publishes realtime events to per-user channels. Failures are
// logged and swallowed; no method reports an error to the caller.
type Broadcaster interface {
	NewMessage(ctx context.Context, recipientID int32, msg *domain.Message)
	BadgeIncrement(ctx context.Context, recipientID int32)
}

type redisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) Broadcaster {
	return &redisBroadcaster{client: client}
}

// InboxChannel is the pub/sub channel for one user's inbox events.
func InboxChannel(userID int32) string {
	return fmt.Sprintf("inbox:%d", userID)
}

func (b *redisBroadcaster) NewMessage(ctx context.Context, recipientID int32, msg *domain.Message) {
	b.publish(ctx, recipientID, Event{
		Type: EventNewMessage,
		Payload: map[string]any{
			"message_id":   msg.ID,
			"message_type": msg.MessageType,
			"sender_id":    msg.SenderID,
			"subject":      msg.Subject,
		},
	})
}

func (b *redisBroadcaster) BadgeIncrement(ctx context.Context, recipientID int32) {
	b.publish(ctx, recipientID, Event{Type: EventBadgeIncrement})
}

func (b *redisBroadcaster) publish(ctx context.Context, recipientID int32, event Event) {
	event.ID = uuid.New().String()
	event.CreatedOn = time.Now().Format(time.RFC3339)

	channel := InboxChannel(recipientID)
	logger.ExternalServiceCall("redis", "PUBLISH", "channel", channel, "eventType", event.Type)

	data, err := json.Marshal(event)
	if err != nil {
		logger.ExternalServiceResult("redis", "PUBLISH", err, "channel", channel)
		return
	}

	// Attempted exactly once; a failed publish is logged and dropped
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		logger.ExternalServiceResult("redis", "PUBLISH", err, "channel", channel, "eventType", event.Type)
		return
	}
	logger.ExternalServiceResult("redis", "PUBLISH", nil, "channel", channel, "eventType", event.Type)
}
