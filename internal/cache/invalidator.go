package cache

import (
	"context"
	"fmt"

	"carscene-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Invalidator marks cached page fragments stale by logical tag or by path.
// Tags map to Redis sets of cache keys; invalidating a tag deletes every key
// in its set. Like the realtime broadcast, invalidation is best-effort: a
// failure is logged and the stale fragment simply lives until its TTL.
type Invalidator interface {
	InvalidateTags(ctx context.Context, tags ...string)
	InvalidatePaths(ctx context.Context, paths ...string)
}

// Tag builders shared by services so producers and invalidators agree on
// naming.
func InboxTag(userID int32) string   { return fmt.Sprintf("inbox:%d", userID) }
func ClubTag(clubID int32) string    { return fmt.Sprintf("club:%d", clubID) }
func ProfileTag(userID int32) string { return fmt.Sprintf("profile:%d", userID) }
func GarageTag() string              { return "garage:gallery" }
func ClubListTag() string            { return "clubs:list" }

type redisInvalidator struct {
	client *redis.Client
}

func NewRedisInvalidator(client *redis.Client) Invalidator {
	return &redisInvalidator{client: client}
}

func (i *redisInvalidator) InvalidateTags(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		setKey := "cachetag:" + tag
		keys, err := i.client.SMembers(ctx, setKey).Result()
		if err != nil {
			logger.ExternalServiceResult("redis", "SMEMBERS", err, "tag", tag)
			continue
		}
		keys = append(keys, setKey)
		if err := i.client.Del(ctx, keys...).Err(); err != nil {
			logger.ExternalServiceResult("redis", "DEL", err, "tag", tag, "keys", len(keys))
			continue
		}
		logger.Debug("Cache tag invalidated", "tag", tag, "keys", len(keys))
	}
}

func (i *redisInvalidator) InvalidatePaths(ctx context.Context, paths ...string) {
	for _, path := range paths {
		if err := i.client.Del(ctx, "cachepath:"+path).Err(); err != nil {
			logger.ExternalServiceResult("redis", "DEL", err, "path", path)
		}
	}
}
