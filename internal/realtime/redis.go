package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ayush/chatter/backend/internal/models"
)

const (
	onlineSetKey    = "online_users"
	presenceTopic   = "presence"
	messageTopicFmt = "messages:%s"
)

// RedisChannel implements Channel on Redis: the online set lives in a Redis
// set, and snapshots plus new-message events go out over pub/sub so any
// number of socket gateways can subscribe.
type RedisChannel struct {
	rdb *redis.Client
}

func NewRedisChannel(rdb *redis.Client) *RedisChannel {
	return &RedisChannel{rdb: rdb}
}

func (c *RedisChannel) Register(ctx context.Context, userID string) error {
	if err := c.rdb.SAdd(ctx, onlineSetKey, userID).Err(); err != nil {
		return fmt.Errorf("presence register: %w", err)
	}
	return c.broadcastOnline(ctx)
}

func (c *RedisChannel) Deregister(ctx context.Context, userID string) error {
	if err := c.rdb.SRem(ctx, onlineSetKey, userID).Err(); err != nil {
		return fmt.Errorf("presence deregister: %w", err)
	}
	return c.broadcastOnline(ctx)
}

func (c *RedisChannel) Online(ctx context.Context) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("presence members: %w", err)
	}
	return ids, nil
}

// MessageSent publishes the message on the recipient's topic. Delivery is
// best-effort: no subscriber, no error.
func (c *RedisChannel) MessageSent(ctx context.Context, msg *models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message event: %w", err)
	}
	topic := fmt.Sprintf(messageTopicFmt, msg.ReceiverID.Hex())
	if err := c.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publish message event: %w", err)
	}
	return nil
}

// broadcastOnline publishes the full online-id set on the presence topic.
func (c *RedisChannel) broadcastOnline(ctx context.Context) error {
	ids, err := c.Online(ctx)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal presence snapshot: %w", err)
	}
	if err := c.rdb.Publish(ctx, presenceTopic, payload).Err(); err != nil {
		return fmt.Errorf("publish presence snapshot: %w", err)
	}
	return nil
}
