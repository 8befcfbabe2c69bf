package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/chatter/backend/internal/models"
)

func newTestChannel(t *testing.T) (*RedisChannel, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisChannel(rdb), rdb
}

func TestRedisChannel_RegisterDeregister(t *testing.T) {
	ch, _ := newTestChannel(t)
	ctx := context.Background()

	require.NoError(t, ch.Register(ctx, "u1"))
	require.NoError(t, ch.Register(ctx, "u2"))

	online, err := ch.Online(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1", "u2"}, online)

	require.NoError(t, ch.Deregister(ctx, "u1"))

	online, err = ch.Online(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u2"}, online)
}

func TestRedisChannel_RegisterIsIdempotent(t *testing.T) {
	ch, _ := newTestChannel(t)
	ctx := context.Background()

	require.NoError(t, ch.Register(ctx, "u1"))
	require.NoError(t, ch.Register(ctx, "u1"))

	online, err := ch.Online(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u1"}, online)
}

func TestRedisChannel_BroadcastsFullOnlineSet(t *testing.T) {
	ch, rdb := newTestChannel(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, presenceTopic)
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, ch.Register(ctx, "u1"))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ids))
	require.ElementsMatch(t, []string{"u1"}, ids)

	require.NoError(t, ch.Deregister(ctx, "u1"))

	msg, err = sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ids))
	require.Empty(t, ids)
}

func TestRedisChannel_MessageSentReachesRecipientTopic(t *testing.T) {
	ch, rdb := newTestChannel(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	receiver := primitive.NewObjectID()
	sub := rdb.Subscribe(ctx, "messages:"+receiver.Hex())
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	sent := &models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   primitive.NewObjectID(),
		ReceiverID: receiver,
		Text:       "hello",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, ch.MessageSent(ctx, sent))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var got models.Message
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	require.Equal(t, sent.ID, got.ID)
	require.Equal(t, "hello", got.Text)
}

func TestRedisChannel_MessageSentWithoutSubscribers(t *testing.T) {
	ch, _ := newTestChannel(t)

	msg := &models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   primitive.NewObjectID(),
		ReceiverID: primitive.NewObjectID(),
		Text:       "nobody listening",
	}
	require.NoError(t, ch.MessageSent(context.Background(), msg))
}
