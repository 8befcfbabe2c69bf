package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/chatter/backend/internal/models"
)

// MessageStore handles message CRUD in MongoDB. Messages are immutable once
// written.
type MessageStore struct {
	col *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{col: db.Collection("messages")}
}

// CreateMessage persists a message with a server-assigned id and timestamp.
func (s *MessageStore) CreateMessage(ctx context.Context, senderID, receiverID, text, imageURL string) (*models.Message, error) {
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, ErrNotFound
	}
	receiver, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return nil, ErrNotFound
	}

	msg := &models.Message{
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		Image:      imageURL,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return msg, nil
}

// ListConversation returns every message exchanged between the two users in
// either direction, oldest first. Symmetric in its arguments.
func (s *MessageStore) ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error) {
	a, err := primitive.ObjectIDFromHex(userA)
	if err != nil {
		return nil, ErrNotFound
	}
	b, err := primitive.ObjectIDFromHex(userB)
	if err != nil {
		return nil, ErrNotFound
	}

	filter := bson.M{"$or": bson.A{
		bson.M{"senderId": a, "receiverId": b},
		bson.M{"senderId": b, "receiverId": a},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return msgs, nil
}
