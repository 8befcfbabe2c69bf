package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a document in the MongoDB messages collection. Image is the
// durable URL returned by the media store, never inline data.
type Message struct {
	ID         primitive.ObjectID `json:"_id"        bson:"_id,omitempty"`
	SenderID   primitive.ObjectID `json:"senderId"   bson:"senderId"`
	ReceiverID primitive.ObjectID `json:"receiverId" bson:"receiverId"`
	Text       string             `json:"text,omitempty"  bson:"text,omitempty"`
	Image      string             `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"  bson:"created_at"`
}

// SendMessageRequest is the JSON body for POST /api/messages/{id}.
// Image carries inline base64 image data.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}
