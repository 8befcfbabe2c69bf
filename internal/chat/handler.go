package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/chatter/backend/internal/models"
	"github.com/ayush/chatter/backend/internal/realtime"
	"github.com/ayush/chatter/backend/internal/store"
)

// MessageStore defines the interface for message persistence.
type MessageStore interface {
	CreateMessage(ctx context.Context, senderID, receiverID, text, imageURL string) (*models.Message, error)
	ListConversation(ctx context.Context, userA, userB string) ([]models.Message, error)
}

// PeerStore lists chat peers.
type PeerStore interface {
	ListUsersExcept(ctx context.Context, id string) ([]models.User, error)
}

// MediaStore converts inline image data into a durable URL.
type MediaStore interface {
	UploadImage(ctx context.Context, ownerID, payload string) (string, error)
}

// Handler holds messaging HTTP handlers. channel may be nil; sends succeed
// without a realtime collaborator attached.
type Handler struct {
	messages MessageStore
	peers    PeerStore
	media    MediaStore
	channel  realtime.Channel
}

func NewHandler(messages MessageStore, peers PeerStore, media MediaStore, channel realtime.Channel) *Handler {
	return &Handler{messages: messages, peers: peers, media: media, channel: channel}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// ListUsers returns every user except the requester, for the sidebar.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	users, err := h.peers.ListUsersExcept(r.Context(), userID)
	if err != nil {
		log.Printf("list users error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GetMessages returns the full conversation with the peer, oldest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	peerID := chi.URLParam(r, "id")

	msgs, err := h.messages.ListConversation(r.Context(), userID, peerID)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("get messages error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// SendMessage persists a message to the peer. An inline image is uploaded to
// the media store first; only the durable URL is stored.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)
	peerID := chi.URLParam(r, "id")

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" && req.Image == "" {
		writeMessage(w, http.StatusBadRequest, "Message text or image is required")
		return
	}

	var imageURL string
	if req.Image != "" {
		url, err := h.media.UploadImage(r.Context(), userID, req.Image)
		if err != nil {
			log.Printf("message image upload error: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Internal error")
			return
		}
		imageURL = url
	}

	msg, err := h.messages.CreateMessage(r.Context(), userID, peerID, req.Text, imageURL)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("send message error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if h.channel != nil {
		if err := h.channel.MessageSent(r.Context(), msg); err != nil {
			// Best-effort notification; the write already succeeded.
			log.Printf("message broadcast error: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, msg)
}
