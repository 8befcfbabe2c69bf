package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/chatter/backend/internal/models"
	"github.com/ayush/chatter/backend/internal/store"
)

// fakeMessageStore is an in-memory MessageStore following the Mongo store's
// contract: malformed ids report store.ErrNotFound, conversations come back
// oldest first regardless of argument order.
type fakeMessageStore struct {
	mu   sync.Mutex
	msgs []models.Message
	now  time.Time
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *fakeMessageStore) CreateMessage(_ context.Context, senderID, receiverID, text, imageURL string) (*models.Message, error) {
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, store.ErrNotFound
	}
	receiver, err := primitive.ObjectIDFromHex(receiverID)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(time.Second)
	msg := models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		Image:      imageURL,
		CreatedAt:  s.now,
	}
	s.msgs = append(s.msgs, msg)
	cp := msg
	return &cp, nil
}

func (s *fakeMessageStore) ListConversation(_ context.Context, userA, userB string) ([]models.Message, error) {
	a, err := primitive.ObjectIDFromHex(userA)
	if err != nil {
		return nil, store.ErrNotFound
	}
	b, err := primitive.ObjectIDFromHex(userB)
	if err != nil {
		return nil, store.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.msgs {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePeerStore struct {
	users []models.User
}

func (s *fakePeerStore) ListUsersExcept(_ context.Context, id string) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.ID.Hex() != id {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeMedia struct {
	calls    int
	payloads []string
}

func (m *fakeMedia) UploadImage(_ context.Context, ownerID, payload string) (string, error) {
	m.calls++
	m.payloads = append(m.payloads, payload)
	return fmt.Sprintf("https://media.test/%s/msg-%d.png", ownerID, m.calls), nil
}

// fakeChannel records message broadcasts.
type fakeChannel struct {
	sent []*models.Message
}

func (c *fakeChannel) Register(context.Context, string) error   { return nil }
func (c *fakeChannel) Deregister(context.Context, string) error { return nil }
func (c *fakeChannel) Online(context.Context) ([]string, error) { return nil, nil }
func (c *fakeChannel) MessageSent(_ context.Context, msg *models.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

// newTestRouter mounts the handler behind a stand-in auth middleware that
// injects the requester's id.
func newTestRouter(h *Handler, userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), "user_id", userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/api/messages/users", h.ListUsers)
	r.Get("/api/messages/{id}", h.GetMessages)
	r.Post("/api/messages/{id}", h.SendMessage)
	return r
}

func doRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSendMessage_TextOnly(t *testing.T) {
	msgs := newFakeMessageStore()
	media := &fakeMedia{}
	h := NewHandler(msgs, &fakePeerStore{}, media, nil)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	router := newTestRouter(h, alice.Hex())

	rec := doRequest(router, http.MethodPost, "/api/messages/"+bob.Hex(),
		models.SendMessageRequest{Text: "hello"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var msg models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, alice, msg.SenderID)
	require.Equal(t, bob, msg.ReceiverID)
	require.Equal(t, "hello", msg.Text)
	require.Empty(t, msg.Image)
	require.Zero(t, media.calls)
}

func TestSendMessage_ImageUploadedOnce(t *testing.T) {
	msgs := newFakeMessageStore()
	media := &fakeMedia{}
	h := NewHandler(msgs, &fakePeerStore{}, media, nil)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	router := newTestRouter(h, alice.Hex())

	inline := "data:image/png;base64,aGVsbG8="
	rec := doRequest(router, http.MethodPost, "/api/messages/"+bob.Hex(),
		models.SendMessageRequest{Image: inline})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, media.calls)
	require.Equal(t, []string{inline}, media.payloads)

	var msg models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, fmt.Sprintf("https://media.test/%s/msg-1.png", alice.Hex()), msg.Image)
	require.NotContains(t, msg.Image, "base64")
}

func TestSendMessage_EmptyRejected(t *testing.T) {
	h := NewHandler(newFakeMessageStore(), &fakePeerStore{}, &fakeMedia{}, nil)
	router := newTestRouter(h, primitive.NewObjectID().Hex())

	rec := doRequest(router, http.MethodPost, "/api/messages/"+primitive.NewObjectID().Hex(),
		models.SendMessageRequest{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "text or image")
}

func TestSendMessage_MalformedPeerID(t *testing.T) {
	h := NewHandler(newFakeMessageStore(), &fakePeerStore{}, &fakeMedia{}, nil)
	router := newTestRouter(h, primitive.NewObjectID().Hex())

	rec := doRequest(router, http.MethodPost, "/api/messages/not-an-id",
		models.SendMessageRequest{Text: "hi"})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessage_NotifiesChannel(t *testing.T) {
	msgs := newFakeMessageStore()
	channel := &fakeChannel{}
	h := NewHandler(msgs, &fakePeerStore{}, &fakeMedia{}, channel)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	router := newTestRouter(h, alice.Hex())

	rec := doRequest(router, http.MethodPost, "/api/messages/"+bob.Hex(),
		models.SendMessageRequest{Text: "ping"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, channel.sent, 1)
	require.Equal(t, bob, channel.sent[0].ReceiverID)
	require.Equal(t, "ping", channel.sent[0].Text)
}

func TestGetMessages_ConversationIsSymmetricAndOrdered(t *testing.T) {
	msgs := newFakeMessageStore()
	h := NewHandler(msgs, &fakePeerStore{}, &fakeMedia{}, nil)

	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	carol := primitive.NewObjectID()

	ctx := context.Background()
	_, err := msgs.CreateMessage(ctx, alice.Hex(), bob.Hex(), "1: a->b", "")
	require.NoError(t, err)
	_, err = msgs.CreateMessage(ctx, bob.Hex(), alice.Hex(), "2: b->a", "")
	require.NoError(t, err)
	_, err = msgs.CreateMessage(ctx, alice.Hex(), carol.Hex(), "a->c, other thread", "")
	require.NoError(t, err)
	_, err = msgs.CreateMessage(ctx, alice.Hex(), bob.Hex(), "3: a->b", "")
	require.NoError(t, err)

	fromAlice := doRequest(newTestRouter(h, alice.Hex()), http.MethodGet, "/api/messages/"+bob.Hex(), nil)
	fromBob := doRequest(newTestRouter(h, bob.Hex()), http.MethodGet, "/api/messages/"+alice.Hex(), nil)

	require.Equal(t, http.StatusOK, fromAlice.Code)
	require.Equal(t, http.StatusOK, fromBob.Code)

	var got []models.Message
	require.NoError(t, json.Unmarshal(fromAlice.Body.Bytes(), &got))
	require.Len(t, got, 3)
	require.Equal(t, "1: a->b", got[0].Text)
	require.Equal(t, "2: b->a", got[1].Text)
	require.Equal(t, "3: a->b", got[2].Text)
	require.JSONEq(t, fromAlice.Body.String(), fromBob.Body.String())
}

func TestGetMessages_EmptyConversationIsAnArray(t *testing.T) {
	h := NewHandler(newFakeMessageStore(), &fakePeerStore{}, &fakeMedia{}, nil)
	router := newTestRouter(h, primitive.NewObjectID().Hex())

	rec := doRequest(router, http.MethodGet, "/api/messages/"+primitive.NewObjectID().Hex(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
}

func TestListUsers_ExcludesRequester(t *testing.T) {
	alice := models.User{ID: primitive.NewObjectID(), Email: "a@x.com", FullName: "Alice"}
	bob := models.User{ID: primitive.NewObjectID(), Email: "b@x.com", FullName: "Bob"}
	carol := models.User{ID: primitive.NewObjectID(), Email: "c@x.com", FullName: "Carol"}

	h := NewHandler(newFakeMessageStore(), &fakePeerStore{users: []models.User{alice, bob, carol}}, &fakeMedia{}, nil)
	router := newTestRouter(h, alice.ID.Hex())

	rec := doRequest(router, http.MethodGet, "/api/messages/users", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	for _, u := range got {
		require.NotEqual(t, alice.ID, u.ID)
	}
}
