package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/chatter/backend/internal/models"
	"github.com/ayush/chatter/backend/internal/store"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, email, fullName, hashedPassword string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fields models.UpdateFields) (*models.User, error)
}

// MediaStore converts inline image data into a durable URL.
type MediaStore interface {
	UploadImage(ctx context.Context, ownerID, payload string) (string, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users  UserStore
	media  MediaStore
	tokens *TokenIssuer
}

func NewHandler(users UserStore, media MediaStore, tokens *TokenIssuer) *Handler {
	return &Handler{users: users, media: media, tokens: tokens}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// Signup creates a new user and issues a session.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.FullName == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(req.Password) < 6 {
		writeMessage(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	existing, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		log.Printf("signup lookup error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if existing != nil {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("signup hash error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, req.FullName, string(hashed))
	if err != nil {
		// Two concurrent signups can pass the pre-check; the unique
		// index decides the race.
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Printf("signup create error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}

	if err := h.tokens.Issue(w, user.ID.Hex()); err != nil {
		log.Printf("signup token error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login authenticates by email or full name and issues a session. Unknown
// identifier and wrong password produce the same message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetUserByIdentifier(r.Context(), req.Identifier)
	if err != nil {
		log.Printf("login lookup error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	if err := h.tokens.Issue(w, user.ID.Hex()); err != nil {
		log.Printf("login token error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout clears the session cookie. Idempotent; succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.tokens.Clear(w)
	writeMessage(w, http.StatusOK, "Logout successful")
}

// UpdateProfile applies the provided subset of mutable fields. An inline
// profile picture is uploaded to the media store first and only the durable
// URL is persisted.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := models.UpdateFields{
		FullName: req.FullName,
		Email:    req.Email,
	}
	if req.ProfilePic != nil && *req.ProfilePic != "" {
		url, err := h.media.UploadImage(r.Context(), userID, *req.ProfilePic)
		if err != nil {
			log.Printf("profile pic upload error: %v", err)
			writeMessage(w, http.StatusInternalServerError, "Internal error")
			return
		}
		fields.ProfilePic = &url
	}
	if fields.Empty() {
		writeMessage(w, http.StatusBadRequest, "No fields to update provided")
		return
	}

	user, err := h.users.UpdateUser(r.Context(), userID, fields)
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		writeMessage(w, http.StatusBadRequest, "Email already in use by another account")
		return
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		log.Printf("update profile error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Check returns the currently authenticated user. The middleware has already
// verified the token and resolved the user id.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(string)

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("check auth error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if user == nil {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
