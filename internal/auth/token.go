package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTTL    = 7 * 24 * time.Hour
	TokenCookie = "token"
)

// ErrTokenInvalid covers malformed, tampered, and expired tokens. The cause
// is wrapped for logging; callers treat all three the same.
var ErrTokenInvalid = errors.New("invalid token")

// Claims embeds the registered claims plus the subject's user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenIssuer mints and verifies stateless HS256 session tokens. Nothing is
// stored server-side; expiry and integrity are checked on every use.
type TokenIssuer struct {
	secret []byte
	secure bool
}

// NewTokenIssuer creates an issuer. secure controls the cookie's Secure flag
// and is disabled for plain-HTTP development setups.
func NewTokenIssuer(secret []byte, secure bool) *TokenIssuer {
	return &TokenIssuer{secret: secret, secure: secure}
}

// Issue signs a token for the user and sets it as an HTTP-only cookie.
func (t *TokenIssuer) Issue(w http.ResponseWriter, userID string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID: userID,
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(TokenTTL / time.Second),
	})
	return nil
}

// Verify checks signature and expiry and returns the embedded user id.
// Pure function, no I/O.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}
	return claims.UserID, nil
}

// Clear expires the session cookie. Idempotent.
func (t *TokenIssuer) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
