package middleware

import (
	"context"
	"net/http"

	"github.com/ayush/chatter/backend/internal/auth"
)

// RequireAuth validates the session cookie and injects the user_id into the
// request context. Verification is purely cryptographic; no store lookup.
func RequireAuth(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.TokenCookie)
			if err != nil {
				http.Error(w, `{"message":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			userID, err := tokens.Verify(cookie.Value)
			if err != nil {
				http.Error(w, `{"message":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
