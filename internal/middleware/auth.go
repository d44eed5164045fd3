package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"manifesthub/internal/auth"
	"manifesthub/internal/exceptions"
)

type userContextKey string

// UserKey holds the authenticated operator email for downstream handlers.
const UserKey userContextKey = "authUser"

// Authenticate rejects requests without a valid bearer token.
func Authenticate(tokens *auth.TokenService) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				exceptions.UnauthorizedErrorHandler(w, fmt.Errorf("missing bearer token"))
				return
			}
			email, err := tokens.Verify(tokenString)
			if err != nil {
				exceptions.UnauthorizedErrorHandler(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
