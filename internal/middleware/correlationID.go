package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type correlateContextKey string

const correlationIDKey correlateContextKey = "X-Correlation-ID"

// AddCorrelationID tags each request with the caller-provided correlation ID
// or a fresh one.
func AddCorrelationID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(string(correlationIDKey))
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}
