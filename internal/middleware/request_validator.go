package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"manifesthub/internal/exceptions"
	"manifesthub/internal/schema"
)

type bodyContextKey string

const (
	LoginBodyKey      bodyContextKey = "loginBody"
	SaveRowsBodyKey   bodyContextKey = "saveRowsBody"
	UpdateRowBodyKey  bodyContextKey = "updateRowBody"
	DeleteRowsBodyKey bodyContextKey = "deleteRowsBody"
	VesselLogBodyKey  bodyContextKey = "vesselLogBody"
)

// ValidateJSONBody decodes the request body into T, validates it against its
// struct tags and stores it in the request context under key.
func ValidateJSONBody[T any](key bodyContextKey) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var payload T
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				exceptions.RequestErrorHandler(w, fmt.Errorf("invalid request body: %w", err))
				return
			}
			if err := schema.RequestValidate.Struct(payload); err != nil {
				for _, e := range err.(validator.ValidationErrors) {
					invalidField := fmt.Errorf("invalid field value in '%s': %v", e.Field(), e.Value())
					exceptions.RequestErrorHandler(w, invalidField)
					return
				}
			}
			ctx := context.WithValue(r.Context(), key, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BodyFrom returns the validated body previously stored by ValidateJSONBody.
func BodyFrom[T any](r *http.Request, key bodyContextKey) (T, bool) {
	payload, ok := r.Context().Value(key).(T)
	return payload, ok
}

// PortPathValidation rejects requests whose {port} path value is not one of
// the ports the schedule board serves.
func PortPathValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		port := r.PathValue("port")
		if err := schema.RequestValidate.Var(port, "required,isKnownPort"); err != nil {
			exceptions.RequestErrorHandler(w, fmt.Errorf("unknown port: %q", port))
			return
		}
		next.ServeHTTP(w, r)
	})
}
