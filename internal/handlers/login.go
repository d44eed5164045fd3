package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"manifesthub/internal/auth"
	"manifesthub/internal/exceptions"
	"manifesthub/internal/middleware"
	"manifesthub/internal/schema"
)

// LoginHandler exchanges operator credentials for a bearer token. It is the
// only dashboard endpoint served without authentication.
func LoginHandler(tokens *auth.TokenService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := middleware.BodyFrom[schema.LoginRequest](r, middleware.LoginBodyKey)
		if !ok {
			exceptions.InternalErrorHandler(w, errors.New("login body missing from request context"))
			return
		}
		token, err := tokens.Login(body.Email, body.Password)
		if err != nil {
			exceptions.UnauthorizedErrorHandler(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
}
