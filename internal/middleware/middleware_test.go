package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manifesthub/internal/auth"
	"manifesthub/internal/schema"
	env "manifesthub/internal/secret"
)

func TestCreateStackAppliesFirstArgumentOutermost(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	stack := CreateStack(tag("outer"), tag("middle"), tag("inner"))
	handler := stack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "middle", "inner", "handler"}, order)
}

func TestValidateJSONBodyStoresPayload(t *testing.T) {
	var got schema.LoginRequest
	handler := ValidateJSONBody[schema.LoginRequest](LoginBodyKey)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, ok := BodyFrom[schema.LoginRequest](r, LoginBodyKey)
			require.True(t, ok)
			got = body
		}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ops@example.com","password":"hunter2"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@example.com", got.Email)
}

func TestValidateJSONBodyRejectsInvalidPayload(t *testing.T) {
	handler := ValidateJSONBody[schema.LoginRequest](LoginBodyKey)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"not-an-email","password":""}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortPathValidation(t *testing.T) {
	called := false
	handler := PortPathValidation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/schedules/Busan", nil)
	req.SetPathValue("port", "Busan")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)

	called = false
	req = httptest.NewRequest(http.MethodPost, "/schedules/Rotterdam", nil)
	req.SetPathValue("port", "Rotterdam")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func testTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	secret := "test-secret"
	ttl := 1
	email := "ops@example.com"
	pw := "hunter2"
	m := &env.Manager{}
	m.AppEnvConfig = env.AppEnvConfig{JwtSecret: &secret, JwtTTLHours: &ttl, AdminEmail: &email, AdminPw: &pw}
	return auth.NewTokenService(m)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	handler := Authenticate(testTokenService(t))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not run")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manifest/rows", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatePassesValidToken(t *testing.T) {
	tokens := testTokenService(t)
	token, err := tokens.Login("ops@example.com", "hunter2")
	require.NoError(t, err)

	var user string
	handler := Authenticate(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ = r.Context().Value(UserKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/manifest/rows", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops@example.com", user)
}
