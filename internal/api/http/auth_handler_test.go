package http_test

import (
	"net/http"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "library-circulation/internal/api/http"
	"library-circulation/internal/domain"
	"library-circulation/internal/security"
	"library-circulation/internal/service"
)

func newAuthHarness() (*harness, *MockAuthService) {
	h := newHarness()
	auth := new(MockAuthService)
	httpapi.RegisterAuthRoutes(h.router, httpapi.NewAuthHandler(auth))
	return h, auth
}

func TestLogin_IsPublic(t *testing.T) {
	h, auth := newAuthHarness()
	auth.On("Login", mock.Anything, "ann@example.com", "correct horse").
		Return(&service.AuthTokens{AccessToken: "a", RefreshToken: "r", User: domain.User{ID: 1, Email: "ann@example.com"}}, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ann@example.com","password":"correct horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			ID int32 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a", body.AccessToken)
	assert.Equal(t, "r", body.RefreshToken)
	assert.Equal(t, int32(1), body.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")
	auth.AssertExpectations(t)
}

func TestLogin_Errors(t *testing.T) {
	h, auth := newAuthHarness()
	auth.On("Login", mock.Anything, "ann@example.com", "nope").Return(nil, service.ErrInvalidCredentials)

	rec := h.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ann@example.com","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeError(t, rec).Error.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email","password":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	auth.AssertNotCalled(t, "Login", mock.Anything, "not-an-email", "x")
}

func TestRefresh(t *testing.T) {
	h, auth := newAuthHarness()
	auth.On("RefreshToken", mock.Anything, "good").Return(&service.AuthTokens{AccessToken: "a2", RefreshToken: "r2"}, nil)
	auth.On("RefreshToken", mock.Anything, "stale").Return(nil, security.ErrExpiredToken)

	rec := h.do(t, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"good"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/auth/refresh", `{"refresh_token":"stale"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
