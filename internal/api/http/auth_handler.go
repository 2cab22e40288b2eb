package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"library-circulation/internal/security"
	"library-circulation/internal/service"
)

// AuthHandler issues tokens for the circulation API.
type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterAuthRoutes mounts login and refresh. Call it on the router already
// passed to RegisterRoutes so the same middleware chain applies.
func RegisterAuthRoutes(router *mux.Router, h *AuthHandler) {
	auth := router.PathPrefix("/api/v1/auth").Subrouter()
	auth.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	tokens, err := h.svc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	tokens, err := h.svc.RefreshToken(r.Context(), body.RefreshToken)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrWrongTokenType):
		writeErrorCode(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error(), false)
	default:
		writeError(w, r, err)
	}
}
