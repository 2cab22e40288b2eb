package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"library-circulation/internal/config"
	"library-circulation/internal/logger"
	"library-circulation/internal/security"
)

const requestIDHeader = "X-Request-ID"

// AuthMiddleware authenticates and authorizes requests according to
// config.EndpointSecurityConfig.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (a *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.GetSecurityLevel(routeKey(r))

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := extractToken(r)
		if !ok {
			writeErrorCode(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "authorization token is not provided", false)
			return
		}

		claims, err := a.tokenManager.ValidateToken(token)
		if err != nil {
			logger.DebugContext(r.Context(), "Rejected bearer token", "request_id", RequestIDFromContext(r.Context()), "route", routeKey(r), "error", err)
			writeErrorCode(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token: "+err.Error(), false)
			return
		}
		if claims.Type != security.TokenTypeAccess {
			writeErrorCode(w, r, http.StatusForbidden, "PERMISSION_DENIED", "access token required", false)
			return
		}
		if !level.Allows(claims.Role) {
			writeErrorCode(w, r, http.StatusForbidden, "PERMISSION_DENIED", "role "+string(claims.Role)+" may not call this endpoint", false)
			return
		}

		ctx := withIdentity(r.Context(), Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// routeKey is "METHOD path-template" for the matched mux route.
func routeKey(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.Method + " " + r.URL.Path
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return r.Method + " " + r.URL.Path
	}
	return r.Method + " " + tpl
}

func extractToken(r *http.Request) (string, bool) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", false
	}
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	return token, token != ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogging tags every request with an id and logs its outcome.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		args := []any{"request_id", id, "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration_ms", time.Since(start).Milliseconds()}
		if rec.status >= 500 {
			logger.Error("HTTP request failed", args...)
			return
		}
		logger.Info("HTTP request", args...)
	})
}
