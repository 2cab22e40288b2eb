package config

import "library-circulation/internal/domain"

type SecurityLevel int

const (
	SecurityPublic    SecurityLevel = iota // No authentication
	SecurityUser                           // Access token required
	SecurityLibrarian                      // Access token with the librarian role
)

// EndpointSecurityConfig maps "METHOD path-template" to the required security level.
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Health - Public
	"GET /healthz": SecurityPublic,

	// Auth - Public
	"POST /api/v1/auth/login":   SecurityPublic,
	"POST /api/v1/auth/refresh": SecurityPublic,

	// Reservations - User
	"POST /api/v1/reservations":            SecurityUser,
	"DELETE /api/v1/reservations/{bookID}": SecurityUser,

	// Loans - User
	"POST /api/v1/loans":                         SecurityUser,
	"POST /api/v1/loans/{bookID}/cancel-request": SecurityUser,

	// Librarian desk
	"POST /api/v1/librarian/reservations/confirm": SecurityLibrarian,
	"POST /api/v1/librarian/loans/confirm":        SecurityLibrarian,
	"POST /api/v1/librarian/loans/cancel/confirm": SecurityLibrarian,
	"GET /api/v1/librarian/pending-actions":       SecurityLibrarian,
	"GET /api/v1/librarian/pending-actions/{id}":  SecurityLibrarian,
	"GET /api/v1/librarian/history":               SecurityLibrarian,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityLibrarian
}

// Allows reports whether a caller with role may use an endpoint at level.
func (l SecurityLevel) Allows(role domain.UserRole) bool {
	switch l {
	case SecurityPublic:
		return true
	case SecurityUser:
		return role == domain.UserRoleUser || role == domain.UserRoleLibrarian || role == domain.UserRoleAdmin
	case SecurityLibrarian:
		return role == domain.UserRoleLibrarian
	}
	return false
}
