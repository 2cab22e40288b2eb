package domain

import "time"

type UserRole string

const (
	UserRoleAnonymous UserRole = "ANONYMOUS"
	UserRoleUser      UserRole = "USER"
	UserRoleLibrarian UserRole = "LIBRARIAN"
	UserRoleAdmin     UserRole = "ADMIN"
)

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAnonymous, UserRoleUser, UserRoleLibrarian, UserRoleAdmin:
		return true
	default:
		return false
	}
}

// User holds at most one reservation and at most one loan. The two slots are
// independent of each other.
type User struct {
	ID             int32     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	FirstName      string    `json:"first_name" db:"first_name"`
	Surname        string    `json:"surname" db:"surname"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	Role           UserRole  `json:"role" db:"role"`
	ReservedBookID *int32    `json:"reserved_book_id,omitempty" db:"reserved_book_id"`
	BookIDTaken    *int32    `json:"book_id_taken,omitempty" db:"book_id_taken"`
	CreatedOn      time.Time `json:"created_on" db:"created_on"`
}
