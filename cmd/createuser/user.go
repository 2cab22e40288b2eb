package main

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"library-circulation/internal/domain"
	"library-circulation/internal/security"
)

type userInput struct {
	Email     string
	FirstName string
	Surname   string
	Role      domain.UserRole
	Password  string
}

func (in userInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Surname, validation.Length(0, 100)),
		validation.Field(&in.Role, validation.Required, validation.In(domain.UserRoleUser, domain.UserRoleLibrarian, domain.UserRoleAdmin)),
		validation.Field(&in.Password, validation.Required),
	)
}

// newUser validates the input and hashes the password. The plain password
// never leaves this function.
func newUser(in userInput, now time.Time) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.Validate(); err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	return &domain.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		Surname:      in.Surname,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedOn:    now,
	}, nil
}
