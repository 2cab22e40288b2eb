package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
	"library-circulation/internal/security"
)

type seedFile struct {
	Users []struct {
		Email     string `yaml:"email"`
		FirstName string `yaml:"first_name"`
		Surname   string `yaml:"surname"`
		Role      string `yaml:"role"`
		Password  string `yaml:"password"`
	} `yaml:"users"`
	Books []struct {
		Name    string `yaml:"name"`
		Authors string `yaml:"authors"`
	} `yaml:"books"`
}

// loadSeed fills a fresh store with the users and books listed in a YAML file.
func loadSeed(ctx context.Context, store repository.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	return store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		for _, u := range seed.Users {
			role := domain.UserRole(u.Role)
			if role == "" {
				role = domain.UserRoleUser
			}
			if !role.IsValid() {
				return fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
			}
			user := &domain.User{Email: u.Email, FirstName: u.FirstName, Surname: u.Surname, Role: role}
			if u.Password != "" {
				hash, err := security.HashPassword(u.Password)
				if err != nil {
					return fmt.Errorf("user %s: %w", u.Email, err)
				}
				user.PasswordHash = hash
			}
			if err := tx.Users().Create(ctx, user); err != nil {
				return fmt.Errorf("user %s: %w", u.Email, err)
			}
			logger.Info("Seeded user", "id", user.ID, "email", user.Email, "role", user.Role)
		}
		for _, b := range seed.Books {
			book := &domain.Book{Name: b.Name, Authors: b.Authors}
			if err := tx.Books().Create(ctx, book); err != nil {
				return fmt.Errorf("book %s: %w", b.Name, err)
			}
			logger.Info("Seeded book", "id", book.ID, "name", book.Name)
		}
		return nil
	})
}
