// Command createuser adds a user (with a bcrypt-hashed password) or a book to
// the circulation database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"library-circulation/internal/config"
	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
	"library-circulation/internal/repository/postgres"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	email := flag.String("email", "", "Email of the user to create")
	firstName := flag.String("first-name", "", "First name")
	surname := flag.String("surname", "", "Surname")
	role := flag.String("role", string(domain.UserRoleUser), "USER, LIBRARIAN or ADMIN")
	bookName := flag.String("book", "", "Create a book with this title instead of a user")
	authors := flag.String("authors", "", "Book authors")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.GetDatabaseConnectionString(), postgres.PoolConfig{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	store := postgres.NewStore(db)

	if *bookName != "" {
		book := &domain.Book{Name: *bookName, Authors: *authors, CreatedOn: time.Now().UTC()}
		if err := createBook(ctx, store, book); err != nil {
			log.Fatalf("Failed to create book: %v", err)
		}
		fmt.Printf("Created book %d: %s\n", book.ID, book.Name)
		return
	}

	password := os.Getenv("NEW_USER_PASSWORD")
	in := userInput{
		Email:     *email,
		FirstName: *firstName,
		Surname:   *surname,
		Role:      domain.UserRole(*role),
		Password:  password,
	}
	user, err := newUser(in, time.Now().UTC())
	if err != nil {
		log.Fatalf("Invalid user: %v", err)
	}
	if err := createUser(ctx, store, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("Created user %d: %s (%s)\n", user.ID, user.Email, user.Role)
}

func createUser(ctx context.Context, store repository.Store, user *domain.User) error {
	return store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Users().Create(ctx, user)
	})
}

func createBook(ctx context.Context, store repository.Store, book *domain.Book) error {
	return store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Books().Create(ctx, book)
	})
}
