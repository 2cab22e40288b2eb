package repository

import (
	"context"
	"time"

	"library-circulation/internal/domain"
)

// PageOffset is the number of rows before the 1-based page. It is computed in
// int64 so a large page number cannot wrap around.
func PageOffset(page, pageSize int32) int64 {
	if page < 1 {
		page = 1
	}
	if pageSize < 0 {
		pageSize = 0
	}
	return int64(page-1) * int64(pageSize)
}

// Lookups return a *domain.Error of kind NotFound when the row does not exist.
// ForUpdate variants lock the row until the surrounding transaction ends.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateCirculation persists the reservation and loan slots only.
	UpdateCirculation(ctx context.Context, user *domain.User) error
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id int32) (*domain.Book, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error)
	// UpdateCirculation persists the reservation/loan pointers and their dates.
	UpdateCirculation(ctx context.Context, book *domain.Book) error
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Book, error)
}

type PendingActionRepository interface {
	Create(ctx context.Context, action *domain.PendingAction) error
	GetByID(ctx context.Context, id int32) (*domain.PendingAction, error)
	FindForUpdate(ctx context.Context, key domain.PendingActionKey) (*domain.PendingAction, error)
	// Delete removes the action. Deleting an action that no longer exists is a Conflict:
	// someone else consumed it first.
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, filter domain.PendingActionFilter, page, pageSize int32) ([]domain.PendingAction, int32, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	List(ctx context.Context, filter domain.HistoryFilter, page, pageSize int32) ([]domain.HistoryEntry, int32, error)
}

// Tx exposes every repository bound to one transaction.
type Tx interface {
	Users() UserRepository
	Books() BookRepository
	PendingActions() PendingActionRepository
	History() HistoryRepository
}

// Store is the entity store. WithinTx commits when fn returns nil and rolls
// back otherwise; fn must not retain tx after returning.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
