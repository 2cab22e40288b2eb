// Package memory provides an in-process entity store. Transactions are
// serialized by a store-wide mutex and work on a copy of the state that
// replaces the live state only on commit.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
)

type state struct {
	users   map[int32]domain.User
	books   map[int32]domain.Book
	actions map[int32]domain.PendingAction
	history []domain.HistoryEntry

	nextUserID    int32
	nextBookID    int32
	nextActionID  int32
	nextHistoryID int32
}

func newState() *state {
	return &state{
		users:   make(map[int32]domain.User),
		books:   make(map[int32]domain.Book),
		actions: make(map[int32]domain.PendingAction),
	}
}

// clone copies the state deeply enough that mutations on the copy never reach
// the original. Pointer fields inside entities are copied by cloneUser/cloneBook.
func (s *state) clone() *state {
	c := &state{
		users:         make(map[int32]domain.User, len(s.users)),
		books:         make(map[int32]domain.Book, len(s.books)),
		actions:       make(map[int32]domain.PendingAction, len(s.actions)),
		history:       make([]domain.HistoryEntry, len(s.history)),
		nextUserID:    s.nextUserID,
		nextBookID:    s.nextBookID,
		nextActionID:  s.nextActionID,
		nextHistoryID: s.nextHistoryID,
	}
	for id, u := range s.users {
		c.users[id] = cloneUser(u)
	}
	for id, b := range s.books {
		c.books[id] = cloneBook(b)
	}
	for id, a := range s.actions {
		c.actions[id] = a
	}
	copy(c.history, s.history)
	return c
}

func cloneInt32(p *int32) *int32 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneUser(u domain.User) domain.User {
	u.ReservedBookID = cloneInt32(u.ReservedBookID)
	u.BookIDTaken = cloneInt32(u.BookIDTaken)
	return u
}

func cloneBook(b domain.Book) domain.Book {
	b.UserReservedID = cloneInt32(b.UserReservedID)
	b.UserIDTaken = cloneInt32(b.UserIDTaken)
	b.DateStartReserve = cloneTime(b.DateStartReserve)
	b.DateStartUse = cloneTime(b.DateStartUse)
	b.DateFinishUse = cloneTime(b.DateFinishUse)
	return b
}

// Store implements repository.Store in memory.
type Store struct {
	mu    sync.Mutex
	state *state
	nowFn func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), nowFn: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return domain.StoreFailure("BeginTx", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &tx{st: working, now: s.nowFn}); err != nil {
		return err
	}
	s.state = working
	return nil
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) Users() repository.UserRepository                   { return userRepo{t} }
func (t *tx) Books() repository.BookRepository                   { return bookRepo{t} }
func (t *tx) PendingActions() repository.PendingActionRepository { return actionRepo{t} }
func (t *tx) History() repository.HistoryRepository              { return historyRepo{t} }

// paginate returns the 1-based page of items, already sorted by the caller.
func paginate[T any](items []T, page, pageSize int32) []T {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return items
	}
	offset := repository.PageOffset(page, pageSize)
	if offset >= int64(len(items)) {
		return nil
	}
	start := int(offset)
	end := start + int(pageSize)
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortedKeys[V any](m map[int32]V) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
