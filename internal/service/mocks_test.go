package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
	"library-circulation/internal/repository/memory"
	"library-circulation/internal/service"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendReservationConfirmed(ctx context.Context, email, name, bookName string) error {
	args := m.Called(ctx, email, name, bookName)
	return args.Error(0)
}

func (m *MockEmailService) SendReservationCancelled(ctx context.Context, email, name, bookName string) error {
	args := m.Called(ctx, email, name, bookName)
	return args.Error(0)
}

func (m *MockEmailService) SendLoanConfirmed(ctx context.Context, email, name, bookName string, due time.Time) error {
	args := m.Called(ctx, email, name, bookName, due)
	return args.Error(0)
}

func (m *MockEmailService) SendLoanReturned(ctx context.Context, email, name, bookName string) error {
	args := m.Called(ctx, email, name, bookName)
	return args.Error(0)
}

func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, name, bookName string, due time.Time) error {
	args := m.Called(ctx, email, name, bookName, due)
	return args.Error(0)
}

// quietEmail accepts any email without asserting on it.
func quietEmail() *MockEmailService {
	m := new(MockEmailService)
	m.On("SendReservationConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendReservationCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendLoanConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendLoanReturned", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendOverdueReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store *memory.Store
	svc   service.CirculationService
	email *MockEmailService
	clock *clock
	users map[string]int32
	books map[string]int32
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithEmail(t, quietEmail())
}

func newFixtureWithEmail(t *testing.T, email *MockEmailService) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		email: email,
		clock: &clock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)},
		users: map[string]int32{},
		books: map[string]int32{},
	}
	f.svc = service.NewCirculationService(f.store, email, service.CirculationConfig{
		MaxConflictRetries: 3,
		RetryBackoff:       time.Millisecond,
		Now:                f.clock.Now,
	})

	err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		for _, u := range []domain.User{
			{Email: "ann@example.com", FirstName: "Ann", Surname: "Lee", Role: domain.UserRoleUser},
			{Email: "bob@example.com", FirstName: "Bob", Surname: "Kim", Role: domain.UserRoleUser},
		} {
			u := u
			if err := tx.Users().Create(ctx, &u); err != nil {
				return err
			}
			f.users[u.FirstName] = u.ID
		}
		for _, b := range []domain.Book{
			{Name: "Dune", Authors: "Frank Herbert"},
			{Name: "Solaris", Authors: "Stanislaw Lem"},
		} {
			b := b
			if err := tx.Books().Create(ctx, &b); err != nil {
				return err
			}
			f.books[b.Name] = b.ID
		}
		return nil
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) pair(t *testing.T, userID, bookID int32) (*domain.User, *domain.Book) {
	t.Helper()
	var (
		user *domain.User
		book *domain.Book
	)
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		var err error
		if user, err = tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		book, err = tx.Books().GetByID(ctx, bookID)
		return err
	})
	require.NoError(t, err)
	return user, book
}

func (f *fixture) pending(t *testing.T) []domain.PendingAction {
	t.Helper()
	actions, _, err := f.svc.ListPendingActions(context.Background(), domain.PendingActionFilter{}, 1, 100)
	require.NoError(t, err)
	return actions
}

// conflictStore fails the first failures transactions with Conflict.
type conflictStore struct {
	repository.Store
	mu       sync.Mutex
	failures int
	attempts int
}

func (s *conflictStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	s.attempts++
	fail := s.attempts <= s.failures
	s.mu.Unlock()
	if fail {
		return domain.Conflict("test", nil)
	}
	return s.Store.WithinTx(ctx, fn)
}
