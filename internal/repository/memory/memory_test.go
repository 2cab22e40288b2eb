package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
)

func seed(t *testing.T, s *Store) (*domain.User, *domain.Book) {
	t.Helper()
	u := &domain.User{Email: "reader@example.com", Role: domain.UserRoleUser}
	b := &domain.Book{Name: "Dune", Authors: "Frank Herbert"}
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Users().Create(ctx, u); err != nil {
			return err
		}
		return tx.Books().Create(ctx, b)
	})
	require.NoError(t, err)
	return u, b
}

func TestStore_WithinTx_RollbackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u, b := seed(t, s)

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, u.ID)
		require.NoError(t, err)
		user.ReservedBookID = &b.ID
		require.NoError(t, tx.Users().UpdateCirculation(ctx, user))
		require.NoError(t, tx.PendingActions().Create(ctx, &domain.PendingAction{UserID: u.ID, BookID: b.ID, OrderType: domain.OrderTypeAdd, ActionType: domain.ActionTypeReserve}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_ = s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, user.ReservedBookID)
		_, count, err := tx.PendingActions().List(ctx, domain.PendingActionFilter{}, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int32(0), count)
		return nil
	})
}

func TestStore_ReturnedEntitiesAreCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u, _ := seed(t, s)

	_ = s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		other := int32(99)
		user.BookIDTaken = &other // not persisted

		again, err := tx.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, again.BookIDTaken)
		return nil
	})
}

func TestActionRepo_UniquePerKey(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u, b := seed(t, s)

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		a := &domain.PendingAction{UserID: u.ID, BookID: b.ID, OrderType: domain.OrderTypeAdd, ActionType: domain.ActionTypeTake}
		require.NoError(t, tx.PendingActions().Create(ctx, a))
		dup := &domain.PendingAction{UserID: u.ID, BookID: b.ID, OrderType: domain.OrderTypeCancel, ActionType: domain.ActionTypeTake}
		return tx.PendingActions().Create(ctx, dup)
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestActionRepo_DeleteTwiceIsConflict(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u, b := seed(t, s)

	_ = s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		a := &domain.PendingAction{UserID: u.ID, BookID: b.ID, OrderType: domain.OrderTypeAdd, ActionType: domain.ActionTypeReserve}
		require.NoError(t, tx.PendingActions().Create(ctx, a))

		found, err := tx.PendingActions().FindForUpdate(ctx, a.Key())
		require.NoError(t, err)
		assert.Equal(t, a.ID, found.ID)

		require.NoError(t, tx.PendingActions().Delete(ctx, a.ID))
		assert.ErrorIs(t, tx.PendingActions().Delete(ctx, a.ID), domain.ErrConflict)

		_, err = tx.PendingActions().FindForUpdate(ctx, a.Key())
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	})
}

func TestBookRepo_ListOverdue(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	_ = s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		for i, due := range []time.Time{now.Add(48 * time.Hour), now.Add(-24 * time.Hour), now.Add(-72 * time.Hour)} {
			b := &domain.Book{Name: "b"}
			require.NoError(t, tx.Books().Create(ctx, b))
			holder := int32(i + 1)
			due := due
			b.UserIDTaken = &holder
			b.DateFinishUse = &due
			require.NoError(t, tx.Books().UpdateCirculation(ctx, b))
		}
		free := &domain.Book{Name: "free"}
		return tx.Books().Create(ctx, free)
	})

	_ = s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		books, err := tx.Books().ListOverdue(ctx, now)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, int32(3), books[0].ID)
		assert.Equal(t, int32(2), books[1].ID)
		return nil
	})
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, paginate(items, 1, 2))
	assert.Equal(t, []int{5}, paginate(items, 3, 2))
	assert.Nil(t, paginate(items, 4, 2))
	assert.Equal(t, items, paginate(items, 1, 0))
	assert.Nil(t, paginate(items, math.MaxInt32/50, 100))
	assert.Nil(t, paginate(items, math.MaxInt32, math.MaxInt32))
}

func TestStore_CancelledContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error { return nil })
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
}
