package service

import (
	"context"
	"errors"
	"time"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

// transition is one librarian confirmation: which pending action it consumes,
// what must still hold when it runs, and how it changes the pair.
type transition struct {
	op     string
	order  domain.OrderType
	action domain.ActionType
	event  domain.HistoryEvent
	check  func(user *domain.User, book *domain.Book, now time.Time) error
	apply  func(user *domain.User, book *domain.Book, now time.Time)
	notify func(ctx context.Context, r *domain.Receipt) error
}

func (s *circulationService) ConfirmReservation(ctx context.Context, userID, bookID int32) (*domain.Receipt, error) {
	const op = "ConfirmReservation"
	return s.confirm(ctx, userID, bookID, transition{
		op:     op,
		order:  domain.OrderTypeAdd,
		action: domain.ActionTypeReserve,
		event:  domain.HistoryEventReservationConfirmed,
		check: func(user *domain.User, book *domain.Book, _ time.Time) error {
			if !domain.CanReserve(user, book) {
				return domain.InvalidState(op, "user %d or book %d already holds a reservation", user.ID, book.ID)
			}
			return nil
		},
		apply: func(user *domain.User, book *domain.Book, now time.Time) {
			bookID, userID := book.ID, user.ID
			user.ReservedBookID = &bookID
			book.UserReservedID = &userID
			book.DateStartReserve = &now
		},
		notify: func(ctx context.Context, r *domain.Receipt) error {
			return s.emailSvc.SendReservationConfirmed(ctx, r.User.Email, displayName(&r.User), r.Book.Name)
		},
	})
}

func (s *circulationService) ConfirmLoan(ctx context.Context, userID, bookID int32, dueDate *time.Time) (*domain.Receipt, error) {
	const op = "ConfirmLoan"
	return s.confirm(ctx, userID, bookID, transition{
		op:     op,
		order:  domain.OrderTypeAdd,
		action: domain.ActionTypeTake,
		event:  domain.HistoryEventLoanStarted,
		check: func(user *domain.User, book *domain.Book, now time.Time) error {
			if !domain.CanBorrow(user, book) {
				return domain.InvalidState(op, "user %d or book %d already has an active loan", user.ID, book.ID)
			}
			if dueDate != nil && !dueDate.After(now) {
				return domain.InvalidState(op, "due date %s is not after %s", dueDate.Format(time.RFC3339), now.Format(time.RFC3339))
			}
			return nil
		},
		apply: func(user *domain.User, book *domain.Book, now time.Time) {
			due := now.Add(s.cfg.LoanPeriod)
			if dueDate != nil {
				due = dueDate.UTC()
			}
			bookID, userID := book.ID, user.ID
			user.BookIDTaken = &bookID
			book.UserIDTaken = &userID
			book.DateStartUse = &now
			book.DateFinishUse = &due
		},
		notify: func(ctx context.Context, r *domain.Receipt) error {
			return s.emailSvc.SendLoanConfirmed(ctx, r.User.Email, displayName(&r.User), r.Book.Name, *r.Book.DateFinishUse)
		},
	})
}

func (s *circulationService) ConfirmLoanCancellation(ctx context.Context, userID, bookID int32) (*domain.Receipt, error) {
	const op = "ConfirmLoanCancellation"
	return s.confirm(ctx, userID, bookID, transition{
		op:     op,
		order:  domain.OrderTypeCancel,
		action: domain.ActionTypeTake,
		event:  domain.HistoryEventLoanReturned,
		check: func(user *domain.User, book *domain.Book, _ time.Time) error {
			if !domain.CanCancelLoan(user, book) {
				return domain.InvalidState(op, "book %d is not on loan to user %d", book.ID, user.ID)
			}
			return nil
		},
		apply: func(user *domain.User, book *domain.Book, _ time.Time) {
			user.BookIDTaken = nil
			book.UserIDTaken = nil
			book.DateStartUse = nil
			book.DateFinishUse = nil
		},
		notify: func(ctx context.Context, r *domain.Receipt) error {
			return s.emailSvc.SendLoanReturned(ctx, r.User.Email, displayName(&r.User), r.Book.Name)
		},
	})
}

// confirm runs a transition in one transaction: lock the pair, find the
// pending action, re-check the state, mutate both sides, record history and
// consume the action. Deleting an action someone else already consumed fails
// with Conflict and rolls everything back.
func (s *circulationService) confirm(ctx context.Context, userID, bookID int32, t transition) (*domain.Receipt, error) {
	logger.EnterMethod("circulationService."+t.op, "userID", userID, "bookID", bookID)

	receipt, err := retryOnConflict(ctx, s.cfg, t.op, func() (*domain.Receipt, error) {
		var receipt *domain.Receipt
		err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			user, book, err := lockPair(ctx, tx, t.op, IntentRequest{UserID: userID, BookID: bookID})
			if err != nil {
				return err
			}

			key := domain.PendingActionKey{UserID: userID, BookID: bookID, ActionType: t.action}
			action, err := tx.PendingActions().FindForUpdate(ctx, key)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.NotFound(t.op, "no pending %s %s request for user %d and book %d", t.order, t.action, userID, bookID)
				}
				return err
			}
			if action.OrderType != t.order {
				return domain.NotFound(t.op, "pending %s request for user %d and book %d is %s, not %s",
					t.action, userID, bookID, action.OrderType, t.order)
			}

			now := s.cfg.Now().UTC()
			if err := t.check(user, book, now); err != nil {
				return err
			}
			t.apply(user, book, now)

			if err := tx.Users().UpdateCirculation(ctx, user); err != nil {
				return err
			}
			if err := tx.Books().UpdateCirculation(ctx, book); err != nil {
				return err
			}
			entry := &domain.HistoryEntry{
				UserID:     userID,
				BookID:     bookID,
				Event:      t.event,
				OccurredOn: now,
			}
			if t.event == domain.HistoryEventLoanStarted {
				entry.DueOn = book.DateFinishUse
			}
			if err := tx.History().Append(ctx, entry); err != nil {
				return err
			}
			if err := tx.PendingActions().Delete(ctx, action.ID); err != nil {
				return err
			}

			receipt = &domain.Receipt{Action: *action, User: *user, Book: *book}
			return nil
		})
		return receipt, err
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService."+t.op, err, isExpected(err), "userID", userID, "bookID", bookID)
		return nil, err
	}

	if err := t.notify(ctx, receipt); err != nil {
		logger.WarnContext(ctx, "Failed to send confirmation email", "op", t.op, "userID", userID, "error", err)
	}

	logger.Info("Pending action confirmed", "op", t.op, "actionID", receipt.Action.ID, "event", t.event, "userID", userID, "bookID", bookID)
	logger.ExitMethod("circulationService."+t.op, "actionID", receipt.Action.ID)
	return receipt, nil
}
