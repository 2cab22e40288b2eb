package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

const (
	DefaultLoanPeriod         = 31 * 24 * time.Hour
	DefaultMaxConflictRetries = 3
	DefaultRetryBackoff       = 20 * time.Millisecond
)

type CirculationConfig struct {
	LoanPeriod         time.Duration
	MaxConflictRetries int
	RetryBackoff       time.Duration
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

func (c CirculationConfig) withDefaults() CirculationConfig {
	if c.LoanPeriod <= 0 {
		c.LoanPeriod = DefaultLoanPeriod
	}
	if c.MaxConflictRetries < 0 {
		c.MaxConflictRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type circulationService struct {
	store    repository.Store
	emailSvc EmailService
	cfg      CirculationConfig
}

func NewCirculationService(store repository.Store, emailSvc EmailService, cfg CirculationConfig) CirculationService {
	return &circulationService{
		store:    store,
		emailSvc: emailSvc,
		cfg:      cfg.withDefaults(),
	}
}

// intent describes one kind of submission: the pending action it creates and
// the state the pair must be in for it to be accepted.
type intent struct {
	op      string
	order   domain.OrderType
	action  domain.ActionType
	allowed func(user *domain.User, book *domain.Book) bool
	reason  string
}

var (
	reserveIntent = intent{
		op:      "SubmitReservation",
		order:   domain.OrderTypeAdd,
		action:  domain.ActionTypeReserve,
		allowed: domain.CanReserve,
		reason:  "user or book already holds a reservation",
	}
	loanIntent = intent{
		op:      "SubmitLoanRequest",
		order:   domain.OrderTypeAdd,
		action:  domain.ActionTypeTake,
		allowed: domain.CanBorrow,
		reason:  "user or book already has an active loan",
	}
	loanCancelIntent = intent{
		op:      "SubmitLoanCancellationRequest",
		order:   domain.OrderTypeCancel,
		action:  domain.ActionTypeTake,
		allowed: domain.CanCancelLoan,
		reason:  "book is not on loan to this user",
	}
)

func (s *circulationService) SubmitReservation(ctx context.Context, req IntentRequest) (*domain.Receipt, error) {
	return s.submit(ctx, reserveIntent, req)
}

func (s *circulationService) SubmitLoanRequest(ctx context.Context, req IntentRequest) (*domain.Receipt, error) {
	return s.submit(ctx, loanIntent, req)
}

func (s *circulationService) SubmitLoanCancellationRequest(ctx context.Context, req IntentRequest) (*domain.Receipt, error) {
	return s.submit(ctx, loanCancelIntent, req)
}

func (s *circulationService) submit(ctx context.Context, in intent, req IntentRequest) (*domain.Receipt, error) {
	logger.EnterMethod("circulationService."+in.op, "userID", req.UserID, "bookID", req.BookID)

	receipt, err := retryOnConflict(ctx, s.cfg, in.op, func() (*domain.Receipt, error) {
		var receipt *domain.Receipt
		err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			user, book, err := lockPair(ctx, tx, in.op, req)
			if err != nil {
				return err
			}
			if !in.allowed(user, book) {
				return domain.InvalidState(in.op, "%s (user %d, book %d)", in.reason, user.ID, book.ID)
			}

			key := domain.PendingActionKey{UserID: user.ID, BookID: book.ID, ActionType: in.action}
			if err := ensureNoPendingAction(ctx, tx, in.op, key); err != nil {
				return err
			}

			action := &domain.PendingAction{
				UserID:     user.ID,
				BookID:     book.ID,
				OrderType:  in.order,
				ActionType: in.action,
				CreatedOn:  s.cfg.Now().UTC(),
			}
			if err := tx.PendingActions().Create(ctx, action); err != nil {
				return err
			}

			receipt = &domain.Receipt{Action: *action, User: *user, Book: *book}
			return nil
		})
		return receipt, err
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService."+in.op, err, isExpected(err), "userID", req.UserID, "bookID", req.BookID)
		return nil, err
	}

	logger.Info("Pending action submitted", "actionID", receipt.Action.ID, "order", in.order, "action", in.action, "userID", req.UserID, "bookID", req.BookID)
	logger.ExitMethod("circulationService."+in.op, "actionID", receipt.Action.ID)
	return receipt, nil
}

// SubmitReservationCancellation takes effect immediately. A committed
// reservation is released on both sides; a reservation that is still only
// pending is withdrawn.
func (s *circulationService) SubmitReservationCancellation(ctx context.Context, req IntentRequest) (*domain.Receipt, error) {
	const op = "SubmitReservationCancellation"
	logger.EnterMethod("circulationService."+op, "userID", req.UserID, "bookID", req.BookID)

	released := false
	receipt, err := retryOnConflict(ctx, s.cfg, op, func() (*domain.Receipt, error) {
		var receipt *domain.Receipt
		err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
			released = false
			user, book, err := lockPair(ctx, tx, op, req)
			if err != nil {
				return err
			}

			key := domain.PendingActionKey{UserID: user.ID, BookID: book.ID, ActionType: domain.ActionTypeReserve}
			pending, err := tx.PendingActions().FindForUpdate(ctx, key)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}

			switch {
			case domain.HoldsReservation(user, book):
				user.ReservedBookID = nil
				book.UserReservedID = nil
				book.DateStartReserve = nil
				if err := tx.Users().UpdateCirculation(ctx, user); err != nil {
					return err
				}
				if err := tx.Books().UpdateCirculation(ctx, book); err != nil {
					return err
				}
				if err := tx.History().Append(ctx, &domain.HistoryEntry{
					UserID:     user.ID,
					BookID:     book.ID,
					Event:      domain.HistoryEventReservationCancelled,
					OccurredOn: s.cfg.Now().UTC(),
				}); err != nil {
					return err
				}
				action := domain.PendingAction{
					UserID:     user.ID,
					BookID:     book.ID,
					OrderType:  domain.OrderTypeCancel,
					ActionType: domain.ActionTypeReserve,
					CreatedOn:  s.cfg.Now().UTC(),
				}
				if pending != nil {
					if err := tx.PendingActions().Delete(ctx, pending.ID); err != nil {
						return err
					}
					action.ID = pending.ID
				}
				released = true
				receipt = &domain.Receipt{Action: action, User: *user, Book: *book}
			case pending != nil && pending.OrderType == domain.OrderTypeAdd:
				if err := tx.PendingActions().Delete(ctx, pending.ID); err != nil {
					return err
				}
				receipt = &domain.Receipt{Action: *pending, User: *user, Book: *book}
			default:
				return domain.InvalidState(op, "user %d holds no reservation on book %d", user.ID, book.ID)
			}
			return nil
		})
		return receipt, err
	})
	if err != nil {
		logger.ExitMethodWithError("circulationService."+op, err, isExpected(err), "userID", req.UserID, "bookID", req.BookID)
		return nil, err
	}

	if released {
		logger.Info("Reservation released", "userID", req.UserID, "bookID", req.BookID)
		_ = s.emailSvc.SendReservationCancelled(ctx, receipt.User.Email, displayName(&receipt.User), receipt.Book.Name)
	} else {
		logger.Info("Pending reservation withdrawn", "actionID", receipt.Action.ID, "userID", req.UserID, "bookID", req.BookID)
	}
	logger.ExitMethod("circulationService."+op, "released", released)
	return receipt, nil
}

// lockPair locks the user row and then the book row. Every operation takes the
// locks in this order.
func lockPair(ctx context.Context, tx repository.Tx, op string, req IntentRequest) (*domain.User, *domain.Book, error) {
	user, err := tx.Users().GetByIDForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, nil, err
	}
	if req.UserEmail != "" && !strings.EqualFold(req.UserEmail, user.Email) {
		return nil, nil, domain.NotFound(op, "no user %d with email %s", req.UserID, req.UserEmail)
	}
	book, err := tx.Books().GetByIDForUpdate(ctx, req.BookID)
	if err != nil {
		return nil, nil, err
	}
	return user, book, nil
}

func ensureNoPendingAction(ctx context.Context, tx repository.Tx, op string, key domain.PendingActionKey) error {
	existing, err := tx.PendingActions().FindForUpdate(ctx, key)
	switch {
	case err == nil:
		return domain.InvalidState(op, "a %s %s request is already pending for user %d and book %d",
			existing.OrderType, existing.ActionType, key.UserID, key.BookID)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}

// isExpected separates caller mistakes from faults for logging.
func isExpected(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindInvalidState, domain.KindNotFound:
		return true
	}
	return false
}

func displayName(u *domain.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.Surname)
	if name == "" {
		return u.Email
	}
	return name
}
