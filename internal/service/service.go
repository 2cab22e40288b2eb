package service

import (
	"context"
	"time"

	"library-circulation/internal/domain"
)

// IntentRequest identifies the user submitting an intent and the book it is
// about. UserEmail is optional; when set it must match the stored user.
type IntentRequest struct {
	UserID    int32
	BookID    int32
	UserEmail string
}

// CirculationService is the reservation/loan state machine. Submit* operations
// are called by the user the request is about; Confirm* operations require the
// librarian role, which the transport checks before calling.
type CirculationService interface {
	SubmitReservation(ctx context.Context, req IntentRequest) (*domain.Receipt, error)
	SubmitLoanRequest(ctx context.Context, req IntentRequest) (*domain.Receipt, error)
	SubmitLoanCancellationRequest(ctx context.Context, req IntentRequest) (*domain.Receipt, error)
	SubmitReservationCancellation(ctx context.Context, req IntentRequest) (*domain.Receipt, error)

	ConfirmReservation(ctx context.Context, userID, bookID int32) (*domain.Receipt, error)
	// ConfirmLoan starts a loan due at dueDate, or after the configured loan period when dueDate is nil.
	ConfirmLoan(ctx context.Context, userID, bookID int32, dueDate *time.Time) (*domain.Receipt, error)
	ConfirmLoanCancellation(ctx context.Context, userID, bookID int32) (*domain.Receipt, error)

	FindPendingAction(ctx context.Context, userID, bookID int32, actionType domain.ActionType) (*domain.PendingAction, error)
	GetPendingAction(ctx context.Context, id int32) (*domain.PendingAction, error)
	ListPendingActions(ctx context.Context, filter domain.PendingActionFilter, page, pageSize int32) ([]domain.PendingAction, int32, error)
	ListHistory(ctx context.Context, filter domain.HistoryFilter, page, pageSize int32) ([]domain.HistoryEntry, int32, error)

	// RemindOverdueLoans emails every borrower whose loan is past due and returns how many were found.
	RemindOverdueLoans(ctx context.Context) (int, error)
}

type EmailService interface {
	SendReservationConfirmed(ctx context.Context, email, name, bookName string) error
	SendReservationCancelled(ctx context.Context, email, name, bookName string) error
	SendLoanConfirmed(ctx context.Context, email, name, bookName string, due time.Time) error
	SendLoanReturned(ctx context.Context, email, name, bookName string) error
	SendOverdueReminder(ctx context.Context, email, name, bookName string, due time.Time) error
}
