package domain

import "time"

type HistoryEvent string

const (
	HistoryEventReservationConfirmed HistoryEvent = "RESERVATION_CONFIRMED"
	HistoryEventReservationCancelled HistoryEvent = "RESERVATION_CANCELLED"
	HistoryEventLoanStarted          HistoryEvent = "LOAN_STARTED"
	HistoryEventLoanReturned         HistoryEvent = "LOAN_RETURNED"
)

// HistoryEntry records a committed transition. Entries are append-only and are
// written in the same transaction as the transition itself.
type HistoryEntry struct {
	ID         int32        `json:"id" db:"id"`
	UserID     int32        `json:"user_id" db:"user_id"`
	BookID     int32        `json:"book_id" db:"book_id"`
	Event      HistoryEvent `json:"event" db:"event"`
	OccurredOn time.Time    `json:"occurred_on" db:"occurred_on"`
	DueOn      *time.Time   `json:"due_on,omitempty" db:"due_on"`
}

type HistoryFilter struct {
	UserID int32
	BookID int32
	Event  HistoryEvent
}
