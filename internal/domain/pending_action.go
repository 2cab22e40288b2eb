package domain

import "time"

type OrderType string

const (
	OrderTypeAdd    OrderType = "ADD"
	OrderTypeCancel OrderType = "CANCEL"
)

type ActionType string

const (
	ActionTypeReserve ActionType = "RESERVE"
	ActionTypeTake    ActionType = "TAKE"
)

// PendingAction is a user intent waiting for a librarian. It is created by a
// submission and deleted when it is confirmed or withdrawn. At most one exists
// per (UserID, BookID, ActionType).
type PendingAction struct {
	ID         int32      `json:"id" db:"id"`
	UserID     int32      `json:"user_id" db:"user_id"`
	BookID     int32      `json:"book_id" db:"book_id"`
	OrderType  OrderType  `json:"order_type" db:"order_type"`
	ActionType ActionType `json:"action_type" db:"action_type"`
	CreatedOn  time.Time  `json:"created_on" db:"created_on"`
}

// PendingActionKey identifies the single pending action a pair may hold per action type.
type PendingActionKey struct {
	UserID     int32
	BookID     int32
	ActionType ActionType
}

func (p *PendingAction) Key() PendingActionKey {
	return PendingActionKey{UserID: p.UserID, BookID: p.BookID, ActionType: p.ActionType}
}

// PendingActionFilter narrows librarian queue listings. Zero values match everything.
type PendingActionFilter struct {
	UserID     int32
	BookID     int32
	OrderType  OrderType
	ActionType ActionType
}

// Receipt is what every circulation operation returns: the action created or
// consumed, and both entities as they stand after the operation.
type Receipt struct {
	Action PendingAction `json:"action"`
	User   User          `json:"user"`
	Book   Book          `json:"book"`
}
