package domain

import "time"

type Book struct {
	ID               int32      `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Authors          string     `json:"authors" db:"authors"`
	UserReservedID   *int32     `json:"user_reserved_id,omitempty" db:"user_reserved_id"`
	UserIDTaken      *int32     `json:"user_id_taken,omitempty" db:"user_id_taken"`
	DateStartReserve *time.Time `json:"date_start_reserve,omitempty" db:"date_start_reserve"`
	DateStartUse     *time.Time `json:"date_start_use,omitempty" db:"date_start_use"`
	DateFinishUse    *time.Time `json:"date_finish_use,omitempty" db:"date_finish_use"` // loan due date
	CreatedOn        time.Time  `json:"created_on" db:"created_on"`
}

// IsOverdue reports whether the book is on loan past its due date.
func (b *Book) IsOverdue(now time.Time) bool {
	return b.UserIDTaken != nil && b.DateFinishUse != nil && b.DateFinishUse.Before(now)
}
