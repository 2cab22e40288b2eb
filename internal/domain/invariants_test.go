package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func id(v int32) *int32 { return &v }

func TestCanReserve(t *testing.T) {
	tests := []struct {
		name string
		user User
		book Book
		want bool
	}{
		{"both free", User{ID: 1}, Book{ID: 7}, true},
		{"user holds reservation", User{ID: 1, ReservedBookID: id(7)}, Book{ID: 9}, false},
		{"book reserved by other", User{ID: 1}, Book{ID: 7, UserReservedID: id(2)}, false},
		{"loan does not block reservation", User{ID: 1, BookIDTaken: id(3)}, Book{ID: 7}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReserve(&tt.user, &tt.book))
		})
	}
}

func TestCanBorrow(t *testing.T) {
	assert.True(t, CanBorrow(&User{ID: 1}, &Book{ID: 7}))
	assert.True(t, CanBorrow(&User{ID: 1, ReservedBookID: id(7)}, &Book{ID: 7, UserReservedID: id(1)}))
	assert.False(t, CanBorrow(&User{ID: 1, BookIDTaken: id(4)}, &Book{ID: 7}))
	assert.False(t, CanBorrow(&User{ID: 1}, &Book{ID: 7, UserIDTaken: id(2)}))
}

func TestCanCancelLoan(t *testing.T) {
	assert.True(t, CanCancelLoan(&User{ID: 2, BookIDTaken: id(4)}, &Book{ID: 4, UserIDTaken: id(2)}))
	assert.False(t, CanCancelLoan(&User{ID: 2}, &Book{ID: 4}), "no loan at all")
	assert.False(t, CanCancelLoan(&User{ID: 2, BookIDTaken: id(5)}, &Book{ID: 4, UserIDTaken: id(2)}), "user holds a different book")
	assert.False(t, CanCancelLoan(&User{ID: 2, BookIDTaken: id(4)}, &Book{ID: 4, UserIDTaken: id(3)}), "book loaned to someone else")
	assert.False(t, CanCancelLoan(&User{ID: 2, BookIDTaken: id(4)}, &Book{ID: 4}), "one-sided pointer")
}

func TestHoldsReservation(t *testing.T) {
	assert.True(t, HoldsReservation(&User{ID: 1, ReservedBookID: id(7)}, &Book{ID: 7, UserReservedID: id(1)}))
	assert.False(t, HoldsReservation(&User{ID: 1, ReservedBookID: id(7)}, &Book{ID: 7}))
	assert.False(t, HoldsReservation(&User{ID: 1}, &Book{ID: 7, UserReservedID: id(1)}))
}

func TestConsistent(t *testing.T) {
	assert.True(t, Consistent(&User{ID: 1}, &Book{ID: 7}))
	assert.True(t, Consistent(&User{ID: 1, ReservedBookID: id(7)}, &Book{ID: 7, UserReservedID: id(1)}))
	assert.False(t, Consistent(&User{ID: 1, BookIDTaken: id(7)}, &Book{ID: 7}))
	assert.False(t, Consistent(&User{ID: 1}, &Book{ID: 7, UserReservedID: id(1)}))
	assert.True(t, Consistent(&User{ID: 1, ReservedBookID: id(8)}, &Book{ID: 7, UserReservedID: id(2)}))
}
