package domain

// CanReserve reports whether user may place a reservation on book: neither
// side may already hold one.
func CanReserve(user *User, book *Book) bool {
	return user.ReservedBookID == nil && book.UserReservedID == nil
}

// CanBorrow reports whether book may be loaned to user.
func CanBorrow(user *User, book *Book) bool {
	return user.BookIDTaken == nil && book.UserIDTaken == nil
}

// CanCancelLoan requires an active loan of book to user, recorded on both sides.
func CanCancelLoan(user *User, book *Book) bool {
	return user.BookIDTaken != nil && *user.BookIDTaken == book.ID &&
		book.UserIDTaken != nil && *book.UserIDTaken == user.ID
}

// HoldsReservation requires a committed reservation of book by user, recorded on both sides.
func HoldsReservation(user *User, book *Book) bool {
	return user.ReservedBookID != nil && *user.ReservedBookID == book.ID &&
		book.UserReservedID != nil && *book.UserReservedID == user.ID
}

// Consistent reports whether the cross-pointers between user and book agree:
// each side points at the other exactly when the other points back.
func Consistent(user *User, book *Book) bool {
	userReserves := user.ReservedBookID != nil && *user.ReservedBookID == book.ID
	bookReservedBy := book.UserReservedID != nil && *book.UserReservedID == user.ID
	userTakes := user.BookIDTaken != nil && *user.BookIDTaken == book.ID
	bookTakenBy := book.UserIDTaken != nil && *book.UserIDTaken == user.ID
	return userReserves == bookReservedBy && userTakes == bookTakenBy
}
