package http

import (
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gorilla/mux"

	"library-circulation/internal/domain"
)

// intentRequest is submitted by a user about one book. Librarians may act on
// behalf of another user by setting UserID.
type intentRequest struct {
	BookID    int32  `json:"book_id"`
	UserID    int32  `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}

func (r intentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, validation.Min(1)),
		validation.Field(&r.UserID, validation.Min(0)),
		validation.Field(&r.UserEmail, is.Email),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r refreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type confirmRequest struct {
	UserID  int32      `json:"user_id"`
	BookID  int32      `json:"book_id"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

func (r confirmRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.Min(1)),
		validation.Field(&r.BookID, validation.Required, validation.Min(1)),
	)
}

const maxPage = 1_000_000

type listQuery struct {
	Page       int32
	PageSize   int32
	UserID     int32
	BookID     int32
	OrderType  string
	ActionType string
	Event      string
}

func (q listQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Page, validation.Min(0), validation.Max(maxPage)),
		validation.Field(&q.PageSize, validation.Min(0), validation.Max(100)),
		validation.Field(&q.UserID, validation.Min(0)),
		validation.Field(&q.BookID, validation.Min(0)),
		validation.Field(&q.OrderType, validation.In(string(domain.OrderTypeAdd), string(domain.OrderTypeCancel))),
		validation.Field(&q.ActionType, validation.In(string(domain.ActionTypeReserve), string(domain.ActionTypeTake))),
		validation.Field(&q.Event, validation.In(
			string(domain.HistoryEventReservationConfirmed),
			string(domain.HistoryEventReservationCancelled),
			string(domain.HistoryEventLoanStarted),
			string(domain.HistoryEventLoanReturned),
		)),
	)
}

func parseListQuery(r *http.Request) (listQuery, error) {
	values := r.URL.Query()
	var q listQuery
	for name, dst := range map[string]*int32{
		"page":      &q.Page,
		"page_size": &q.PageSize,
		"user_id":   &q.UserID,
		"book_id":   &q.BookID,
	} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return q, badRequest{msg: "invalid " + name + ": " + raw}
		}
		*dst = int32(n)
	}
	q.OrderType = values.Get("order_type")
	q.ActionType = values.Get("action_type")
	q.Event = values.Get("event")
	if err := q.Validate(); err != nil {
		return q, err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}
	return q, nil
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n <= 0 {
		return 0, badRequest{msg: "invalid " + name + ": " + raw}
	}
	return int32(n), nil
}
