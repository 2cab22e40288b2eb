package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"library-circulation/internal/domain"
)

// Row locks are implicit: the transaction already holds the store mutex.

type userRepo struct{ t *tx }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range r.t.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.Conflict("CreateUser", nil)
		}
	}
	r.t.st.nextUserID++
	u.ID = r.t.st.nextUserID
	if u.CreatedOn.IsZero() {
		u.CreatedOn = r.t.now()
	}
	r.t.st.users[u.ID] = cloneUser(*u)
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u, ok := r.t.st.users[id]
	if !ok {
		return nil, domain.NotFound("GetUser", "user %d not found", id)
	}
	u = cloneUser(u)
	return &u, nil
}

func (r userRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.t.st.users {
		if strings.EqualFold(u.Email, email) {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, domain.NotFound("GetUserByEmail", "user %s not found", email)
}

func (r userRepo) UpdateCirculation(ctx context.Context, u *domain.User) error {
	stored, ok := r.t.st.users[u.ID]
	if !ok {
		return domain.NotFound("UpdateUser", "user %d not found", u.ID)
	}
	stored.ReservedBookID = cloneInt32(u.ReservedBookID)
	stored.BookIDTaken = cloneInt32(u.BookIDTaken)
	r.t.st.users[u.ID] = stored
	return nil
}

type bookRepo struct{ t *tx }

func (r bookRepo) Create(ctx context.Context, b *domain.Book) error {
	r.t.st.nextBookID++
	b.ID = r.t.st.nextBookID
	if b.CreatedOn.IsZero() {
		b.CreatedOn = r.t.now()
	}
	r.t.st.books[b.ID] = cloneBook(*b)
	return nil
}

func (r bookRepo) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	b, ok := r.t.st.books[id]
	if !ok {
		return nil, domain.NotFound("GetBook", "book %d not found", id)
	}
	b = cloneBook(b)
	return &b, nil
}

func (r bookRepo) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	return r.GetByID(ctx, id)
}

func (r bookRepo) UpdateCirculation(ctx context.Context, b *domain.Book) error {
	stored, ok := r.t.st.books[b.ID]
	if !ok {
		return domain.NotFound("UpdateBook", "book %d not found", b.ID)
	}
	updated := cloneBook(*b)
	stored.UserReservedID = updated.UserReservedID
	stored.UserIDTaken = updated.UserIDTaken
	stored.DateStartReserve = updated.DateStartReserve
	stored.DateStartUse = updated.DateStartUse
	stored.DateFinishUse = updated.DateFinishUse
	r.t.st.books[b.ID] = stored
	return nil
}

func (r bookRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.Book, error) {
	var books []domain.Book
	for _, id := range sortedKeys(r.t.st.books) {
		b := r.t.st.books[id]
		if b.IsOverdue(now) {
			books = append(books, cloneBook(b))
		}
	}
	sort.SliceStable(books, func(i, j int) bool { return books[i].DateFinishUse.Before(*books[j].DateFinishUse) })
	return books, nil
}

type actionRepo struct{ t *tx }

func (r actionRepo) Create(ctx context.Context, a *domain.PendingAction) error {
	for _, existing := range r.t.st.actions {
		if existing.Key() == a.Key() {
			return domain.Conflict("CreatePendingAction", nil)
		}
	}
	r.t.st.nextActionID++
	a.ID = r.t.st.nextActionID
	if a.CreatedOn.IsZero() {
		a.CreatedOn = r.t.now()
	}
	r.t.st.actions[a.ID] = *a
	return nil
}

func (r actionRepo) GetByID(ctx context.Context, id int32) (*domain.PendingAction, error) {
	a, ok := r.t.st.actions[id]
	if !ok {
		return nil, domain.NotFound("GetPendingAction", "pending action %d not found", id)
	}
	return &a, nil
}

func (r actionRepo) FindForUpdate(ctx context.Context, key domain.PendingActionKey) (*domain.PendingAction, error) {
	for _, a := range r.t.st.actions {
		if a.Key() == key {
			return &a, nil
		}
	}
	return nil, domain.NotFound("FindPendingAction", "pending action %+v not found", key)
}

func (r actionRepo) Delete(ctx context.Context, id int32) error {
	if _, ok := r.t.st.actions[id]; !ok {
		return domain.Conflict("DeletePendingAction", nil)
	}
	delete(r.t.st.actions, id)
	return nil
}

func (r actionRepo) List(ctx context.Context, f domain.PendingActionFilter, page, pageSize int32) ([]domain.PendingAction, int32, error) {
	var matched []domain.PendingAction
	for _, id := range sortedKeys(r.t.st.actions) {
		a := r.t.st.actions[id]
		if f.UserID != 0 && a.UserID != f.UserID {
			continue
		}
		if f.BookID != 0 && a.BookID != f.BookID {
			continue
		}
		if f.OrderType != "" && a.OrderType != f.OrderType {
			continue
		}
		if f.ActionType != "" && a.ActionType != f.ActionType {
			continue
		}
		matched = append(matched, a)
	}
	return paginate(matched, page, pageSize), int32(len(matched)), nil
}

type historyRepo struct{ t *tx }

func (r historyRepo) Append(ctx context.Context, e *domain.HistoryEntry) error {
	r.t.st.nextHistoryID++
	e.ID = r.t.st.nextHistoryID
	entry := *e
	entry.DueOn = cloneTime(e.DueOn)
	r.t.st.history = append(r.t.st.history, entry)
	return nil
}

func (r historyRepo) List(ctx context.Context, f domain.HistoryFilter, page, pageSize int32) ([]domain.HistoryEntry, int32, error) {
	var matched []domain.HistoryEntry
	for _, e := range r.t.st.history {
		if f.UserID != 0 && e.UserID != f.UserID {
			continue
		}
		if f.BookID != 0 && e.BookID != f.BookID {
			continue
		}
		if f.Event != "" && e.Event != f.Event {
			continue
		}
		matched = append(matched, e)
	}
	return paginate(matched, page, pageSize), int32(len(matched)), nil
}
