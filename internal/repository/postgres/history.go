package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
)

const (
	historyTable   = "circulation_history"
	historyColumns = `id, user_id, book_id, event, occurred_on, due_on`
)

type historyRepository struct {
	db sqlx.ExtContext
}

func NewHistoryRepository(db sqlx.ExtContext) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, e *domain.HistoryEntry) error {
	query := `INSERT INTO circulation_history (user_id, book_id, event, occurred_on, due_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query, e.UserID, e.BookID, e.Event, e.OccurredOn, e.DueOn).Scan(&e.ID)
	return classify("AppendHistory", err)
}

func (r *historyRepository) List(ctx context.Context, filter domain.HistoryFilter, page, pageSize int32) ([]domain.HistoryEntry, int32, error) {
	var where []exp.Expression
	if filter.UserID != 0 {
		where = append(where, goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.BookID != 0 {
		where = append(where, goqu.C("book_id").Eq(filter.BookID))
	}
	if filter.Event != "" {
		where = append(where, goqu.C("event").Eq(string(filter.Event)))
	}

	var entries []domain.HistoryEntry
	count, err := listPage(ctx, r.db, "ListHistory", historyTable, historyColumns, where, page, pageSize, &entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, count, nil
}
