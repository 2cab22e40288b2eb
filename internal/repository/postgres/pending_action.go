package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

const (
	pendingActionsTable  = "pending_actions"
	pendingActionColumns = `id, user_id, book_id, order_type, action_type, created_on`
)

type pendingActionRepository struct {
	db sqlx.ExtContext
}

func NewPendingActionRepository(db sqlx.ExtContext) repository.PendingActionRepository {
	return &pendingActionRepository{db: db}
}

// Create inserts the action. The unique index on (user_id, book_id, action_type)
// turns a concurrent duplicate into a Conflict.
func (r *pendingActionRepository) Create(ctx context.Context, a *domain.PendingAction) error {
	if a.CreatedOn.IsZero() {
		a.CreatedOn = time.Now().UTC()
	}
	query := `INSERT INTO pending_actions (user_id, book_id, order_type, action_type, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query, a.UserID, a.BookID, a.OrderType, a.ActionType, a.CreatedOn).Scan(&a.ID)
	return classify("CreatePendingAction", err)
}

func (r *pendingActionRepository) GetByID(ctx context.Context, id int32) (*domain.PendingAction, error) {
	a := &domain.PendingAction{}
	query := `SELECT ` + pendingActionColumns + ` FROM pending_actions WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, a, query, id); err != nil {
		return nil, notFoundOr("GetPendingAction", err, "pending action", id)
	}
	return a, nil
}

func (r *pendingActionRepository) FindForUpdate(ctx context.Context, key domain.PendingActionKey) (*domain.PendingAction, error) {
	a := &domain.PendingAction{}
	query := `SELECT ` + pendingActionColumns + ` FROM pending_actions
	          WHERE user_id = $1 AND book_id = $2 AND action_type = $3 FOR UPDATE`
	if err := sqlx.GetContext(ctx, r.db, a, query, key.UserID, key.BookID, key.ActionType); err != nil {
		return nil, notFoundOr("FindPendingAction", err, "pending action", key)
	}
	return a, nil
}

func (r *pendingActionRepository) Delete(ctx context.Context, id int32) error {
	query := `DELETE FROM pending_actions WHERE id = $1`
	logger.DatabaseCall("DeletePendingAction", query, "id", id)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.DatabaseResult("DeletePendingAction", 0, err)
		return classify("DeletePendingAction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("DeletePendingAction", err)
	}
	logger.DatabaseResult("DeletePendingAction", n, nil)
	if n == 0 {
		return domain.Conflict("DeletePendingAction", nil)
	}
	return nil
}

func (r *pendingActionRepository) List(ctx context.Context, filter domain.PendingActionFilter, page, pageSize int32) ([]domain.PendingAction, int32, error) {
	var where []exp.Expression
	if filter.UserID != 0 {
		where = append(where, goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.BookID != 0 {
		where = append(where, goqu.C("book_id").Eq(filter.BookID))
	}
	if filter.OrderType != "" {
		where = append(where, goqu.C("order_type").Eq(string(filter.OrderType)))
	}
	if filter.ActionType != "" {
		where = append(where, goqu.C("action_type").Eq(string(filter.ActionType)))
	}

	var actions []domain.PendingAction
	count, err := listPage(ctx, r.db, "ListPendingActions", pendingActionsTable, pendingActionColumns, where, page, pageSize, &actions)
	if err != nil {
		return nil, 0, err
	}
	return actions, count, nil
}
