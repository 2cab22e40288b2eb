package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

const bookColumns = `id, name, authors, user_reserved_id, user_id_taken, date_start_reserve, date_start_use, date_finish_use, created_on`

type bookRepository struct {
	db sqlx.ExtContext
}

func NewBookRepository(db sqlx.ExtContext) repository.BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	if b.CreatedOn.IsZero() {
		b.CreatedOn = time.Now().UTC()
	}
	query := `INSERT INTO books (name, authors, created_on) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query, b.Name, b.Authors, b.CreatedOn).Scan(&b.ID)
	return classify("CreateBook", err)
}

func (r *bookRepository) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	return r.get(ctx, "GetBook", `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Book, error) {
	return r.get(ctx, "GetBookForUpdate", `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id)
}

func (r *bookRepository) get(ctx context.Context, op, query string, id int32) (*domain.Book, error) {
	b := &domain.Book{}
	if err := sqlx.GetContext(ctx, r.db, b, query, id); err != nil {
		return nil, notFoundOr(op, err, "book", id)
	}
	return b, nil
}

func (r *bookRepository) UpdateCirculation(ctx context.Context, b *domain.Book) error {
	query := `UPDATE books
	          SET user_reserved_id = $1, user_id_taken = $2, date_start_reserve = $3, date_start_use = $4, date_finish_use = $5
	          WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query, b.UserReservedID, b.UserIDTaken, b.DateStartReserve, b.DateStartUse, b.DateFinishUse, b.ID)
	if err != nil {
		return classify("UpdateBook", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("UpdateBook", err)
	}
	if n == 0 {
		return domain.NotFound("UpdateBook", "book %d not found", b.ID)
	}
	return nil
}

// ListOverdue returns books on loan whose due date is before now, oldest due first.
func (r *bookRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Book, error) {
	query, args, err := goqu.Dialect(dialect).
		From("books").Prepared(true).
		Select(goqu.L(bookColumns)).
		Where(
			goqu.C("user_id_taken").IsNotNull(),
			goqu.C("date_finish_use").Lt(now),
		).
		Order(goqu.C("date_finish_use").Asc()).
		ToSQL()
	if err != nil {
		return nil, domain.StoreFailure("ListOverdueBooks", err)
	}

	logger.DatabaseCall("ListOverdueBooks", query)
	var books []domain.Book
	if err := sqlx.SelectContext(ctx, r.db, &books, query, args...); err != nil {
		logger.DatabaseResult("ListOverdueBooks", 0, err)
		return nil, classify("ListOverdueBooks", err)
	}
	logger.DatabaseResult("ListOverdueBooks", int64(len(books)), nil)
	return books, nil
}
