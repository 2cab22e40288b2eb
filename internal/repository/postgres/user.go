package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
)

const userColumns = `id, email, first_name, surname, password_hash, role, reserved_book_id, book_id_taken, created_on`

type userRepository struct {
	db sqlx.ExtContext
}

func NewUserRepository(db sqlx.ExtContext) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.CreatedOn.IsZero() {
		u.CreatedOn = time.Now().UTC()
	}
	query := `INSERT INTO users (email, first_name, surname, password_hash, role, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query, u.Email, u.FirstName, u.Surname, u.PasswordHash, u.Role, u.CreatedOn).Scan(&u.ID)
	return classify("CreateUser", err)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.get(ctx, "GetUser", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.User, error) {
	return r.get(ctx, "GetUserForUpdate", `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, "GetUserByEmail", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) get(ctx context.Context, op, query string, key any) (*domain.User, error) {
	u := &domain.User{}
	if err := sqlx.GetContext(ctx, r.db, u, query, key); err != nil {
		return nil, notFoundOr(op, err, "user", key)
	}
	return u, nil
}

func (r *userRepository) UpdateCirculation(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET reserved_book_id = $1, book_id_taken = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, u.ReservedBookID, u.BookIDTaken, u.ID)
	if err != nil {
		return classify("UpdateUser", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("UpdateUser", err)
	}
	if n == 0 {
		return domain.NotFound("UpdateUser", "user %d not found", u.ID)
	}
	return nil
}
