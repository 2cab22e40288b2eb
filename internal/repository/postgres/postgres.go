package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu postgres dialect
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver

	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

const dialect = "postgres"

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects with the named driver ("postgres" for lib/pq, "pgx" for pgx) and pings the server.
func Open(ctx context.Context, driver, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Store implements repository.Store on Postgres. Transactions run at READ
// COMMITTED and serialize on user and book rows through SELECT ... FOR UPDATE.
type Store struct {
	db *sqlx.DB
	repos
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, repos: newRepos(db)}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.DatabaseResult("BeginTx", 0, err)
		return classify("BeginTx", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, newRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		logger.DatabaseResult("Commit", 0, err)
		return classify("Commit", err)
	}
	return nil
}

// repos binds every repository to one query executor, either the pool or a transaction.
type repos struct {
	users   *userRepository
	books   *bookRepository
	actions *pendingActionRepository
	history *historyRepository
}

func newRepos(q sqlx.ExtContext) repos {
	return repos{
		users:   &userRepository{db: q},
		books:   &bookRepository{db: q},
		actions: &pendingActionRepository{db: q},
		history: &historyRepository{db: q},
	}
}

func (r repos) Users() repository.UserRepository                   { return r.users }
func (r repos) Books() repository.BookRepository                   { return r.books }
func (r repos) PendingActions() repository.PendingActionRepository { return r.actions }
func (r repos) History() repository.HistoryRepository              { return r.history }
