package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"library-circulation/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify turns a driver error into a tagged domain error. Errors that are
// already tagged pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch sqlState(err) {
	case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected:
		return domain.Conflict(op, err)
	}
	return domain.StoreFailure(op, err)
}

// notFoundOr maps sql.ErrNoRows to a NotFound error and classifies anything else.
func notFoundOr(op string, err error, what string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(op, "%s %v not found", what, id)
	}
	return classify(op, err)
}
