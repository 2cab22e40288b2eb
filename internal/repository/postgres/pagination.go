package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

// listPage counts the rows matching where, then selects one page of them into dest ordered by id.
// page is 1-based.
func listPage(ctx context.Context, db sqlx.QueryerContext, op, table, columns string, where []exp.Expression, page, pageSize int32, dest any) (int32, error) {
	base := goqu.Dialect(dialect).From(table).Prepared(true)
	if len(where) > 0 {
		base = base.Where(where...)
	}

	countQuery, countArgs, err := base.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return 0, domain.StoreFailure(op, err)
	}
	var count int32
	if err := sqlx.GetContext(ctx, db, &count, countQuery, countArgs...); err != nil {
		return 0, classify(op, err)
	}
	offset := repository.PageOffset(page, pageSize)
	if offset >= int64(count) {
		return count, nil
	}

	pageQuery, pageArgs, err := base.
		Select(goqu.L(columns)).
		Order(goqu.C("id").Asc()).
		Limit(uint(pageSize)).
		Offset(uint(offset)).
		ToSQL()
	if err != nil {
		return 0, domain.StoreFailure(op, err)
	}

	logger.DatabaseCall(op, pageQuery)
	if err := sqlx.SelectContext(ctx, db, dest, pageQuery, pageArgs...); err != nil {
		logger.DatabaseResult(op, 0, err)
		return 0, classify(op, err)
	}
	logger.DatabaseResult(op, int64(count), nil)
	return count, nil
}
