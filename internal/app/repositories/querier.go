package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryRow routes a query through the transaction when one is supplied and
// falls back to the pool otherwise.
func queryRow(db *pgxpool.Pool, tx pgx.Tx, ctx context.Context, sql string, args ...any) pgx.Row {
	if tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return db.QueryRow(ctx, sql, args...)
}

// exec mirrors queryRow for statements without a result row.
func exec(db *pgxpool.Pool, tx pgx.Tx, ctx context.Context, sql string, args ...any) (int64, error) {
	if tx != nil {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil
	}
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
