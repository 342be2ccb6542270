package repository

import (
	"context"
	"errors"

	"mobirent/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, so the same repository code
// runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var errNoRowsAffected = errors.New("no rows affected")

const (
	pgErrCodeUniqueViolation    = "23505"
	pgErrCodeForeignKeyViolated = "23503"
	pgErrCodeExclusionViolated  = "23P01"
)

// wrapDBErr classifies driver errors into repository kinds.
func wrapDBErr(msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.NewRepoErr(infra.KindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeUniqueViolation:
			return infra.NewRepoErr(infra.KindDuplicateKey, msg, err)
		case pgErrCodeForeignKeyViolated:
			return infra.NewRepoErr(infra.KindForeignKeyViolated, msg, err)
		case pgErrCodeExclusionViolated:
			return infra.NewRepoErr(infra.KindConflict, msg, err)
		}
	}

	return infra.NewRepoErr(infra.KindDBFailure, msg, err)
}
