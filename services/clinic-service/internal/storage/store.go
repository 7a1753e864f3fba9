package storage

import (
	"context"
	"errors"

	"github.com/carelane/hms/libs/db"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by Get-style lookups for a missing row.
var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || db.IsNotFound(err)
}

// IsDuplicate reports a unique index rejecting the write (e-mail taken, slot booked).
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

// IsMissingReference reports a foreign key pointing at a row that does not exist.
func IsMissingReference(err error) bool {
	return db.IsForeignKeyViolation(err)
}

// IsRejected reports a CHECK constraint refusing the row.
func IsRejected(err error) bool {
	return db.IsCheckViolation(err)
}

func notFound(err error) error {
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func inTx(ctx context.Context, pool *db.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
