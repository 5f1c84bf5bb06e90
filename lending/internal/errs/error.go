package errs

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrOutOfStock = errors.New("out of stock")
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
)

// FromPg maps a postgres constraint error onto the domain taxonomy.
// Errors it does not recognise are returned as is.
func FromPg(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return ErrConflict
	case pgerrcode.ForeignKeyViolation:
		return ErrNotFound
	case pgerrcode.CheckViolation:
		return ErrOutOfStock
	}
	return err
}

// IsRetryable reports transaction failures that are safe to re-run from the start.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
