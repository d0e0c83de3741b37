package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andrefranchin/treine-me-api/internal/apperrors"
)

// notFoundOr maps pgx.ErrNoRows to the taxonomy NotFound for the given
// resource and wraps everything else with the operation name.
func notFoundOr(err error, resource, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(resource)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (duplicate email, duplicate active enrollment).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
