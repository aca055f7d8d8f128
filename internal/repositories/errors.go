package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates the profile or recipe does not exist, or a recipe
	// references an owner without a profile.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would duplicate an existing profile or recipe.
	ErrConflict = errors.New("record conflict")
)

// PostgreSQL error codes surfaced as sentinel errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// writeError maps constraint violations from an insert to the package sentinels
// and wraps everything else with op.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
