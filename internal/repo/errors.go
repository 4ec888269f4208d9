package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrTagNotFound       = errors.New("tag not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrUserNotFound      = errors.New("user not found")

	// ErrDuplicatedValueUnique is returned when an insert or update violates a
	// unique constraint (product SKU, customer email, username).
	ErrDuplicatedValueUnique = errors.New("unique constraint violation")

	// ErrInvalidQuantityChange is returned when a stock change would leave the
	// inventory negative.
	ErrInvalidQuantityChange = errors.New("invalid quantity change")
)

const pgUniqueViolation = "23505"

// translatePgError maps driver errors to repository sentinels.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicatedValueUnique
	}
	return err
}
