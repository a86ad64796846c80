package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
// Callers decide whether that is a conflict or an idempotent success.
var ErrDuplicate = errors.New("duplicate row")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
