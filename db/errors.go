package db

import (
	"errors"

	"github.com/lib/pq"
)

// ErrPolicyViolation is returned when a write is rejected by a row-level access policy.
var ErrPolicyViolation = errors.New("new row violates row-level security policy")

const pqUniqueViolation = "23505"

func IsNonUniqueErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

// NonUniqueConstraint returns the name of the violated unique constraint, or "" when
// err is not a unique violation.
func NonUniqueConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr.Constraint
	}
	return ""
}
