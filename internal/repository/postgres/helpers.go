package postgres

import (
	"database/sql"
	"fmt"

	ierr "github.com/feeflow/feeflow/internal/errors"
	"github.com/lib/pq"
)

// isUniqueViolation reports whether err is a postgres unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// requireRowAffected maps a zero-row update to a not-found error so callers
// never silently update nothing.
func requireRowAffected(result sql.Result, entity string, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read update result").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError(entity + " not found").
			WithHintf("The %s %s does not exist", entity, id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// argClause formats a positional placeholder clause and advances the index.
func argClause(format string, idx *int) string {
	clause := fmt.Sprintf(format, *idx)
	*idx++
	return clause
}
