package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/aiteamhq/billsync/internal/errors"
)

// wrapQueryError marks a query failure as not found or database error so
// callers can branch on the sentinel without knowing about database/sql
func wrapQueryError(err error, entity string, details map[string]any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithMessagef("%s query failed", entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
