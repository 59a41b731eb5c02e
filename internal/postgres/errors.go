package postgres

import (
	"database/sql"
	"errors"

	ierr "github.com/flexprice/paycycle/internal/errors"
	"github.com/lib/pq"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

// classifyError marks driver errors with the sentinel the services act on
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHint("Record not found").
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return ierr.WithError(err).
				WithReportableDetails(map[string]any{
					"sql_state": string(pqErr.Code),
				}).
				Mark(ierr.ErrSerializationConflict)
		case sqlStateUniqueViolation:
			return ierr.WithError(err).
				WithHint("Record already exists").
				WithReportableDetails(map[string]any{
					"constraint": pqErr.Constraint,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	return ierr.WithError(err).Mark(ierr.ErrDatabase)
}
