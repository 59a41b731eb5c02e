package postgres

import (
	"database/sql"

	ierr "github.com/flexprice/paycycle/internal/errors"
)

// markOrDatabase keeps the classification done by the postgres layer and
// falls back to ErrDatabase
func markOrDatabase(err error) error {
	switch {
	case ierr.IsAlreadyExists(err):
		return ierr.ErrAlreadyExists
	case ierr.IsNotFound(err):
		return ierr.ErrNotFound
	case ierr.IsSerializationConflict(err):
		return ierr.ErrSerializationConflict
	default:
		return ierr.ErrDatabase
	}
}

func requireAffected(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if n == 0 {
		return ierr.NewErrorf("%s %s not found", entity, id).
			WithHintf("%s not found", entity).
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
