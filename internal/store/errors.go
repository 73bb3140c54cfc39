package store

import "errors"

// Sentinel errors returned by repository methods. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrHistoryNotSaved is returned when an INSERT completes without error
	// but affects no rows.
	ErrHistoryNotSaved = errors.New("history record was not saved")

	// ErrUnknownHistoryBackend is returned by [NewClientStorages] for a
	// backend name it does not recognise.
	ErrUnknownHistoryBackend = errors.New("unknown history backend")

	// ErrHistoryUnavailable is recorded in [ClientStorages.Degraded] when
	// the configured database cannot be opened or migrated.
	ErrHistoryUnavailable = errors.New("history database unavailable")
)

// Low-level database operation errors.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning or iterating result rows
	// fails.
	ErrScanningRows = errors.New("failed to scan history rows")
)
