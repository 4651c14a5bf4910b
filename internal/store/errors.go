package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUsernameAlreadyExists is returned when a user cannot be created or
	// renamed because the username is taken.
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrEmailAlreadyExists is returned when the email is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrNoUserWasFound is returned when a query expected to match a user
	// record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrRecoveryTokenMismatch is returned when a recovery compare-and-set
	// matched no row: the token was superseded, consumed or has expired.
	ErrRecoveryTokenMismatch = errors.New("recovery token does not match")

	// ErrStoreUnavailable wraps driver errors classified as [Retryable].
	ErrStoreUnavailable = errors.New("store is temporarily unavailable")

	// ErrUnsupportedDriver is returned for an unknown database driver name.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails with a non-retryable error.
	ErrExecutingQuery = errors.New("error executing sql query")
)
