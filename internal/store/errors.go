package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLoginAlreadyExists is returned when an attempt to register a new user
	// fails because a user with the same login already exists in the database.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least one
	// user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrItemNotFound is returned when a query targets an item (identified by
	// item_id and user_id) that has no row in the current-state index.
	ErrItemNotFound = errors.New("item was not found")

	// ErrItemPermanentlyDeleted is returned when an append targets an item
	// whose current state is permanently_deleted. Permanently deleted items
	// never come back.
	ErrItemPermanentlyDeleted = errors.New("item is permanently deleted")

	// ErrRecycleEntryNotFound is returned when a restore or permanent delete
	// targets an item with no recycle-bin entry.
	ErrRecycleEntryNotFound = errors.New("recycle bin entry was not found")

	// ErrDeviceNotFound is returned when a device operation targets a
	// device_id the account has never registered.
	ErrDeviceNotFound = errors.New("device was not found")

	// ErrBlobNotFound is returned when no wallet blob exists for the
	// requested scope.
	ErrBlobNotFound = errors.New("wallet blob was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a query against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
