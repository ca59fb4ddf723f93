package framework

import "errors"

// Error kinds surfaced by the framework. Handlers and the command router do
// not transform errors; callers match with errors.Is.
var (
	// ErrNoConnection is returned by row operations attempted before Startup
	// or after DeleteDatabase.
	ErrNoConnection = errors.New("no active database connection")

	// ErrUnknownCommand is returned by Execute when no registered command or
	// subcommand matches the input.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrFile wraps directory or file creation/removal failures.
	ErrFile = errors.New("file error")

	// ErrDatabase wraps any failure surfaced by the backing store, including
	// malformed SQL, a missing table, a missing row, or a type mismatch on
	// read.
	ErrDatabase = errors.New("database error")

	// ErrDuplicateTable is returned by AddTable when a descriptor for the
	// same table name was already registered.
	ErrDuplicateTable = errors.New("duplicate table name")

	// ErrMissingResource is returned by MustResource when the requested
	// resource type was never added to the context.
	ErrMissingResource = errors.New("resource not registered")
)
