package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")

	// ErrInvalidState marks a lifecycle transition attempted from the wrong state.
	ErrInvalidState = errors.New("invalid session state")

	// ErrPersistence is the fatal save failure: the core session record was not written.
	ErrPersistence = errors.New("session persistence failed")

	// ErrSecondaryWrite covers best-effort writes (photos, reflection) that failed
	// after the session record was stored.
	ErrSecondaryWrite = errors.New("secondary write failed")

	// ErrDegradedStorage is reported when the local draft medium is unavailable.
	ErrDegradedStorage = errors.New("draft storage unavailable")

	ErrSaveInProgress = errors.New("save already in progress")
)
