package store

import "errors"

var (
	// ErrRecordNotFound is returned when the requested entity does not exist
	// in the local store.
	ErrRecordNotFound = errors.New("record not found")
	// ErrQueueEntryNotFound is returned when an acknowledgement or requeue
	// references an idempotency key with no matching queue entry.
	ErrQueueEntryNotFound = errors.New("queue entry not found")
	// ErrNotInConflict is returned when ResolveConflict is called for a record
	// whose sync status is not conflict.
	ErrNotInConflict = errors.New("record is not in conflict")
	// ErrRecordInConflict is returned by Put while a record awaits manual
	// conflict resolution. The retained server payload must not be discarded
	// by an ordinary write; the caller goes through ResolveConflict instead.
	ErrRecordInConflict = errors.New("record has an unresolved conflict")
	// ErrCorruptStore is returned when the integrity check of the local
	// database fails. The engine refuses to sync until a backup is restored.
	ErrCorruptStore = errors.New("local store is corrupt")

	// ErrVersionConflict is returned by the server repository when a mutation's
	// base version does not match the current server version.
	ErrVersionConflict = errors.New("mutation base version does not match server version")

	ErrBeginningTransaction  = errors.New("error beginning transaction")
	ErrCommittingTransaction = errors.New("error committing transaction")
	ErrExecutingQuery        = errors.New("error executing query")
	ErrScanningRows          = errors.New("error scanning rows")
)
