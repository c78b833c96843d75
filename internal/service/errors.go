package service

import "errors"

var (
	// ErrTransport marks a connect/send/receive failure. Recovered by the
	// reconnect backoff; never stored as the engine's last error.
	ErrTransport = errors.New("transport failure")
	// ErrAckTimeout means a mutation_ack did not arrive within the per-entry
	// timeout. The entry is requeued with backoff.
	ErrAckTimeout = errors.New("mutation ack timeout")
	// ErrSyncResponseTimeout means the server stopped streaming its reply to
	// a sync_request before the end-of-stream marker.
	ErrSyncResponseTimeout = errors.New("sync response timeout")
	// ErrQueueExhausted means an entry exceeded maxRetries and became a
	// terminal failure requiring operator attention.
	ErrQueueExhausted = errors.New("mutation retries exhausted")
	// ErrUnknownConflictPolicy is returned for a conflictResolution value
	// outside server/client/manual.
	ErrUnknownConflictPolicy = errors.New("unknown conflict resolution policy")
	// ErrSyncInProgress is returned by operations that must not run under a
	// live sync cycle, such as restoring a backup.
	ErrSyncInProgress = errors.New("sync cycle in progress")
)
