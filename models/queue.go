// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The go-stock-keeper Authors

package models

import (
	"fmt"
	"time"
)

// Operation is the kind of mutation carried by a queue entry.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// QueueEntryStatus is the lifecycle state of an offline mutation queue entry.
type QueueEntryStatus string

const (
	// QueueEntryReady marks an entry eligible for the next DequeueBatch call
	// (once NextRetryAt has passed).
	QueueEntryReady QueueEntryStatus = "ready"

	// QueueEntryInFlight marks an entry handed out by DequeueBatch and not
	// yet released via Ack or Requeue.
	QueueEntryInFlight QueueEntryStatus = "inflight"

	// QueueEntryFailed marks an entry that exceeded the retry budget. Failed
	// entries are never retried automatically; they are surfaced through the
	// status projection for operator attention.
	QueueEntryFailed QueueEntryStatus = "failed"
)

// QueueEntry is a pending outbound change in the offline mutation queue.
//
// At most one entry exists per (EntityType, EntityID): later local edits to
// the same record coalesce into the existing entry instead of appending a
// duplicate.
type QueueEntry struct {
	// IdempotencyKey is a stable identifier that survives retries, in the
	// form "entityType:entityID:seq" where seq is drawn from a monotonically
	// increasing mutation counter. Repeated delivery of the same key has no
	// additional effect after the first successful application.
	IdempotencyKey string `json:"idempotency_key"`

	// Operation is the mutation kind (create, update, delete).
	Operation Operation `json:"operation"`

	// EntityType and EntityID identify the target record.
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`

	// Payload is the snapshot of the record's serialized business data taken
	// when the entry was enqueued (or last coalesced).
	Payload []byte `json:"payload"`

	// BaseVersion is the local record version this mutation was built
	// against; the server uses it for its optimistic concurrency check.
	BaseVersion int64 `json:"base_version"`

	// EnqueuedAt is when the entry first entered the queue.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// RetryCount is how many times transmission of this entry has failed.
	RetryCount int `json:"retry_count"`

	// NextRetryAt is the earliest time the entry becomes eligible for
	// dequeue again after a Requeue.
	NextRetryAt time.Time `json:"next_retry_at"`

	// Status is the entry's queue lifecycle state.
	Status QueueEntryStatus `json:"status"`
}

// MakeIdempotencyKey builds the canonical idempotency key for mutation number
// seq of the given entity.
func MakeIdempotencyKey(entityType, entityID string, seq int64) string {
	return fmt.Sprintf("%s:%s:%d", entityType, entityID, seq)
}

// TableName returns the name of the local database table associated with the
// QueueEntry model.
func (e *QueueEntry) TableName() string {
	return "mutation_queue"
}
