// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-stock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// LocalStore is the durable record storage on the client side. Every write
// through Put or Delete also appends a mutation to the outbound queue in the
// same transaction, so a crash can never separate a local change from the
// intent to upload it.
type LocalStore interface {
	// Put inserts or replaces the payload of an entity. The record version is
	// incremented, its sync status becomes pending and a coalesced mutation is
	// enqueued atomically. Returns the record as stored. A record in the
	// conflict state refuses the write with ErrRecordInConflict until it goes
	// through ResolveConflict.
	Put(ctx context.Context, entityType, entityID string, payload []byte) (models.Record, error)
	// Delete removes the entity locally and enqueues a delete mutation in the
	// same transaction.
	Delete(ctx context.Context, entityType, entityID string) error
	Get(ctx context.Context, entityType, entityID string) (models.Record, error)
	GetAll(ctx context.Context, entityType string) ([]models.Record, error)
	Count(ctx context.Context) (int64, error)

	// ApplyServerChange overwrites (or deletes) the local record with the
	// server's authoritative state and marks it synced.
	ApplyServerChange(ctx context.Context, change models.ServerChangePayload) error
	// MarkSynced records a successful upload. If the user edited the entity
	// again while the mutation was in flight, the record keeps its pending
	// status and only last_server_version advances.
	MarkSynced(ctx context.Context, entityType, entityID string, serverVersion int64) error
	// MarkConflict flags the record as conflicted and retains the server's
	// competing payload and version alongside the local one.
	MarkConflict(ctx context.Context, entityType, entityID string, serverPayload []byte, serverVersion int64) error
	// ResolveConflict replaces the conflicted record's payload with the chosen
	// one, returns it to pending and enqueues a fresh mutation atomically.
	ResolveConflict(ctx context.Context, entityType, entityID string, chosenPayload []byte) (models.Record, error)

	// IntegrityCheck verifies the physical consistency of the underlying
	// database. Returns ErrCorruptStore when verification fails.
	IntegrityCheck(ctx context.Context) error
}

// MutationQueue is the persistent outbound queue of local mutations.
type MutationQueue interface {
	// Enqueue adds a mutation, coalescing with an existing ready entry for the
	// same entity. In-flight entries are never touched.
	Enqueue(ctx context.Context, entry models.QueueEntry) error
	// DequeueBatch returns up to maxSize ready entries whose retry time has
	// come, oldest first, and marks them in flight.
	DequeueBatch(ctx context.Context, maxSize int) ([]models.QueueEntry, error)
	// Ack removes the entry after the server accepted it (or after the
	// conflict it caused was resolved).
	Ack(ctx context.Context, idempotencyKey string) error
	// Requeue returns an in-flight entry to ready with the given retry delay.
	// Once retryCount exceeds maxRetries the entry transitions to failed
	// instead and is no longer dequeued.
	Requeue(ctx context.Context, idempotencyKey string, delay time.Duration, maxRetries int) (models.QueueEntry, error)
	// Remove drops every queued mutation for an entity. Used when the server
	// side of a conflict wins and the local change must not be re-uploaded.
	Remove(ctx context.Context, entityType, entityID string) error
	// NextMutationSeq advances the database-wide mutation counter idempotency
	// keys are minted from and returns the new value.
	NextMutationSeq(ctx context.Context) (int64, error)
	// Release returns one in-flight entry to ready without touching its retry
	// bookkeeping. Used for batch entries an aborted cycle never sent.
	Release(ctx context.Context, idempotencyKey string) error
	// ReleaseInFlight returns every in-flight entry to ready. Called once at
	// startup to recover entries orphaned by a crash mid-upload.
	ReleaseInFlight(ctx context.Context) (int64, error)
	// Depth reports the number of entries still waiting to be uploaded
	// (ready and in-flight, excluding failed).
	Depth(ctx context.Context) (int64, error)
	// Failed lists entries that exhausted their retries.
	Failed(ctx context.Context) ([]models.QueueEntry, error)
}

// MetadataRepository persists the single row of sync bookkeeping state.
type MetadataRepository interface {
	Get(ctx context.Context) (models.SyncMetadata, error)
	Update(ctx context.Context, meta models.SyncMetadata) error
}
