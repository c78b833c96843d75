// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

// QueueRepository implements MutationQueue on the mutation_queue table of the
// client SQLite database.
type QueueRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewQueueRepository(db *DB, log *logger.Logger) *QueueRepository {
	return &QueueRepository{db: db, logger: log}
}

func (q *QueueRepository) Enqueue(ctx context.Context, entry models.QueueEntry) error {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Enqueue").Msg("error beginning transaction")
		return errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err = enqueueTx(ctx, tx, entry); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Enqueue").Msg("error enqueueing entry")
		return err
	}

	if err = tx.Commit(); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Enqueue").Msg("error committing transaction")
		return errors.Join(ErrCommittingTransaction, err)
	}

	return nil
}

func (q *QueueRepository) DequeueBatch(ctx context.Context, maxSize int) ([]models.QueueEntry, error) {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	now := time.Now().UTC()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.DequeueBatch").Msg("error beginning transaction")
		return nil, errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, selectReadyBatchQuery, now, maxSize)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.DequeueBatch").Msg("error selecting ready entries")
		return nil, errors.Join(ErrExecutingQuery, err)
	}

	var batch []models.QueueEntry
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			rows.Close()
			q.logger.Err(err).Str("func", "QueueRepository.DequeueBatch").Msg("error scanning entry")
			return nil, errors.Join(ErrScanningRows, err)
		}
		batch = append(batch, entry)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Join(ErrScanningRows, err)
	}
	rows.Close()

	for i := range batch {
		if _, err = tx.ExecContext(ctx, markInFlightQuery, batch[i].IdempotencyKey); err != nil {
			q.logger.Err(err).Str("func", "QueueRepository.DequeueBatch").Msg("error marking entry in flight")
			return nil, errors.Join(ErrExecutingQuery, err)
		}
		batch[i].Status = models.QueueEntryInFlight
	}

	if err = tx.Commit(); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.DequeueBatch").Msg("error committing transaction")
		return nil, errors.Join(ErrCommittingTransaction, err)
	}

	return batch, nil
}

func (q *QueueRepository) Ack(ctx context.Context, idempotencyKey string) error {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	res, err := q.db.ExecContext(ctx, deleteQueueEntryQuery, idempotencyKey)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Ack").Msg("error deleting entry")
		return errors.Join(ErrExecutingQuery, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrQueueEntryNotFound
	}

	return nil
}

func (q *QueueRepository) Requeue(ctx context.Context, idempotencyKey string, delay time.Duration, maxRetries int) (models.QueueEntry, error) {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Requeue").Msg("error beginning transaction")
		return models.QueueEntry{}, errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	entry, err := scanQueueEntry(tx.QueryRowContext(ctx, selectQueueEntryQuery, idempotencyKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueueEntry{}, ErrQueueEntryNotFound
		}
		q.logger.Err(err).Str("func", "QueueRepository.Requeue").Msg("error reading entry")
		return models.QueueEntry{}, errors.Join(ErrScanningRows, err)
	}

	entry.RetryCount++
	entry.NextRetryAt = time.Now().UTC().Add(delay)
	entry.Status = models.QueueEntryReady
	if entry.RetryCount > maxRetries {
		entry.Status = models.QueueEntryFailed
	}

	if _, err = tx.ExecContext(ctx, requeueEntryQuery, entry.RetryCount, entry.NextRetryAt, entry.Status, idempotencyKey); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Requeue").Msg("error requeueing entry")
		return models.QueueEntry{}, errors.Join(ErrExecutingQuery, err)
	}

	if err = tx.Commit(); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Requeue").Msg("error committing transaction")
		return models.QueueEntry{}, errors.Join(ErrCommittingTransaction, err)
	}

	return entry, nil
}

func (q *QueueRepository) Remove(ctx context.Context, entityType, entityID string) error {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	if _, err := q.db.ExecContext(ctx, removeEntriesForEntityQuery, entityType, entityID); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Remove").Msg("error removing entries")
		return errors.Join(ErrExecutingQuery, err)
	}

	return nil
}

func (q *QueueRepository) Release(ctx context.Context, idempotencyKey string) error {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	if _, err := q.db.ExecContext(ctx, releaseEntryQuery, idempotencyKey); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Release").Msg("error releasing entry")
		return errors.Join(ErrExecutingQuery, err)
	}

	return nil
}

func (q *QueueRepository) ReleaseInFlight(ctx context.Context) (int64, error) {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	res, err := q.db.ExecContext(ctx, releaseInFlightQuery)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.ReleaseInFlight").Msg("error releasing in-flight entries")
		return 0, errors.Join(ErrExecutingQuery, err)
	}

	released, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrExecutingQuery, err)
	}
	if released > 0 {
		q.logger.Info().Str("func", "QueueRepository.ReleaseInFlight").Int64("released", released).Msg("recovered in-flight entries after restart")
	}

	return released, nil
}

func (q *QueueRepository) Depth(ctx context.Context) (int64, error) {
	var depth int64
	if err := q.db.QueryRowContext(ctx, queueDepthQuery).Scan(&depth); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Depth").Msg("error counting entries")
		return 0, errors.Join(ErrScanningRows, err)
	}

	return depth, nil
}

func (q *QueueRepository) Failed(ctx context.Context) ([]models.QueueEntry, error) {
	rows, err := q.db.QueryContext(ctx, selectFailedEntriesQuery)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.Failed").Msg("error selecting failed entries")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			q.logger.Err(err).Str("func", "QueueRepository.Failed").Msg("error scanning entry")
			return nil, errors.Join(ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrScanningRows, err)
	}

	return entries, nil
}

// NextMutationSeq advances the mutation counter and returns the new value.
// Used when a mutation is rebuilt outside a store transaction, e.g. when a
// rejected delete is re-enqueued against the server's current version.
func (q *QueueRepository) NextMutationSeq(ctx context.Context) (int64, error) {
	q.db.LockWrites()
	defer q.db.UnlockWrites()

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.NextMutationSeq").Msg("error beginning transaction")
		return 0, errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	seq, err := nextMutationSeq(ctx, tx)
	if err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.NextMutationSeq").Msg("error advancing mutation counter")
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		q.logger.Err(err).Str("func", "QueueRepository.NextMutationSeq").Msg("error committing transaction")
		return 0, errors.Join(ErrCommittingTransaction, err)
	}

	return seq, nil
}

// nextMutationSeq bumps the database-wide mutation counter inside tx and
// returns the new value. Idempotency keys are minted from this counter, not
// from the record version: MarkSynced rewrites the version to the
// server-assigned one, which can revisit values a key was already minted from.
func nextMutationSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx, bumpMutationSeqQuery); err != nil {
		return 0, errors.Join(ErrExecutingQuery, err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, currentMutationSeqQuery).Scan(&seq); err != nil {
		return 0, errors.Join(ErrScanningRows, err)
	}

	return seq, nil
}

// enqueueTx inserts a mutation or coalesces it with the existing ready entry
// for the same entity. At most one ready entry per entity exists at any time;
// an in-flight entry is never modified, so a second edit during an upload
// produces a separate ready entry under its own key.
func enqueueTx(ctx context.Context, tx *sql.Tx, entry models.QueueEntry) error {
	existing, err := scanQueueEntry(tx.QueryRowContext(ctx, selectReadyEntryForEntityQuery, entry.EntityType, entry.EntityID))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return errors.Join(ErrScanningRows, err)
		}
		_, err = tx.ExecContext(ctx, insertQueueEntryQuery,
			entry.IdempotencyKey, entry.Operation, entry.EntityType, entry.EntityID,
			entry.Payload, entry.BaseVersion, entry.EnqueuedAt, entry.NextRetryAt)
		if err != nil {
			return errors.Join(ErrExecutingQuery, err)
		}
		return nil
	}

	operation, drop := mergeOperations(existing.Operation, entry.Operation)
	if drop {
		// a delete of an entity the server never saw cancels the queued create
		if _, err = tx.ExecContext(ctx, deleteQueueEntryQuery, existing.IdempotencyKey); err != nil {
			return errors.Join(ErrExecutingQuery, err)
		}
		return nil
	}

	// the base version of the oldest unacked mutation is kept: that is the
	// version the server still knows about
	_, err = tx.ExecContext(ctx, coalesceQueueEntryQuery,
		entry.IdempotencyKey, operation, entry.Payload, existing.BaseVersion,
		entry.NextRetryAt, existing.IdempotencyKey)
	if err != nil {
		return errors.Join(ErrExecutingQuery, err)
	}

	return nil
}

func mergeOperations(existing, incoming models.Operation) (merged models.Operation, drop bool) {
	switch {
	case existing == models.OperationCreate && incoming == models.OperationDelete:
		return "", true
	case existing == models.OperationCreate:
		return models.OperationCreate, false
	case existing == models.OperationDelete && incoming == models.OperationCreate:
		// re-created before the delete was uploaded: the server row is still
		// live, so the pair collapses to an update
		return models.OperationUpdate, false
	default:
		return incoming, false
	}
}

func scanQueueEntry(row rowScanner) (models.QueueEntry, error) {
	var entry models.QueueEntry
	err := row.Scan(
		&entry.IdempotencyKey,
		&entry.Operation,
		&entry.EntityType,
		&entry.EntityID,
		&entry.Payload,
		&entry.BaseVersion,
		&entry.EnqueuedAt,
		&entry.RetryCount,
		&entry.NextRetryAt,
		&entry.Status,
	)
	if err != nil {
		return models.QueueEntry{}, err
	}

	return entry, nil
}
