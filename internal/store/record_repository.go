// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

// RecordRepository implements LocalStore on top of the client SQLite database.
type RecordRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewRecordRepository(db *DB, log *logger.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: log}
}

func (r *RecordRepository) Put(ctx context.Context, entityType, entityID string, payload []byte) (models.Record, error) {
	r.db.LockWrites()
	defer r.db.UnlockWrites()

	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Put").Msg("error beginning transaction")
		return models.Record{}, errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// a conflicted record keeps both payloads until an explicit resolution;
	// overwriting it here would silently discard the retained server side
	existing, err := scanRecord(tx.QueryRowContext(ctx, getRecordQuery, entityType, entityID))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.logger.Err(err).Str("func", "RecordRepository.Put").Msg("error reading record")
		return models.Record{}, errors.Join(ErrScanningRows, err)
	}
	if err == nil && existing.SyncStatus == models.SyncStatusConflict {
		return models.Record{}, ErrRecordInConflict
	}

	if _, err = tx.ExecContext(ctx, upsertRecordQuery, entityType, entityID, payload, now); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Put").Msg("error upserting record")
		return models.Record{}, errors.Join(ErrExecutingQuery, err)
	}

	// read back the stored row: the upsert decided whether this is version 1
	// or a bump of an existing record
	record, err := scanRecord(tx.QueryRowContext(ctx, getRecordQuery, entityType, entityID))
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Put").Msg("error reading back record")
		return models.Record{}, errors.Join(ErrScanningRows, err)
	}

	operation := models.OperationUpdate
	if record.Version == 1 {
		operation = models.OperationCreate
	}
	var baseVersion int64
	if record.LastServerVersion != nil {
		baseVersion = *record.LastServerVersion
	}

	seq, err := nextMutationSeq(ctx, tx)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Put").Msg("error advancing mutation counter")
		return models.Record{}, err
	}

	entry := models.QueueEntry{
		IdempotencyKey: models.MakeIdempotencyKey(entityType, entityID, seq),
		Operation:      operation,
		EntityType:     entityType,
		EntityID:       entityID,
		Payload:        payload,
		BaseVersion:    baseVersion,
		EnqueuedAt:     now,
		NextRetryAt:    now,
		Status:         models.QueueEntryReady,
	}
	if err = enqueueTx(ctx, tx, entry); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Put").Msg("error enqueueing mutation")
		return models.Record{}, err
	}

	if err = tx.Commit(); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Put").Msg("error committing transaction")
		return models.Record{}, errors.Join(ErrCommittingTransaction, err)
	}

	return record, nil
}

func (r *RecordRepository) Delete(ctx context.Context, entityType, entityID string) error {
	r.db.LockWrites()
	defer r.db.UnlockWrites()

	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Delete").Msg("error beginning transaction")
		return errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	record, err := scanRecord(tx.QueryRowContext(ctx, getRecordQuery, entityType, entityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		r.logger.Err(err).Str("func", "RecordRepository.Delete").Msg("error reading record")
		return errors.Join(ErrScanningRows, err)
	}

	if _, err = tx.ExecContext(ctx, deleteRecordQuery, entityType, entityID); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Delete").Msg("error deleting record")
		return errors.Join(ErrExecutingQuery, err)
	}

	var baseVersion int64
	if record.LastServerVersion != nil {
		baseVersion = *record.LastServerVersion
	}

	seq, err := nextMutationSeq(ctx, tx)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Delete").Msg("error advancing mutation counter")
		return err
	}

	entry := models.QueueEntry{
		IdempotencyKey: models.MakeIdempotencyKey(entityType, entityID, seq),
		Operation:      models.OperationDelete,
		EntityType:     entityType,
		EntityID:       entityID,
		BaseVersion:    baseVersion,
		EnqueuedAt:     now,
		NextRetryAt:    now,
		Status:         models.QueueEntryReady,
	}
	if err = enqueueTx(ctx, tx, entry); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Delete").Msg("error enqueueing mutation")
		return err
	}

	if err = tx.Commit(); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Delete").Msg("error committing transaction")
		return errors.Join(ErrCommittingTransaction, err)
	}

	return nil
}

func (r *RecordRepository) Get(ctx context.Context, entityType, entityID string) (models.Record, error) {
	record, err := scanRecord(r.db.QueryRowContext(ctx, getRecordQuery, entityType, entityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, ErrRecordNotFound
		}
		r.logger.Err(err).Str("func", "RecordRepository.Get").Msg("error getting record")
		return models.Record{}, errors.Join(ErrScanningRows, err)
	}

	return record, nil
}

func (r *RecordRepository) GetAll(ctx context.Context, entityType string) ([]models.Record, error) {
	rows, err := r.db.QueryContext(ctx, getAllRecordsQuery, entityType)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.GetAll").Msg("error getting records")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			r.logger.Err(err).Str("func", "RecordRepository.GetAll").Msg("error scanning record")
			return nil, errors.Join(ErrScanningRows, err)
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrScanningRows, err)
	}

	return records, nil
}

func (r *RecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, countRecordsQuery).Scan(&count); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.Count").Msg("error counting records")
		return 0, errors.Join(ErrScanningRows, err)
	}

	return count, nil
}

func (r *RecordRepository) ApplyServerChange(ctx context.Context, change models.ServerChangePayload) error {
	r.db.LockWrites()
	defer r.db.UnlockWrites()

	if change.Deleted {
		if _, err := r.db.ExecContext(ctx, deleteRecordQuery, change.EntityType, change.EntityID); err != nil {
			r.logger.Err(err).Str("func", "RecordRepository.ApplyServerChange").Msg("error applying server delete")
			return errors.Join(ErrExecutingQuery, err)
		}
		return nil
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, applyServerChangeQuery,
		change.EntityType, change.EntityID, []byte(change.Data), change.Version, now, change.Version)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.ApplyServerChange").Msg("error applying server change")
		return errors.Join(ErrExecutingQuery, err)
	}

	return nil
}

func (r *RecordRepository) MarkSynced(ctx context.Context, entityType, entityID string, serverVersion int64) error {
	r.db.LockWrites()
	defer r.db.UnlockWrites()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.MarkSynced").Msg("error beginning transaction")
		return errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var newerEdits int64
	if err = tx.QueryRowContext(ctx, countReadyForEntityQuery, entityType, entityID).Scan(&newerEdits); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.MarkSynced").Msg("error checking queued edits")
		return errors.Join(ErrScanningRows, err)
	}

	if newerEdits > 0 {
		// the user edited again while the mutation was in flight: the record
		// stays pending, only the acked server version advances
		_, err = tx.ExecContext(ctx, advanceServerVersionQuery, serverVersion, entityType, entityID)
	} else {
		_, err = tx.ExecContext(ctx, markSyncedQuery, serverVersion, serverVersion, entityType, entityID)
	}
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.MarkSynced").Msg("error marking record synced")
		return errors.Join(ErrExecutingQuery, err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.MarkSynced").Msg("error committing transaction")
		return errors.Join(ErrCommittingTransaction, err)
	}

	return nil
}

func (r *RecordRepository) MarkConflict(ctx context.Context, entityType, entityID string, serverPayload []byte, serverVersion int64) error {
	r.db.LockWrites()
	defer r.db.UnlockWrites()

	res, err := r.db.ExecContext(ctx, markConflictQuery, serverPayload, serverVersion, entityType, entityID)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.MarkConflict").Msg("error marking conflict")
		return errors.Join(ErrExecutingQuery, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (r *RecordRepository) ResolveConflict(ctx context.Context, entityType, entityID string, chosenPayload []byte) (models.Record, error) {
	r.db.LockWrites()
	defer r.db.UnlockWrites()

	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.ResolveConflict").Msg("error beginning transaction")
		return models.Record{}, errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// the server version of the conflicting payload becomes the base version
	// of the re-enqueued mutation, so it must be captured before the update
	// clears it
	before, err := scanRecord(tx.QueryRowContext(ctx, getRecordQuery, entityType, entityID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, ErrRecordNotFound
		}
		r.logger.Err(err).Str("func", "RecordRepository.ResolveConflict").Msg("error reading record")
		return models.Record{}, errors.Join(ErrScanningRows, err)
	}
	if before.SyncStatus != models.SyncStatusConflict {
		return models.Record{}, ErrNotInConflict
	}

	if _, err = tx.ExecContext(ctx, resolveConflictQuery, chosenPayload, now, entityType, entityID); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.ResolveConflict").Msg("error resolving conflict")
		return models.Record{}, errors.Join(ErrExecutingQuery, err)
	}

	record, err := scanRecord(tx.QueryRowContext(ctx, getRecordQuery, entityType, entityID))
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.ResolveConflict").Msg("error reading back record")
		return models.Record{}, errors.Join(ErrScanningRows, err)
	}

	var baseVersion int64
	if before.ServerVersion != nil {
		baseVersion = *before.ServerVersion
	}

	seq, err := nextMutationSeq(ctx, tx)
	if err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.ResolveConflict").Msg("error advancing mutation counter")
		return models.Record{}, err
	}

	entry := models.QueueEntry{
		IdempotencyKey: models.MakeIdempotencyKey(entityType, entityID, seq),
		Operation:      models.OperationUpdate,
		EntityType:     entityType,
		EntityID:       entityID,
		Payload:        chosenPayload,
		BaseVersion:    baseVersion,
		EnqueuedAt:     now,
		NextRetryAt:    now,
		Status:         models.QueueEntryReady,
	}
	if err = enqueueTx(ctx, tx, entry); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.ResolveConflict").Msg("error enqueueing mutation")
		return models.Record{}, err
	}

	if err = tx.Commit(); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.ResolveConflict").Msg("error committing transaction")
		return models.Record{}, errors.Join(ErrCommittingTransaction, err)
	}

	return record, nil
}

func (r *RecordRepository) IntegrityCheck(ctx context.Context) error {
	var result string
	if err := r.db.QueryRowContext(ctx, `PRAGMA integrity_check;`).Scan(&result); err != nil {
		r.logger.Err(err).Str("func", "RecordRepository.IntegrityCheck").Msg("error running integrity check")
		return fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if result != "ok" {
		r.logger.Error().Str("func", "RecordRepository.IntegrityCheck").Str("result", result).Msg("integrity check failed")
		return fmt.Errorf("%w: %s", ErrCorruptStore, result)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		record            models.Record
		lastServerVersion sql.NullInt64
		serverVersion     sql.NullInt64
	)
	err := row.Scan(
		&record.EntityType,
		&record.EntityID,
		&record.Payload,
		&record.Version,
		&record.SyncStatus,
		&record.UpdatedAt,
		&lastServerVersion,
		&record.ServerPayload,
		&serverVersion,
	)
	if err != nil {
		return models.Record{}, err
	}

	if lastServerVersion.Valid {
		record.LastServerVersion = &lastServerVersion.Int64
	}
	if serverVersion.Valid {
		record.ServerVersion = &serverVersion.Int64
	}

	return record, nil
}
