// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRecordRepository implements ServerRecords on the server PostgreSQL
// database.
type PostgresRecordRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewPostgresRecordRepository(db *DB, log *logger.Logger) *PostgresRecordRepository {
	return &PostgresRecordRepository{db: db, logger: log}
}

func (r *PostgresRecordRepository) ApplyMutation(ctx context.Context, clientID string, mutation models.MutationPayload) (models.MutationAckPayload, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "PostgresRecordRepository.ApplyMutation").Msg("error beginning transaction")
		return models.MutationAckPayload{}, errors.Join(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// replay of an already applied key returns the original verdict
	if ack, found, err := r.appliedVerdict(ctx, tx, mutation.IdempotencyKey); err != nil {
		return models.MutationAckPayload{}, err
	} else if found {
		return ack, nil
	}

	current, exists, err := r.lockCurrent(ctx, tx, mutation.EntityType, mutation.EntityID)
	if err != nil {
		return models.MutationAckPayload{}, err
	}

	var currentVersion int64
	if exists {
		currentVersion = current.Version
	}

	if mutation.BaseVersion != currentVersion {
		// optimistic check failed: hand the caller the competing state so the
		// client can run its conflict policy
		r.logger.Info().
			Str("func", "PostgresRecordRepository.ApplyMutation").
			Str("key", mutation.IdempotencyKey).
			Int64("base_version", mutation.BaseVersion).
			Int64("server_version", currentVersion).
			Msg("mutation rejected by version check")

		return models.MutationAckPayload{
			IdempotencyKey:           mutation.IdempotencyKey,
			Accepted:                 false,
			ConflictingServerData:    current.Data,
			ConflictingServerVersion: currentVersion,
		}, nil
	}

	newVersion := currentVersion + 1
	deleted := mutation.Operation == models.OperationDelete

	var payload any
	if !deleted {
		payload = []byte(mutation.Data)
	}

	query := psql.Insert("records").
		Columns("entity_type", "entity_id", "payload", "version", "deleted", "updated_at", "updated_by").
		Values(mutation.EntityType, mutation.EntityID, payload, newVersion, deleted, time.Now().UTC(), clientID).
		Suffix(`ON CONFLICT (entity_type, entity_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			version = EXCLUDED.version,
			deleted = EXCLUDED.deleted,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`)
	if _, err = query.RunWith(tx).ExecContext(ctx); err != nil {
		r.logger.Err(err).Str("func", "PostgresRecordRepository.ApplyMutation").Msg("error upserting record")
		return models.MutationAckPayload{}, errors.Join(ErrExecutingQuery, err)
	}

	insertApplied := psql.Insert("applied_mutations").
		Columns("idempotency_key", "entity_type", "entity_id", "new_version", "client_id", "applied_at").
		Values(mutation.IdempotencyKey, mutation.EntityType, mutation.EntityID, newVersion, clientID, time.Now().UTC())
	if _, err = insertApplied.RunWith(tx).ExecContext(ctx); err != nil {
		if isUniqueViolation(err) {
			// a concurrent connection applied the same key first
			tx.Rollback()
			return r.replayedVerdict(ctx, mutation.IdempotencyKey)
		}
		r.logger.Err(err).Str("func", "PostgresRecordRepository.ApplyMutation").Msg("error recording applied mutation")
		return models.MutationAckPayload{}, errors.Join(ErrExecutingQuery, err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Err(err).Str("func", "PostgresRecordRepository.ApplyMutation").Msg("error committing transaction")
		return models.MutationAckPayload{}, errors.Join(ErrCommittingTransaction, err)
	}

	return models.MutationAckPayload{
		IdempotencyKey: mutation.IdempotencyKey,
		Accepted:       true,
		NewVersion:     newVersion,
	}, nil
}

func (r *PostgresRecordRepository) ChangesSince(ctx context.Context, since time.Time) ([]models.ServerChangePayload, error) {
	query := psql.Select("entity_type", "entity_id", "payload", "version", "deleted").
		From("records").
		Where(sq.Gt{"updated_at": since}).
		OrderBy("updated_at ASC", "entity_type ASC", "entity_id ASC")

	rows, err := query.RunWith(r.db.DB).QueryContext(ctx)
	if err != nil {
		r.logger.Err(err).Str("func", "PostgresRecordRepository.ChangesSince").Msg("error selecting changes")
		return nil, errors.Join(ErrExecutingQuery, err)
	}
	defer rows.Close()

	var changes []models.ServerChangePayload
	for rows.Next() {
		var (
			change  models.ServerChangePayload
			payload []byte
		)
		if err = rows.Scan(&change.EntityType, &change.EntityID, &payload, &change.Version, &change.Deleted); err != nil {
			r.logger.Err(err).Str("func", "PostgresRecordRepository.ChangesSince").Msg("error scanning change")
			return nil, errors.Join(ErrScanningRows, err)
		}
		change.Data = json.RawMessage(payload)
		changes = append(changes, change)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Join(ErrScanningRows, err)
	}

	return changes, nil
}

// appliedVerdict looks up the stored outcome of an already applied key.
func (r *PostgresRecordRepository) appliedVerdict(ctx context.Context, tx *sql.Tx, idempotencyKey string) (models.MutationAckPayload, bool, error) {
	query := psql.Select("new_version").
		From("applied_mutations").
		Where(sq.Eq{"idempotency_key": idempotencyKey})

	var newVersion int64
	err := query.RunWith(tx).QueryRowContext(ctx).Scan(&newVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MutationAckPayload{}, false, nil
	}
	if err != nil {
		r.logger.Err(err).Str("func", "PostgresRecordRepository.appliedVerdict").Msg("error checking applied mutations")
		return models.MutationAckPayload{}, false, errors.Join(ErrScanningRows, err)
	}

	r.logger.Debug().
		Str("func", "PostgresRecordRepository.appliedVerdict").
		Str("key", idempotencyKey).
		Msg("duplicate mutation replayed")

	return models.MutationAckPayload{
		IdempotencyKey: idempotencyKey,
		Accepted:       true,
		NewVersion:     newVersion,
	}, true, nil
}

func (r *PostgresRecordRepository) replayedVerdict(ctx context.Context, idempotencyKey string) (models.MutationAckPayload, error) {
	query := psql.Select("new_version").
		From("applied_mutations").
		Where(sq.Eq{"idempotency_key": idempotencyKey})

	var newVersion int64
	if err := query.RunWith(r.db.DB).QueryRowContext(ctx).Scan(&newVersion); err != nil {
		r.logger.Err(err).Str("func", "PostgresRecordRepository.replayedVerdict").Msg("error reading applied mutation")
		return models.MutationAckPayload{}, errors.Join(ErrScanningRows, err)
	}

	return models.MutationAckPayload{
		IdempotencyKey: idempotencyKey,
		Accepted:       true,
		NewVersion:     newVersion,
	}, nil
}

// lockCurrent reads and row-locks the current server state of an entity.
func (r *PostgresRecordRepository) lockCurrent(ctx context.Context, tx *sql.Tx, entityType, entityID string) (models.ServerChangePayload, bool, error) {
	query := psql.Select("payload", "version", "deleted").
		From("records").
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		Suffix("FOR UPDATE")

	var (
		current models.ServerChangePayload
		payload []byte
	)
	err := query.RunWith(tx).QueryRowContext(ctx).Scan(&payload, &current.Version, &current.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServerChangePayload{}, false, nil
	}
	if err != nil {
		r.logger.Err(err).Str("func", "PostgresRecordRepository.lockCurrent").Msg("error locking record")
		return models.ServerChangePayload{}, false, errors.Join(ErrScanningRows, err)
	}

	current.EntityType = entityType
	current.EntityID = entityID
	current.Data = json.RawMessage(payload)

	return current, true, nil
}
