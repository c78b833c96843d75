package store

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

// MetadataRepositorySQLite implements MetadataRepository on the single-row
// sync_metadata table. The row is created by the schema migration.
type MetadataRepositorySQLite struct {
	db     *DB
	logger *logger.Logger
}

func NewMetadataRepository(db *DB, log *logger.Logger) *MetadataRepositorySQLite {
	return &MetadataRepositorySQLite{db: db, logger: log}
}

func (m *MetadataRepositorySQLite) Get(ctx context.Context) (models.SyncMetadata, error) {
	var meta models.SyncMetadata
	err := m.db.QueryRowContext(ctx, getMetadataQuery).Scan(&meta.LastSyncTime, &meta.SyncVersionCounter, &meta.PendingCount)
	if err != nil {
		m.logger.Err(err).Str("func", "MetadataRepositorySQLite.Get").Msg("error getting sync metadata")
		return models.SyncMetadata{}, errors.Join(ErrScanningRows, err)
	}

	return meta, nil
}

func (m *MetadataRepositorySQLite) Update(ctx context.Context, meta models.SyncMetadata) error {
	m.db.LockWrites()
	defer m.db.UnlockWrites()

	if _, err := m.db.ExecContext(ctx, updateMetadataQuery, meta.LastSyncTime, meta.SyncVersionCounter, meta.PendingCount); err != nil {
		m.logger.Err(err).Str("func", "MetadataRepositorySQLite.Update").Msg("error updating sync metadata")
		return errors.Join(ErrExecutingQuery, err)
	}

	return nil
}
