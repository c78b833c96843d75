package store

import (
	"context"

	"github.com/MKhiriev/go-stock-keeper/internal/config"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
)

// ClientStorages bundles the repositories backed by the client SQLite
// database, plus the DB handle itself for the backup manager.
type ClientStorages struct {
	Records  LocalStore
	Queue    MutationQueue
	Metadata MetadataRepository
	DB       *DB
}

// NewClientStorages opens the local database, applies pending migrations and
// wires the repositories on top of it.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Debug().Str("func", "NewClientStorages").Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, log)
	if err != nil {
		log.Err(err).Str("func", "NewClientStorages").Msg("error connecting to database")
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewClientStorages").Msg("error migrating database")
		return nil, err
	}

	return &ClientStorages{
		Records:  NewRecordRepository(db, log),
		Queue:    NewQueueRepository(db, log),
		Metadata: NewMetadataRepository(db, log),
		DB:       db,
	}, nil
}
