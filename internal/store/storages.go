package store

import (
	"context"

	"github.com/MKhiriev/go-stock-keeper/internal/config"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
)

// Storages bundles the repositories backed by the server PostgreSQL database.
type Storages struct {
	Records ServerRecords
}

func NewStorages(ctx context.Context, cfg config.ServerDB, log *logger.Logger) (*Storages, error) {
	log.Debug().Str("func", "NewStorages").Msg("creating new storages...")

	db, err := NewConnectPostgres(ctx, cfg, log)
	if err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error connecting to database")
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error migrating database")
		return nil, err
	}

	return &Storages{
		Records: NewPostgresRecordRepository(db, log),
	}, nil
}
