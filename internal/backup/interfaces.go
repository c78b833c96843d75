package backup

import (
	"context"

	"github.com/MKhiriev/go-stock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/backup_mock.go -package=mock

// Snapshotter captures and restores point-in-time copies of the local store.
type Snapshotter interface {
	// CreateSnapshot copies the store file into the backup directory, gzips
	// the copy and records a SHA-256 checksum over the uncompressed bytes.
	// The store write lock is held for the file copy only.
	CreateSnapshot(ctx context.Context) (models.BackupArtifact, error)
	// RestoreSnapshot verifies the artifact, captures a safety snapshot of the
	// current store and atomically swaps the store file with the snapshot
	// contents. The caller must reinitialize every component holding the
	// database open; a restore is never applied underneath a live sync cycle.
	RestoreSnapshot(ctx context.Context, path string) error
	// Verify recomputes the artifact checksum and reports corruption without
	// mutating anything.
	Verify(ctx context.Context, path string) error
	// List returns the artifacts in the backup directory, newest first.
	List(ctx context.Context) ([]models.BackupArtifact, error)
}

// storeLocker is the slice of the store the manager needs: the write lock and
// the location of the database file.
type storeLocker interface {
	LockWrites()
	UnlockWrites()
	Path() string
}

// metadataGetter provides the sync version counter stamped into artifacts.
type metadataGetter interface {
	Get(ctx context.Context) (models.SyncMetadata, error)
}
