package store

import (
	"database/sql"
	"sync"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
)

// DB wraps the raw database handle shared by all repositories of one role
// (client SQLite or server PostgreSQL).
//
// The write mutex serializes all mutating operations: concurrent Put calls
// from the business layer, queue bookkeeping from the coordinator, and the
// backup manager's snapshot copy all take the same lock, which gives the
// single-writer transaction semantics the engine relies on.
type DB struct {
	*sql.DB

	mu      sync.Mutex
	path    string
	migrate func(*sql.DB) error
	logger  *logger.Logger
}

// Migrate applies the pending schema migrations for this database's dialect.
func (db *DB) Migrate() error {
	return db.migrate(db.DB)
}

// Path returns the file path of the underlying database, or an empty string
// for non-file backends. The backup manager copies this file while holding
// the write lock.
func (db *DB) Path() string {
	return db.path
}

// LockWrites blocks until all in-progress writes finish and prevents new
// ones from starting until UnlockWrites is called.
func (db *DB) LockWrites() {
	db.mu.Lock()
}

// UnlockWrites releases the lock taken by LockWrites.
func (db *DB) UnlockWrites() {
	db.mu.Unlock()
}
