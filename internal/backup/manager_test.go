// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-stock-keeper/internal/config"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/store"
	"github.com/MKhiriev/go-stock-keeper/models"
)

// lockerStub изображает файл локального хранилища с блокировкой записи
type lockerStub struct {
	path    string
	locks   int
	unlocks int
}

func (l *lockerStub) LockWrites()   { l.locks++ }
func (l *lockerStub) UnlockWrites() { l.unlocks++ }
func (l *lockerStub) Path() string  { return l.path }

type metadataStub struct {
	meta models.SyncMetadata
	err  error
}

func (m *metadataStub) Get(context.Context) (models.SyncMetadata, error) { return m.meta, m.err }

func newTestManager(t *testing.T, content string) (*Manager, *lockerStub, string) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stock.db")
	require.NoError(t, os.WriteFile(dbPath, []byte(content), 0o644))

	locker := &lockerStub{path: dbPath}
	meta := &metadataStub{meta: models.SyncMetadata{SyncVersionCounter: 7}}
	manager := NewManager(locker, meta, filepath.Join(dir, "backups"), logger.Nop())

	return manager, locker, dbPath
}

func TestManager_CreateSnapshot(t *testing.T) {
	manager, locker, _ := newTestManager(t, "store contents")
	ctx := context.Background()

	artifact, err := manager.CreateSnapshot(ctx)

	require.NoError(t, err)
	assert.FileExists(t, artifact.Path)
	assert.FileExists(t, artifact.Path+checksumSuffix)
	assert.Positive(t, artifact.SizeBytes)
	assert.NotEmpty(t, artifact.Checksum)
	assert.Equal(t, int64(7), artifact.SourceSnapshotVersion)
	assert.False(t, artifact.CreatedAt.IsZero())

	// блокировка бралась и была отпущена
	assert.Equal(t, locker.locks, locker.unlocks)
	assert.Positive(t, locker.locks)

	assert.NoError(t, manager.Verify(ctx, artifact.Path))
}

func TestManager_Verify_DetectsCorruption(t *testing.T) {
	manager, _, _ := newTestManager(t, "store contents")
	ctx := context.Background()

	artifact, err := manager.CreateSnapshot(ctx)
	require.NoError(t, err)

	// подменяем контрольную сумму
	require.NoError(t, os.WriteFile(artifact.Path+checksumSuffix, []byte("deadbeef\n"), 0o644))

	err = manager.Verify(ctx, artifact.Path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestManager_RestoreSnapshot_RoundTrip(t *testing.T) {
	manager, _, dbPath := newTestManager(t, "original contents")
	ctx := context.Background()

	artifact, err := manager.CreateSnapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(dbPath, []byte("corrupted garbage"), 0o644))

	require.NoError(t, manager.RestoreSnapshot(ctx, artifact.Path))

	restored, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "original contents", string(restored))

	// перед восстановлением снимается страховочный снапшот
	artifacts, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Len(t, artifacts, 2)
}

func TestManager_RestoreSnapshot_CorruptArtifactLeavesStoreUntouched(t *testing.T) {
	manager, _, dbPath := newTestManager(t, "original contents")
	ctx := context.Background()

	artifact, err := manager.CreateSnapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(artifact.Path+checksumSuffix, []byte("deadbeef\n"), 0o644))

	err = manager.RestoreSnapshot(ctx, artifact.Path)

	assert.ErrorIs(t, err, ErrChecksumMismatch)
	current, readErr := os.ReadFile(dbPath)
	require.NoError(t, readErr)
	assert.Equal(t, "original contents", string(current))
}

func TestManager_List_NewestFirst(t *testing.T) {
	manager, _, _ := newTestManager(t, "store contents")
	ctx := context.Background()

	first, err := manager.CreateSnapshot(ctx)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := manager.CreateSnapshot(ctx)
	require.NoError(t, err)

	artifacts, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, second.Path, artifacts[0].Path)
	assert.Equal(t, first.Path, artifacts[1].Path)
}

// Снапшот и восстановление реальной SQLite-базы: количество записей и версии
// после восстановления совпадают со снятым состоянием.
func TestManager_RestoreSnapshot_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stock.db")

	db, err := store.NewConnectSQLite(ctx, config.ClientDB{DSN: dbPath}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	records := store.NewRecordRepository(db, logger.Nop())
	for _, id := range []string{"s1", "s2", "s3"} {
		_, err = records.Put(ctx, "suppliers", id, []byte(`{"name":"`+id+`"}`))
		require.NoError(t, err)
	}
	_, err = records.Put(ctx, "suppliers", "s1", []byte(`{"name":"s1 v2"}`))
	require.NoError(t, err)

	manager := NewManager(db, store.NewMetadataRepository(db, logger.Nop()), filepath.Join(dir, "backups"), logger.Nop())
	artifact, err := manager.CreateSnapshot(ctx)
	require.NoError(t, err)

	// портим три записи и добавляем мусорную
	_, err = records.Put(ctx, "suppliers", "s1", []byte(`garbage`))
	require.NoError(t, err)
	_, err = records.Put(ctx, "suppliers", "s2", []byte(`garbage`))
	require.NoError(t, err)
	_, err = records.Put(ctx, "suppliers", "s3", []byte(`garbage`))
	require.NoError(t, err)
	_, err = records.Put(ctx, "suppliers", "s4", []byte(`garbage`))
	require.NoError(t, err)

	require.NoError(t, manager.RestoreSnapshot(ctx, artifact.Path))
	require.NoError(t, db.Close())

	// после восстановления всё состояние в памяти пересоздаётся заново
	restoredDB, err := store.NewConnectSQLite(ctx, config.ClientDB{DSN: dbPath}, logger.Nop())
	require.NoError(t, err)
	defer restoredDB.Close()
	restored := store.NewRecordRepository(restoredDB, logger.Nop())

	count, err := restored.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	s1, err := restored.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), s1.Version)
	assert.JSONEq(t, `{"name":"s1 v2"}`, string(s1.Payload))

	_, err = restored.Get(ctx, "suppliers", "s4")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}
