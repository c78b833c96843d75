// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	clientmigrations "github.com/MKhiriev/go-stock-keeper/migrations/client"
	"github.com/MKhiriev/go-stock-keeper/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetMaxOpenConns(1)
	require.NoError(t, clientmigrations.Migrate(conn))

	return &DB{DB: conn, migrate: clientmigrations.Migrate, logger: logger.Nop()}
}

func newTestRepos(t *testing.T) (*RecordRepository, *QueueRepository) {
	t.Helper()

	db := newTestDB(t)
	return NewRecordRepository(db, logger.Nop()), NewQueueRepository(db, logger.Nop())
}

func TestRecordRepository_Put_CreatesPendingRecord(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	record, err := records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme"}`))

	require.NoError(t, err)
	assert.Equal(t, int64(1), record.Version)
	assert.Equal(t, models.SyncStatusPending, record.SyncStatus)
	assert.Nil(t, record.LastServerVersion)

	// вместе с записью должна появиться мутация в очереди
	batch, err := queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "suppliers:s1:1", batch[0].IdempotencyKey)
	assert.Equal(t, models.OperationCreate, batch[0].Operation)
	assert.Equal(t, int64(0), batch[0].BaseVersion)
}

func TestRecordRepository_Put_BumpsVersionAndCoalesces(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme"}`))
	require.NoError(t, err)
	record, err := records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme Ltd"}`))
	require.NoError(t, err)

	assert.Equal(t, int64(2), record.Version)

	batch, err := queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1, "coalescing must leave a single entry per entity")
	assert.Equal(t, "suppliers:s1:2", batch[0].IdempotencyKey)
	assert.Equal(t, models.OperationCreate, batch[0].Operation, "unsent create absorbs the follow-up edit")
	assert.JSONEq(t, `{"name":"Acme Ltd"}`, string(batch[0].Payload))
}

func TestRecordRepository_Put_DoesNotTouchInFlightEntry(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "invoices", "i1", []byte(`{"total":10}`))
	require.NoError(t, err)

	inflight, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, inflight, 1)

	_, err = records.Put(ctx, "invoices", "i1", []byte(`{"total":20}`))
	require.NoError(t, err)

	// отправляемая запись не изменилась, новая правка ждёт отдельно
	ready, err := queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, "invoices:i1:2", ready[0].IdempotencyKey)
	assert.NotEqual(t, inflight[0].IdempotencyKey, ready[0].IdempotencyKey)
}

func TestRecordRepository_MarkSynced(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme"}`))
	require.NoError(t, err)
	batch, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, queue.Ack(ctx, batch[0].IdempotencyKey))

	require.NoError(t, records.MarkSynced(ctx, "suppliers", "s1", 1))

	record, err := records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, record.SyncStatus)
	assert.Equal(t, int64(1), record.Version)
	require.NotNil(t, record.LastServerVersion)
	assert.Equal(t, record.Version, *record.LastServerVersion)
}

func TestRecordRepository_MarkSynced_KeepsPendingAfterConcurrentEdit(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme"}`))
	require.NoError(t, err)
	batch, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)

	// пользователь правит запись, пока мутация в полёте
	_, err = records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme Ltd"}`))
	require.NoError(t, err)

	require.NoError(t, queue.Ack(ctx, batch[0].IdempotencyKey))
	require.NoError(t, records.MarkSynced(ctx, "suppliers", "s1", 1))

	record, err := records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, record.SyncStatus)
	assert.Equal(t, int64(2), record.Version)
	require.NotNil(t, record.LastServerVersion)
	assert.Equal(t, int64(1), *record.LastServerVersion)
}

func TestRecordRepository_Put_MintsFreshKeyAfterServerRewindsVersion(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	// две офлайн-правки схлопываются в одну мутацию
	_, err := records.Put(ctx, "invoices", "i1", []byte(`{"total":10}`))
	require.NoError(t, err)
	_, err = records.Put(ctx, "invoices", "i1", []byte(`{"total":20}`))
	require.NoError(t, err)

	batch, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	firstKey := batch[0].IdempotencyKey

	// сервер видел одну мутацию и присвоил версию 1, локальный счётчик
	// версий откатывается к ней
	require.NoError(t, queue.Ack(ctx, firstKey))
	require.NoError(t, records.MarkSynced(ctx, "invoices", "i1", 1))

	_, err = records.Put(ctx, "invoices", "i1", []byte(`{"total":30}`))
	require.NoError(t, err)

	next, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.NotEqual(t, firstKey, next[0].IdempotencyKey,
		"a key the server already acknowledged must never be reused")
}

func TestRecordRepository_Put_RefusedWhileConflicted(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "invoices", "i1", []byte(`{"total":10}`))
	require.NoError(t, err)
	batch, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, queue.Ack(ctx, batch[0].IdempotencyKey))

	serverPayload := []byte(`{"total":15}`)
	require.NoError(t, records.MarkConflict(ctx, "invoices", "i1", serverPayload, 7))

	_, err = records.Put(ctx, "invoices", "i1", []byte(`{"total":25}`))
	assert.ErrorIs(t, err, ErrRecordInConflict)

	// обе стороны конфликта остались на месте
	record, err := records.Get(ctx, "invoices", "i1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusConflict, record.SyncStatus)
	assert.Equal(t, serverPayload, record.ServerPayload)

	// после разрешения запись снова принимает правки
	_, err = records.ResolveConflict(ctx, "invoices", "i1", []byte(`{"total":25}`))
	require.NoError(t, err)
	_, err = records.Put(ctx, "invoices", "i1", []byte(`{"total":30}`))
	assert.NoError(t, err)
}

func TestRecordRepository_Delete(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "payments", "p1", []byte(`{"amount":5}`))
	require.NoError(t, err)
	batch, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, queue.Ack(ctx, batch[0].IdempotencyKey))
	require.NoError(t, records.MarkSynced(ctx, "payments", "p1", 1))

	require.NoError(t, records.Delete(ctx, "payments", "p1"))

	_, err = records.Get(ctx, "payments", "p1")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	ready, err := queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, models.OperationDelete, ready[0].Operation)
	assert.Equal(t, int64(1), ready[0].BaseVersion)
}

func TestRecordRepository_Delete_NotFound(t *testing.T) {
	records, _ := newTestRepos(t)

	err := records.Delete(context.Background(), "payments", "missing")

	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordRepository_Delete_CancelsQueuedCreate(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "payments", "p1", []byte(`{"amount":5}`))
	require.NoError(t, err)

	require.NoError(t, records.Delete(ctx, "payments", "p1"))

	// сервер ничего не знает об этой записи, очередь должна опустеть
	depth, err := queue.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestRecordRepository_ConflictLifecycle(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "invoices", "i1", []byte(`{"total":10}`))
	require.NoError(t, err)
	batch, err := queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, queue.Ack(ctx, batch[0].IdempotencyKey))

	serverPayload := []byte(`{"total":15}`)
	require.NoError(t, records.MarkConflict(ctx, "invoices", "i1", serverPayload, 7))

	record, err := records.Get(ctx, "invoices", "i1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusConflict, record.SyncStatus)
	assert.Equal(t, serverPayload, record.ServerPayload)
	require.NotNil(t, record.ServerVersion)
	assert.Equal(t, int64(7), *record.ServerVersion)
	assert.Equal(t, []byte(`{"total":10}`), record.Payload, "local payload is retained alongside the server one")

	resolved, err := records.ResolveConflict(ctx, "invoices", "i1", []byte(`{"total":25}`))
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, resolved.SyncStatus)
	assert.Equal(t, int64(2), resolved.Version)
	assert.Nil(t, resolved.ServerPayload)

	ready, err := queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, int64(7), ready[0].BaseVersion, "re-enqueued mutation is based on the conflicting server version")
}

func TestRecordRepository_ResolveConflict_NotInConflict(t *testing.T) {
	records, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "invoices", "i1", []byte(`{"total":10}`))
	require.NoError(t, err)

	_, err = records.ResolveConflict(ctx, "invoices", "i1", []byte(`{"total":25}`))

	assert.ErrorIs(t, err, ErrNotInConflict)
}

func TestRecordRepository_ApplyServerChange(t *testing.T) {
	records, queue := newTestRepos(t)
	ctx := context.Background()

	change := models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s9",
		Data:       []byte(`{"name":"Remote"}`),
		Version:    4,
	}
	require.NoError(t, records.ApplyServerChange(ctx, change))

	record, err := records.Get(ctx, "suppliers", "s9")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, record.SyncStatus)
	assert.Equal(t, int64(4), record.Version)
	require.NotNil(t, record.LastServerVersion)
	assert.Equal(t, int64(4), *record.LastServerVersion)

	// применение серверного состояния не порождает исходящих мутаций
	depth, err := queue.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)

	change.Deleted = true
	require.NoError(t, records.ApplyServerChange(ctx, change))

	_, err = records.Get(ctx, "suppliers", "s9")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordRepository_GetAllAndCount(t *testing.T) {
	records, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := records.Put(ctx, "suppliers", "s1", []byte(`{}`))
	require.NoError(t, err)
	_, err = records.Put(ctx, "suppliers", "s2", []byte(`{}`))
	require.NoError(t, err)
	_, err = records.Put(ctx, "invoices", "i1", []byte(`{}`))
	require.NoError(t, err)

	suppliers, err := records.GetAll(ctx, "suppliers")
	require.NoError(t, err)
	assert.Len(t, suppliers, 2)

	count, err := records.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRecordRepository_IntegrityCheck(t *testing.T) {
	records, _ := newTestRepos(t)

	assert.NoError(t, records.IntegrityCheck(context.Background()))
}
