package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-stock-keeper/internal/config"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/store"
	"github.com/MKhiriev/go-stock-keeper/models"
)

func newResolverFixture(t *testing.T, policyName string) (*Resolver, *store.ClientStorages) {
	t.Helper()

	storages, err := store.NewClientStorages(context.Background(), config.ClientStorage{
		DB: config.ClientDB{DSN: t.TempDir() + "/client.db"},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.DB.Close() })

	policy, err := PolicyForName(policyName, storages.Records, storages.Queue, logger.Nop())
	require.NoError(t, err)

	return NewResolver(storages.Records, policy, logger.Nop()), storages
}

// seedConcurrentEdit produces a record both sides changed independently:
// synced at server version 1, then edited locally so version 2 is pending.
func seedConcurrentEdit(t *testing.T, storages *store.ClientStorages) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, storages.Records.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme"}`),
		Version:    1,
	}))
	_, err := storages.Records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme Ltd"}`))
	require.NoError(t, err)
}

func TestPolicyForName_Unknown(t *testing.T) {
	_, err := PolicyForName("newest-wins", nil, nil, logger.Nop())
	require.ErrorIs(t, err, ErrUnknownConflictPolicy)
}

func TestResolver_AppliesChangeForUnknownRecord(t *testing.T) {
	r, storages := newResolverFixture(t, "server")
	ctx := context.Background()

	routed, err := r.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme"}`),
		Version:    3,
	})

	require.NoError(t, err)
	assert.False(t, routed)

	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), record.Version)
	assert.Equal(t, models.SyncStatusSynced, record.SyncStatus)
}

func TestResolver_SkipsStaleChange(t *testing.T) {
	r, storages := newResolverFixture(t, "server")
	ctx := context.Background()

	require.NoError(t, storages.Records.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme"}`),
		Version:    3,
	}))

	// повтор старой версии не несёт новой информации
	routed, err := r.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Stale"}`),
		Version:    2,
	})

	require.NoError(t, err)
	assert.False(t, routed)

	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Acme"}`, string(record.Payload))
	assert.Equal(t, int64(3), record.Version)
}

func TestResolver_ServerWins_ServerChangeOverwritesLocal(t *testing.T) {
	r, storages := newResolverFixture(t, "server")
	ctx := context.Background()
	seedConcurrentEdit(t, storages)

	routed, err := r.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme (HQ)"}`),
		Version:    2,
	})

	require.NoError(t, err)
	assert.True(t, routed)

	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, record.SyncStatus)
	assert.JSONEq(t, `{"name":"Acme (HQ)"}`, string(record.Payload))

	// локальная правка снята с отправки
	depth, err := storages.Queue.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestResolver_ClientWins_IgnoresServerChange(t *testing.T) {
	r, storages := newResolverFixture(t, "client")
	ctx := context.Background()
	seedConcurrentEdit(t, storages)

	routed, err := r.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme (HQ)"}`),
		Version:    2,
	})

	require.NoError(t, err)
	assert.True(t, routed)

	// локальная версия остаётся pending и будет отправлена повторно
	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, record.SyncStatus)
	assert.JSONEq(t, `{"name":"Acme Ltd"}`, string(record.Payload))

	depth, err := storages.Queue.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)
}

func TestResolver_Manual_RetainsBothPayloads(t *testing.T) {
	r, storages := newResolverFixture(t, "manual")
	ctx := context.Background()
	seedConcurrentEdit(t, storages)

	routed, err := r.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme (HQ)"}`),
		Version:    2,
	})

	require.NoError(t, err)
	assert.True(t, routed)

	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusConflict, record.SyncStatus)
	assert.JSONEq(t, `{"name":"Acme Ltd"}`, string(record.Payload), "local payload stays readable")
	assert.JSONEq(t, `{"name":"Acme (HQ)"}`, string(record.ServerPayload), "server payload retained alongside")
	require.NotNil(t, record.ServerVersion)
	assert.Equal(t, int64(2), *record.ServerVersion)

	depth, err := storages.Queue.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth, "nothing is uploaded until the user resolves")
}

func TestResolver_Manual_ResolveReturnsRecordToPending(t *testing.T) {
	r, storages := newResolverFixture(t, "manual")
	ctx := context.Background()
	seedConcurrentEdit(t, storages)

	_, err := r.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme (HQ)"}`),
		Version:    2,
	})
	require.NoError(t, err)

	record, err := storages.Records.ResolveConflict(ctx, "suppliers", "s1", []byte(`{"name":"Acme Merged"}`))
	require.NoError(t, err)

	assert.Equal(t, models.SyncStatusPending, record.SyncStatus)
	assert.JSONEq(t, `{"name":"Acme Merged"}`, string(record.Payload))
	assert.Nil(t, record.ServerPayload)

	// мутация ушла в очередь с базовой версией сервера
	batch, err := storages.Queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, int64(2), batch[0].BaseVersion)
	assert.Equal(t, models.OperationUpdate, batch[0].Operation)
}

func TestResolver_ServerWins_RejectedMutation(t *testing.T) {
	r, storages := newResolverFixture(t, "server")
	ctx := context.Background()

	_, err := storages.Records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme Ltd"}`))
	require.NoError(t, err)
	batch, err := storages.Queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	err = r.ResolveRejected(ctx, batch[0], models.MutationAckPayload{
		IdempotencyKey:           batch[0].IdempotencyKey,
		Accepted:                 false,
		ConflictingServerData:    []byte(`{"name":"Acme (HQ)"}`),
		ConflictingServerVersion: 5,
	})
	require.NoError(t, err)

	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSynced, record.SyncStatus)
	assert.Equal(t, int64(5), record.Version)
	assert.JSONEq(t, `{"name":"Acme (HQ)"}`, string(record.Payload))

	depth, err := storages.Queue.Depth(ctx)
	require.NoError(t, err)
	assert.Zero(t, depth)
}

func TestResolver_ClientWins_RejectedMutationRebases(t *testing.T) {
	r, storages := newResolverFixture(t, "client")
	ctx := context.Background()

	_, err := storages.Records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme Ltd"}`))
	require.NoError(t, err)
	batch, err := storages.Queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	err = r.ResolveRejected(ctx, batch[0], models.MutationAckPayload{
		IdempotencyKey:           batch[0].IdempotencyKey,
		Accepted:                 false,
		ConflictingServerData:    []byte(`{"name":"Acme (HQ)"}`),
		ConflictingServerVersion: 5,
	})
	require.NoError(t, err)

	// локальные байты сохранены и перебазированы на серверную версию
	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, record.SyncStatus)
	assert.JSONEq(t, `{"name":"Acme Ltd"}`, string(record.Payload))

	rebased, err := storages.Queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rebased, 1)
	assert.Equal(t, int64(5), rebased[0].BaseVersion, "next upload must win the optimistic check")
	assert.JSONEq(t, `{"name":"Acme Ltd"}`, string(rebased[0].Payload))
}

func TestResolver_ClientWins_RejectedDeleteRebases(t *testing.T) {
	r, storages := newResolverFixture(t, "client")
	ctx := context.Background()

	require.NoError(t, storages.Records.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: "suppliers",
		EntityID:   "s1",
		Data:       []byte(`{"name":"Acme"}`),
		Version:    1,
	}))
	require.NoError(t, storages.Records.Delete(ctx, "suppliers", "s1"))

	batch, err := storages.Queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Equal(t, models.OperationDelete, batch[0].Operation)

	err = r.ResolveRejected(ctx, batch[0], models.MutationAckPayload{
		IdempotencyKey:           batch[0].IdempotencyKey,
		Accepted:                 false,
		ConflictingServerData:    []byte(`{"name":"Acme v3"}`),
		ConflictingServerVersion: 3,
	})
	require.NoError(t, err)

	rebased, err := storages.Queue.DequeueBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rebased, 1)
	assert.Equal(t, models.OperationDelete, rebased[0].Operation, "the delete intent survives the rebase")
	assert.Equal(t, int64(3), rebased[0].BaseVersion)
}

func TestResolver_Manual_RejectedMutation(t *testing.T) {
	r, storages := newResolverFixture(t, "manual")
	ctx := context.Background()

	_, err := storages.Records.Put(ctx, "suppliers", "s1", []byte(`{"name":"Acme Ltd"}`))
	require.NoError(t, err)
	batch, err := storages.Queue.DequeueBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	err = r.ResolveRejected(ctx, batch[0], models.MutationAckPayload{
		IdempotencyKey:           batch[0].IdempotencyKey,
		Accepted:                 false,
		ConflictingServerData:    []byte(`{"name":"Acme (HQ)"}`),
		ConflictingServerVersion: 5,
	})
	require.NoError(t, err)

	record, err := storages.Records.Get(ctx, "suppliers", "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusConflict, record.SyncStatus)
	assert.JSONEq(t, `{"name":"Acme Ltd"}`, string(record.Payload))
	assert.JSONEq(t, `{"name":"Acme (HQ)"}`, string(record.ServerPayload))
}
