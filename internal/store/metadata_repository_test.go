package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

func TestMetadataRepository_GetDefaults(t *testing.T) {
	repo := NewMetadataRepository(newTestDB(t), logger.Nop())

	meta, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.True(t, meta.LastSyncTime.IsZero())
	assert.Zero(t, meta.SyncVersionCounter)
	assert.Zero(t, meta.PendingCount)
}

func TestMetadataRepository_UpdateRoundTrip(t *testing.T) {
	repo := NewMetadataRepository(newTestDB(t), logger.Nop())
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Update(ctx, models.SyncMetadata{
		LastSyncTime:       now,
		SyncVersionCounter: 12,
		PendingCount:       3,
	}))

	meta, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, meta.LastSyncTime.Equal(now))
	assert.Equal(t, int64(12), meta.SyncVersionCounter)
	assert.Equal(t, 3, meta.PendingCount)
}
