package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/mock"
	"github.com/MKhiriev/go-stock-keeper/models"
)

func TestCoordinator_CreateBackup_Delegates(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	snapshots := mock.NewMockSnapshotter(ctrl)
	artifact := models.BackupArtifact{
		Path:      "/backups/2026-03-10T12-00-00.000Z.db.gz",
		CreatedAt: time.Now().UTC(),
		Checksum:  "deadbeef",
	}
	snapshots.EXPECT().CreateSnapshot(ctx).Return(artifact, nil)

	c := NewCoordinator(nil, nil, nil, nil, nil, snapshots, CoordinatorOptions{}, logger.Nop())

	got, err := c.CreateBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, artifact, got)
}

func TestCoordinator_RestoreBackup_ClosesConnectionFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	tr := mock.NewMockTransport(ctrl)
	snapshots := mock.NewMockSnapshotter(ctrl)

	// соединение должно быть закрыто до подмены файла базы
	gomock.InOrder(
		tr.EXPECT().Close().Return(nil),
		snapshots.EXPECT().RestoreSnapshot(ctx, "snapshot.db.gz").Return(nil),
	)

	c := NewCoordinator(tr, nil, nil, nil, nil, snapshots, CoordinatorOptions{}, logger.Nop())

	require.NoError(t, c.RestoreBackup(ctx, "snapshot.db.gz"))
}

func TestCoordinator_RestoreBackup_BlocksCyclesForWholeRestore(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	tr := mock.NewMockTransport(ctrl)
	snapshots := mock.NewMockSnapshotter(ctrl)
	tr.EXPECT().Close().Return(nil)

	var c *Coordinator
	snapshots.EXPECT().RestoreSnapshot(ctx, "snapshot.db.gz").DoAndReturn(func(ctx context.Context, _ string) error {
		// пока файл базы подменяется, цикл не стартует, а второй restore
		// отклоняется
		require.NoError(t, c.RunCycle(ctx))
		assert.ErrorIs(t, c.RestoreBackup(ctx, "snapshot.db.gz"), ErrSyncInProgress)
		return nil
	})

	c = NewCoordinator(tr, nil, nil, nil, nil, snapshots, CoordinatorOptions{}, logger.Nop())

	require.NoError(t, c.RestoreBackup(ctx, "snapshot.db.gz"))
}

func TestCoordinator_Recover_ReleasesInFlightEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	queue := mock.NewMockMutationQueue(ctrl)
	queue.EXPECT().ReleaseInFlight(ctx).Return(int64(2), nil)

	c := NewCoordinator(nil, nil, queue, nil, nil, nil, CoordinatorOptions{}, logger.Nop())

	require.NoError(t, c.Recover(ctx))
}
