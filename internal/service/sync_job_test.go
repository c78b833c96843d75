package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-stock-keeper/models"
)

// engineStub counts RunCycle calls; the rest of the interface is inert.
type engineStub struct {
	cycles atomic.Int64
}

func (s *engineStub) RunCycle(context.Context) error { s.cycles.Add(1); return nil }
func (s *engineStub) TriggerSync()                   {}
func (s *engineStub) Events() <-chan models.SyncEvent {
	return nil
}
func (s *engineStub) Status(context.Context) (models.EngineStatus, error) {
	return models.EngineStatus{}, nil
}
func (s *engineStub) ResolveConflict(context.Context, string, string, []byte) error { return nil }
func (s *engineStub) CreateBackup(context.Context) (models.BackupArtifact, error) {
	return models.BackupArtifact{}, nil
}
func (s *engineStub) RestoreBackup(context.Context, string) error { return nil }
func (s *engineStub) Shutdown()                                   {}

func TestSyncJob_RunsCyclesOnTicker(t *testing.T) {
	engine := &engineStub{}
	job := NewSyncJob(engine)

	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	require.Eventually(t, func() bool {
		return engine.cycles.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSyncJob_StopHaltsCycles(t *testing.T) {
	engine := &engineStub{}
	job := NewSyncJob(engine)

	job.Start(context.Background(), 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return engine.cycles.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	job.Stop()
	after := engine.cycles.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, engine.cycles.Load(), "no cycles may run after Stop returns")
}

func TestSyncJob_StopWithoutStartIsNoop(t *testing.T) {
	job := NewSyncJob(&engineStub{})
	job.Stop()
}
