package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-stock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SyncEngine is the boundary the business/UI layer consumes. Reads and writes
// of business records go straight to the local store; everything sync-shaped
// goes through here.
type SyncEngine interface {
	// RunCycle drives one sync cycle end to end. Cycles never overlap: a
	// call made while a cycle runs is coalesced into one follow-up cycle.
	RunCycle(ctx context.Context) error
	// TriggerSync requests a cycle without blocking.
	TriggerSync()
	// Events is the typed event stream of cycle progress.
	Events() <-chan models.SyncEvent
	// Status projects the current engine state for the UI.
	Status(ctx context.Context) (models.EngineStatus, error)
	// ResolveConflict picks the winning payload for a conflicted record and
	// schedules its upload.
	ResolveConflict(ctx context.Context, entityType, entityID string, chosenPayload []byte) error
	// CreateBackup captures a snapshot of the local store.
	CreateBackup(ctx context.Context) (models.BackupArtifact, error)
	// RestoreBackup restores the store from an artifact. Refused while a
	// cycle is running; the process must reinitialize afterwards.
	RestoreBackup(ctx context.Context, path string) error
	// Shutdown stops the heartbeat and closes the connection. Queued entries
	// stay durable; in-flight ones are recovered on the next start.
	Shutdown()
}

// SyncJob triggers engine cycles on a ticker while auto sync is enabled.
type SyncJob interface {
	Start(ctx context.Context, interval time.Duration)
	Stop()
}
