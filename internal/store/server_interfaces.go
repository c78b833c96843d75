package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-stock-keeper/models"
)

//go:generate mockgen -source=server_interfaces.go -destination=../mock/server_store_mock.go -package=mock

// ServerRecords is the authoritative record storage behind the sync server.
type ServerRecords interface {
	// ApplyMutation runs the optimistic concurrency check and applies the
	// mutation if its base version matches the server's current version.
	// Replays of an already applied idempotency key return the original
	// accepted ack without re-applying.
	ApplyMutation(ctx context.Context, clientID string, mutation models.MutationPayload) (models.MutationAckPayload, error)
	// ChangesSince lists every record changed after the given watermark,
	// oldest first, including tombstones of deleted records.
	ChangesSince(ctx context.Context, since time.Time) ([]models.ServerChangePayload, error)
}
