package service

import (
	"context"

	"github.com/MKhiriev/go-stock-keeper/models"
)

// Status projects connection state, queue depth, last sync outcome and the
// peer roster into one snapshot for the UI layer. Every user-visible failure
// thereby arrives together with the queue depth and last successful sync
// time, so the user can judge data-loss risk before acting.
func (c *Coordinator) Status(ctx context.Context) (models.EngineStatus, error) {
	session := c.transport.Session()

	depth, err := c.queue.Depth(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}

	failed, err := c.queue.Failed(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}

	meta, err := c.metadata.Get(ctx)
	if err != nil {
		return models.EngineStatus{}, err
	}

	c.mu.Lock()
	lastError := c.lastError
	c.mu.Unlock()

	return models.EngineStatus{
		ConnectionState:         session.State,
		PendingCount:            int(depth),
		FailedCount:             len(failed),
		LastSyncTime:            meta.LastSyncTime,
		LastError:               lastError,
		MeasuredRoundTripMillis: session.MeasuredRoundTripMillis,
		ConnectedPeers:          session.Peers,
	}, nil
}
