package transport

import (
	"context"
	"time"

	"github.com/MKhiriev/go-stock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/transport_mock.go -package=mock

// Transport owns exactly one logical connection to the sync server at a time.
// It frames messages and keeps the session alive; it never interprets
// business content.
type Transport interface {
	// Connect runs the health probe, websocket dial and capabilities
	// handshake. A no-op when already connected. After a failed attempt the
	// next call waits out the reconnect backoff delay before dialing again.
	Connect(ctx context.Context) error
	// Send writes one frame. Fails with ErrNotConnected when no live
	// connection exists.
	Send(ctx context.Context, msg models.Message) error
	// Inbound is the stream of frames for the coordinator. Pong frames are
	// consumed internally and never appear here.
	Inbound() <-chan models.Message
	// Session returns a snapshot of the live session state.
	Session() models.SyncSession
	// NextRetryDelay reports the current reconnect backoff delay.
	NextRetryDelay() time.Duration
	// Close tears the connection down and stops the heartbeat.
	Close() error
}
