package transport

import "errors"

var (
	// ErrNotConnected is returned by Send when no live connection exists.
	ErrNotConnected = errors.New("transport is not connected")
	// ErrConnect wraps a failed connect attempt (health probe, dial or
	// handshake). Recovered by backoff, not surfaced to the user.
	ErrConnect = errors.New("connect attempt failed")
	// ErrHandshake means the server's reply to the capabilities frame was
	// missing or malformed.
	ErrHandshake = errors.New("capabilities handshake failed")
	// ErrHeartbeatTimeout means the tolerated number of heartbeats went
	// unacknowledged and the connection was declared dead.
	ErrHeartbeatTimeout = errors.New("heartbeat timeout")
)
