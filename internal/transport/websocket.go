// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/models"
)

const (
	DefaultHeartbeatInterval  = 15 * time.Second
	DefaultHeartbeatTolerance = 2
	DefaultHealthTimeout      = 3 * time.Second
	DefaultBackoffMin         = time.Second
	DefaultBackoffMax         = 30 * time.Second
	DefaultBackoffStability   = time.Minute

	dialTimeout    = 10 * time.Second
	inboundBufSize = 64
)

// Options configures the websocket transport.
type Options struct {
	// ServerURL is the http(s) base URL of the sync server. The websocket
	// endpoint is {ServerURL}/ws, the health endpoint {ServerURL}/health.
	ServerURL string

	// SessionToken is the signed JWT presented on the websocket upgrade.
	SessionToken string

	ClientID   string
	Platform   string
	AppVersion string

	HeartbeatInterval time.Duration
	// HeartbeatTolerance is how many consecutive unanswered pings are allowed
	// before the connection is declared dead.
	HeartbeatTolerance int

	// CompressionThreshold is the message size in bytes above which frames
	// are sent with permessage-deflate.
	CompressionThreshold int

	HealthTimeout    time.Duration
	BackoffMin       time.Duration
	BackoffMax       time.Duration
	BackoffStability time.Duration
}

func (o *Options) applyDefaults() {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.HeartbeatTolerance <= 0 {
		o.HeartbeatTolerance = DefaultHeartbeatTolerance
	}
	if o.HealthTimeout <= 0 {
		o.HealthTimeout = DefaultHealthTimeout
	}
	if o.BackoffMin <= 0 {
		o.BackoffMin = DefaultBackoffMin
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = DefaultBackoffMax
	}
	if o.BackoffStability <= 0 {
		o.BackoffStability = DefaultBackoffStability
	}
}

// WebsocketTransport implements Transport over coder/websocket.
type WebsocketTransport struct {
	opts    Options
	health  *resty.Client
	backoff *Backoff
	inbound chan models.Message
	logger  *logger.Logger

	mu      sync.RWMutex
	conn    *websocket.Conn
	cancel  context.CancelFunc
	session models.SyncSession
	missed  int
	// retryAt is the earliest time the next dial may start; armed by a failed
	// attempt or a lost connection.
	retryAt time.Time
}

func NewWebsocketTransport(opts Options, log *logger.Logger) *WebsocketTransport {
	opts.applyDefaults()

	return &WebsocketTransport{
		opts:    opts,
		health:  resty.New().SetTimeout(opts.HealthTimeout),
		backoff: NewBackoff(opts.BackoffMin, opts.BackoffMax, opts.BackoffStability),
		inbound: make(chan models.Message, inboundBufSize),
		logger:  log,
		session: models.SyncSession{State: models.StateDisconnected, ClientID: opts.ClientID},
	}
}

func (t *WebsocketTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.session.State == models.StateConnected || t.session.State == models.StateConnecting {
		t.mu.Unlock()
		return nil
	}
	retryAt := t.retryAt
	t.session.State = models.StateConnecting
	t.mu.Unlock()

	// a failed attempt arms a deadline and the next dial does not start
	// before it, so retries follow the backoff progression no matter how
	// often the caller asks
	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			t.mu.Lock()
			t.session.State = models.StateDisconnected
			t.mu.Unlock()
			return ctx.Err()
		case <-timer.C:
		}
	}

	// a dead server fails fast on the cheap HTTP probe instead of hanging in
	// the websocket dial
	if err := t.probeHealth(ctx); err != nil {
		return t.connectFailed(err)
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, dialTimeout)
	defer cancelDial()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+t.opts.SessionToken)

	conn, _, err := websocket.Dial(dialCtx, t.opts.ServerURL+"/ws", &websocket.DialOptions{
		HTTPHeader:           header,
		CompressionMode:      websocket.CompressionContextTakeover,
		CompressionThreshold: t.opts.CompressionThreshold,
	})
	if err != nil {
		return t.connectFailed(err)
	}

	serverCaps, err := t.handshake(dialCtx, conn)
	if err != nil {
		conn.Close(websocket.StatusProtocolError, "handshake failed")
		return t.connectFailed(errors.Join(ErrHandshake, err))
	}

	now := time.Now().UTC()
	sessionCtx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	t.conn = conn
	t.cancel = cancel
	t.missed = 0
	t.retryAt = time.Time{}
	t.session = models.SyncSession{
		State:       models.StateConnected,
		ClientID:    t.opts.ClientID,
		ConnectedAt: now,
		Peers:       serverCaps.Peers,
	}
	t.mu.Unlock()
	t.backoff.Connected(now)

	go t.readLoop(sessionCtx, conn)
	go t.heartbeatLoop(sessionCtx, conn)

	t.logger.Info().
		Str("func", "WebsocketTransport.Connect").
		Str("server_url", t.opts.ServerURL).
		Strs("peers", serverCaps.Peers).
		Msg("connected to sync server")

	return nil
}

func (t *WebsocketTransport) Send(ctx context.Context, msg models.Message) error {
	t.mu.RLock()
	conn := t.conn
	state := t.session.State
	t.mu.RUnlock()

	if conn == nil || (state != models.StateConnected && state != models.StateSyncing) {
		return ErrNotConnected
	}

	if err := writeFrame(ctx, conn, msg); err != nil {
		t.disconnect(err)
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}

	return nil
}

func (t *WebsocketTransport) Inbound() <-chan models.Message {
	return t.inbound
}

func (t *WebsocketTransport) Session() models.SyncSession {
	t.mu.RLock()
	defer t.mu.RUnlock()

	session := t.session
	session.Peers = append([]string(nil), t.session.Peers...)
	return session
}

func (t *WebsocketTransport) NextRetryDelay() time.Duration {
	return t.backoff.NextDelay()
}

func (t *WebsocketTransport) Close() error {
	t.disconnect(nil)
	return nil
}

func (t *WebsocketTransport) probeHealth(ctx context.Context) error {
	resp, err := t.health.R().SetContext(ctx).Get(t.opts.ServerURL + "/health")
	if err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("health probe: unexpected status %d", resp.StatusCode())
	}

	return nil
}

// handshake sends the capabilities frame and waits for the server's reply.
func (t *WebsocketTransport) handshake(ctx context.Context, conn *websocket.Conn) (models.CapabilitiesPayload, error) {
	hello, err := models.NewMessage(models.MessageCapabilities, models.CapabilitiesPayload{
		ClientID:   t.opts.ClientID,
		Platform:   t.opts.Platform,
		AppVersion: t.opts.AppVersion,
	})
	if err != nil {
		return models.CapabilitiesPayload{}, err
	}
	if err = writeFrame(ctx, conn, hello); err != nil {
		return models.CapabilitiesPayload{}, err
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		return models.CapabilitiesPayload{}, err
	}

	var reply models.Message
	if err = json.Unmarshal(data, &reply); err != nil {
		return models.CapabilitiesPayload{}, err
	}
	if reply.Type != models.MessageCapabilities {
		return models.CapabilitiesPayload{}, fmt.Errorf("unexpected reply type %q", reply.Type)
	}

	var serverCaps models.CapabilitiesPayload
	if err = reply.DecodePayload(&serverCaps); err != nil {
		return models.CapabilitiesPayload{}, err
	}

	return serverCaps, nil
}

func (t *WebsocketTransport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.disconnect(err)
			return
		}

		var msg models.Message
		if err = json.Unmarshal(data, &msg); err != nil {
			t.logger.Warn().Err(err).Str("func", "WebsocketTransport.readLoop").Msg("dropping malformed frame")
			continue
		}

		if msg.Type == models.MessagePong {
			t.handlePong(msg)
			continue
		}

		select {
		case t.inbound <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (t *WebsocketTransport) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(t.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		if t.session.LastHeartbeatSentAt.After(t.session.LastHeartbeatAckAt) {
			t.missed++
		}
		missed := t.missed
		t.mu.Unlock()

		if missed > t.opts.HeartbeatTolerance {
			t.logger.Warn().Str("func", "WebsocketTransport.heartbeatLoop").Int("missed", missed).Msg("heartbeat tolerance exceeded")
			t.disconnect(ErrHeartbeatTimeout)
			return
		}

		now := time.Now().UTC()
		ping, err := models.NewMessage(models.MessagePing, models.PingPayload{SentAt: now})
		if err != nil {
			continue
		}
		if err = writeFrame(ctx, conn, ping); err != nil {
			t.disconnect(err)
			return
		}

		t.mu.Lock()
		t.session.LastHeartbeatSentAt = now
		t.mu.Unlock()
	}
}

func (t *WebsocketTransport) handlePong(msg models.Message) {
	var pong models.PongPayload
	if err := msg.DecodePayload(&pong); err != nil {
		t.logger.Warn().Err(err).Str("func", "WebsocketTransport.handlePong").Msg("dropping malformed pong")
		return
	}

	now := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.missed = 0
	t.session.LastHeartbeatAckAt = now
	t.session.MeasuredRoundTripMillis = rttMillis(now.Sub(pong.SentAt))
	if pong.Peers != nil {
		t.session.Peers = pong.Peers
	}
}

// disconnect tears down the current connection once; reason nil means a
// deliberate Close.
func (t *WebsocketTransport) disconnect(reason error) {
	t.mu.Lock()
	conn := t.conn
	cancel := t.cancel
	t.conn = nil
	t.cancel = nil
	t.session.State = models.StateDisconnected
	t.session.Peers = nil
	t.mu.Unlock()

	if conn == nil {
		return
	}

	if cancel != nil {
		cancel()
	}
	conn.Close(websocket.StatusNormalClosure, "")
	t.backoff.Disconnected(time.Now().UTC())

	if reason == nil {
		t.logger.Debug().Str("func", "WebsocketTransport.disconnect").Msg("connection closed")
		return
	}

	// a lost connection paces the next dial the same way a failed one does
	t.mu.Lock()
	t.retryAt = time.Now().UTC().Add(t.backoff.NextDelay())
	t.mu.Unlock()

	t.logger.Warn().Err(reason).Str("func", "WebsocketTransport.disconnect").Msg("connection lost")
}

func (t *WebsocketTransport) connectFailed(err error) error {
	t.backoff.Failure()
	delay := t.backoff.NextDelay()

	t.mu.Lock()
	t.session.State = models.StateDisconnected
	t.retryAt = time.Now().UTC().Add(delay)
	t.mu.Unlock()

	t.logger.Warn().Err(err).
		Str("func", "WebsocketTransport.Connect").
		Dur("next_retry_in", delay).
		Msg("connect attempt failed")

	return errors.Join(ErrConnect, err)
}

func writeFrame(ctx context.Context, conn *websocket.Conn, msg models.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// rttMillis rounds the measured latency up to at least one millisecond so a
// completed heartbeat on a fast link is distinguishable from "never measured".
func rttMillis(d time.Duration) int64 {
	millis := d.Milliseconds()
	if millis < 1 {
		return 1
	}
	return millis
}
