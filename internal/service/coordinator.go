// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-stock-keeper/internal/backup"
	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/store"
	"github.com/MKhiriev/go-stock-keeper/internal/transport"
	"github.com/MKhiriev/go-stock-keeper/models"
)

const (
	DefaultAckTimeout          = 10 * time.Second
	DefaultSyncResponseTimeout = 30 * time.Second

	retryBaseDelay = 5 * time.Second
	retryMaxDelay  = 5 * time.Minute

	eventBufSize = 32
)

// CoordinatorOptions are the sync tuning knobs from configuration.
type CoordinatorOptions struct {
	BatchSize           int
	MaxRetries          int
	AckTimeout          time.Duration
	SyncResponseTimeout time.Duration
}

func (o *CoordinatorOptions) applyDefaults() {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.AckTimeout <= 0 {
		o.AckTimeout = DefaultAckTimeout
	}
	if o.SyncResponseTimeout <= 0 {
		o.SyncResponseTimeout = DefaultSyncResponseTimeout
	}
}

// Coordinator implements SyncEngine: it drains the mutation queue through the
// transport, applies inbound server changes through the resolver and keeps
// the sync metadata row current.
type Coordinator struct {
	transport transport.Transport
	records   store.LocalStore
	queue     store.MutationQueue
	metadata  store.MetadataRepository
	resolver  *Resolver
	snapshots backup.Snapshotter
	opts      CoordinatorOptions
	events    chan models.SyncEvent
	logger    *logger.Logger

	mu             sync.Mutex
	syncing        bool
	pendingTrigger bool
	lastError      string

	// buffered holds server_change frames that arrived while awaiting a
	// mutation_ack; only the cycle goroutine touches it.
	buffered []models.ServerChangePayload
}

func NewCoordinator(
	tr transport.Transport,
	records store.LocalStore,
	queue store.MutationQueue,
	metadata store.MetadataRepository,
	resolver *Resolver,
	snapshots backup.Snapshotter,
	opts CoordinatorOptions,
	log *logger.Logger,
) *Coordinator {
	opts.applyDefaults()

	return &Coordinator{
		transport: tr,
		records:   records,
		queue:     queue,
		metadata:  metadata,
		resolver:  resolver,
		snapshots: snapshots,
		opts:      opts,
		events:    make(chan models.SyncEvent, eventBufSize),
		logger:    log,
	}
}

// Recover returns entries orphaned in flight by a previous crash to the
// ready state. Called once at startup before the first cycle.
func (c *Coordinator) Recover(ctx context.Context) error {
	_, err := c.queue.ReleaseInFlight(ctx)
	return err
}

func (c *Coordinator) RunCycle(ctx context.Context) error {
	c.mu.Lock()
	if c.syncing {
		c.pendingTrigger = true
		c.mu.Unlock()
		return nil
	}
	c.syncing = true
	c.mu.Unlock()

	var err error
	for {
		err = c.runOnce(ctx)

		c.mu.Lock()
		again := c.pendingTrigger && err == nil && ctx.Err() == nil
		c.pendingTrigger = false
		if !again {
			c.syncing = false
			c.mu.Unlock()
			return err
		}
		c.mu.Unlock()
	}
}

func (c *Coordinator) TriggerSync() {
	c.mu.Lock()
	if c.syncing {
		c.pendingTrigger = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	go func() {
		_ = c.RunCycle(context.Background())
	}()
}

func (c *Coordinator) Events() <-chan models.SyncEvent {
	return c.events
}

func (c *Coordinator) ResolveConflict(ctx context.Context, entityType, entityID string, chosenPayload []byte) error {
	if _, err := c.records.ResolveConflict(ctx, entityType, entityID, chosenPayload); err != nil {
		return err
	}

	c.TriggerSync()
	return nil
}

func (c *Coordinator) CreateBackup(ctx context.Context) (models.BackupArtifact, error) {
	return c.snapshots.CreateSnapshot(ctx)
}

func (c *Coordinator) RestoreBackup(ctx context.Context, path string) error {
	// the syncing flag is held for the whole swap so a trigger arriving
	// mid-restore cannot start a cycle over the file replacement
	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		return ErrSyncInProgress
	}
	c.syncing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.syncing = false
		// triggers raised during the restore refer to pre-restore state
		c.pendingTrigger = false
		c.mu.Unlock()
	}()

	// a restore is never applied underneath a live connection
	c.transport.Close()

	return c.snapshots.RestoreSnapshot(ctx, path)
}

func (c *Coordinator) Shutdown() {
	c.transport.Close()
}

func (c *Coordinator) runOnce(ctx context.Context) error {
	c.buffered = nil

	// a corrupt store is fatal for sync: refuse and prompt for restore
	if err := c.records.IntegrityCheck(ctx); err != nil {
		c.setLastError(err)
		c.emitError(err)
		return err
	}

	if state := c.transport.Session().State; state != models.StateConnected && state != models.StateSyncing {
		if err := c.transport.Connect(ctx); err != nil {
			// recovered by backoff, so the status projection stays clean
			c.emitError(err)
			return errors.Join(ErrTransport, err)
		}
	}

	c.emit(models.SyncEvent{Type: models.SyncEventStarted})

	sent, conflicts, err := c.uploadPending(ctx)
	if err != nil {
		c.emitError(err)
		return err
	}

	applied, downloadConflicts, serverTime, err := c.downloadChanges(ctx, sent, conflicts)
	if err != nil {
		c.emitError(err)
		return err
	}
	conflicts += downloadConflicts

	if err = c.finishCycle(ctx, serverTime); err != nil {
		c.setLastError(err)
		c.emitError(err)
		return err
	}

	c.emit(models.SyncEvent{Type: models.SyncEventCompleted, Sent: sent, Applied: applied, Conflicts: conflicts})
	c.logger.Info().
		Str("func", "Coordinator.runOnce").
		Int("sent", sent).
		Int("applied", applied).
		Int("conflicts", conflicts).
		Msg("sync cycle completed")

	return nil
}

func (c *Coordinator) uploadPending(ctx context.Context) (sent, conflicts int, err error) {
	batch, err := c.queue.DequeueBatch(ctx, c.opts.BatchSize)
	if err != nil {
		return 0, 0, err
	}

	for i, entry := range batch {
		conflict, sendErr := c.sendMutation(ctx, entry)
		if sendErr != nil {
			// entries this cycle never reached stay untouched
			for _, rest := range batch[i+1:] {
				if relErr := c.queue.Release(ctx, rest.IdempotencyKey); relErr != nil {
					c.logger.Err(relErr).Str("func", "Coordinator.uploadPending").Str("key", rest.IdempotencyKey).Msg("error releasing unsent entry")
				}
			}
			return sent, conflicts, sendErr
		}

		if conflict {
			conflicts++
		} else {
			sent++
		}
		c.emit(models.SyncEvent{Type: models.SyncEventProgress, Sent: sent, Conflicts: conflicts})
	}

	return sent, conflicts, nil
}

// sendMutation uploads one entry and settles its outcome: ack, conflict
// policy, or requeue with backoff.
func (c *Coordinator) sendMutation(ctx context.Context, entry models.QueueEntry) (conflict bool, err error) {
	msg, err := models.NewMessage(models.MessageMutation, models.MutationPayload{
		IdempotencyKey: entry.IdempotencyKey,
		EntityType:     entry.EntityType,
		EntityID:       entry.EntityID,
		Operation:      entry.Operation,
		Data:           entry.Payload,
		BaseVersion:    entry.BaseVersion,
	})
	if err != nil {
		return false, err
	}

	if err = c.transport.Send(ctx, msg); err != nil {
		c.requeueWithBackoff(ctx, entry)
		return false, errors.Join(ErrTransport, err)
	}

	ack, err := c.awaitAck(ctx, entry.IdempotencyKey)
	if err != nil {
		c.requeueWithBackoff(ctx, entry)
		return false, err
	}

	if ack.Accepted {
		if err = c.queue.Ack(ctx, entry.IdempotencyKey); err != nil {
			return false, err
		}
		return false, c.records.MarkSynced(ctx, entry.EntityType, entry.EntityID, ack.NewVersion)
	}

	return true, c.resolver.ResolveRejected(ctx, entry, ack)
}

// awaitAck waits for the matching mutation_ack, buffering any server changes
// that arrive in between.
func (c *Coordinator) awaitAck(ctx context.Context, idempotencyKey string) (models.MutationAckPayload, error) {
	timer := time.NewTimer(c.opts.AckTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return models.MutationAckPayload{}, ctx.Err()
		case <-timer.C:
			return models.MutationAckPayload{}, fmt.Errorf("%w: %s", ErrAckTimeout, idempotencyKey)
		case msg, ok := <-c.transport.Inbound():
			if !ok {
				return models.MutationAckPayload{}, ErrTransport
			}

			switch msg.Type {
			case models.MessageMutationAck:
				var ack models.MutationAckPayload
				if err := msg.DecodePayload(&ack); err != nil {
					return models.MutationAckPayload{}, err
				}
				if ack.IdempotencyKey != idempotencyKey {
					c.logger.Warn().Str("func", "Coordinator.awaitAck").Str("key", ack.IdempotencyKey).Msg("dropping ack for unexpected key")
					continue
				}
				return ack, nil
			case models.MessageServerChange:
				var change models.ServerChangePayload
				if err := msg.DecodePayload(&change); err == nil {
					c.buffered = append(c.buffered, change)
				}
			case models.MessageError:
				c.logServerError(msg)
			}
		}
	}
}

func (c *Coordinator) downloadChanges(ctx context.Context, sent, conflictsSoFar int) (applied, conflicts int, serverTime time.Time, err error) {
	meta, err := c.metadata.Get(ctx)
	if err != nil {
		return 0, 0, time.Time{}, err
	}

	request, err := models.NewMessage(models.MessageSyncRequest, models.SyncRequestPayload{Since: meta.LastSyncTime})
	if err != nil {
		return 0, 0, time.Time{}, err
	}
	if err = c.transport.Send(ctx, request); err != nil {
		return 0, 0, time.Time{}, errors.Join(ErrTransport, err)
	}

	// changes that arrived interleaved with acks are handled first
	for _, change := range c.buffered {
		routed, applyErr := c.resolver.ApplyServerChange(ctx, change)
		if applyErr != nil {
			return applied, conflicts, time.Time{}, applyErr
		}
		if routed {
			conflicts++
		} else {
			applied++
		}
	}
	c.buffered = nil

	timer := time.NewTimer(c.opts.SyncResponseTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return applied, conflicts, time.Time{}, ctx.Err()
		case <-timer.C:
			return applied, conflicts, time.Time{}, ErrSyncResponseTimeout
		case msg, ok := <-c.transport.Inbound():
			if !ok {
				return applied, conflicts, time.Time{}, ErrTransport
			}

			switch msg.Type {
			case models.MessageServerChange:
				var change models.ServerChangePayload
				if err = msg.DecodePayload(&change); err != nil {
					return applied, conflicts, time.Time{}, err
				}
				routed, applyErr := c.resolver.ApplyServerChange(ctx, change)
				if applyErr != nil {
					return applied, conflicts, time.Time{}, applyErr
				}
				if routed {
					conflicts++
				} else {
					applied++
				}
				c.emit(models.SyncEvent{Type: models.SyncEventProgress, Sent: sent, Applied: applied, Conflicts: conflictsSoFar + conflicts})

				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(c.opts.SyncResponseTimeout)
			case models.MessageSyncRequest:
				// the server terminates its change stream with a done marker
				var done models.SyncDonePayload
				if err = msg.DecodePayload(&done); err != nil {
					return applied, conflicts, time.Time{}, err
				}
				return applied, conflicts, done.ServerTime, nil
			case models.MessageError:
				c.logServerError(msg)
			}
		}
	}
}

func (c *Coordinator) finishCycle(ctx context.Context, serverTime time.Time) error {
	depth, err := c.queue.Depth(ctx)
	if err != nil {
		return err
	}

	meta, err := c.metadata.Get(ctx)
	if err != nil {
		return err
	}

	if serverTime.IsZero() {
		serverTime = time.Now().UTC()
	}

	meta.LastSyncTime = serverTime
	meta.SyncVersionCounter++
	meta.PendingCount = int(depth)

	return c.metadata.Update(ctx, meta)
}

func (c *Coordinator) requeueWithBackoff(ctx context.Context, entry models.QueueEntry) {
	updated, err := c.queue.Requeue(ctx, entry.IdempotencyKey, retryDelay(entry.RetryCount), c.opts.MaxRetries)
	if err != nil {
		c.logger.Err(err).Str("func", "Coordinator.requeueWithBackoff").Str("key", entry.IdempotencyKey).Msg("error requeueing entry")
		return
	}

	if updated.Status == models.QueueEntryFailed {
		err = fmt.Errorf("%w: %s after %d attempts", ErrQueueExhausted, entry.IdempotencyKey, updated.RetryCount)
		c.setLastError(err)
		c.logger.Error().Str("func", "Coordinator.requeueWithBackoff").Str("key", entry.IdempotencyKey).Int("retries", updated.RetryCount).Msg("entry exceeded retry budget")
	}
}

// retryDelay doubles per attempt from the base, capped.
func retryDelay(retryCount int) time.Duration {
	delay := retryBaseDelay
	for i := 0; i < retryCount && delay < retryMaxDelay; i++ {
		delay *= 2
	}
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

func (c *Coordinator) emit(event models.SyncEvent) {
	event.At = time.Now().UTC()

	// a slow or absent consumer never stalls the cycle
	select {
	case c.events <- event:
	default:
	}
}

func (c *Coordinator) emitError(err error) {
	c.emit(models.SyncEvent{Type: models.SyncEventError, Err: err})
}

func (c *Coordinator) setLastError(err error) {
	c.mu.Lock()
	c.lastError = err.Error()
	c.mu.Unlock()
}

func (c *Coordinator) logServerError(msg models.Message) {
	var payload models.ErrorPayload
	if err := msg.DecodePayload(&payload); err != nil {
		return
	}
	c.logger.Warn().
		Str("func", "Coordinator.logServerError").
		Str("code", payload.Code).
		Str("message", payload.Message).
		Msg("server reported protocol error")
}
