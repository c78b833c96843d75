// Copyright 2026 The go-stock-keeper Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-stock-keeper/internal/logger"
	"github.com/MKhiriev/go-stock-keeper/internal/store"
	"github.com/MKhiriev/go-stock-keeper/models"
)

// ConflictPolicy reconciles a local pending mutation with a competing server
// version. Policies are strategy values selected once at startup; the
// coordinator never inspects the policy name.
type ConflictPolicy interface {
	Name() string
	// OnServerChange handles an inbound server change that conflicts with
	// local pending state.
	OnServerChange(ctx context.Context, local models.Record, change models.ServerChangePayload) error
	// OnRejectedMutation handles a mutation the server rejected by its
	// optimistic version check.
	OnRejectedMutation(ctx context.Context, entry models.QueueEntry, ack models.MutationAckPayload) error
}

// PolicyForName maps a conflictResolution config value to its strategy.
func PolicyForName(name string, records store.LocalStore, queue store.MutationQueue, log *logger.Logger) (ConflictPolicy, error) {
	switch name {
	case "server":
		return &serverWinsPolicy{records: records, queue: queue, logger: log}, nil
	case "client":
		return &clientWinsPolicy{records: records, queue: queue, logger: log}, nil
	case "manual":
		return &manualPolicy{records: records, queue: queue, logger: log}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConflictPolicy, name)
	}
}

// serverWinsPolicy discards the local side: the queued mutation is dropped
// and the server payload overwrites the local row.
type serverWinsPolicy struct {
	records store.LocalStore
	queue   store.MutationQueue
	logger  *logger.Logger
}

func (p *serverWinsPolicy) Name() string { return "server" }

func (p *serverWinsPolicy) OnServerChange(ctx context.Context, local models.Record, change models.ServerChangePayload) error {
	if err := p.queue.Remove(ctx, change.EntityType, change.EntityID); err != nil {
		return err
	}
	return p.records.ApplyServerChange(ctx, change)
}

func (p *serverWinsPolicy) OnRejectedMutation(ctx context.Context, entry models.QueueEntry, ack models.MutationAckPayload) error {
	if err := p.queue.Ack(ctx, entry.IdempotencyKey); err != nil && !errors.Is(err, store.ErrQueueEntryNotFound) {
		return err
	}
	// coalesced follow-up edits lose as well
	if err := p.queue.Remove(ctx, entry.EntityType, entry.EntityID); err != nil {
		return err
	}

	p.logger.Info().
		Str("func", "serverWinsPolicy.OnRejectedMutation").
		Str("key", entry.IdempotencyKey).
		Msg("local mutation dropped, server version applied")

	return p.records.ApplyServerChange(ctx, models.ServerChangePayload{
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Data:       ack.ConflictingServerData,
		Version:    ack.ConflictingServerVersion,
	})
}

// clientWinsPolicy keeps the local side: inbound conflicting changes are not
// applied, and a rejected mutation is rebased onto the server's version so
// the next upload wins the optimistic check.
type clientWinsPolicy struct {
	records store.LocalStore
	queue   store.MutationQueue
	logger  *logger.Logger
}

func (p *clientWinsPolicy) Name() string { return "client" }

func (p *clientWinsPolicy) OnServerChange(ctx context.Context, local models.Record, change models.ServerChangePayload) error {
	// the record stays pending and is resent next cycle
	p.logger.Debug().
		Str("func", "clientWinsPolicy.OnServerChange").
		Str("entity_type", change.EntityType).
		Str("entity_id", change.EntityID).
		Msg("ignoring conflicting server change")
	return nil
}

func (p *clientWinsPolicy) OnRejectedMutation(ctx context.Context, entry models.QueueEntry, ack models.MutationAckPayload) error {
	if err := p.queue.Ack(ctx, entry.IdempotencyKey); err != nil && !errors.Is(err, store.ErrQueueEntryNotFound) {
		return err
	}

	if entry.Operation == models.OperationDelete {
		seq, err := p.queue.NextMutationSeq(ctx)
		if err != nil {
			return err
		}
		rebased := entry
		rebased.BaseVersion = ack.ConflictingServerVersion
		rebased.IdempotencyKey = models.MakeIdempotencyKey(entry.EntityType, entry.EntityID, seq)
		rebased.RetryCount = 0
		rebased.Status = models.QueueEntryReady
		return p.queue.Enqueue(ctx, rebased)
	}

	// the conflict machinery rebases the local payload: mark, then resolve
	// in favour of the local bytes, which re-enqueues against the server's
	// current version
	if err := p.records.MarkConflict(ctx, entry.EntityType, entry.EntityID, ack.ConflictingServerData, ack.ConflictingServerVersion); err != nil {
		return err
	}
	_, err := p.records.ResolveConflict(ctx, entry.EntityType, entry.EntityID, entry.Payload)

	return err
}

// manualPolicy applies neither side destructively: the record is flagged and
// both payloads stay retrievable until an explicit ResolveConflict call.
type manualPolicy struct {
	records store.LocalStore
	queue   store.MutationQueue
	logger  *logger.Logger
}

func (p *manualPolicy) Name() string { return "manual" }

func (p *manualPolicy) OnServerChange(ctx context.Context, local models.Record, change models.ServerChangePayload) error {
	if err := p.queue.Remove(ctx, change.EntityType, change.EntityID); err != nil {
		return err
	}
	return p.records.MarkConflict(ctx, change.EntityType, change.EntityID, []byte(change.Data), change.Version)
}

func (p *manualPolicy) OnRejectedMutation(ctx context.Context, entry models.QueueEntry, ack models.MutationAckPayload) error {
	if err := p.queue.Ack(ctx, entry.IdempotencyKey); err != nil && !errors.Is(err, store.ErrQueueEntryNotFound) {
		return err
	}
	return p.records.MarkConflict(ctx, entry.EntityType, entry.EntityID, ack.ConflictingServerData, ack.ConflictingServerVersion)
}

// Resolver routes inbound server changes: non-conflicting ones apply
// directly, conflicting ones go through the configured policy.
type Resolver struct {
	records store.LocalStore
	policy  ConflictPolicy
	logger  *logger.Logger
}

func NewResolver(records store.LocalStore, policy ConflictPolicy, log *logger.Logger) *Resolver {
	return &Resolver{records: records, policy: policy, logger: log}
}

// ApplyServerChange returns true when the change was routed through the
// conflict policy rather than applied directly.
func (r *Resolver) ApplyServerChange(ctx context.Context, change models.ServerChangePayload) (bool, error) {
	local, err := r.records.Get(ctx, change.EntityType, change.EntityID)
	if errors.Is(err, store.ErrRecordNotFound) {
		return false, r.records.ApplyServerChange(ctx, change)
	}
	if err != nil {
		return false, err
	}

	var lastAcked int64
	if local.LastServerVersion != nil {
		lastAcked = *local.LastServerVersion
	}

	// a change we already acknowledged carries no new information
	if change.Version <= lastAcked {
		return false, nil
	}

	// both sides changed the same logical version independently
	if local.Version > lastAcked {
		return true, r.policy.OnServerChange(ctx, local, change)
	}

	return false, r.records.ApplyServerChange(ctx, change)
}

// ResolveRejected routes a server-rejected mutation through the policy.
func (r *Resolver) ResolveRejected(ctx context.Context, entry models.QueueEntry, ack models.MutationAckPayload) error {
	return r.policy.OnRejectedMutation(ctx, entry, ack)
}
