package staking

import (
	"context"
	"log"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

// EventSink receives ledger events after the operation that produced
// them has committed. Sinks are informational: a sink failure never
// affects ledger state.
type EventSink interface {
	PublishStake(ctx context.Context, e *domain.StakeEvent)
	PublishUnstake(ctx context.Context, e *domain.UnstakeEvent)
}

// MultiSink fans events out to several sinks in order.
type MultiSink []EventSink

// PublishStake forwards the event to every sink.
func (m MultiSink) PublishStake(ctx context.Context, e *domain.StakeEvent) {
	for _, s := range m {
		s.PublishStake(ctx, e)
	}
}

// PublishUnstake forwards the event to every sink.
func (m MultiSink) PublishUnstake(ctx context.Context, e *domain.UnstakeEvent) {
	for _, s := range m {
		s.PublishUnstake(ctx, e)
	}
}

// AuditSink persists events to an append-only event store. Insert
// failures are logged and dropped; the authoritative state already
// committed.
type AuditSink struct {
	store  storage.EventStore
	logger *log.Logger
}

// NewAuditSink creates an audit sink over the given event store.
func NewAuditSink(store storage.EventStore, logger *log.Logger) *AuditSink {
	return &AuditSink{store: store, logger: logger}
}

// PublishStake appends the stake event to the audit store.
func (a *AuditSink) PublishStake(ctx context.Context, e *domain.StakeEvent) {
	if err := a.store.InsertStakeEvent(ctx, e); err != nil && a.logger != nil {
		a.logger.Printf("audit: insert stake event for %s: %v", e.User, err)
	}
}

// PublishUnstake appends the unstake event to the audit store.
func (a *AuditSink) PublishUnstake(ctx context.Context, e *domain.UnstakeEvent) {
	if err := a.store.InsertUnstakeEvent(ctx, e); err != nil && a.logger != nil {
		a.logger.Printf("audit: insert unstake event for %s: %v", e.User, err)
	}
}
