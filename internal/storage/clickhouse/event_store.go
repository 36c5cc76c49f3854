package clickhouse

import (
	"context"
	"fmt"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse. Events are
// append-only; duplicates are never rejected at the storage level.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// InsertStakeEvent appends a stake event to the audit trail.
func (s *EventStore) InsertStakeEvent(ctx context.Context, event *domain.StakeEvent) error {
	if event == nil || event.User == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO stake_events (
			user, stake_index, staked_amount, lock_duration, apy_numerator, apy_denominator, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		event.User,
		event.StakeIndex,
		event.StakedAmount,
		event.LockDuration,
		event.APYNumerator,
		event.APYDenominator,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// InsertUnstakeEvent appends an unstake event to the audit trail.
func (s *EventStore) InsertUnstakeEvent(ctx context.Context, event *domain.UnstakeEvent) error {
	if event == nil || event.User == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO unstake_events (
			user, stake_index, principal, rewards, total_withdrawn, lock_duration, apy_numerator, apy_denominator, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		event.User,
		event.StakeIndex,
		event.Principal,
		event.Rewards,
		event.TotalWithdrawn,
		event.LockDuration,
		event.APYNumerator,
		event.APYDenominator,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetStakeEventsByUser retrieves all stake events for a user, ordered by
// timestamp ASC.
func (s *EventStore) GetStakeEventsByUser(ctx context.Context, user string) ([]*domain.StakeEvent, error) {
	query := `
		SELECT user, stake_index, staked_amount, lock_duration, apy_numerator, apy_denominator, timestamp
		FROM stake_events
		WHERE user = ?
		ORDER BY timestamp ASC, stake_index ASC
	`

	rows, err := s.conn.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("query stake events: %w", err)
	}
	defer rows.Close()

	var events []*domain.StakeEvent
	for rows.Next() {
		var e domain.StakeEvent
		err := rows.Scan(
			&e.User,
			&e.StakeIndex,
			&e.StakedAmount,
			&e.LockDuration,
			&e.APYNumerator,
			&e.APYDenominator,
			&e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stake event row: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stake event rows: %w", err)
	}
	return events, nil
}

// GetUnstakeEventsByUser retrieves all unstake events for a user,
// ordered by timestamp ASC.
func (s *EventStore) GetUnstakeEventsByUser(ctx context.Context, user string) ([]*domain.UnstakeEvent, error) {
	query := `
		SELECT user, stake_index, principal, rewards, total_withdrawn, lock_duration, apy_numerator, apy_denominator, timestamp
		FROM unstake_events
		WHERE user = ?
		ORDER BY timestamp ASC, stake_index ASC
	`

	rows, err := s.conn.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("query unstake events: %w", err)
	}
	defer rows.Close()

	var events []*domain.UnstakeEvent
	for rows.Next() {
		var e domain.UnstakeEvent
		err := rows.Scan(
			&e.User,
			&e.StakeIndex,
			&e.Principal,
			&e.Rewards,
			&e.TotalWithdrawn,
			&e.LockDuration,
			&e.APYNumerator,
			&e.APYDenominator,
			&e.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan unstake event row: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unstake event rows: %w", err)
	}
	return events, nil
}
