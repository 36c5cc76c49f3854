package memory

import (
	"context"
	"sort"
	"sync"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu       sync.RWMutex
	stakes   []*domain.StakeEvent
	unstakes []*domain.UnstakeEvent
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// InsertStakeEvent appends a stake event.
func (s *EventStore) InsertStakeEvent(_ context.Context, e *domain.StakeEvent) error {
	if e == nil || e.User == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	s.stakes = append(s.stakes, &copy)
	return nil
}

// InsertUnstakeEvent appends an unstake event.
func (s *EventStore) InsertUnstakeEvent(_ context.Context, e *domain.UnstakeEvent) error {
	if e == nil || e.User == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	s.unstakes = append(s.unstakes, &copy)
	return nil
}

// GetStakeEventsByUser retrieves stake events for a user, ordered by
// timestamp ASC.
func (s *EventStore) GetStakeEventsByUser(_ context.Context, user string) ([]*domain.StakeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StakeEvent
	for _, e := range s.stakes {
		if e.User == user {
			copy := *e
			result = append(result, &copy)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}

// GetUnstakeEventsByUser retrieves unstake events for a user, ordered by
// timestamp ASC.
func (s *EventStore) GetUnstakeEventsByUser(_ context.Context, user string) ([]*domain.UnstakeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.UnstakeEvent
	for _, e := range s.unstakes {
		if e.User == user {
			copy := *e
			result = append(result, &copy)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}
