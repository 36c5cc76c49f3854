// Package memory provides in-memory storage implementations, used by
// tests and by the server's --use-memory mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

type positionKey struct {
	owner string
	index uint64
}

// Ledger is an in-memory implementation of storage.Ledger. A single
// mutex serializes atomic blocks; writes are staged per block and only
// merged into the base maps when the block returns nil.
type Ledger struct {
	mu        sync.RWMutex
	config    *domain.TokenConfig
	stats     *domain.GlobalStats
	counters  map[string]*domain.StakeCounter
	positions map[positionKey]*domain.StakePosition
	accounts  map[string]*domain.TokenAccount
	claims    map[string]*domain.UserClaim
	metadata  map[string]*domain.TokenMetadata
}

// NewLedger creates a new in-memory ledger store.
func NewLedger() *Ledger {
	return &Ledger{
		counters:  make(map[string]*domain.StakeCounter),
		positions: make(map[positionKey]*domain.StakePosition),
		accounts:  make(map[string]*domain.TokenAccount),
		claims:    make(map[string]*domain.UserClaim),
		metadata:  make(map[string]*domain.TokenMetadata),
	}
}

// Compile-time interface check.
var _ storage.Ledger = (*Ledger)(nil)

// GetConfig retrieves the singleton config.
func (l *Ledger) GetConfig(ctx context.Context) (*domain.TokenConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readConfig()
}

// GetStats retrieves the singleton global statistics record.
func (l *Ledger) GetStats(ctx context.Context) (*domain.GlobalStats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readStats()
}

// GetCounter retrieves the stake counter for an owner.
func (l *Ledger) GetCounter(ctx context.Context, owner string) (*domain.StakeCounter, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readCounter(owner)
}

// GetPosition retrieves one stake position.
func (l *Ledger) GetPosition(ctx context.Context, owner string, index uint64) (*domain.StakePosition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readPosition(owner, index)
}

// ListPositionsByOwner retrieves all open positions for an owner,
// ordered by stake index ASC.
func (l *Ledger) ListPositionsByOwner(ctx context.Context, owner string) ([]*domain.StakePosition, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*domain.StakePosition
	for key, p := range l.positions {
		if key.owner == owner {
			copy := *p
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StakeIndex < result[j].StakeIndex
	})
	return result, nil
}

// GetAccount retrieves a token account by address.
func (l *Ledger) GetAccount(ctx context.Context, address string) (*domain.TokenAccount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readAccount(address)
}

// GetClaim retrieves faucet claim state for an owner.
func (l *Ledger) GetClaim(ctx context.Context, owner string) (*domain.UserClaim, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readClaim(owner)
}

// GetMetadata retrieves registered metadata for a mint.
func (l *Ledger) GetMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.readMetadata(mint)
}

// Atomically runs fn against a staged view and merges its writes only
// if fn returns nil. A failing block leaves the base state untouched.
func (l *Ledger) Atomically(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := newTx(l)
	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

// Base-map readers. Callers must hold at least the read lock.

func (l *Ledger) readConfig() (*domain.TokenConfig, error) {
	if l.config == nil {
		return nil, storage.ErrNotFound
	}
	copy := *l.config
	return &copy, nil
}

func (l *Ledger) readStats() (*domain.GlobalStats, error) {
	if l.stats == nil {
		return nil, storage.ErrNotFound
	}
	copy := *l.stats
	return &copy, nil
}

func (l *Ledger) readCounter(owner string) (*domain.StakeCounter, error) {
	c, ok := l.counters[owner]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (l *Ledger) readPosition(owner string, index uint64) (*domain.StakePosition, error) {
	p, ok := l.positions[positionKey{owner, index}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (l *Ledger) readAccount(address string) (*domain.TokenAccount, error) {
	a, ok := l.accounts[address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *a
	if a.Delegate != nil {
		d := *a.Delegate
		copy.Delegate = &d
	}
	return &copy, nil
}

func (l *Ledger) readClaim(owner string) (*domain.UserClaim, error) {
	c, ok := l.claims[owner]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (l *Ledger) readMetadata(mint string) (*domain.TokenMetadata, error) {
	m, ok := l.metadata[mint]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *m
	return &copy, nil
}
