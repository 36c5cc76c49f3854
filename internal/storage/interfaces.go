package storage

import (
	"context"

	"devrewards-ledger/internal/domain"
)

// Reader provides read access to all ledger records.
type Reader interface {
	// GetConfig retrieves the singleton config. Returns ErrNotFound if the
	// platform has not been initialized.
	GetConfig(ctx context.Context) (*domain.TokenConfig, error)

	// GetStats retrieves the singleton global statistics record.
	GetStats(ctx context.Context) (*domain.GlobalStats, error)

	// GetCounter retrieves the stake counter for an owner.
	// Returns ErrNotFound if the owner has never staked.
	GetCounter(ctx context.Context, owner string) (*domain.StakeCounter, error)

	// GetPosition retrieves one stake position. Returns ErrNotFound if no
	// position exists for (owner, index).
	GetPosition(ctx context.Context, owner string, index uint64) (*domain.StakePosition, error)

	// ListPositionsByOwner retrieves all open positions for an owner,
	// ordered by stake index ASC.
	ListPositionsByOwner(ctx context.Context, owner string) ([]*domain.StakePosition, error)

	// GetAccount retrieves a token account by address. Returns ErrNotFound
	// if it does not exist.
	GetAccount(ctx context.Context, address string) (*domain.TokenAccount, error)

	// GetClaim retrieves faucet claim state for an owner.
	// Returns ErrNotFound if the owner has never claimed.
	GetClaim(ctx context.Context, owner string) (*domain.UserClaim, error)

	// GetMetadata retrieves registered metadata for a mint.
	// Returns ErrNotFound if none has been registered.
	GetMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, error)
}

// LedgerTx is the mutable view inside an atomic block. Writes are only
// visible outside the block once it returns nil.
type LedgerTx interface {
	Reader

	// CreateConfig persists the singleton config.
	// Returns ErrAlreadyInitialized if it already exists.
	CreateConfig(ctx context.Context, c *domain.TokenConfig) error

	// PutStats replaces the global statistics record, creating it if absent.
	PutStats(ctx context.Context, s *domain.GlobalStats) error

	// PutCounter replaces an owner's stake counter, creating it if absent.
	PutCounter(ctx context.Context, c *domain.StakeCounter) error

	// CreatePosition persists a new position.
	// Returns ErrDuplicateKey if (owner, index) already exists.
	CreatePosition(ctx context.Context, p *domain.StakePosition) error

	// DeletePosition removes a position. Returns ErrNotFound if no
	// position exists for (owner, index).
	DeletePosition(ctx context.Context, owner string, index uint64) error

	// CreateAccount persists a new token account.
	// Returns ErrDuplicateKey if the address already exists.
	CreateAccount(ctx context.Context, a *domain.TokenAccount) error

	// PutAccount replaces an existing token account.
	// Returns ErrNotFound if it does not exist.
	PutAccount(ctx context.Context, a *domain.TokenAccount) error

	// PutClaim replaces an owner's claim record, creating it if absent.
	PutClaim(ctx context.Context, c *domain.UserClaim) error

	// CreateMetadata persists metadata for a mint.
	// Returns ErrDuplicateKey if metadata is already registered.
	CreateMetadata(ctx context.Context, m *domain.TokenMetadata) error
}

// Ledger is the persistent record store backing the staking ledger.
// Atomically runs fn inside a single serializable transaction: either
// every write in the block is persisted, or none is.
type Ledger interface {
	Reader

	Atomically(ctx context.Context, fn func(tx LedgerTx) error) error
}

// EventStore is the append-only audit sink for emitted ledger events.
// It is observational and shares no invariants with the Ledger.
type EventStore interface {
	// InsertStakeEvent appends a stake event.
	InsertStakeEvent(ctx context.Context, e *domain.StakeEvent) error

	// InsertUnstakeEvent appends an unstake event.
	InsertUnstakeEvent(ctx context.Context, e *domain.UnstakeEvent) error

	// GetStakeEventsByUser retrieves stake events for a user, ordered by
	// timestamp ASC.
	GetStakeEventsByUser(ctx context.Context, user string) ([]*domain.StakeEvent, error)

	// GetUnstakeEventsByUser retrieves unstake events for a user, ordered
	// by timestamp ASC.
	GetUnstakeEventsByUser(ctx context.Context, user string) ([]*domain.UnstakeEvent, error)
}
