package memory

import (
	"context"
	"sort"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

// ledgerTx stages writes for one atomic block. Reads see staged writes
// first, then the base maps. The parent's write lock is held for the
// lifetime of the tx, so base state cannot move underneath it.
type ledgerTx struct {
	l *Ledger

	config    *domain.TokenConfig
	stats     *domain.GlobalStats
	counters  map[string]*domain.StakeCounter
	positions map[positionKey]*domain.StakePosition
	deleted   map[positionKey]bool
	accounts  map[string]*domain.TokenAccount
	claims    map[string]*domain.UserClaim
	metadata  map[string]*domain.TokenMetadata
}

func newTx(l *Ledger) *ledgerTx {
	return &ledgerTx{
		l:         l,
		counters:  make(map[string]*domain.StakeCounter),
		positions: make(map[positionKey]*domain.StakePosition),
		deleted:   make(map[positionKey]bool),
		accounts:  make(map[string]*domain.TokenAccount),
		claims:    make(map[string]*domain.UserClaim),
		metadata:  make(map[string]*domain.TokenMetadata),
	}
}

// Compile-time interface check.
var _ storage.LedgerTx = (*ledgerTx)(nil)

func (tx *ledgerTx) GetConfig(ctx context.Context) (*domain.TokenConfig, error) {
	if tx.config != nil {
		copy := *tx.config
		return &copy, nil
	}
	return tx.l.readConfig()
}

func (tx *ledgerTx) GetStats(ctx context.Context) (*domain.GlobalStats, error) {
	if tx.stats != nil {
		copy := *tx.stats
		return &copy, nil
	}
	return tx.l.readStats()
}

func (tx *ledgerTx) GetCounter(ctx context.Context, owner string) (*domain.StakeCounter, error) {
	if c, ok := tx.counters[owner]; ok {
		copy := *c
		return &copy, nil
	}
	return tx.l.readCounter(owner)
}

func (tx *ledgerTx) GetPosition(ctx context.Context, owner string, index uint64) (*domain.StakePosition, error) {
	key := positionKey{owner, index}
	if tx.deleted[key] {
		return nil, storage.ErrNotFound
	}
	if p, ok := tx.positions[key]; ok {
		copy := *p
		return &copy, nil
	}
	return tx.l.readPosition(owner, index)
}

func (tx *ledgerTx) ListPositionsByOwner(ctx context.Context, owner string) ([]*domain.StakePosition, error) {
	// The parent's write lock is already held; read base maps directly.
	seen := make(map[positionKey]bool)
	var result []*domain.StakePosition

	for key, p := range tx.positions {
		if key.owner != owner {
			continue
		}
		copy := *p
		result = append(result, &copy)
		seen[key] = true
	}
	for key, p := range tx.l.positions {
		if key.owner != owner || seen[key] || tx.deleted[key] {
			continue
		}
		copy := *p
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StakeIndex < result[j].StakeIndex
	})
	return result, nil
}

func (tx *ledgerTx) GetAccount(ctx context.Context, address string) (*domain.TokenAccount, error) {
	if a, ok := tx.accounts[address]; ok {
		copy := *a
		if a.Delegate != nil {
			d := *a.Delegate
			copy.Delegate = &d
		}
		return &copy, nil
	}
	return tx.l.readAccount(address)
}

func (tx *ledgerTx) GetClaim(ctx context.Context, owner string) (*domain.UserClaim, error) {
	if c, ok := tx.claims[owner]; ok {
		copy := *c
		return &copy, nil
	}
	return tx.l.readClaim(owner)
}

func (tx *ledgerTx) GetMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	if m, ok := tx.metadata[mint]; ok {
		copy := *m
		return &copy, nil
	}
	return tx.l.readMetadata(mint)
}

func (tx *ledgerTx) CreateConfig(ctx context.Context, c *domain.TokenConfig) error {
	if c == nil || c.Mint == "" {
		return storage.ErrInvalidInput
	}
	if tx.config != nil || tx.l.config != nil {
		return storage.ErrAlreadyInitialized
	}
	copy := *c
	tx.config = &copy
	return nil
}

func (tx *ledgerTx) PutStats(ctx context.Context, s *domain.GlobalStats) error {
	if s == nil {
		return storage.ErrInvalidInput
	}
	copy := *s
	tx.stats = &copy
	return nil
}

func (tx *ledgerTx) PutCounter(ctx context.Context, c *domain.StakeCounter) error {
	if c == nil || c.Owner == "" {
		return storage.ErrInvalidInput
	}
	copy := *c
	tx.counters[c.Owner] = &copy
	return nil
}

func (tx *ledgerTx) CreatePosition(ctx context.Context, p *domain.StakePosition) error {
	if p == nil || p.Owner == "" {
		return storage.ErrInvalidInput
	}
	key := positionKey{p.Owner, p.StakeIndex}
	if !tx.deleted[key] {
		if _, ok := tx.positions[key]; ok {
			return storage.ErrDuplicateKey
		}
		if _, ok := tx.l.positions[key]; ok {
			return storage.ErrDuplicateKey
		}
	}
	delete(tx.deleted, key)
	copy := *p
	tx.positions[key] = &copy
	return nil
}

func (tx *ledgerTx) DeletePosition(ctx context.Context, owner string, index uint64) error {
	key := positionKey{owner, index}
	if tx.deleted[key] {
		return storage.ErrNotFound
	}
	_, staged := tx.positions[key]
	_, base := tx.l.positions[key]
	if !staged && !base {
		return storage.ErrNotFound
	}
	delete(tx.positions, key)
	tx.deleted[key] = true
	return nil
}

func (tx *ledgerTx) CreateAccount(ctx context.Context, a *domain.TokenAccount) error {
	if a == nil || a.Address == "" {
		return storage.ErrInvalidInput
	}
	if _, ok := tx.accounts[a.Address]; ok {
		return storage.ErrDuplicateKey
	}
	if _, ok := tx.l.accounts[a.Address]; ok {
		return storage.ErrDuplicateKey
	}
	tx.stageAccount(a)
	return nil
}

func (tx *ledgerTx) PutAccount(ctx context.Context, a *domain.TokenAccount) error {
	if a == nil || a.Address == "" {
		return storage.ErrInvalidInput
	}
	_, staged := tx.accounts[a.Address]
	_, base := tx.l.accounts[a.Address]
	if !staged && !base {
		return storage.ErrNotFound
	}
	tx.stageAccount(a)
	return nil
}

func (tx *ledgerTx) PutClaim(ctx context.Context, c *domain.UserClaim) error {
	if c == nil || c.Owner == "" {
		return storage.ErrInvalidInput
	}
	copy := *c
	tx.claims[c.Owner] = &copy
	return nil
}

func (tx *ledgerTx) CreateMetadata(ctx context.Context, m *domain.TokenMetadata) error {
	if m == nil || m.Mint == "" {
		return storage.ErrInvalidInput
	}
	if _, ok := tx.metadata[m.Mint]; ok {
		return storage.ErrDuplicateKey
	}
	if _, ok := tx.l.metadata[m.Mint]; ok {
		return storage.ErrDuplicateKey
	}
	copy := *m
	tx.metadata[m.Mint] = &copy
	return nil
}

func (tx *ledgerTx) stageAccount(a *domain.TokenAccount) {
	copy := *a
	if a.Delegate != nil {
		d := *a.Delegate
		copy.Delegate = &d
	}
	tx.accounts[a.Address] = &copy
}

// commit merges staged writes into the base maps. Caller holds the
// write lock.
func (tx *ledgerTx) commit() {
	if tx.config != nil {
		tx.l.config = tx.config
	}
	if tx.stats != nil {
		tx.l.stats = tx.stats
	}
	for owner, c := range tx.counters {
		tx.l.counters[owner] = c
	}
	for key := range tx.deleted {
		delete(tx.l.positions, key)
	}
	for key, p := range tx.positions {
		tx.l.positions[key] = p
	}
	for addr, a := range tx.accounts {
		tx.l.accounts[addr] = a
	}
	for owner, c := range tx.claims {
		tx.l.claims[owner] = c
	}
	for mint, m := range tx.metadata {
		tx.l.metadata[mint] = m
	}
}
