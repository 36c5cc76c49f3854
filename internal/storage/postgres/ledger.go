package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

// maxTxRetries bounds retries of serializable transactions aborted by
// concurrent conflicts.
const maxTxRetries = 3

// Ledger implements storage.Ledger using PostgreSQL. State mutations go
// through serializable transactions; reads inside a transaction lock
// the rows they touch.
type Ledger struct {
	pool *Pool
}

// NewLedger creates a new Ledger backed by the given pool.
func NewLedger(pool *Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Compile-time interface check.
var _ storage.Ledger = (*Ledger)(nil)

// queryer is satisfied by both the pool and a pgx transaction.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Atomically runs fn inside a serializable transaction. The transaction
// commits only if fn returns nil; serialization conflicts are retried.
func (l *Ledger) Atomically(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = l.runTx(ctx, fn)
		if !isSerializationError(err) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (l *Ledger) runTx(ctx context.Context, fn func(tx storage.LedgerTx) error) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&ledgerTx{q: tx, forUpdate: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (l *Ledger) GetConfig(ctx context.Context) (*domain.TokenConfig, error) {
	return getConfig(ctx, l.pool, false)
}

func (l *Ledger) GetStats(ctx context.Context) (*domain.GlobalStats, error) {
	return getStats(ctx, l.pool, false)
}

func (l *Ledger) GetCounter(ctx context.Context, owner string) (*domain.StakeCounter, error) {
	return getCounter(ctx, l.pool, owner, false)
}

func (l *Ledger) GetPosition(ctx context.Context, owner string, index uint64) (*domain.StakePosition, error) {
	return getPosition(ctx, l.pool, owner, index, false)
}

func (l *Ledger) ListPositionsByOwner(ctx context.Context, owner string) ([]*domain.StakePosition, error) {
	return listPositionsByOwner(ctx, l.pool, owner)
}

func (l *Ledger) GetAccount(ctx context.Context, address string) (*domain.TokenAccount, error) {
	return getAccount(ctx, l.pool, address, false)
}

func (l *Ledger) GetClaim(ctx context.Context, owner string) (*domain.UserClaim, error) {
	return getClaim(ctx, l.pool, owner, false)
}

func (l *Ledger) GetMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	return getMetadata(ctx, l.pool, mint)
}

// ledgerTx implements storage.LedgerTx over a pgx transaction.
type ledgerTx struct {
	q         queryer
	forUpdate bool
}

var _ storage.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) GetConfig(ctx context.Context) (*domain.TokenConfig, error) {
	return getConfig(ctx, t.q, t.forUpdate)
}

func (t *ledgerTx) GetStats(ctx context.Context) (*domain.GlobalStats, error) {
	return getStats(ctx, t.q, t.forUpdate)
}

func (t *ledgerTx) GetCounter(ctx context.Context, owner string) (*domain.StakeCounter, error) {
	return getCounter(ctx, t.q, owner, t.forUpdate)
}

func (t *ledgerTx) GetPosition(ctx context.Context, owner string, index uint64) (*domain.StakePosition, error) {
	return getPosition(ctx, t.q, owner, index, t.forUpdate)
}

func (t *ledgerTx) ListPositionsByOwner(ctx context.Context, owner string) ([]*domain.StakePosition, error) {
	return listPositionsByOwner(ctx, t.q, owner)
}

func (t *ledgerTx) GetAccount(ctx context.Context, address string) (*domain.TokenAccount, error) {
	return getAccount(ctx, t.q, address, t.forUpdate)
}

func (t *ledgerTx) GetClaim(ctx context.Context, owner string) (*domain.UserClaim, error) {
	return getClaim(ctx, t.q, owner, t.forUpdate)
}

func (t *ledgerTx) GetMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	return getMetadata(ctx, t.q, mint)
}

// CreateConfig inserts the singleton config row. Returns
// ErrAlreadyInitialized if one exists.
func (t *ledgerTx) CreateConfig(ctx context.Context, cfg *domain.TokenConfig) error {
	query := `
		INSERT INTO token_config (
			id, mint, mint_authority, vault, vault_authority, admin, daily_claim_amount, created_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.q.Exec(ctx, query,
		cfg.Mint,
		cfg.MintAuthority,
		cfg.Vault,
		cfg.VaultAuthority,
		cfg.Admin,
		cfg.DailyClaimAmount,
		cfg.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrAlreadyInitialized
		}
		return fmt.Errorf("insert token config: %w", err)
	}
	return nil
}

// PutStats upserts the singleton stats row.
func (t *ledgerTx) PutStats(ctx context.Context, stats *domain.GlobalStats) error {
	query := `
		INSERT INTO global_stats (id, total_staked, total_stakes, total_rewards_paid, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			total_staked = EXCLUDED.total_staked,
			total_stakes = EXCLUDED.total_stakes,
			total_rewards_paid = EXCLUDED.total_rewards_paid,
			updated_at = EXCLUDED.updated_at
	`

	_, err := t.q.Exec(ctx, query,
		stats.TotalStaked,
		stats.TotalStakes,
		stats.TotalRewardsPaid,
		stats.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert global stats: %w", err)
	}
	return nil
}

// PutCounter upserts a per-owner stake counter.
func (t *ledgerTx) PutCounter(ctx context.Context, counter *domain.StakeCounter) error {
	query := `
		INSERT INTO stake_counters (owner, stake_count)
		VALUES ($1, $2)
		ON CONFLICT (owner) DO UPDATE SET stake_count = EXCLUDED.stake_count
	`

	_, err := t.q.Exec(ctx, query, counter.Owner, counter.StakeCount)
	if err != nil {
		return fmt.Errorf("upsert stake counter: %w", err)
	}
	return nil
}

// CreatePosition inserts a stake position. Returns ErrDuplicateKey if
// (owner, stake_index) exists.
func (t *ledgerTx) CreatePosition(ctx context.Context, pos *domain.StakePosition) error {
	query := `
		INSERT INTO stake_positions (owner, stake_index, staked_amount, staked_at, lock_duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.q.Exec(ctx, query,
		pos.Owner,
		pos.StakeIndex,
		pos.StakedAmount,
		pos.StakedAt,
		pos.LockDuration,
		pos.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert stake position: %w", err)
	}
	return nil
}

// DeletePosition removes a closed position. Returns ErrNotFound if it
// does not exist.
func (t *ledgerTx) DeletePosition(ctx context.Context, owner string, index uint64) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM stake_positions WHERE owner = $1 AND stake_index = $2`, owner, index)
	if err != nil {
		return fmt.Errorf("delete stake position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateAccount inserts a token account. Returns ErrDuplicateKey if the
// address exists.
func (t *ledgerTx) CreateAccount(ctx context.Context, acct *domain.TokenAccount) error {
	query := `
		INSERT INTO token_accounts (address, mint, owner, amount, delegate, delegated_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.q.Exec(ctx, query,
		acct.Address,
		acct.Mint,
		acct.Owner,
		acct.Amount,
		acct.Delegate,
		acct.DelegatedAmount,
		acct.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token account: %w", err)
	}
	return nil
}

// PutAccount updates an existing token account. Returns ErrNotFound if
// the address does not exist.
func (t *ledgerTx) PutAccount(ctx context.Context, acct *domain.TokenAccount) error {
	query := `
		UPDATE token_accounts
		SET amount = $2, delegate = $3, delegated_amount = $4
		WHERE address = $1
	`

	tag, err := t.q.Exec(ctx, query, acct.Address, acct.Amount, acct.Delegate, acct.DelegatedAmount)
	if err != nil {
		return fmt.Errorf("update token account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// PutClaim upserts a per-owner faucet claim record.
func (t *ledgerTx) PutClaim(ctx context.Context, claim *domain.UserClaim) error {
	query := `
		INSERT INTO user_claims (owner, last_claim_time, total_claimed)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner) DO UPDATE SET
			last_claim_time = EXCLUDED.last_claim_time,
			total_claimed = EXCLUDED.total_claimed
	`

	_, err := t.q.Exec(ctx, query, claim.Owner, claim.LastClaimTime, claim.TotalClaimed)
	if err != nil {
		return fmt.Errorf("upsert user claim: %w", err)
	}
	return nil
}

// CreateMetadata inserts token metadata. Returns ErrDuplicateKey if the
// mint already has metadata.
func (t *ledgerTx) CreateMetadata(ctx context.Context, md *domain.TokenMetadata) error {
	query := `
		INSERT INTO token_metadata (mint, name, symbol, uri, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := t.q.Exec(ctx, query, md.Mint, md.Name, md.Symbol, md.URI, md.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token metadata: %w", err)
	}
	return nil
}

// lockSuffix appends row locking to transactional reads so serializable
// transactions conflict early instead of at commit.
func lockSuffix(forUpdate bool) string {
	if forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

func getConfig(ctx context.Context, q queryer, forUpdate bool) (*domain.TokenConfig, error) {
	query := `
		SELECT mint, mint_authority, vault, vault_authority, admin, daily_claim_amount, created_at
		FROM token_config
		WHERE id = 1
	` + lockSuffix(forUpdate)

	var cfg domain.TokenConfig
	err := q.QueryRow(ctx, query).Scan(
		&cfg.Mint,
		&cfg.MintAuthority,
		&cfg.Vault,
		&cfg.VaultAuthority,
		&cfg.Admin,
		&cfg.DailyClaimAmount,
		&cfg.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token config: %w", err)
	}
	return &cfg, nil
}

func getStats(ctx context.Context, q queryer, forUpdate bool) (*domain.GlobalStats, error) {
	query := `
		SELECT total_staked, total_stakes, total_rewards_paid, updated_at
		FROM global_stats
		WHERE id = 1
	` + lockSuffix(forUpdate)

	var stats domain.GlobalStats
	err := q.QueryRow(ctx, query).Scan(
		&stats.TotalStaked,
		&stats.TotalStakes,
		&stats.TotalRewardsPaid,
		&stats.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get global stats: %w", err)
	}
	return &stats, nil
}

func getCounter(ctx context.Context, q queryer, owner string, forUpdate bool) (*domain.StakeCounter, error) {
	query := `
		SELECT owner, stake_count
		FROM stake_counters
		WHERE owner = $1
	` + lockSuffix(forUpdate)

	var counter domain.StakeCounter
	err := q.QueryRow(ctx, query, owner).Scan(&counter.Owner, &counter.StakeCount)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get stake counter: %w", err)
	}
	return &counter, nil
}

func getPosition(ctx context.Context, q queryer, owner string, index uint64, forUpdate bool) (*domain.StakePosition, error) {
	query := `
		SELECT owner, stake_index, staked_amount, staked_at, lock_duration, created_at
		FROM stake_positions
		WHERE owner = $1 AND stake_index = $2
	` + lockSuffix(forUpdate)

	var pos domain.StakePosition
	err := q.QueryRow(ctx, query, owner, index).Scan(
		&pos.Owner,
		&pos.StakeIndex,
		&pos.StakedAmount,
		&pos.StakedAt,
		&pos.LockDuration,
		&pos.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get stake position: %w", err)
	}
	return &pos, nil
}

func listPositionsByOwner(ctx context.Context, q queryer, owner string) ([]*domain.StakePosition, error) {
	query := `
		SELECT owner, stake_index, staked_amount, staked_at, lock_duration, created_at
		FROM stake_positions
		WHERE owner = $1
		ORDER BY stake_index ASC
	`

	rows, err := q.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list stake positions: %w", err)
	}
	defer rows.Close()

	var positions []*domain.StakePosition
	for rows.Next() {
		var pos domain.StakePosition
		err := rows.Scan(
			&pos.Owner,
			&pos.StakeIndex,
			&pos.StakedAmount,
			&pos.StakedAt,
			&pos.LockDuration,
			&pos.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stake position row: %w", err)
		}
		positions = append(positions, &pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stake position rows: %w", err)
	}
	return positions, nil
}

func getAccount(ctx context.Context, q queryer, address string, forUpdate bool) (*domain.TokenAccount, error) {
	query := `
		SELECT address, mint, owner, amount, delegate, delegated_amount, created_at
		FROM token_accounts
		WHERE address = $1
	` + lockSuffix(forUpdate)

	var acct domain.TokenAccount
	err := q.QueryRow(ctx, query, address).Scan(
		&acct.Address,
		&acct.Mint,
		&acct.Owner,
		&acct.Amount,
		&acct.Delegate,
		&acct.DelegatedAmount,
		&acct.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token account: %w", err)
	}
	return &acct, nil
}

func getClaim(ctx context.Context, q queryer, owner string, forUpdate bool) (*domain.UserClaim, error) {
	query := `
		SELECT owner, last_claim_time, total_claimed
		FROM user_claims
		WHERE owner = $1
	` + lockSuffix(forUpdate)

	var claim domain.UserClaim
	err := q.QueryRow(ctx, query, owner).Scan(&claim.Owner, &claim.LastClaimTime, &claim.TotalClaimed)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user claim: %w", err)
	}
	return &claim, nil
}

func getMetadata(ctx context.Context, q queryer, mint string) (*domain.TokenMetadata, error) {
	query := `
		SELECT mint, name, symbol, uri, created_at
		FROM token_metadata
		WHERE mint = $1
	`

	var md domain.TokenMetadata
	err := q.QueryRow(ctx, query, mint).Scan(&md.Mint, &md.Name, &md.Symbol, &md.URI, &md.CreatedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token metadata: %w", err)
	}
	return &md, nil
}
