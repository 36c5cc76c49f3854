// Package staking implements the custodial staking ledger: lock
// validation, APY tier resolution, reward accrual, and the atomic
// stake/unstake state machine over persistent storage.
package staking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devrewards-ledger/internal/custody"
	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/keys"
	"devrewards-ledger/internal/safemath"
	"devrewards-ledger/internal/storage"
)

// Ledger orchestrates stake and unstake operations. Both execute as a
// single atomic block against the store: every failure is a typed error
// with zero persisted effect.
type Ledger struct {
	store     storage.Ledger
	vaultAuth custody.Authority
	sink      EventSink
	now       func() int64
}

// NewLedger creates a ledger over the given store. vaultAuth must be
// the authority derived for the custody vault at initialization.
func NewLedger(store storage.Ledger, vaultAuth custody.Authority) *Ledger {
	return &Ledger{
		store:     store,
		vaultAuth: vaultAuth,
		now:       func() int64 { return time.Now().Unix() },
	}
}

// WithClock overrides the time source. Used by tests and simulation.
func (l *Ledger) WithClock(now func() int64) *Ledger {
	l.now = now
	return l
}

// WithEventSink sets the sink that receives events after a successful
// operation commits.
func (l *Ledger) WithEventSink(sink EventSink) *Ledger {
	l.sink = sink
	return l
}

// Stake locks amount for lockDuration seconds: deposits the amount into
// custody, opens a position at the caller's next index, and updates the
// global aggregates. Returns the emitted event on success.
func (l *Ledger) Stake(ctx context.Context, owner string, amount uint64, lockDuration int64) (*domain.StakeEvent, error) {
	if owner == "" {
		return nil, storage.ErrInvalidInput
	}
	if err := ValidateStake(amount, lockDuration); err != nil {
		return nil, err
	}

	now := l.now()
	var event *domain.StakeEvent

	err := l.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		cfg, err := tx.GetConfig(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotInitialized
			}
			return fmt.Errorf("load config: %w", err)
		}

		userAccount, err := keys.TokenAccountAddress(owner, cfg.Mint)
		if err != nil {
			return fmt.Errorf("derive user token account: %w", err)
		}

		if err := custody.TransferByOwner(ctx, tx, userAccount, cfg.Vault, owner, amount); err != nil {
			// A user without a token account has nothing to stake.
			if errors.Is(err, storage.ErrNotFound) {
				return custody.ErrInsufficientBalance
			}
			return err
		}

		counter, err := tx.GetCounter(ctx, owner)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("load stake counter: %w", err)
			}
			counter = &domain.StakeCounter{Owner: owner}
		}

		position := &domain.StakePosition{
			Owner:        owner,
			StakeIndex:   counter.StakeCount,
			StakedAmount: amount,
			StakedAt:     now,
			LockDuration: lockDuration,
			CreatedAt:    now,
		}
		if err := tx.CreatePosition(ctx, position); err != nil {
			return fmt.Errorf("create position: %w", err)
		}

		next, ok := safemath.Add(counter.StakeCount, 1)
		if !ok {
			return ErrArithmeticOverflow
		}
		counter.StakeCount = next
		if err := tx.PutCounter(ctx, counter); err != nil {
			return fmt.Errorf("update stake counter: %w", err)
		}

		stats, err := tx.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("load global stats: %w", err)
		}
		if stats.TotalStaked, ok = safemath.Add(stats.TotalStaked, amount); !ok {
			return ErrArithmeticOverflow
		}
		if stats.TotalStakes, ok = safemath.Add(stats.TotalStakes, 1); !ok {
			return ErrArithmeticOverflow
		}
		stats.UpdatedAt = now
		if err := tx.PutStats(ctx, stats); err != nil {
			return fmt.Errorf("update global stats: %w", err)
		}

		num, den := ResolveTier(lockDuration)
		event = &domain.StakeEvent{
			User:           owner,
			StakeIndex:     position.StakeIndex,
			StakedAmount:   amount,
			LockDuration:   lockDuration,
			APYNumerator:   num,
			APYDenominator: den,
			Timestamp:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if l.sink != nil {
		l.sink.PublishStake(ctx, event)
	}
	return event, nil
}

// Unstake closes the caller's position at stakeIndex once its lock has
// matured: withdraws principal plus reward from custody, updates the
// global aggregates, and destroys the position. A position can be
// closed at most once.
func (l *Ledger) Unstake(ctx context.Context, owner string, stakeIndex uint64) (*domain.UnstakeEvent, error) {
	if owner == "" {
		return nil, storage.ErrInvalidInput
	}

	now := l.now()
	var event *domain.UnstakeEvent

	err := l.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		cfg, err := tx.GetConfig(ctx)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotInitialized
			}
			return fmt.Errorf("load config: %w", err)
		}

		position, err := tx.GetPosition(ctx, owner, stakeIndex)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrPositionNotFound
			}
			return fmt.Errorf("load position: %w", err)
		}
		// Positions are keyed by owner, but the stored owner is still
		// the authority of record.
		if position.Owner != owner {
			return ErrPositionNotFound
		}

		if now-position.StakedAt < position.LockDuration {
			return ErrStillLocked
		}

		reward, err := CalculateReward(position.StakedAmount, position.LockDuration)
		if err != nil {
			return err
		}
		total, ok := safemath.Add(position.StakedAmount, reward)
		if !ok {
			return ErrArithmeticOverflow
		}

		userAccount, err := keys.TokenAccountAddress(owner, cfg.Mint)
		if err != nil {
			return fmt.Errorf("derive user token account: %w", err)
		}

		if err := custody.TransferByAuthority(ctx, tx, cfg.Vault, userAccount, l.vaultAuth, total); err != nil {
			return err
		}

		stats, err := tx.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("load global stats: %w", err)
		}
		if stats.TotalStaked, ok = safemath.Sub(stats.TotalStaked, position.StakedAmount); !ok {
			return ErrArithmeticOverflow
		}
		if stats.TotalRewardsPaid, ok = safemath.Add(stats.TotalRewardsPaid, reward); !ok {
			return ErrArithmeticOverflow
		}
		stats.UpdatedAt = now
		if err := tx.PutStats(ctx, stats); err != nil {
			return fmt.Errorf("update global stats: %w", err)
		}

		if err := tx.DeletePosition(ctx, owner, stakeIndex); err != nil {
			return fmt.Errorf("delete position: %w", err)
		}

		num, den := ResolveTier(position.LockDuration)
		event = &domain.UnstakeEvent{
			User:           owner,
			StakeIndex:     stakeIndex,
			Principal:      position.StakedAmount,
			Rewards:        reward,
			TotalWithdrawn: total,
			LockDuration:   position.LockDuration,
			APYNumerator:   num,
			APYDenominator: den,
			Timestamp:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if l.sink != nil {
		l.sink.PublishUnstake(ctx, event)
	}
	return event, nil
}
