package token

import (
	"context"
	"errors"
	"fmt"

	"devrewards-ledger/internal/custody"
	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/keys"
	"devrewards-ledger/internal/safemath"
	"devrewards-ledger/internal/storage"
)

// Claim mints the daily claim amount to the caller's token account,
// creating the account on first use. Claims are limited to one per
// 24 hours; the first claim is always allowed.
func (s *Service) Claim(ctx context.Context, owner string) (*domain.UserClaim, error) {
	if owner == "" {
		return nil, storage.ErrInvalidInput
	}

	now := s.now()
	var result *domain.UserClaim

	err := s.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		cfg, err := s.config(ctx, tx)
		if err != nil {
			return err
		}

		claim, err := tx.GetClaim(ctx, owner)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("load claim state: %w", err)
			}
			claim = &domain.UserClaim{Owner: owner}
		}

		if claim.LastClaimTime != 0 && now-claim.LastClaimTime < ClaimCooldown {
			return ErrClaimTooSoon
		}

		accountAddr, err := s.ensureAccount(ctx, tx, owner, cfg.Mint, now)
		if err != nil {
			return err
		}

		if err := custody.MintTo(ctx, tx, s.mintAuth, cfg.Mint, accountAddr, cfg.DailyClaimAmount); err != nil {
			return err
		}

		total, ok := safemath.Add(claim.TotalClaimed, cfg.DailyClaimAmount)
		if !ok {
			return fmt.Errorf("claim total overflow for %s", owner)
		}
		claim.LastClaimTime = now
		claim.TotalClaimed = total
		if err := tx.PutClaim(ctx, claim); err != nil {
			return fmt.Errorf("update claim state: %w", err)
		}

		result = claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ensureAccount returns the owner's token account address for the mint,
// creating the account if it does not exist yet.
func (s *Service) ensureAccount(ctx context.Context, tx storage.LedgerTx, owner, mint string, now int64) (string, error) {
	addr, err := keys.TokenAccountAddress(owner, mint)
	if err != nil {
		return "", fmt.Errorf("derive token account: %w", err)
	}

	_, err = tx.GetAccount(ctx, addr)
	if err == nil {
		return addr, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("load token account: %w", err)
	}

	account := &domain.TokenAccount{
		Address:   addr,
		Mint:      mint,
		Owner:     owner,
		CreatedAt: now,
	}
	if err := tx.CreateAccount(ctx, account); err != nil {
		return "", fmt.Errorf("create token account: %w", err)
	}
	return addr, nil
}
