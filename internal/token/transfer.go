package token

import (
	"context"
	"fmt"

	"devrewards-ledger/internal/custody"
	"devrewards-ledger/internal/storage"
)

// Ad-hoc transfer bounds, base units with 9 decimals. Tighter than the
// staking bounds: transfers cap at 10,000 tokens.
const (
	MinTransfer uint64 = 1_000_000_000      // 1 token
	MaxTransfer uint64 = 10_000_000_000_000 // 10,000 tokens
)

// Transfer moves amount between two token accounts, authorized by the
// source account's owner.
func (s *Service) Transfer(ctx context.Context, from, to, authority string, amount uint64) error {
	if err := validateTransferAmount(amount); err != nil {
		return err
	}

	return s.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		return custody.TransferByOwner(ctx, tx, from, to, authority, amount)
	})
}

// ApproveDelegate grants a delegate the right to transfer up to amount
// from the owner's account. A new approval replaces any previous one.
func (s *Service) ApproveDelegate(ctx context.Context, account, owner, delegate string, amount uint64) error {
	if delegate == "" {
		return storage.ErrInvalidInput
	}
	if amount == 0 {
		return ErrAmountTooSmall
	}

	return s.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		acct, err := tx.GetAccount(ctx, account)
		if err != nil {
			return fmt.Errorf("load token account: %w", err)
		}
		if acct.Owner != owner {
			return custody.ErrUnauthorized
		}
		if acct.Amount < amount {
			return custody.ErrInsufficientBalance
		}

		acct.Delegate = &delegate
		acct.DelegatedAmount = amount
		if err := tx.PutAccount(ctx, acct); err != nil {
			return fmt.Errorf("update token account: %w", err)
		}
		return nil
	})
}

// RevokeDelegate removes any delegate approval from the owner's account.
func (s *Service) RevokeDelegate(ctx context.Context, account, owner string) error {
	return s.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		acct, err := tx.GetAccount(ctx, account)
		if err != nil {
			return fmt.Errorf("load token account: %w", err)
		}
		if acct.Owner != owner {
			return custody.ErrUnauthorized
		}

		acct.Delegate = nil
		acct.DelegatedAmount = 0
		if err := tx.PutAccount(ctx, acct); err != nil {
			return fmt.Errorf("update token account: %w", err)
		}
		return nil
	})
}

// DelegatedTransfer moves amount on behalf of the source account's
// owner, authorized by an approved delegate. The remaining allowance is
// reduced by the transferred amount.
func (s *Service) DelegatedTransfer(ctx context.Context, from, to, delegate string, amount uint64) error {
	if err := validateTransferAmount(amount); err != nil {
		return err
	}

	return s.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		return custody.TransferByDelegate(ctx, tx, from, to, delegate, amount)
	})
}

func validateTransferAmount(amount uint64) error {
	if amount < MinTransfer {
		return ErrAmountTooSmall
	}
	if amount > MaxTransfer {
		return ErrAmountTooLarge
	}
	return nil
}
