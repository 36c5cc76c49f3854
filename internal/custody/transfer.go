// Package custody moves token value between accounts inside an atomic
// storage block. Transfers are authorized either by the source account's
// owner, by an approved delegate, or by a program-derived Authority.
package custody

import (
	"context"
	"fmt"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/safemath"
	"devrewards-ledger/internal/storage"
)

// TransferByOwner moves amount from one account to another, authorized
// by the source account's owner.
func TransferByOwner(ctx context.Context, tx storage.LedgerTx, from, to, owner string, amount uint64) error {
	src, dst, err := loadPair(ctx, tx, from, to)
	if err != nil {
		return err
	}
	if src.Owner != owner {
		return ErrUnauthorized
	}
	return move(ctx, tx, src, dst, amount, ErrInsufficientBalance)
}

// TransferByDelegate moves amount from an account on behalf of its
// owner, authorized by a previously approved delegate. The approved
// allowance is reduced by the transferred amount.
func TransferByDelegate(ctx context.Context, tx storage.LedgerTx, from, to, delegate string, amount uint64) error {
	src, dst, err := loadPair(ctx, tx, from, to)
	if err != nil {
		return err
	}
	if src.Delegate == nil || *src.Delegate != delegate {
		return ErrDelegateNotApproved
	}
	if src.DelegatedAmount < amount {
		return ErrDelegateNotApproved
	}

	if err := move(ctx, tx, src, dst, amount, ErrInsufficientBalance); err != nil {
		return err
	}

	src.DelegatedAmount -= amount
	if err := tx.PutAccount(ctx, src); err != nil {
		return fmt.Errorf("update delegated amount: %w", err)
	}
	return nil
}

// TransferByAuthority moves amount out of a program-owned account,
// authorized by the derived Authority that owns it. Used for custody
// withdrawals; a shortfall reports ErrInsufficientVaultBalance before
// anything is mutated.
func TransferByAuthority(ctx context.Context, tx storage.LedgerTx, from, to string, auth Authority, amount uint64) error {
	src, dst, err := loadPair(ctx, tx, from, to)
	if err != nil {
		return err
	}
	if src.Owner != auth.Address() {
		return ErrUnauthorized
	}
	return move(ctx, tx, src, dst, amount, ErrInsufficientVaultBalance)
}

// MintTo credits newly minted tokens to an account, authorized by the
// platform's configured mint authority.
func MintTo(ctx context.Context, tx storage.LedgerTx, auth Authority, mint, to string, amount uint64) error {
	cfg, err := tx.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if auth.Address() != cfg.MintAuthority {
		return ErrUnauthorized
	}

	dst, err := tx.GetAccount(ctx, to)
	if err != nil {
		return fmt.Errorf("load destination account: %w", err)
	}
	if dst.Mint != mint {
		return ErrMintMismatch
	}

	credited, ok := safemath.Add(dst.Amount, amount)
	if !ok {
		return fmt.Errorf("credit %s: balance overflow", to)
	}
	dst.Amount = credited

	if err := tx.PutAccount(ctx, dst); err != nil {
		return fmt.Errorf("credit destination account: %w", err)
	}
	return nil
}

// loadPair loads both accounts and checks they share a mint.
func loadPair(ctx context.Context, tx storage.LedgerTx, from, to string) (*domain.TokenAccount, *domain.TokenAccount, error) {
	src, err := tx.GetAccount(ctx, from)
	if err != nil {
		return nil, nil, fmt.Errorf("load source account: %w", err)
	}
	if from == to {
		return src, src, nil
	}
	dst, err := tx.GetAccount(ctx, to)
	if err != nil {
		return nil, nil, fmt.Errorf("load destination account: %w", err)
	}
	if src.Mint != dst.Mint {
		return nil, nil, ErrMintMismatch
	}
	return src, dst, nil
}

// move debits src and credits dst. shortfallErr is reported when src
// holds less than amount; accounts are written only after both checks.
func move(ctx context.Context, tx storage.LedgerTx, src, dst *domain.TokenAccount, amount uint64, shortfallErr error) error {
	if src.Amount < amount {
		return shortfallErr
	}
	// Same account on both sides: nothing moves.
	if src == dst {
		return nil
	}

	credited, ok := safemath.Add(dst.Amount, amount)
	if !ok {
		return fmt.Errorf("credit %s: balance overflow", dst.Address)
	}

	src.Amount -= amount
	dst.Amount = credited

	if err := tx.PutAccount(ctx, src); err != nil {
		return fmt.Errorf("debit source account: %w", err)
	}
	if err := tx.PutAccount(ctx, dst); err != nil {
		return fmt.Errorf("credit destination account: %w", err)
	}
	return nil
}
