package token

import (
	"context"
	"errors"
	"testing"

	"devrewards-ledger/internal/custody"
	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/keys"
	"devrewards-ledger/internal/storage"
)

// seedAccount creates a funded account for owner and returns its address.
func seedAccount(t *testing.T, store storage.Ledger, cfg *domain.TokenConfig, owner string, amount uint64) string {
	t.Helper()
	ctx := context.Background()

	addr, err := keys.TokenAccountAddress(owner, cfg.Mint)
	if err != nil {
		t.Fatalf("TokenAccountAddress failed: %v", err)
	}
	err = store.Atomically(ctx, func(tx storage.LedgerTx) error {
		return tx.CreateAccount(ctx, &domain.TokenAccount{
			Address: addr,
			Mint:    cfg.Mint,
			Owner:   owner,
			Amount:  amount,
		})
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return addr
}

func TestTransfer(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 5_000_000_000)
	to := seedAccount(t, store, cfg, "bob", 0)

	if err := svc.Transfer(ctx, from, to, "alice", 2_000_000_000); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	src, _ := store.GetAccount(ctx, from)
	dst, _ := store.GetAccount(ctx, to)
	if src.Amount != 3_000_000_000 || dst.Amount != 2_000_000_000 {
		t.Errorf("balances = %d/%d, want 3_000_000_000/2_000_000_000", src.Amount, dst.Amount)
	}
}

func TestTransfer_Bounds(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 100_000_000_000_000)
	to := seedAccount(t, store, cfg, "bob", 0)

	if err := svc.Transfer(ctx, from, to, "alice", MinTransfer-1); !errors.Is(err, ErrAmountTooSmall) {
		t.Errorf("expected ErrAmountTooSmall, got %v", err)
	}
	if err := svc.Transfer(ctx, from, to, "alice", MaxTransfer+1); !errors.Is(err, ErrAmountTooLarge) {
		t.Errorf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 1_000_000_000)
	to := seedAccount(t, store, cfg, "bob", 0)

	err := svc.Transfer(ctx, from, to, "alice", 2_000_000_000)
	if !errors.Is(err, custody.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestTransfer_WrongAuthority(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 5_000_000_000)
	to := seedAccount(t, store, cfg, "bob", 0)

	err := svc.Transfer(ctx, from, to, "mallory", 1_000_000_000)
	if !errors.Is(err, custody.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTransfer_MintMismatch(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 5_000_000_000)

	// An account denominated in a foreign mint.
	err := store.Atomically(ctx, func(tx storage.LedgerTx) error {
		return tx.CreateAccount(ctx, &domain.TokenAccount{
			Address: "foreign-account",
			Mint:    "foreign-mint",
			Owner:   "bob",
		})
	})
	if err != nil {
		t.Fatalf("seed foreign account: %v", err)
	}

	if err := svc.Transfer(ctx, from, "foreign-account", "alice", 1_000_000_000); !errors.Is(err, custody.ErrMintMismatch) {
		t.Fatalf("expected ErrMintMismatch, got %v", err)
	}
}

func TestDelegatedTransfer(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 10_000_000_000)
	to := seedAccount(t, store, cfg, "bob", 0)

	if err := svc.ApproveDelegate(ctx, from, "alice", "dex", 3_000_000_000); err != nil {
		t.Fatalf("ApproveDelegate failed: %v", err)
	}

	if err := svc.DelegatedTransfer(ctx, from, to, "dex", 2_000_000_000); err != nil {
		t.Fatalf("DelegatedTransfer failed: %v", err)
	}

	src, _ := store.GetAccount(ctx, from)
	if src.Amount != 8_000_000_000 {
		t.Errorf("source balance = %d, want 8_000_000_000", src.Amount)
	}
	if src.DelegatedAmount != 1_000_000_000 {
		t.Errorf("remaining allowance = %d, want 1_000_000_000", src.DelegatedAmount)
	}

	// The remaining allowance no longer covers another large transfer.
	err := svc.DelegatedTransfer(ctx, from, to, "dex", 2_000_000_000)
	if !errors.Is(err, custody.ErrDelegateNotApproved) {
		t.Fatalf("expected ErrDelegateNotApproved, got %v", err)
	}
}

func TestDelegatedTransfer_RequiresApproval(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 10_000_000_000)
	to := seedAccount(t, store, cfg, "bob", 0)

	err := svc.DelegatedTransfer(ctx, from, to, "dex", 1_000_000_000)
	if !errors.Is(err, custody.ErrDelegateNotApproved) {
		t.Fatalf("expected ErrDelegateNotApproved, got %v", err)
	}
}

func TestRevokeDelegate(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 10_000_000_000)
	to := seedAccount(t, store, cfg, "bob", 0)

	if err := svc.ApproveDelegate(ctx, from, "alice", "dex", 3_000_000_000); err != nil {
		t.Fatalf("ApproveDelegate failed: %v", err)
	}
	if err := svc.RevokeDelegate(ctx, from, "alice"); err != nil {
		t.Fatalf("RevokeDelegate failed: %v", err)
	}

	err := svc.DelegatedTransfer(ctx, from, to, "dex", 1_000_000_000)
	if !errors.Is(err, custody.ErrDelegateNotApproved) {
		t.Fatalf("expected ErrDelegateNotApproved after revoke, got %v", err)
	}
}

func TestApproveDelegate_Checks(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	from := seedAccount(t, store, cfg, "alice", 1_000_000_000)

	if err := svc.ApproveDelegate(ctx, from, "alice", "dex", 0); !errors.Is(err, ErrAmountTooSmall) {
		t.Errorf("expected ErrAmountTooSmall for zero approval, got %v", err)
	}
	if err := svc.ApproveDelegate(ctx, from, "alice", "dex", 2_000_000_000); !errors.Is(err, custody.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := svc.ApproveDelegate(ctx, from, "mallory", "dex", 500_000_000); !errors.Is(err, custody.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
