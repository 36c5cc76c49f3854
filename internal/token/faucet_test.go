package token

import (
	"context"
	"errors"
	"testing"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/keys"
	"devrewards-ledger/internal/storage"
	"devrewards-ledger/internal/storage/memory"
)

type fakeClock struct {
	now int64
}

func (c *fakeClock) Now() int64 { return c.now }

func newTestService(t *testing.T) (*Service, *memory.Ledger, *fakeClock, *domain.TokenConfig) {
	t.Helper()

	store := memory.NewLedger()
	clock := &fakeClock{now: 1_700_000_000}

	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	svc.WithClock(clock.Now)

	cfg, err := svc.Initialize(context.Background(), "admin")
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return svc, store, clock, cfg
}

func TestInitialize_Once(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, "admin"); !errors.Is(err, storage.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}

	// The vault account exists and is owned by the vault authority.
	vault, err := store.GetAccount(ctx, cfg.Vault)
	if err != nil {
		t.Fatalf("GetAccount(vault) failed: %v", err)
	}
	if vault.Owner != cfg.VaultAuthority {
		t.Errorf("vault owner = %s, want %s", vault.Owner, cfg.VaultAuthority)
	}
	if vault.Mint != cfg.Mint {
		t.Errorf("vault mint = %s, want %s", vault.Mint, cfg.Mint)
	}

	// Stats start zeroed.
	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalStaked != 0 || stats.TotalStakes != 0 || stats.TotalRewardsPaid != 0 {
		t.Errorf("stats not zeroed: %+v", stats)
	}
}

func TestClaim_FirstAndCooldown(t *testing.T) {
	svc, store, clock, cfg := newTestService(t)
	ctx := context.Background()

	claim, err := svc.Claim(ctx, "alice")
	if err != nil {
		t.Fatalf("first Claim failed: %v", err)
	}
	if claim.TotalClaimed != DailyClaimAmount {
		t.Errorf("total claimed = %d, want %d", claim.TotalClaimed, DailyClaimAmount)
	}

	addr, _ := keys.TokenAccountAddress("alice", cfg.Mint)
	acct, err := store.GetAccount(ctx, addr)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Amount != DailyClaimAmount {
		t.Errorf("balance = %d, want %d", acct.Amount, DailyClaimAmount)
	}

	// A second claim inside the window is rejected.
	clock.now += ClaimCooldown - 1
	if _, err := svc.Claim(ctx, "alice"); !errors.Is(err, ErrClaimTooSoon) {
		t.Fatalf("expected ErrClaimTooSoon, got %v", err)
	}

	// Exactly at the cooldown boundary the claim succeeds again.
	clock.now += 1
	claim, err = svc.Claim(ctx, "alice")
	if err != nil {
		t.Fatalf("Claim after cooldown failed: %v", err)
	}
	if claim.TotalClaimed != 2*DailyClaimAmount {
		t.Errorf("total claimed = %d, want %d", claim.TotalClaimed, 2*DailyClaimAmount)
	}
}

func TestClaim_RejectedClaimLeavesBalanceUntouched(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Claim(ctx, "alice"); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if _, err := svc.Claim(ctx, "alice"); !errors.Is(err, ErrClaimTooSoon) {
		t.Fatalf("expected ErrClaimTooSoon, got %v", err)
	}

	addr, _ := keys.TokenAccountAddress("alice", cfg.Mint)
	acct, err := store.GetAccount(ctx, addr)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acct.Amount != DailyClaimAmount {
		t.Errorf("balance = %d, want %d", acct.Amount, DailyClaimAmount)
	}
}

func TestClaim_NotInitialized(t *testing.T) {
	store := memory.NewLedger()
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	if _, err := svc.Claim(context.Background(), "alice"); err == nil {
		t.Fatal("expected error claiming before initialization")
	}
}
