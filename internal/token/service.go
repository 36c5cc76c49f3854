// Package token implements the peripheral token utilities around the
// staking core: platform initialization, the daily claim faucet,
// transfers, delegation, and metadata registration. These share the
// configured mint with the staking ledger but no other state.
package token

import (
	"context"
	"fmt"
	"time"

	"devrewards-ledger/internal/custody"
	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/keys"
	"devrewards-ledger/internal/storage"
)

// Daily faucet payout, base units (100 DEVR).
const DailyClaimAmount uint64 = 100_000_000_000

// ClaimCooldown is the minimum interval between faucet claims.
const ClaimCooldown int64 = 86_400

// Service provides token operations over the ledger store. It holds the
// derived mint and vault authorities; they are capabilities and are
// never exposed to callers.
type Service struct {
	store     storage.Ledger
	mintAuth  custody.Authority
	vaultAuth custody.Authority
	now       func() int64
}

// NewService creates a token service. Authority derivation is
// deterministic, so the service can be built before initialization.
func NewService(store storage.Ledger) (*Service, error) {
	mintAuth, err := custody.DeriveAuthority(keys.MintAuthoritySeed)
	if err != nil {
		return nil, err
	}
	vaultAuth, err := custody.DeriveAuthority(keys.VaultAuthoritySeed)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     store,
		mintAuth:  mintAuth,
		vaultAuth: vaultAuth,
		now:       func() int64 { return time.Now().Unix() },
	}, nil
}

// WithClock overrides the time source. Used by tests and simulation.
func (s *Service) WithClock(now func() int64) *Service {
	s.now = now
	return s
}

// VaultAuthority returns the custody withdrawal authority for wiring
// into the staking ledger.
func (s *Service) VaultAuthority() custody.Authority {
	return s.vaultAuth
}

// Initialize creates the singleton platform config, the custody vault
// account, and the zeroed global statistics record. It can succeed at
// most once; re-initialization fails with ErrAlreadyInitialized.
func (s *Service) Initialize(ctx context.Context, admin string) (*domain.TokenConfig, error) {
	if admin == "" {
		return nil, storage.ErrInvalidInput
	}

	mint, _, err := keys.DeriveLabel(keys.MintSeed)
	if err != nil {
		return nil, fmt.Errorf("derive mint address: %w", err)
	}
	vault, _, err := keys.DeriveLabel(keys.VaultSeed)
	if err != nil {
		return nil, fmt.Errorf("derive vault address: %w", err)
	}

	now := s.now()
	cfg := &domain.TokenConfig{
		Mint:             mint,
		MintAuthority:    s.mintAuth.Address(),
		Vault:            vault,
		VaultAuthority:   s.vaultAuth.Address(),
		Admin:            admin,
		DailyClaimAmount: DailyClaimAmount,
		CreatedAt:        now,
	}

	err = s.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		if err := tx.CreateConfig(ctx, cfg); err != nil {
			return err
		}

		vaultAccount := &domain.TokenAccount{
			Address:   vault,
			Mint:      mint,
			Owner:     s.vaultAuth.Address(),
			CreatedAt: now,
		}
		if err := tx.CreateAccount(ctx, vaultAccount); err != nil {
			return fmt.Errorf("create vault account: %w", err)
		}

		stats := &domain.GlobalStats{UpdatedAt: now}
		if err := tx.PutStats(ctx, stats); err != nil {
			return fmt.Errorf("create global stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// config loads the platform config inside a tx, mapping a missing
// record to a caller-visible error.
func (s *Service) config(ctx context.Context, tx storage.LedgerTx) (*domain.TokenConfig, error) {
	cfg, err := tx.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
