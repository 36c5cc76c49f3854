package token

import (
	"context"
	"fmt"
	"strings"

	"devrewards-ledger/internal/domain"
	"devrewards-ledger/internal/storage"
)

// Metadata field limits.
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxURILen    = 200
)

// RegisterMetadata records descriptive metadata for the platform mint.
// Metadata can be registered at most once.
func (s *Service) RegisterMetadata(ctx context.Context, name, symbol, uri string) (*domain.TokenMetadata, error) {
	if err := validateMetadata(name, symbol, uri); err != nil {
		return nil, err
	}

	now := s.now()
	var result *domain.TokenMetadata

	err := s.store.Atomically(ctx, func(tx storage.LedgerTx) error {
		cfg, err := s.config(ctx, tx)
		if err != nil {
			return err
		}

		meta := &domain.TokenMetadata{
			Mint:      cfg.Mint,
			Name:      name,
			Symbol:    symbol,
			URI:       uri,
			CreatedAt: now,
		}
		if err := tx.CreateMetadata(ctx, meta); err != nil {
			return fmt.Errorf("register metadata: %w", err)
		}

		result = meta
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateMetadata(name, symbol, uri string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	if symbol == "" {
		return ErrSymbolEmpty
	}
	if len(symbol) > MaxSymbolLen {
		return ErrSymbolTooLong
	}
	if uri == "" {
		return ErrURIEmpty
	}
	if len(uri) > MaxURILen {
		return ErrURITooLong
	}

	lower := strings.ToLower(uri)
	if !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "ipfs://") {
		return ErrInvalidURIFormat
	}
	return nil
}
