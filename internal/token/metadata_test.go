package token

import (
	"context"
	"errors"
	"strings"
	"testing"

	"devrewards-ledger/internal/storage"
)

func TestRegisterMetadata(t *testing.T) {
	svc, store, _, cfg := newTestService(t)
	ctx := context.Background()

	meta, err := svc.RegisterMetadata(ctx, "DevRewards", "DEVR", "https://devrewards.example/token.json")
	if err != nil {
		t.Fatalf("RegisterMetadata failed: %v", err)
	}
	if meta.Mint != cfg.Mint {
		t.Errorf("metadata mint = %s, want %s", meta.Mint, cfg.Mint)
	}

	stored, err := store.GetMetadata(ctx, cfg.Mint)
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if stored.Name != "DevRewards" || stored.Symbol != "DEVR" {
		t.Errorf("stored metadata = %+v", stored)
	}

	// Registration is once per mint.
	_, err = svc.RegisterMetadata(ctx, "Other", "OTH", "ipfs://QmExample")
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey on second registration, got %v", err)
	}
}

func TestRegisterMetadata_Validation(t *testing.T) {
	tests := []struct {
		name    string
		n, s, u string
		wantErr error
	}{
		{"empty name", "", "DEVR", "https://x.example", ErrNameEmpty},
		{"long name", strings.Repeat("a", 33), "DEVR", "https://x.example", ErrNameTooLong},
		{"empty symbol", "DevRewards", "", "https://x.example", ErrSymbolEmpty},
		{"long symbol", "DevRewards", "VERYLONGSYM", "https://x.example", ErrSymbolTooLong},
		{"empty uri", "DevRewards", "DEVR", "", ErrURIEmpty},
		{"long uri", "DevRewards", "DEVR", "https://" + strings.Repeat("a", 200), ErrURITooLong},
		{"bad scheme", "DevRewards", "DEVR", "http://x.example", ErrInvalidURIFormat},
		{"uppercase scheme accepted", "DevRewards", "DEVR", "HTTPS://x.example", nil},
		{"ipfs accepted", "DevRewards", "DEVR", "ipfs://QmExample", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMetadata(tt.n, tt.s, tt.u)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateMetadata = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
