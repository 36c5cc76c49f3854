package keys

import (
	"testing"

	"github.com/mr-tron/base58"
)

func TestDerive_Deterministic(t *testing.T) {
	addr1, bump1, err := DeriveLabel(VaultAuthoritySeed)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	addr2, bump2, err := DeriveLabel(VaultAuthoritySeed)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if addr1 != addr2 || bump1 != bump2 {
		t.Errorf("derivation not deterministic: (%s, %d) vs (%s, %d)", addr1, bump1, addr2, bump2)
	}
	if addr1 == "" {
		t.Error("expected non-empty address")
	}
}

func TestDerive_DistinctLabels(t *testing.T) {
	labels := []string{MintSeed, MintAuthoritySeed, VaultSeed, VaultAuthoritySeed}

	seen := make(map[string]string)
	for _, label := range labels {
		addr, _, err := DeriveLabel(label)
		if err != nil {
			t.Fatalf("Derive(%q) failed: %v", label, err)
		}
		if prev, ok := seen[addr]; ok {
			t.Errorf("labels %q and %q derived the same address %s", prev, label, addr)
		}
		seen[addr] = label
	}
}

func TestDerive_OffCurve(t *testing.T) {
	addr, _, err := DeriveLabel(VaultAuthoritySeed)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	raw, err := base58.Decode(addr)
	if err != nil {
		t.Fatalf("decode derived address: %v", err)
	}
	if isOnCurve(raw) {
		t.Error("derived address must be off the ed25519 curve")
	}
}

func TestTokenAccountAddress_VariesByOwnerAndMint(t *testing.T) {
	a1, err := TokenAccountAddress("alice", "mint1")
	if err != nil {
		t.Fatalf("TokenAccountAddress failed: %v", err)
	}
	a2, err := TokenAccountAddress("bob", "mint1")
	if err != nil {
		t.Fatalf("TokenAccountAddress failed: %v", err)
	}
	a3, err := TokenAccountAddress("alice", "mint2")
	if err != nil {
		t.Fatalf("TokenAccountAddress failed: %v", err)
	}

	if a1 == a2 || a1 == a3 || a2 == a3 {
		t.Errorf("expected distinct addresses, got %s %s %s", a1, a2, a3)
	}
}
