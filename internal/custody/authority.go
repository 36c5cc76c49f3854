package custody

import (
	"fmt"

	"devrewards-ledger/internal/keys"
)

// Authority is the capability to sign for a program-controlled address.
// No private key exists for it: the address is derived from a fixed
// label and is provably off the signing curve, so holding an Authority
// value is the only way to authorize transfers out of accounts it owns.
// Instantiated once at initialization and never exposed to callers.
type Authority struct {
	address string
	label   string
	bump    uint8
}

// DeriveAuthority derives the authority for a fixed label.
func DeriveAuthority(label string) (Authority, error) {
	addr, bump, err := keys.DeriveLabel(label)
	if err != nil {
		return Authority{}, fmt.Errorf("derive authority %q: %w", label, err)
	}
	return Authority{address: addr, label: label, bump: bump}, nil
}

// Address returns the derived address this authority controls.
func (a Authority) Address() string {
	return a.address
}

// Label returns the derivation label.
func (a Authority) Label() string {
	return a.label
}
