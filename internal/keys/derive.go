// Package keys derives program-controlled addresses from fixed labels.
// Derived addresses have no corresponding private key: derivation hashes
// the seeds together with the program ID and keeps the first result that
// does not decode to a point on the ed25519 curve.
package keys

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ProgramID anchors every derived address. Changing it changes all
// derived addresses, so it is fixed for the lifetime of a deployment.
const ProgramID = "8PZ8EXjLqDxeRHUEL7o53eVceh5MgwPT6aJWZUu5AjTq"

const derivedMarker = "ProgramDerivedAddress"

// Labels for the platform's derived addresses.
const (
	MintSeed           = "devr-mint"
	MintAuthoritySeed  = "mint-authority"
	VaultSeed          = "vault"
	VaultAuthoritySeed = "vault-authority"
	TokenAccountSeed   = "token-account"
)

// ErrNoBump is returned if no bump in 255..1 yields an off-curve point.
// Probability is negligible for any real seed set.
var ErrNoBump = errors.New("no off-curve bump found for seeds")

// Derive computes the derived address for the given seeds.
// Returns the base58 address and the bump that produced it.
func Derive(seeds ...[]byte) (string, uint8, error) {
	programID, err := base58.Decode(ProgramID)
	if err != nil {
		return "", 0, err
	}

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID...)
		data = append(data, []byte(derivedMarker)...)

		hash := sha256.Sum256(data)

		// An off-curve point can never have a signing key.
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), bump, nil
		}
	}

	return "", 0, ErrNoBump
}

// DeriveLabel derives an address from a single string label.
func DeriveLabel(label string) (string, uint8, error) {
	return Derive([]byte(label))
}

// TokenAccountAddress derives the canonical token account address for an
// owner and mint.
func TokenAccountAddress(owner, mint string) (string, error) {
	addr, _, err := Derive([]byte(TokenAccountSeed), []byte(owner), []byte(mint))
	return addr, err
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
