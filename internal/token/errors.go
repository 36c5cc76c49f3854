package token

import "errors"

// Token service errors.
var (
	// ErrClaimTooSoon is returned when claiming again within the 24 hour
	// cooldown window.
	ErrClaimTooSoon = errors.New("you must wait 24 hours between claims")

	// ErrAmountTooSmall is returned when a transfer or approval amount is
	// below the allowed minimum.
	ErrAmountTooSmall = errors.New("transfer amount is too small: minimum 1 token required")

	// ErrAmountTooLarge is returned when a transfer amount exceeds the
	// allowed maximum.
	ErrAmountTooLarge = errors.New("transfer amount exceeds maximum limit")

	// Metadata validation errors.
	ErrNameEmpty        = errors.New("metadata name must not be empty")
	ErrNameTooLong      = errors.New("metadata name exceeds 32 characters")
	ErrSymbolEmpty      = errors.New("metadata symbol must not be empty")
	ErrSymbolTooLong    = errors.New("metadata symbol exceeds 10 characters")
	ErrURIEmpty         = errors.New("metadata uri must not be empty")
	ErrURITooLong       = errors.New("metadata uri exceeds 200 characters")
	ErrInvalidURIFormat = errors.New("metadata uri must start with https:// or ipfs://")
)
