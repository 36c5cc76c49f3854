package custody

import "errors"

// Custody errors. All are precondition violations reported before any
// balance is touched.
var (
	// ErrInsufficientBalance is returned when the source account holds
	// less than the transfer amount.
	ErrInsufficientBalance = errors.New("insufficient balance in source account")

	// ErrInsufficientVaultBalance is returned when the custody pool holds
	// less than the amount owed. Correct bookkeeping makes this
	// unreachable, so hitting it is an internal-consistency red flag.
	ErrInsufficientVaultBalance = errors.New("vault does not have enough tokens to complete this transaction")

	// ErrMintMismatch is returned when source and destination accounts
	// are denominated in different mints.
	ErrMintMismatch = errors.New("token accounts must have the same mint")

	// ErrUnauthorized is returned when the presented signer does not
	// control the source account.
	ErrUnauthorized = errors.New("signer is not authorized over the source account")

	// ErrDelegateNotApproved is returned when a delegated transfer is
	// attempted without a matching approval or beyond the approved amount.
	ErrDelegateNotApproved = errors.New("delegate is not approved for this amount")
)
