package staking

import "errors"

// Ledger errors. Validation errors are caller-correctable; overflow is
// surfaced separately so operators can tell bad input from an invariant
// breach. Every failure leaves state untouched.
var (
	// ErrAmountTooSmall is returned when the stake amount is below the
	// 1 token minimum.
	ErrAmountTooSmall = errors.New("stake amount is too small: minimum 1 token required")

	// ErrAmountTooLarge is returned when the stake amount exceeds the
	// 100,000 token maximum.
	ErrAmountTooLarge = errors.New("stake amount exceeds maximum limit")

	// ErrDurationTooShort is returned when the lock duration is below
	// the 7 day minimum.
	ErrDurationTooShort = errors.New("staking duration is too short: minimum 7 days required")

	// ErrDurationTooLong is returned when the lock duration exceeds the
	// 10 year maximum.
	ErrDurationTooLong = errors.New("staking duration exceeds maximum allowed period")

	// ErrStillLocked is returned when unstaking before the committed
	// lock period has elapsed.
	ErrStillLocked = errors.New("tokens are still locked: wait until the lock period has ended")

	// ErrArithmeticOverflow is returned when any checked computation
	// would wrap. It never saturates silently.
	ErrArithmeticOverflow = errors.New("arithmetic overflow occurred during calculation")

	// ErrPositionNotFound is returned when no open position exists for
	// the caller at the given index. Covers both a missing record and an
	// ownership mismatch: positions are only ever addressed by their
	// owner, so another user's index resolves to nothing.
	ErrPositionNotFound = errors.New("no open stake position for this owner and index")

	// ErrNotInitialized is returned when the platform config is absent.
	ErrNotInitialized = errors.New("platform is not initialized")
)
