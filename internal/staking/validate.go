package staking

// ValidateStake checks a stake amount and lock duration against the
// fixed bounds. Pure; called before any mutation.
func ValidateStake(amount uint64, lockDuration int64) error {
	if amount < MinStakeAmount {
		return ErrAmountTooSmall
	}
	if amount > MaxStakeAmount {
		return ErrAmountTooLarge
	}
	if lockDuration < MinLockDuration {
		return ErrDurationTooShort
	}
	if lockDuration > MaxLockDuration {
		return ErrDurationTooLong
	}
	return nil
}
