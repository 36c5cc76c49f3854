package staking

// ResolveTier maps a lock duration to its annual reward rate as a
// (numerator, denominator) pair. Deterministic and side-effect-free: it
// is called once at stake time for the emitted event and again at
// unstake time for accounting, and must return the same pair both times
// for the same stored duration.
func ResolveTier(lockDuration int64) (numerator, denominator uint64) {
	switch {
	case lockDuration >= Tier90Days:
		return 20, 100
	case lockDuration >= Tier30Days:
		return 10, 100
	default:
		return 5, 100
	}
}
