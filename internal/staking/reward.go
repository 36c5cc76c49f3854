package staking

import "devrewards-ledger/internal/safemath"

// CalculateReward computes the reward owed for a matured position:
//
//	floor(floor(principal * num / den) * lockDuration / SecondsPerYear)
//
// The credited period is the committed lock duration, never the actual
// elapsed time: withdrawing late earns nothing extra. The principal*rate
// product is divided down before multiplying by the duration; reordering
// changes truncation at the margins and would break parity with
// previously recorded events.
func CalculateReward(principal uint64, lockDuration int64) (uint64, error) {
	num, den := ResolveTier(lockDuration)

	annual, ok := safemath.Mul(principal, num)
	if !ok {
		return 0, ErrArithmeticOverflow
	}
	annual /= den

	scaled, ok := safemath.Mul(annual, uint64(lockDuration))
	if !ok {
		return 0, ErrArithmeticOverflow
	}

	return scaled / uint64(SecondsPerYear), nil
}
