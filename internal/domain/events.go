package domain

// Event kinds emitted by the ledger.
const (
	EventKindStake   = "stake"
	EventKindUnstake = "unstake"
)

// StakeEvent is emitted after a successful stake. Informational only;
// the persisted position is the authoritative record.
type StakeEvent struct {
	User           string `json:"user"`
	StakeIndex     uint64 `json:"stake_index"`
	StakedAmount   uint64 `json:"staked_amount"`
	LockDuration   int64  `json:"lock_duration"`
	APYNumerator   uint64 `json:"apy_numerator"`
	APYDenominator uint64 `json:"apy_denominator"`
	Timestamp      int64  `json:"timestamp"`
}

// UnstakeEvent is emitted after a successful unstake.
type UnstakeEvent struct {
	User           string `json:"user"`
	StakeIndex     uint64 `json:"stake_index"`
	Principal      uint64 `json:"principal"`
	Rewards        uint64 `json:"rewards"`
	TotalWithdrawn uint64 `json:"total_withdrawn"`
	LockDuration   int64  `json:"lock_duration"`
	APYNumerator   uint64 `json:"apy_numerator"`
	APYDenominator uint64 `json:"apy_denominator"`
	Timestamp      int64  `json:"timestamp"`
}
