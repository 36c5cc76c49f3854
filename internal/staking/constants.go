package staking

// Time constants.
const (
	SecondsPerYear int64 = 31_536_000 // 365 days

	// Lock duration limits, in seconds.
	MinLockDuration int64 = 604_800     // 7 days
	MaxLockDuration int64 = 315_360_000 // 10 years
)

// Stake amount limits, base units with 9 decimals.
const (
	MinStakeAmount uint64 = 1_000_000_000         // 1 DEVR
	MaxStakeAmount uint64 = 100_000_000_000_000   // 100,000 DEVR
)

// APY tier thresholds, in seconds. Lower bounds are inclusive: a duration
// exactly at a threshold belongs to the higher tier.
const (
	Tier90Days int64 = 7_776_000 // 90 days -> 20%
	Tier30Days int64 = 2_592_000 // 30 days -> 10%
	Tier7Days  int64 = 604_800   // 7 days  -> 5%
)
