package domain

// StakePosition is a single locked stake owned by one user.
// Unique per (Owner, StakeIndex); deleted exactly once on unstake.
// Corresponds to stake_positions table in PostgreSQL.
type StakePosition struct {
	Owner        string // owner address
	StakeIndex   uint64 // assigned from the owner's counter, never reused
	StakedAmount uint64 // principal, base units (9 decimals)
	StakedAt     int64  // Unix timestamp in seconds
	LockDuration int64  // committed lock period in seconds, fixed at creation
	CreatedAt    int64  // record creation timestamp (seconds)
}

// StakeCounter holds the next stake index to assign for one owner.
// Starts at zero and only ever increments.
// Corresponds to stake_counters table in PostgreSQL.
type StakeCounter struct {
	Owner      string // owner address
	StakeCount uint64 // next index to assign
}

// GlobalStats is the singleton aggregate over all stake activity.
// TotalStaked equals the sum of principal over all open positions;
// TotalStakes and TotalRewardsPaid are monotonically non-decreasing.
// Corresponds to global_stats table in PostgreSQL.
type GlobalStats struct {
	TotalStaked      uint64 // sum of open positions' principal
	TotalStakes      uint64 // count of positions ever opened
	TotalRewardsPaid uint64 // cumulative rewards disbursed
	UpdatedAt        int64  // Unix timestamp in seconds
}
