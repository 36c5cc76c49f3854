package domain

// TokenAccount is a balance of one mint held by one owner.
// Both user balances and the custody vault are token accounts.
// Corresponds to token_accounts table in PostgreSQL.
type TokenAccount struct {
	Address         string  // account address
	Mint            string  // mint this balance is denominated in
	Owner           string  // owner address
	Amount          uint64  // balance, base units (9 decimals)
	Delegate        *string // approved delegate address (nullable)
	DelegatedAmount uint64  // remaining delegated allowance
	CreatedAt       int64   // record creation timestamp (seconds)
}

// UserClaim tracks faucet usage for one user.
// Corresponds to user_claims table in PostgreSQL.
type UserClaim struct {
	Owner         string // claimer address
	LastClaimTime int64  // Unix timestamp of last claim, 0 if never claimed
	TotalClaimed  uint64 // lifetime claimed amount, base units
}
