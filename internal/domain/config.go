package domain

// TokenConfig is the singleton platform configuration, created once at
// initialization and immutable afterwards.
// Corresponds to token_config table in PostgreSQL.
type TokenConfig struct {
	Mint             string // mint address of the platform token
	MintAuthority    string // derived authority allowed to mint
	Vault            string // custody pool token account address
	VaultAuthority   string // derived authority allowed to withdraw from the vault
	Admin            string // address that performed initialization
	DailyClaimAmount uint64 // faucet payout per claim, base units (9 decimals)
	CreatedAt        int64  // Unix timestamp in seconds
}
