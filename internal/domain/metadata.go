package domain

// TokenMetadata is descriptive metadata registered for a mint.
// Registered at most once per mint.
// Corresponds to token_metadata table in PostgreSQL.
type TokenMetadata struct {
	Mint      string // token mint address
	Name      string // display name, 1-32 chars
	Symbol    string // ticker symbol, 1-10 chars
	URI       string // https:// or ipfs:// pointer to off-chain data
	CreatedAt int64  // record creation timestamp (seconds)
}
