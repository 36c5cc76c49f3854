// Package main runs a deterministic end-to-end scenario against the
// in-memory store: initialize, faucet claims, stakes across APY tiers,
// simulated time travel, and unstakes. Useful for demos and sanity
// checks without any external services.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"devrewards-ledger/internal/keys"
	"devrewards-ledger/internal/staking"
	"devrewards-ledger/internal/storage/memory"
	"devrewards-ledger/internal/token"
)

const baseUnit = 1_000_000_000 // 1 DEVR

func main() {
	start := flag.Int64("start", 1_700_000_000, "Scenario start time (unix seconds)")
	flag.Parse()

	logger := log.New(os.Stdout, "[simulate] ", log.LstdFlags)
	ctx := context.Background()

	// Simulated clock shared by every component.
	now := *start
	clock := func() int64 { return now }

	store := memory.NewLedger()
	events := memory.NewEventStore()

	tokens, err := token.NewService(store)
	if err != nil {
		logger.Fatalf("create token service: %v", err)
	}
	tokens = tokens.WithClock(clock)

	ledger := staking.NewLedger(store, tokens.VaultAuthority()).
		WithClock(clock).
		WithEventSink(staking.NewAuditSink(events, logger))

	cfg, err := tokens.Initialize(ctx, "admin")
	if err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	logger.Printf("initialized: mint=%s vault=%s", cfg.Mint, cfg.Vault)

	// Faucet claims create the user accounts and fund them.
	for _, user := range []string{"alice", "bob"} {
		claim, err := tokens.Claim(ctx, user)
		if err != nil {
			logger.Fatalf("claim for %s: %v", user, err)
		}
		logger.Printf("%s claimed %d base units (total claimed %d)", user, cfg.DailyClaimAmount, claim.TotalClaimed)
	}

	// Seed the vault with reward liquidity: stakes only deposit
	// principal, so rewards must already sit in the vault.
	aliceAccount, err := keys.TokenAccountAddress("alice", cfg.Mint)
	if err != nil {
		logger.Fatalf("derive alice account: %v", err)
	}
	if err := tokens.Transfer(ctx, aliceAccount, cfg.Vault, "alice", 50*baseUnit); err != nil {
		logger.Fatalf("fund vault: %v", err)
	}
	logger.Printf("vault funded with %d base units of reward liquidity", 50*baseUnit)

	// Open positions across the three APY tiers.
	stakes := []struct {
		user     string
		amount   uint64
		duration int64
	}{
		{"alice", 10 * baseUnit, staking.Tier90Days},
		{"alice", 5 * baseUnit, staking.Tier30Days},
		{"bob", 20 * baseUnit, staking.Tier7Days},
	}
	for _, st := range stakes {
		event, err := ledger.Stake(ctx, st.user, st.amount, st.duration)
		if err != nil {
			logger.Fatalf("stake for %s: %v", st.user, err)
		}
		logger.Printf("%s staked %d for %ds at %d/%d APY (index %d)",
			event.User, event.StakedAmount, event.LockDuration,
			event.APYNumerator, event.APYDenominator, event.StakeIndex)
	}

	printStats(ctx, logger, store)

	// Jump past the longest lock.
	now += staking.Tier90Days
	logger.Printf("advanced clock by %d seconds", staking.Tier90Days)

	for _, pos := range []struct {
		user  string
		index uint64
	}{
		{"alice", 0}, {"alice", 1}, {"bob", 0},
	} {
		event, err := ledger.Unstake(ctx, pos.user, pos.index)
		if err != nil {
			logger.Fatalf("unstake %s/%d: %v", pos.user, pos.index, err)
		}
		logger.Printf("%s unstaked index %d: principal=%d rewards=%d total=%d",
			event.User, event.StakeIndex, event.Principal, event.Rewards, event.TotalWithdrawn)
	}

	printStats(ctx, logger, store)

	for _, user := range []string{"alice", "bob"} {
		history, err := events.GetUnstakeEventsByUser(ctx, user)
		if err != nil {
			logger.Fatalf("event history for %s: %v", user, err)
		}
		var rewards uint64
		for _, e := range history {
			rewards += e.Rewards
		}
		logger.Printf("%s: %d unstakes, %d base units in rewards", user, len(history), rewards)
	}
}

func printStats(ctx context.Context, logger *log.Logger, store *memory.Ledger) {
	stats, err := store.GetStats(ctx)
	if err != nil {
		logger.Fatalf("load stats: %v", err)
	}
	logger.Printf("stats: total_staked=%d total_stakes=%d total_rewards_paid=%d",
		stats.TotalStaked, stats.TotalStakes, stats.TotalRewardsPaid)
}
