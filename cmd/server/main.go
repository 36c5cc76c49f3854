// Package main runs the DevRewards ledger API server:
// - HTTP API for staking, the faucet, transfers, and metadata
// - Prometheus metrics on /metrics
// - WebSocket event feed on /ws/events
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"devrewards-ledger/internal/observability"
	"devrewards-ledger/internal/staking"
	"devrewards-ledger/internal/storage"
	chstore "devrewards-ledger/internal/storage/clickhouse"
	"devrewards-ledger/internal/storage/memory"
	"devrewards-ledger/internal/storage/migrations"
	pgstore "devrewards-ledger/internal/storage/postgres"
	"devrewards-ledger/internal/stream"
	"devrewards-ledger/internal/token"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	admin := flag.String("admin", envOr("ADMIN_ADDRESS", "admin"), "Admin address recorded at initialization")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	store, events, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Token service and one-time initialization
	tokens, err := token.NewService(store)
	if err != nil {
		logger.Fatalf("Failed to create token service: %v", err)
	}

	if _, err := store.GetConfig(ctx); errors.Is(err, storage.ErrNotFound) {
		cfg, err := tokens.Initialize(ctx, *admin)
		if err != nil {
			logger.Fatalf("Failed to initialize platform: %v", err)
		}
		logger.Printf("Initialized platform: mint=%s vault=%s admin=%s", cfg.Mint, cfg.Vault, cfg.Admin)
	} else if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Event fan-out: audit store + websocket subscribers
	hub := stream.NewHub(nil, logger)
	sink := staking.MultiSink{staking.NewAuditSink(events, logger), hub}

	ledger := staking.NewLedger(store, tokens.VaultAuthority()).WithEventSink(sink)

	server := &apiServer{
		store:   store,
		events:  events,
		tokens:  tokens,
		ledger:  ledger,
		hub:     hub,
		metrics: observability.NewMetrics(""),
		logger:  logger,
	}

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.routes(),
	}

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				server.metrics.StreamSubscribers.Set(float64(hub.SubscriberCount()))
			}
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		hub.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores builds the ledger store and the event audit store.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.Ledger, storage.EventStore, func(), error) {
	if useMemory {
		return memory.NewLedger(), memory.NewEventStore(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse (migrations return the connection for reuse)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return pgstore.NewLedger(pool), chstore.NewEventStore(chConn), cleanup, nil
}

// envOr returns the environment variable value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
