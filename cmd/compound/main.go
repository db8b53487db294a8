// Package main rehearses the compound chain for a wallet: it reads the
// live pending rewards and allowance over RPC, then walks the
// claim → approve → stake sequence against a stub sender. No
// transaction is broadcast; signing stays with the user's wallet. The
// run shows which steps a real compound would submit and persists
// resume state the same way the dashboard does.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/chain"
	"sld-dashboard/internal/compound"
	"sld-dashboard/internal/config"
	"sld-dashboard/internal/contracts"
	"sld-dashboard/internal/domain"
	"sld-dashboard/internal/storage"
	"sld-dashboard/internal/storage/memory"
	pgstore "sld-dashboard/internal/storage/postgres"
	walletstub "sld-dashboard/internal/wallet/stub"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	user := flag.String("user", "", "Wallet address to compound for (required)")
	poolID := flag.Int("pool", 0, "Staking pool (0 flexible, 1 90-day, 2 180-day)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for resume state")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[compound] ", log.LstdFlags)

	if !common.IsHexAddress(*user) {
		logger.Fatal("--user must be a valid address")
	}
	pool, err := domain.ParsePoolID(*poolID)
	if err != nil {
		logger.Fatalf("Invalid pool: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	var states storage.CompoundStateStore = memory.NewCompoundStateStore()
	if *postgresDSN != "" {
		pgPool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		defer pgPool.Close()
		states = pgstore.NewCompoundStateStore(pgPool)
	}

	rpc := chain.NewHTTPClient(cfg.Chain.RPCURL)
	sender := walletstub.NewSender()

	token := contracts.NewToken(common.HexToAddress(cfg.Contracts.Token), rpc, sender)
	stakingContract := contracts.NewStaking(common.HexToAddress(cfg.Contracts.Staking), rpc, sender)

	orch := compound.New(compound.Options{
		Staking: stakingContract,
		Token:   token,
		Sender:  sender,
		States:  states,
		Verbose: true,
	})

	result, err := orch.Run(ctx, common.HexToAddress(*user), pool)
	if err != nil {
		logger.Fatalf("Compound run: %v", err)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatalf("Encode result: %v", err)
		}
		return
	}

	fmt.Printf("Pool %d rehearsal for %s\n", pool, *user)
	fmt.Printf("Amount: %s wei\n", result.Amount)
	for _, step := range result.Steps {
		fmt.Printf("  %-8s %s\n", step.Step, step.TxHash)
	}
	fmt.Println(result.Message)
}
