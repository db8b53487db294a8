// Package main rehearses presale operations: status and preview read
// the live contract over RPC; buy and the owner-gated admin actions
// run against a stub sender, so the owner check and amount parsing
// execute for real while no transaction is broadcast.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/chain"
	"sld-dashboard/internal/config"
	"sld-dashboard/internal/contracts"
	"sld-dashboard/internal/presale"
	walletstub "sld-dashboard/internal/wallet/stub"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	action := flag.String("action", "status", "One of: status, preview, buy, start, stop, set-rate, withdraw-bnb, withdraw-tokens")
	caller := flag.String("caller", "", "Caller address for owner-gated actions")
	bnb := flag.String("bnb", "", "BNB amount (preview, buy, withdraw-bnb)")
	tokens := flag.String("tokens", "", "Token amount (withdraw-tokens)")
	rate := flag.Int64("rate", 0, "New SLD-per-BNB rate (set-rate)")
	outputJSON := flag.Bool("json", false, "Output as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[presale] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if cfg.Contracts.Presale == "" {
		logger.Fatal("presale contract address is not configured")
	}

	ctx := context.Background()
	rpc := chain.NewHTTPClient(cfg.Chain.RPCURL)
	sender := walletstub.NewSender()
	svc := presale.NewService(contracts.NewPresale(common.HexToAddress(cfg.Contracts.Presale), rpc, sender))

	callerAddr := common.Address{}
	if *caller != "" {
		if !common.IsHexAddress(*caller) {
			logger.Fatal("--caller must be a valid address")
		}
		callerAddr = common.HexToAddress(*caller)
	}

	out := map[string]interface{}{"action": *action}
	switch *action {
	case "status":
		status, err := svc.Status(ctx)
		if err != nil {
			logger.Fatalf("Status: %v", err)
		}
		out["status"] = status

	case "preview":
		var amount float64
		if _, err := fmt.Sscanf(*bnb, "%f", &amount); err != nil {
			logger.Fatal("--bnb must be a decimal amount")
		}
		preview, err := svc.Preview(ctx, amount)
		if err != nil {
			logger.Fatalf("Preview: %v", err)
		}
		out["tokens"] = preview

	case "buy":
		hash, err := svc.Buy(ctx, *bnb)
		if err != nil {
			logger.Fatalf("Buy: %v", err)
		}
		out["txHash"] = hash

	case "start":
		hash, err := svc.StartSale(ctx, callerAddr)
		if err != nil {
			logger.Fatalf("StartSale: %v", err)
		}
		out["txHash"] = hash

	case "stop":
		hash, err := svc.StopSale(ctx, callerAddr)
		if err != nil {
			logger.Fatalf("StopSale: %v", err)
		}
		out["txHash"] = hash

	case "set-rate":
		hash, err := svc.SetRate(ctx, callerAddr, *rate)
		if err != nil {
			logger.Fatalf("SetRate: %v", err)
		}
		out["txHash"] = hash

	case "withdraw-bnb":
		hash, err := svc.WithdrawBNB(ctx, callerAddr, *bnb)
		if err != nil {
			logger.Fatalf("WithdrawBNB: %v", err)
		}
		out["txHash"] = hash

	case "withdraw-tokens":
		hash, err := svc.WithdrawTokens(ctx, callerAddr, *tokens)
		if err != nil {
			logger.Fatalf("WithdrawTokens: %v", err)
		}
		out["txHash"] = hash

	default:
		logger.Fatalf("Unknown action %q", *action)
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			logger.Fatalf("Encode result: %v", err)
		}
		return
	}
	for k, v := range out {
		if k == "action" {
			continue
		}
		fmt.Printf("%s: %v\n", k, v)
	}
}
