// Package main runs the dashboard service: background pollers for gas,
// price, and whale activity, scheduled APR snapshots, and the HTTP API
// that serves the derived data.
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

	"github.com/ethereum/go-ethereum/common"

	"sld-dashboard/internal/chain"
	"sld-dashboard/internal/config"
	"sld-dashboard/internal/contracts"
	"sld-dashboard/internal/explorer"
	"sld-dashboard/internal/gas"
	"sld-dashboard/internal/observability"
	"sld-dashboard/internal/poller"
	"sld-dashboard/internal/presale"
	"sld-dashboard/internal/price"
	"sld-dashboard/internal/scheduler"
	"sld-dashboard/internal/server"
	"sld-dashboard/internal/staking"
	"sld-dashboard/internal/storage"
	chstore "sld-dashboard/internal/storage/clickhouse"
	"sld-dashboard/internal/storage/memory"
	"sld-dashboard/internal/storage/migrations"
	pgstore "sld-dashboard/internal/storage/postgres"
	"sld-dashboard/internal/whale"
)

// dashboardStores holds the storage implementations the service uses.
type dashboardStores struct {
	aprStore   storage.AprHistoryStore
	whaleStore storage.WhaleAlertStore
	priceStore storage.PricePointStore
}

func main() {
	loadEnvFile()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}
	if !*useMemory && cfg.Database.PostgresDSN == "" {
		logger.Fatal("postgres_dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatalf("Create stores: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("")

	// Chain access and contract bindings. The server only reads; no
	// sender is attached.
	rpc := chain.NewHTTPClient(cfg.Chain.RPCURL, chain.WithMetrics(metrics))
	tokenAddr := common.HexToAddress(cfg.Contracts.Token)
	stakingAddr := common.HexToAddress(cfg.Contracts.Staking)
	token := contracts.NewToken(tokenAddr, rpc, nil)
	stakingContract := contracts.NewStaking(stakingAddr, rpc, nil)

	explorerClient := explorer.NewClient(cfg.Explorer.BaseURL, cfg.Explorer.APIKey, explorer.WithMetrics(metrics))
	priceClient := price.NewClient(cfg.Price.BaseURL)

	stakingSvc := staking.NewService(stakingContract, token, explorerClient, stakingAddr, stores.aprStore)

	var presaleSvc *presale.Service
	if cfg.Contracts.Presale != "" {
		presaleContract := contracts.NewPresale(common.HexToAddress(cfg.Contracts.Presale), rpc, nil)
		presaleSvc = presale.NewService(presaleContract)
	}

	threshold, err := cfg.WhaleThreshold()
	if err != nil {
		logger.Fatalf("Whale threshold: %v", err)
	}
	monitor := whale.NewMonitor(explorerClient, stores.whaleStore, cfg.Contracts.Token, threshold)

	// Pollers.
	tracker := &gas.Tracker{}
	readGas := func(ctx context.Context) (float64, error) {
		gwei, err := rpc.GasPriceGwei(ctx)
		if err != nil {
			// Node read failed; the explorer's gas oracle is the
			// fallback source.
			return explorerClient.GasOracle(ctx)
		}
		return gwei, nil
	}
	sampler := gas.NewSampler(readGas)
	gasPoller := poller.NewGasPoller(sampler, tracker, metrics, seconds(cfg.Poll.GasSeconds))
	pricePoller := poller.NewPricePoller(priceClient, stores.priceStore, cfg.Price.PairAddr, metrics, seconds(cfg.Poll.PriceSeconds))
	whalePoller := poller.NewWhalePoller(monitor, metrics, seconds(cfg.Poll.WhaleSeconds))

	var group poller.Group
	group.Go(func() { gasPoller.Run(ctx) })
	group.Go(func() { pricePoller.Run(ctx) })
	group.Go(func() { whalePoller.Run(ctx) })

	// Live transfer watcher when a WebSocket endpoint is configured.
	// The polling monitor stays on as backfill.
	if cfg.Chain.WSURL != "" {
		ws, err := chain.NewWSClient(ctx, cfg.Chain.WSURL, nil)
		if err != nil {
			logger.Fatalf("Connect WebSocket: %v", err)
		}
		defer ws.Close()

		watcher := whale.NewWatcher(ws, stores.whaleStore, cfg.Contracts.Token, threshold,
			whale.WithWatcherMetrics(metrics))
		group.Go(func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("Whale watcher stopped: %v", err)
			}
		})
	}

	// Scheduled APR snapshots.
	sched := scheduler.New(ctx, stakingSvc, metrics)
	if err := sched.RegisterAll(cfg.Schedule.AprSnapshotCron); err != nil {
		logger.Fatalf("Register schedule: %v", err)
	}
	sched.Start()
	sched.RunAprSnapshotNow()

	// HTTP API.
	srv := server.New(server.Options{
		GasTracker: tracker,
		Price:      pricePoller,
		WhaleStore: stores.whaleStore,
		AprStore:   stores.aprStore,
		Staking:    stakingSvc,
		Presale:    presaleSvc,
		Metrics:    metrics,
		Logger:     logger,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpErr := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s", cfg.Server.Addr)
		httpErr <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
	case err := <-httpErr:
		logger.Printf("HTTP server error: %v", err)
	}

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown: %v", err)
	}

	group.Wait()
	logger.Println("Shutdown complete")
}

// seconds converts a config interval to a duration, treating zero or
// negative values as one minute.
func seconds(n int) time.Duration {
	if n <= 0 {
		return time.Minute
	}
	return time.Duration(n) * time.Second
}

// createStores builds the storage layer and runs migrations. ClickHouse
// is optional; without it price history is kept in memory and lost on
// restart.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool) (*dashboardStores, func(), error) {
	if useMemory {
		stores := &dashboardStores{
			aprStore:   memory.NewAprHistoryStore(),
			whaleStore: memory.NewWhaleAlertStore(),
			priceStore: memory.NewPricePointStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Database.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &dashboardStores{
		aprStore:   pgstore.NewAprHistoryStore(pool),
		whaleStore: pgstore.NewWhaleAlertStore(pool),
	}

	if cfg.Database.ClickhouseDSN == "" {
		stores.priceStore = memory.NewPricePointStore()
		return stores, pool.Close, nil
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.Database.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	stores.priceStore = chstore.NewPricePointStore(chConn)

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
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

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
