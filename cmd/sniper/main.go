// Package main runs the pool sniper service:
// - Webhook receiver: pool-creation notifications → classify → filter → paper trade
// - Settlement: each paper trade is valued once after the holding delay
// - HTTP: /stats, /trades/{id}, /health, /metrics, /status, /ws/trades
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-pool-sniper/internal/config"
	"solana-pool-sniper/internal/discovery"
	"solana-pool-sniper/internal/ingestion"
	"solana-pool-sniper/internal/quote"
	"solana-pool-sniper/internal/server"
	"solana-pool-sniper/internal/server/ws"
	"solana-pool-sniper/internal/simulation"
	"solana-pool-sniper/internal/storage/memory"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and settlements.
const shutdownTimeout = 10 * time.Second

func main() {
	config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[sniper] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(config.ConfigPath(flag.CommandLine))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyFlags(flag.CommandLine)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	logBanner(logger, cfg)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Live trade feed
	hub := ws.NewHub(log.New(os.Stdout, "[ws] ", log.LstdFlags))

	// Simulation
	quotes := quote.NewJupiterClient(cfg.QuoteBaseURL, cfg.NativeMint, quote.WithTimeout(cfg.QuoteTimeout()))
	sim, err := simulation.NewSimulator(simulation.SimulatorOptions{
		Store:        memory.NewTradeStore(),
		Quotes:       quotes,
		Stake:        cfg.StakeAmount,
		HoldingDelay: cfg.HoldingDelay(),
		QuoteTimeout: cfg.QuoteTimeout(),
		Notify:       hub.Publish,
		Logger:       log.New(os.Stdout, "[simulation] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		logger.Fatalf("Failed to create simulator: %v", err)
	}

	// Webhook pipeline
	ledger := memory.NewSignatureLedger()
	filter := cfg.EligibilityFilter()
	proc, err := ingestion.NewProcessor(ingestion.ProcessorOptions{
		Classifier:   discovery.NewClassifier(cfg.NativeMint),
		Filter:       &filter,
		Ledger:       ledger,
		Opener:       sim,
		PaperTrading: cfg.PaperTrading,
		ExplorerURL:  cfg.ExplorerURL,
		ChartURL:     cfg.ChartURL,
		Logger:       log.New(os.Stdout, "[ingestion] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		logger.Fatalf("Failed to create processor: %v", err)
	}

	srv := server.NewServer(server.ServerOptions{
		Addr:      cfg.ListenAddr,
		Processor: proc,
		Trades:    sim,
		Ledger:    ledger,
		WSHandler: hub.HandleWS,
		WSClients: hub.ClientCount,
		AuthToken: cfg.WebhookAuthToken,
		Info: server.StatusInfo{
			PaperTrading:      cfg.PaperTrading,
			MinBaseLiquidity:  cfg.MinBaseLiquidity,
			MinQuoteLiquidity: cfg.MinQuoteLiquidity,
			StakeAmount:       cfg.StakeAmount,
			HoldingDelay:      cfg.HoldingDelay().String(),
			QuoteTimeout:      cfg.QuoteTimeout().String(),
			QuoteBaseURL:      cfg.QuoteBaseURL,
			NativeMint:        cfg.NativeMint,
		},
		Logger: log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile),
	})

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		err := srv.Shutdown(shutdownCtx)
		if closeErr := sim.Close(shutdownCtx); closeErr != nil {
			logger.Printf("Settlements still running at shutdown: %v", closeErr)
		}
		return err
	})

	err = g.Wait()
	close(done)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// logBanner prints the strategy settings at startup.
func logBanner(logger *log.Logger, cfg *config.Config) {
	mode := "paper trading"
	if !cfg.PaperTrading {
		mode = "watch only"
	}

	logger.Printf("Pool sniper started (%s)", mode)
	logger.Printf("Strategy settings: min_sol_liquidity=%g min_token_liquidity=%g stake=%g SOL holding_delay=%v",
		cfg.MinBaseLiquidity, cfg.MinQuoteLiquidity, cfg.StakeAmount, cfg.HoldingDelay())
	logger.Printf("Tracking performance at http://localhost%s/stats", cfg.ListenAddr)
}
