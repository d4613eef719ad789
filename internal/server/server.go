// Package server exposes the webhook receiver, statistics queries and
// operational endpoints over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"solana-pool-sniper/internal/domain"
	"solana-pool-sniper/internal/ingestion"
	"solana-pool-sniper/internal/observability"
)

// maxWebhookBody bounds the size of a single webhook delivery.
const maxWebhookBody = 1 << 20

// EventProcessor handles one decoded notification.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.PoolCreationEvent) (ingestion.Result, error)
}

// TradeQuerier answers statistics and trade lookups.
type TradeQuerier interface {
	Stats(ctx context.Context) (domain.StatsDocument, error)
	Trade(ctx context.Context, id int64) (*domain.SimulatedTrade, error)
	PendingCount(ctx context.Context) (int, error)
}

// LedgerSizer reports how many signatures the dedup ledger holds.
type LedgerSizer interface {
	Len() int
}

// StatusInfo is the static configuration summary reported by /status.
type StatusInfo struct {
	PaperTrading      bool    `json:"paper_trading"`
	MinBaseLiquidity  float64 `json:"min_base_liquidity"`
	MinQuoteLiquidity float64 `json:"min_quote_liquidity"`
	StakeAmount       float64 `json:"stake_amount"`
	HoldingDelay      string  `json:"holding_delay"`
	QuoteTimeout      string  `json:"quote_timeout"`
	QuoteBaseURL      string  `json:"quote_base_url"`
	NativeMint        string  `json:"native_mint"`
}

// Server is the HTTP front of the simulator.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	processor  EventProcessor
	trades     TradeQuerier
	ledger     LedgerSizer
	wsHandler  http.HandlerFunc
	wsClients  func() int
	authToken  string
	info       StatusInfo
	startedAt  time.Time
	logger     *log.Logger
}

// ServerOptions contains configuration for creating a Server.
type ServerOptions struct {
	Addr      string
	Processor EventProcessor
	Trades    TradeQuerier
	Ledger    LedgerSizer

	// WSHandler serves GET /ws/trades when set.
	WSHandler http.HandlerFunc
	WSClients func() int

	// AuthToken, when non-empty, must match the Authorization header of
	// every webhook delivery.
	AuthToken string

	Info   StatusInfo
	Logger *log.Logger
}

// NewServer creates a Server with all routes registered.
func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	wsClients := opts.WSClients
	if wsClients == nil {
		wsClients = func() int { return 0 }
	}

	s := &Server{
		mux:       http.NewServeMux(),
		processor: opts.Processor,
		trades:    opts.Trades,
		ledger:    opts.Ledger,
		wsHandler: opts.WSHandler,
		wsClients: wsClients,
		authToken: opts.AuthToken,
		info:      opts.Info,
		startedAt: time.Now(),
		logger:    logger,
	}
	s.routes()

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Webhook receiver
	s.mux.HandleFunc("POST /webhook", s.handleWebhook)

	// Queries
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /trades/{id}", s.handleTrade)

	// Health check
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	s.mux.Handle("GET /metrics", observability.Handler())

	// Status endpoint
	s.mux.HandleFunc("GET /status", s.handleStatus)

	// Live trade feed
	if s.wsHandler != nil {
		s.mux.HandleFunc("GET /ws/trades", s.wsHandler)
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks until the server fails or is shut down.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("Starting HTTP server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown waits for in-flight requests within the ctx deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Println("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
