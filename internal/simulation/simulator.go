package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"solana-pool-sniper/internal/domain"
	"solana-pool-sniper/internal/metrics"
	"solana-pool-sniper/internal/observability"
	"solana-pool-sniper/internal/quote"
	"solana-pool-sniper/internal/storage"
)

// Simulator defaults.
const (
	DefaultStakeAmount  = 0.1
	DefaultHoldingDelay = 3 * time.Minute
	DefaultQuoteTimeout = 10 * time.Second
)

// ErrSimulatorClosed is returned by Open after Close was called.
var ErrSimulatorClosed = errors.New("simulator closed")

// Simulator opens paper trades and settles each one after the holding delay.
type Simulator struct {
	store        storage.TradeStore
	quotes       quote.Source
	agg          *metrics.PerformanceAggregator
	stake        float64
	holdingDelay time.Duration
	quoteTimeout time.Duration
	notify       func(domain.TradeEvent)
	logger       *log.Logger
	now          func() time.Time

	nextID atomic.Int64

	// statsMu makes finalize+record atomic with respect to Stats.
	statsMu sync.RWMutex

	mu     sync.Mutex
	timers map[int64]*time.Timer
	closed bool
	wg     sync.WaitGroup
}

// SimulatorOptions contains configuration for creating a Simulator.
type SimulatorOptions struct {
	Store        storage.TradeStore
	Quotes       quote.Source
	Aggregator   *metrics.PerformanceAggregator // nil creates a fresh one
	Stake        float64                        // base units per trade
	HoldingDelay time.Duration
	QuoteTimeout time.Duration

	// Notify receives every lifecycle transition. It must not block.
	Notify func(domain.TradeEvent)

	Logger *log.Logger
	Now    func() time.Time
}

// NewSimulator creates a trade simulator.
func NewSimulator(opts SimulatorOptions) (*Simulator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("simulator: trade store is required: %w", storage.ErrInvalidInput)
	}
	if opts.Quotes == nil {
		return nil, fmt.Errorf("simulator: quote source is required: %w", storage.ErrInvalidInput)
	}
	if opts.Stake == 0 {
		opts.Stake = DefaultStakeAmount
	}
	if opts.Stake < 0 || math.IsNaN(opts.Stake) || math.IsInf(opts.Stake, 0) {
		return nil, fmt.Errorf("simulator: stake %v: %w", opts.Stake, domain.ErrInvalidTradeParameters)
	}
	if opts.HoldingDelay == 0 {
		opts.HoldingDelay = DefaultHoldingDelay
	}
	if opts.HoldingDelay < 0 {
		return nil, fmt.Errorf("simulator: holding delay %v: %w", opts.HoldingDelay, storage.ErrInvalidInput)
	}
	if opts.QuoteTimeout <= 0 {
		opts.QuoteTimeout = DefaultQuoteTimeout
	}
	if opts.Aggregator == nil {
		opts.Aggregator = metrics.NewPerformanceAggregator()
	}
	if opts.Notify == nil {
		opts.Notify = func(domain.TradeEvent) {}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Simulator{
		store:        opts.Store,
		quotes:       opts.Quotes,
		agg:          opts.Aggregator,
		stake:        opts.Stake,
		holdingDelay: opts.HoldingDelay,
		quoteTimeout: opts.QuoteTimeout,
		notify:       opts.Notify,
		logger:       opts.Logger,
		now:          opts.Now,
		timers:       make(map[int64]*time.Timer),
	}, nil
}

// Stake returns the amount committed per trade.
func (s *Simulator) Stake() float64 { return s.stake }

// Open records a PENDING trade for token at entryPrice and schedules its
// settlement after the holding delay. The returned trade is a copy.
func (s *Simulator) Open(ctx context.Context, token string, entryPrice float64, signature string) (*domain.SimulatedTrade, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrInvalidTradeParameters)
	}
	if entryPrice <= 0 || math.IsNaN(entryPrice) || math.IsInf(entryPrice, 0) {
		return nil, fmt.Errorf("%w: entry price %v", domain.ErrInvalidTradeParameters, entryPrice)
	}
	qty := s.stake / entryPrice
	if math.IsInf(qty, 0) {
		return nil, fmt.Errorf("%w: entry price %v too small", domain.ErrInvalidTradeParameters, entryPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSimulatorClosed
	}

	trade := &domain.SimulatedTrade{
		ID:            s.nextID.Add(1),
		Token:         token,
		Signature:     signature,
		Status:        domain.TradeStatusPending,
		EntryTime:     s.now(),
		EntryPrice:    entryPrice,
		QuoteQuantity: qty,
		StakeAmount:   s.stake,
	}
	if err := s.store.Insert(ctx, trade); err != nil {
		return nil, fmt.Errorf("insert trade %d: %w", trade.ID, err)
	}

	observability.RecordTradeOpened()
	s.logger.Printf("paper trade #%d started: token=%s entry_price=%.9f stake=%g tokens_received=%.2f",
		trade.ID, token, entryPrice, s.stake, qty)
	s.notify(domain.TradeEvent{Type: domain.TradeEventOpened, Trade: *trade.Clone()})

	// Settlement captures only the id and the token.
	id := trade.ID
	s.wg.Add(1)
	s.timers[id] = time.AfterFunc(s.holdingDelay, func() {
		s.fire(id, token)
	})

	return trade.Clone(), nil
}

func (s *Simulator) fire(id int64, token string) {
	defer s.wg.Done()

	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	s.settle(id, token)
}

// settle values a PENDING trade at the current quote and finalizes it.
// A quote failure or a panic leaves the trade FAILED and statistics untouched.
func (s *Simulator) settle(id int64, token string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("paper trade #%d: settlement panic: %v", id, r)
			s.fail(id, fmt.Sprintf("settlement panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.quoteTimeout)
	defer cancel()

	trade, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.Printf("paper trade #%d: load failed: %v", id, err)
		return
	}

	price, ok, err := s.quotes.Price(ctx, token)
	if err != nil {
		err = fmt.Errorf("%w: token %s: %v", domain.ErrQuoteFetch, token, err)
		s.logger.Printf("paper trade #%d failed: %v", id, err)
		s.fail(id, err.Error())
		return
	}

	// Without a quote the position is valued at entry, so proceeds equal the stake.
	exitPrice, proceeds := trade.EntryPrice, trade.StakeAmount
	if ok {
		exitPrice = price
		proceeds = trade.QuoteQuantity * exitPrice
	}
	profit := proceeds - trade.StakeAmount
	outcome := domain.TradeOutcome{
		ExitTime:      s.now(),
		ExitPrice:     exitPrice,
		Profit:        profit,
		PercentReturn: profit / trade.StakeAmount * 100,
	}

	final, err := s.finalize(id, func(t *domain.SimulatedTrade) {
		t.Apply(outcome)
	})
	if err != nil {
		s.logger.Printf("paper trade #%d: finalize failed: %v", id, err)
		return
	}

	observability.RecordTradeSettled(string(final.Status))
	observability.RecordTradeReturn(outcome.PercentReturn, s.agg.TotalProfit())

	if !ok {
		s.logger.Printf("paper trade #%d: no quote for %s, valued at entry price", id, token)
	}
	s.logger.Printf("paper trade #%d completed: exit_price=%.9f sol_received=%.4f profit=%.4f return=%.2f%%",
		id, exitPrice, proceeds, profit, outcome.PercentReturn)
	s.logPerformance()

	s.notify(domain.TradeEvent{Type: domain.TradeEventSettled, Trade: *final})
}

func (s *Simulator) fail(id int64, reason string) {
	final, err := s.finalize(id, func(t *domain.SimulatedTrade) {
		t.Status = domain.TradeStatusFailed
		t.FailureReason = reason
	})
	if err != nil {
		s.logger.Printf("paper trade #%d: mark failed: %v", id, err)
		return
	}

	observability.RecordTradeSettled(string(final.Status))
	s.notify(domain.TradeEvent{Type: domain.TradeEventSettled, Trade: *final})
}

// finalize applies fn to the stored trade and, for COMPLETED trades, records
// it in the aggregator under the stats lock.
func (s *Simulator) finalize(id int64, fn func(*domain.SimulatedTrade)) (*domain.SimulatedTrade, error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	final, err := s.store.Finalize(context.Background(), id, fn)
	if err != nil {
		return nil, err
	}
	if final.Status == domain.TradeStatusCompleted {
		if err := s.agg.Record(final); err != nil {
			return nil, fmt.Errorf("record trade %d: %w", id, err)
		}
	}
	return final, nil
}

func (s *Simulator) logPerformance() {
	p := s.agg.Snapshot()
	best, worst := 0.0, 0.0
	if p.BestTrade != nil {
		best = *p.BestTrade
	}
	if p.WorstTrade != nil {
		worst = *p.WorstTrade
	}
	s.logger.Printf("overall performance: total=%d successful=%d failed=%d total_profit=%.4f best=%.4f worst=%.4f win_rate=%.2f%%",
		p.TotalTrades, p.SuccessfulTrades, p.FailedTrades, p.TotalProfit, best, worst, p.WinRate)
}

// Stats returns the aggregate statistics and the full trade history
// as one consistent view.
func (s *Simulator) Stats(ctx context.Context) (domain.StatsDocument, error) {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()

	perf := s.agg.Snapshot()
	trades, err := s.store.List(ctx)
	if err != nil {
		return domain.StatsDocument{}, fmt.Errorf("list trades: %w", err)
	}

	doc := domain.StatsDocument{
		TotalTrades:      perf.TotalTrades,
		SuccessfulTrades: perf.SuccessfulTrades,
		FailedTrades:     perf.FailedTrades,
		TotalProfit:      perf.TotalProfit,
		BestTrade:        perf.BestTrade,
		WorstTrade:       perf.WorstTrade,
		WinRate:          perf.WinRate,
		Trades:           make([]domain.SimulatedTrade, 0, len(trades)),
	}
	for _, t := range trades {
		if t.Status == domain.TradeStatusPending {
			doc.OpenTrades++
		}
		doc.Trades = append(doc.Trades, *t)
	}
	return doc, nil
}

// Trade returns a single trade by ID.
func (s *Simulator) Trade(ctx context.Context, id int64) (*domain.SimulatedTrade, error) {
	return s.store.GetByID(ctx, id)
}

// PendingCount returns the number of trades still waiting for settlement.
func (s *Simulator) PendingCount(ctx context.Context) (int, error) {
	return s.store.CountByStatus(ctx, domain.TradeStatusPending)
}

// Close stops unfired settlement timers and waits for running settlements.
// Trades whose timer was stopped stay PENDING.
func (s *Simulator) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for id, t := range s.timers {
		if t.Stop() {
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
