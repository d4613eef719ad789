package metrics

import (
	"fmt"
	"sync"

	"solana-pool-sniper/internal/domain"
	"solana-pool-sniper/internal/storage"
)

// PerformanceAggregator keeps running statistics over completed trades.
// Safe for concurrent use.
type PerformanceAggregator struct {
	mu    sync.Mutex
	stats domain.PerformanceStats
}

// NewPerformanceAggregator creates an empty aggregator.
func NewPerformanceAggregator() *PerformanceAggregator {
	return &PerformanceAggregator{}
}

// Record folds one COMPLETED trade into the statistics.
// Returns storage.ErrInvalidInput for any other status or a missing profit.
func (a *PerformanceAggregator) Record(trade *domain.SimulatedTrade) error {
	if trade == nil {
		return fmt.Errorf("record trade: %w", storage.ErrInvalidInput)
	}
	if trade.Status != domain.TradeStatusCompleted || trade.Profit == nil {
		return fmt.Errorf("record trade %d with status %s: %w", trade.ID, trade.Status, storage.ErrInvalidInput)
	}

	profit := *trade.Profit

	a.mu.Lock()
	defer a.mu.Unlock()

	s := &a.stats
	s.TotalTrades++
	if profit > 0 {
		s.SuccessfulTrades++
	} else {
		s.FailedTrades++
	}
	s.TotalProfit += profit

	if s.BestTrade == nil || profit > *s.BestTrade {
		v := profit
		s.BestTrade = &v
	}
	if s.WorstTrade == nil || profit < *s.WorstTrade {
		v := profit
		s.WorstTrade = &v
	}

	s.History = append(s.History, *trade.Clone())
	return nil
}

// Snapshot returns a deep copy of the current statistics with WinRate filled in.
func (a *PerformanceAggregator) Snapshot() domain.PerformanceStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.stats
	out.BestTrade = copyFloat(a.stats.BestTrade)
	out.WorstTrade = copyFloat(a.stats.WorstTrade)
	out.WinRate = winRate(a.stats.SuccessfulTrades, a.stats.TotalTrades)

	out.History = make([]domain.SimulatedTrade, len(a.stats.History))
	for i := range a.stats.History {
		out.History[i] = *a.stats.History[i].Clone()
	}
	return out
}

// TotalProfit returns the cumulative profit without copying history.
func (a *PerformanceAggregator) TotalProfit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats.TotalProfit
}

func winRate(successful, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
