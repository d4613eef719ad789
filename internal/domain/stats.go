package domain

// PerformanceStats aggregates all COMPLETED trades.
// BestTrade and WorstTrade are nil until the first trade is recorded.
type PerformanceStats struct {
	TotalTrades      int              `json:"totalTrades"`
	SuccessfulTrades int              `json:"successfulTrades"` // profit > 0
	FailedTrades     int              `json:"failedTrades"`     // profit <= 0
	TotalProfit      float64          `json:"totalProfit"`
	BestTrade        *float64         `json:"bestTrade"`
	WorstTrade       *float64         `json:"worstTrade"`
	WinRate          float64          `json:"winRate"` // percent
	History          []SimulatedTrade `json:"history"` // recorded trades in settlement order
}

// StatsDocument is the statistics query response.
// Trades holds every simulated trade, including PENDING and FAILED ones.
type StatsDocument struct {
	TotalTrades      int              `json:"totalTrades"`
	SuccessfulTrades int              `json:"successfulTrades"`
	FailedTrades     int              `json:"failedTrades"`
	TotalProfit      float64          `json:"totalProfit"`
	BestTrade        *float64         `json:"bestTrade"`
	WorstTrade       *float64         `json:"worstTrade"`
	WinRate          float64          `json:"winRate"`
	OpenTrades       int              `json:"openTrades"`
	Trades           []SimulatedTrade `json:"trades"`
}
