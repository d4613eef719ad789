package domain

// Trade lifecycle event types pushed to live subscribers.
const (
	TradeEventOpened  = "trade_opened"
	TradeEventSettled = "trade_settled"
)

// TradeEvent is one lifecycle transition of a simulated trade.
type TradeEvent struct {
	Type  string         `json:"type"`
	Trade SimulatedTrade `json:"trade"`
}
