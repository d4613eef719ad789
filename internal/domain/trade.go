package domain

import "time"

// TradeStatus is the lifecycle state of a simulated trade.
type TradeStatus string

// Trade lifecycle states. COMPLETED and FAILED are terminal.
const (
	TradeStatusPending   TradeStatus = "PENDING"
	TradeStatusCompleted TradeStatus = "COMPLETED"
	TradeStatusFailed    TradeStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed.
func (s TradeStatus) IsTerminal() bool {
	return s == TradeStatusCompleted || s == TradeStatusFailed
}

// SimulatedTrade is a paper position opened at pool creation and valued
// once after the holding delay.
type SimulatedTrade struct {
	ID        int64       `json:"id"`
	Token     string      `json:"token"`               // quote mint
	Signature string      `json:"signature,omitempty"` // pool-creation transaction
	Status    TradeStatus `json:"status"`

	// Entry
	EntryTime     time.Time `json:"entryTime"`
	EntryPrice    float64   `json:"entryPrice"`     // base units per quote unit
	QuoteQuantity float64   `json:"tokensReceived"` // stake / entry price
	StakeAmount   float64   `json:"solInvested"`    // base units committed

	// Exit (nil until COMPLETED)
	ExitTime      *time.Time `json:"exitTime,omitempty"`
	ExitPrice     *float64   `json:"exitPrice,omitempty"`
	Profit        *float64   `json:"profit,omitempty"`
	PercentReturn *float64   `json:"percentReturn,omitempty"`

	// Set when the trade ends FAILED.
	FailureReason string `json:"failureReason,omitempty"`
}

// Clone returns a deep copy safe to hand to other goroutines.
func (t *SimulatedTrade) Clone() *SimulatedTrade {
	c := *t
	if t.ExitTime != nil {
		v := *t.ExitTime
		c.ExitTime = &v
	}
	c.ExitPrice = clonePtr(t.ExitPrice)
	c.Profit = clonePtr(t.Profit)
	c.PercentReturn = clonePtr(t.PercentReturn)
	return &c
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// TradeOutcome holds the settlement values written on COMPLETED.
type TradeOutcome struct {
	ExitTime      time.Time
	ExitPrice     float64
	Profit        float64
	PercentReturn float64
}

// Apply finalizes the trade as COMPLETED with the given outcome.
func (t *SimulatedTrade) Apply(o TradeOutcome) {
	exitTime := o.ExitTime
	exitPrice := o.ExitPrice
	profit := o.Profit
	pct := o.PercentReturn

	t.ExitTime = &exitTime
	t.ExitPrice = &exitPrice
	t.Profit = &profit
	t.PercentReturn = &pct
	t.Status = TradeStatusCompleted
}
