package domain

// Notification types emitted by the indexing provider.
const (
	EventTypeCreatePool = "CREATE_POOL"
)

// TokenTransfer is one asset movement inside a notification.
type TokenTransfer struct {
	Mint            string  `json:"mint"`
	TokenAmount     float64 `json:"tokenAmount"`
	FromUserAccount string  `json:"fromUserAccount,omitempty"` // unused
	ToUserAccount   string  `json:"toUserAccount,omitempty"`   // unused
}

// PoolCreationEvent represents one inbound webhook notification.
// Only the fields needed for classification are decoded.
type PoolCreationEvent struct {
	Signature      string          `json:"signature"`
	Type           string          `json:"type"`
	Source         string          `json:"source,omitempty"`    // DEX label reported by the provider
	Timestamp      int64           `json:"timestamp,omitempty"` // block time (unix seconds)
	TokenTransfers []TokenTransfer `json:"tokenTransfers"`
}

// IsPoolCreation reports whether the notification should trigger a simulation.
func (e *PoolCreationEvent) IsPoolCreation() bool {
	return e.Type == EventTypeCreatePool
}

// LegPair is the classified view of a pool-creation event.
// Base is the native-asset leg, Quote is the newly created token.
type LegPair struct {
	Base  TokenTransfer
	Quote TokenTransfer
	Price float64 // base units per one quote unit
}
