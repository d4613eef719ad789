package storage

import (
	"context"

	"solana-pool-sniper/internal/domain"
)

// TradeStore holds the history of simulated trades.
// Trades are inserted PENDING and finalized exactly once.
type TradeStore interface {
	// Insert adds a new PENDING trade. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, t *domain.SimulatedTrade) error

	// Finalize moves a PENDING trade to a terminal state by applying fn to it.
	// Returns ErrNotFound if the ID does not exist and ErrAlreadyFinalized if
	// the trade is no longer PENDING. fn must leave the trade terminal.
	Finalize(ctx context.Context, id int64, fn func(t *domain.SimulatedTrade)) (*domain.SimulatedTrade, error)

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.SimulatedTrade, error)

	// List retrieves all trades ordered by ID ASC.
	List(ctx context.Context) ([]*domain.SimulatedTrade, error)

	// CountByStatus returns the number of trades in the given status.
	CountByStatus(ctx context.Context, status domain.TradeStatus) (int, error)
}

// SignatureLedger remembers transaction signatures that were already processed.
type SignatureLedger interface {
	// Seen reports whether the signature was marked before.
	Seen(signature string) bool

	// Mark records the signature. Marking twice is a no-op.
	Mark(signature string)

	// MarkIfNew atomically marks the signature and reports whether it was
	// unseen. Concurrent callers with the same signature get true exactly once.
	MarkIfNew(signature string) bool

	// Len returns the number of remembered signatures.
	Len() int
}
