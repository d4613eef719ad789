package memory

import (
	"context"
	"sort"
	"sync"

	"solana-pool-sniper/internal/domain"
	"solana-pool-sniper/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.SimulatedTrade // keyed by trade id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[int64]*domain.SimulatedTrade),
	}
}

// Insert adds a new PENDING trade. Returns ErrDuplicateKey if the ID exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.SimulatedTrade) error {
	if t == nil || t.ID <= 0 || t.Status != domain.TradeStatusPending {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[t.ID] = t.Clone()
	return nil
}

// Finalize applies fn to a PENDING trade and stores the terminal result.
func (s *TradeStore) Finalize(_ context.Context, id int64, fn func(t *domain.SimulatedTrade)) (*domain.SimulatedTrade, error) {
	if fn == nil {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	if t.Status != domain.TradeStatusPending {
		return nil, storage.ErrAlreadyFinalized
	}

	// Work on a copy so a misbehaving fn cannot leave a half-written record.
	next := t.Clone()
	fn(next)
	if next.ID != id || !next.Status.IsTerminal() {
		return nil, storage.ErrInvalidInput
	}

	s.data[id] = next
	return next.Clone(), nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, id int64) (*domain.SimulatedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return t.Clone(), nil
}

// List retrieves all trades ordered by ID ASC.
func (s *TradeStore) List(_ context.Context) ([]*domain.SimulatedTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SimulatedTrade, 0, len(s.data))
	for _, t := range s.data {
		result = append(result, t.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// CountByStatus returns the number of trades in the given status.
func (s *TradeStore) CountByStatus(_ context.Context, status domain.TradeStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, t := range s.data {
		if t.Status == status {
			n++
		}
	}
	return n, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
