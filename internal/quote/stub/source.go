// Package stub provides a controllable quote.Source for tests.
package stub

import (
	"context"
	"sync"
	"time"

	"solana-pool-sniper/internal/quote"
)

// Source is an in-memory quote.Source.
type Source struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	delay  time.Duration
	calls  map[string]int
}

// NewSource creates an empty stub. Unknown mints report no price.
func NewSource() *Source {
	return &Source{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetPrice sets the price returned for mint.
func (s *Source) SetPrice(mint string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[mint] = price
	delete(s.errs, mint)
}

// SetError makes lookups for mint fail with err.
func (s *Source) SetError(mint string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[mint] = err
}

// SetDelay makes every lookup wait d or until ctx is done.
func (s *Source) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns how many lookups were made for mint.
func (s *Source) Calls(mint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[mint]
}

// Price implements quote.Source.
func (s *Source) Price(ctx context.Context, mint string) (float64, bool, error) {
	s.mu.Lock()
	s.calls[mint]++
	delay := s.delay
	price, ok := s.prices[mint]
	err := s.errs[mint]
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return 0, false, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return 0, false, err
	}
	return price, ok, nil
}

var _ quote.Source = (*Source)(nil)
