package memory

import (
	"sync"

	"solana-pool-sniper/internal/storage"
)

// SignatureLedger is an in-memory implementation of storage.SignatureLedger.
// Entries are never evicted.
type SignatureLedger struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewSignatureLedger creates an empty ledger.
func NewSignatureLedger() *SignatureLedger {
	return &SignatureLedger{
		seen: make(map[string]struct{}),
	}
}

// Seen reports whether the signature was marked before.
func (l *SignatureLedger) Seen(signature string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.seen[signature]
	return ok
}

// Mark records the signature.
func (l *SignatureLedger) Mark(signature string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seen[signature] = struct{}{}
}

// MarkIfNew marks the signature and returns true if it was not seen before.
func (l *SignatureLedger) MarkIfNew(signature string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[signature]; ok {
		return false
	}
	l.seen[signature] = struct{}{}
	return true
}

// Len returns the number of remembered signatures.
func (l *SignatureLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.seen)
}

var _ storage.SignatureLedger = (*SignatureLedger)(nil)
