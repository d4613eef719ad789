package discovery

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"solana-pool-sniper/internal/domain"
)

// NativeMint is the wrapped SOL mint, the base asset of every simulated trade.
var NativeMint = solana.SolMint.String()

// Classifier splits a pool-creation event into base and quote legs.
type Classifier struct {
	nativeMint string
}

// NewClassifier creates a classifier for the given native mint.
// An empty mint selects NativeMint.
func NewClassifier(nativeMint string) *Classifier {
	if nativeMint == "" {
		nativeMint = NativeMint
	}
	return &Classifier{nativeMint: nativeMint}
}

// NativeMint returns the mint treated as the base asset.
func (c *Classifier) NativeMint() string {
	return c.nativeMint
}

// Classify locates the base leg by mint identity (not position), picks the
// first other transfer as the quote leg and computes the spot price in base
// units per quote unit. All failures wrap domain.ErrMalformedEvent.
func (c *Classifier) Classify(event *domain.PoolCreationEvent) (*domain.LegPair, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: nil event", domain.ErrMalformedEvent)
	}
	if len(event.TokenTransfers) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 token transfers, got %d",
			domain.ErrMalformedEvent, len(event.TokenTransfers))
	}

	var base, quote *domain.TokenTransfer
	for i := range event.TokenTransfers {
		t := &event.TokenTransfers[i]
		if t.Mint == c.nativeMint {
			if base == nil {
				base = t
			}
			continue
		}
		if quote == nil {
			quote = t
		}
	}

	if base == nil {
		return nil, fmt.Errorf("%w: no %s transfer", domain.ErrMalformedEvent, c.nativeMint)
	}
	if quote == nil {
		return nil, fmt.Errorf("%w: no quote token transfer", domain.ErrMalformedEvent)
	}
	if _, err := solana.PublicKeyFromBase58(quote.Mint); err != nil {
		return nil, fmt.Errorf("%w: quote mint %q: %v", domain.ErrMalformedEvent, quote.Mint, err)
	}
	if quote.TokenAmount == 0 {
		return nil, fmt.Errorf("%w: zero quote amount for %s", domain.ErrMalformedEvent, quote.Mint)
	}

	price := base.TokenAmount / quote.TokenAmount
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("%w: non-finite price for %s", domain.ErrMalformedEvent, quote.Mint)
	}

	return &domain.LegPair{
		Base:  *base,
		Quote: *quote,
		Price: price,
	}, nil
}
