package discovery

import "solana-pool-sniper/internal/domain"

// Default liquidity thresholds.
const (
	DefaultMinBaseLiquidity  = 1.0      // SOL
	DefaultMinQuoteLiquidity = 100000.0 // tokens
)

// EligibilityFilter applies static liquidity thresholds.
type EligibilityFilter struct {
	MinBaseLiquidity  float64
	MinQuoteLiquidity float64
}

// DefaultEligibilityFilter returns the filter with default thresholds.
func DefaultEligibilityFilter() EligibilityFilter {
	return EligibilityFilter{
		MinBaseLiquidity:  DefaultMinBaseLiquidity,
		MinQuoteLiquidity: DefaultMinQuoteLiquidity,
	}
}

// Eligible reports whether both legs meet their threshold. Equality passes.
func (f EligibilityFilter) Eligible(baseAmount, quoteAmount float64) bool {
	return baseAmount >= f.MinBaseLiquidity && quoteAmount >= f.MinQuoteLiquidity
}

// Check applies Eligible to a classified pair.
func (f EligibilityFilter) Check(pair *domain.LegPair) bool {
	return f.Eligible(pair.Base.TokenAmount, pair.Quote.TokenAmount)
}
