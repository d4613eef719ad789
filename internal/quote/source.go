// Package quote fetches settlement prices for simulated trades.
package quote

import "context"

// Source returns the current price of a token in native-asset units.
// ok is false when the source knows no price for the mint; that is not an error.
type Source interface {
	Price(ctx context.Context, mint string) (price float64, ok bool, err error)
}
