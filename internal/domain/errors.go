package domain

import "errors"

// Simulation errors.
var (
	// ErrMalformedEvent is returned when a notification cannot be classified.
	// The event is dropped but still counts as processed for dedup.
	ErrMalformedEvent = errors.New("malformed pool creation event")

	// ErrQuoteFetch is returned when the settlement price lookup fails.
	// The trade is marked FAILED and excluded from statistics.
	ErrQuoteFetch = errors.New("quote fetch failed")

	// ErrInvalidTradeParameters is returned for a zero, negative or
	// non-finite entry price. No trade is opened.
	ErrInvalidTradeParameters = errors.New("invalid trade parameters")
)
