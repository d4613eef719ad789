package discovery

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"solana-pool-sniper/internal/domain"
)

// ErrEmptyPayload is returned when a webhook body carries no notification.
var ErrEmptyPayload = errors.New("webhook payload has no notifications")

// ParseWebhook decodes an enhanced-transaction webhook body and returns its
// first notification. Later notifications in the same delivery are ignored.
func ParseWebhook(body []byte) (*domain.PoolCreationEvent, error) {
	var events []domain.PoolCreationEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrEmptyPayload
	}
	return &events[0], nil
}

// ValidateSignature checks that a transaction signature is non-empty base58.
func ValidateSignature(signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: missing signature", domain.ErrMalformedEvent)
	}
	if _, err := base58.Decode(signature); err != nil {
		return fmt.Errorf("%w: signature %q is not base58: %v", domain.ErrMalformedEvent, signature, err)
	}
	return nil
}
