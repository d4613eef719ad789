// Package config defines the runtime configuration of the sniper and
// provides validation helpers.
package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"

	"solana-pool-sniper/internal/discovery"
	"solana-pool-sniper/internal/ingestion"
	"solana-pool-sniper/internal/quote"
	"solana-pool-sniper/internal/simulation"
)

// Config is the root configuration structure. Fields are populated from the
// built-in defaults, an optional TOML file, the environment (including .env)
// and finally command-line flags.
type Config struct {
	// Eligibility thresholds
	MinBaseLiquidity  float64 `toml:"min_base_liquidity"`
	MinQuoteLiquidity float64 `toml:"min_quote_liquidity"`

	// Simulation
	StakeAmount    float64 `toml:"stake_amount"`
	HoldingDelayMs int64   `toml:"holding_delay_ms"`
	PaperTrading   bool    `toml:"paper_trading"`

	// Quote source
	QuoteBaseURL   string `toml:"quote_base_url"`
	QuoteTimeoutMs int64  `toml:"quote_timeout_ms"`
	NativeMint     string `toml:"native_mint"`

	// HTTP
	ListenAddr       string `toml:"listen_addr"`
	WebhookAuthToken string `toml:"webhook_auth_token"`

	// Log links
	ExplorerURL string `toml:"explorer_tx_url"`
	ChartURL    string `toml:"chart_url"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		MinBaseLiquidity:  discovery.DefaultMinBaseLiquidity,
		MinQuoteLiquidity: discovery.DefaultMinQuoteLiquidity,
		StakeAmount:       simulation.DefaultStakeAmount,
		HoldingDelayMs:    simulation.DefaultHoldingDelay.Milliseconds(),
		PaperTrading:      true,
		QuoteBaseURL:      quote.DefaultBaseURL,
		QuoteTimeoutMs:    quote.DefaultTimeout.Milliseconds(),
		NativeMint:        discovery.NativeMint,
		ListenAddr:        ":3000",
		ExplorerURL:       ingestion.DefaultExplorerURL,
		ChartURL:          ingestion.DefaultChartURL,
	}
}

// HoldingDelay returns the holding period as a duration.
func (c *Config) HoldingDelay() time.Duration {
	return time.Duration(c.HoldingDelayMs) * time.Millisecond
}

// QuoteTimeout returns the quote fetch bound as a duration.
func (c *Config) QuoteTimeout() time.Duration {
	return time.Duration(c.QuoteTimeoutMs) * time.Millisecond
}

// EligibilityFilter returns the liquidity filter described by c.
func (c *Config) EligibilityFilter() discovery.EligibilityFilter {
	return discovery.EligibilityFilter{
		MinBaseLiquidity:  c.MinBaseLiquidity,
		MinQuoteLiquidity: c.MinQuoteLiquidity,
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.MinBaseLiquidity < 0 || math.IsNaN(c.MinBaseLiquidity) {
		errs = append(errs, fmt.Sprintf("min_base_liquidity must be >= 0, got %v", c.MinBaseLiquidity))
	}
	if c.MinQuoteLiquidity < 0 || math.IsNaN(c.MinQuoteLiquidity) {
		errs = append(errs, fmt.Sprintf("min_quote_liquidity must be >= 0, got %v", c.MinQuoteLiquidity))
	}
	if !(c.StakeAmount > 0) || math.IsInf(c.StakeAmount, 0) {
		errs = append(errs, fmt.Sprintf("stake_amount must be positive, got %v", c.StakeAmount))
	}
	if c.HoldingDelayMs <= 0 {
		errs = append(errs, fmt.Sprintf("holding_delay_ms must be positive, got %d", c.HoldingDelayMs))
	}
	if c.QuoteTimeoutMs <= 0 {
		errs = append(errs, fmt.Sprintf("quote_timeout_ms must be positive, got %d", c.QuoteTimeoutMs))
	}
	if _, err := solana.PublicKeyFromBase58(c.NativeMint); err != nil {
		errs = append(errs, fmt.Sprintf("native_mint %q is not a valid public key: %v", c.NativeMint, err))
	}
	if c.QuoteBaseURL == "" {
		errs = append(errs, "quote_base_url must not be empty")
	} else if u, err := url.Parse(c.QuoteBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("quote_base_url %q is not an absolute URL", c.QuoteBaseURL))
	}
	if c.ListenAddr == "" {
		errs = append(errs, "listen_addr must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
