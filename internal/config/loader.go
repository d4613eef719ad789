package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the configuration from defaults, the optional TOML file at
// path and the environment. A .env file in the working directory is loaded
// first without overriding variables that are already set. The returned
// Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides reads the well-known environment variables and
// overwrites the corresponding fields when a variable is non-empty.
func applyEnvOverrides(cfg *Config) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(setFloat64(&cfg.MinBaseLiquidity, "MIN_BASE_LIQUIDITY"))
	keep(setFloat64(&cfg.MinQuoteLiquidity, "MIN_QUOTE_LIQUIDITY"))
	keep(setFloat64(&cfg.StakeAmount, "STAKE_AMOUNT"))
	keep(setInt64(&cfg.HoldingDelayMs, "HOLDING_DELAY_MS"))
	keep(setBool(&cfg.PaperTrading, "PAPER_TRADING"))
	setStr(&cfg.QuoteBaseURL, "QUOTE_BASE_URL")
	keep(setInt64(&cfg.QuoteTimeoutMs, "QUOTE_TIMEOUT_MS"))
	setStr(&cfg.NativeMint, "NATIVE_MINT")
	setStr(&cfg.ListenAddr, "LISTEN_ADDR")
	setStr(&cfg.WebhookAuthToken, "WEBHOOK_AUTH_TOKEN")
	setStr(&cfg.ExplorerURL, "EXPLORER_TX_URL")
	setStr(&cfg.ChartURL, "CHART_URL")

	return firstErr
}

// RegisterFlags defines the command-line overrides on fs.
// Defaults shown in usage are the built-in ones.
func RegisterFlags(fs *flag.FlagSet) {
	d := Defaults()

	fs.String("config", "", "Path to optional TOML config file")
	fs.Float64("min-base-liquidity", d.MinBaseLiquidity, "Minimum native (SOL) liquidity for a pool to be traded")
	fs.Float64("min-quote-liquidity", d.MinQuoteLiquidity, "Minimum token liquidity for a pool to be traded")
	fs.Float64("stake-amount", d.StakeAmount, "Simulated stake per trade in SOL")
	fs.Duration("holding-delay", d.HoldingDelay(), "Holding period before a paper trade is valued")
	fs.Duration("quote-timeout", d.QuoteTimeout(), "Timeout for the settlement price lookup")
	fs.String("native-mint", d.NativeMint, "Mint address of the base (native) asset")
	fs.String("quote-base-url", d.QuoteBaseURL, "Base URL of the price API")
	fs.String("listen-addr", d.ListenAddr, "HTTP listen address")
	fs.Bool("paper-trading", d.PaperTrading, "Open paper trades (false only logs detected pools)")
}

// ConfigPath returns the value of the --config flag, if registered.
func ConfigPath(fs *flag.FlagSet) string {
	if f := fs.Lookup("config"); f != nil {
		return f.Value.String()
	}
	return ""
}

// ApplyFlags copies flags that were explicitly set on the command line into c.
func (c *Config) ApplyFlags(fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		v := getter.Get()

		switch f.Name {
		case "min-base-liquidity":
			c.MinBaseLiquidity = v.(float64)
		case "min-quote-liquidity":
			c.MinQuoteLiquidity = v.(float64)
		case "stake-amount":
			c.StakeAmount = v.(float64)
		case "holding-delay":
			c.HoldingDelayMs = v.(time.Duration).Milliseconds()
		case "quote-timeout":
			c.QuoteTimeoutMs = v.(time.Duration).Milliseconds()
		case "native-mint":
			c.NativeMint = v.(string)
		case "quote-base-url":
			c.QuoteBaseURL = v.(string)
		case "listen-addr":
			c.ListenAddr = v.(string)
		case "paper-trading":
			c.PaperTrading = v.(bool)
		}
	})
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) error {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

func setFloat64(dst *float64, key string) error {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, err)
		}
		*dst = f
	}
	return nil
}

func setBool(dst *bool, key string) error {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, err)
		}
		*dst = b
	}
	return nil
}
