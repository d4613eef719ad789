package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-pool-sniper/internal/discovery"
	"solana-pool-sniper/internal/domain"
	"solana-pool-sniper/internal/observability"
	"solana-pool-sniper/internal/storage"
)

// Default link prefixes used in pool-detected log lines.
const (
	DefaultExplorerURL = "https://solscan.io/tx/"
	DefaultChartURL    = "https://dexscreener.com/solana/"
)

// Outcome describes how a notification was handled.
type Outcome string

// Notification outcomes.
const (
	OutcomeOpened     Outcome = "opened"     // trade opened
	OutcomeDuplicate  Outcome = "duplicate"  // signature already processed
	OutcomeIgnored    Outcome = "ignored"    // not a pool creation
	OutcomeMalformed  Outcome = "malformed"  // cannot be classified
	OutcomeIneligible Outcome = "ineligible" // below liquidity thresholds
	OutcomeWatched    Outcome = "watched"    // logged only, paper trading off
	OutcomeRejected   Outcome = "rejected"   // invalid trade parameters
	OutcomeError      Outcome = "error"      // internal failure
)

// Result is the outcome of processing one notification.
type Result struct {
	Outcome Outcome `json:"status"`
	TradeID int64   `json:"tradeId,omitempty"`
}

// TradeOpener opens paper trades.
type TradeOpener interface {
	Open(ctx context.Context, token string, entryPrice float64, signature string) (*domain.SimulatedTrade, error)
}

// Processor runs the classify, dedup, filter and open sequence for one notification.
type Processor struct {
	classifier   *discovery.Classifier
	filter       discovery.EligibilityFilter
	ledger       storage.SignatureLedger
	opener       TradeOpener
	paperTrading bool
	explorerURL  string
	chartURL     string
	logger       *log.Logger
}

// ProcessorOptions contains configuration for creating a Processor.
type ProcessorOptions struct {
	Classifier   *discovery.Classifier // nil uses the wrapped SOL mint
	Filter       *discovery.EligibilityFilter
	Ledger       storage.SignatureLedger
	Opener       TradeOpener
	PaperTrading bool // false logs detected pools without opening trades
	ExplorerURL  string
	ChartURL     string
	Logger       *log.Logger
}

// NewProcessor creates a notification processor.
func NewProcessor(opts ProcessorOptions) (*Processor, error) {
	if opts.Ledger == nil {
		return nil, fmt.Errorf("processor: signature ledger is required: %w", storage.ErrInvalidInput)
	}
	if opts.PaperTrading && opts.Opener == nil {
		return nil, fmt.Errorf("processor: trade opener is required in paper trading mode: %w", storage.ErrInvalidInput)
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = discovery.NewClassifier("")
	}

	filter := discovery.DefaultEligibilityFilter()
	if opts.Filter != nil {
		filter = *opts.Filter
	}

	explorerURL := opts.ExplorerURL
	if explorerURL == "" {
		explorerURL = DefaultExplorerURL
	}
	chartURL := opts.ChartURL
	if chartURL == "" {
		chartURL = DefaultChartURL
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Processor{
		classifier:   classifier,
		filter:       filter,
		ledger:       opts.Ledger,
		opener:       opts.Opener,
		paperTrading: opts.PaperTrading,
		explorerURL:  explorerURL,
		chartURL:     chartURL,
		logger:       logger,
	}, nil
}

// Process handles one notification.
//
// The signature is marked in the ledger as soon as it is validated, before
// classification, so malformed and ineligible events are not retried on
// re-delivery. A missing or invalid signature is never marked.
//
// The returned error wraps domain.ErrMalformedEvent or
// domain.ErrInvalidTradeParameters for rejected input; any other error
// comes with OutcomeError.
func (p *Processor) Process(ctx context.Context, event *domain.PoolCreationEvent) (res Result, err error) {
	start := time.Now()
	defer func() {
		observability.RecordEventOutcome(string(res.Outcome), time.Since(start).Seconds())
	}()

	if event == nil {
		return Result{Outcome: OutcomeMalformed}, fmt.Errorf("%w: nil event", domain.ErrMalformedEvent)
	}
	if err := discovery.ValidateSignature(event.Signature); err != nil {
		p.logger.Printf("dropping notification: %v", err)
		return Result{Outcome: OutcomeMalformed}, err
	}

	isNew := p.ledger.MarkIfNew(event.Signature)
	observability.UpdateLedgerSize(p.ledger.Len())
	if !isNew {
		return Result{Outcome: OutcomeDuplicate}, nil
	}

	if !event.IsPoolCreation() {
		return Result{Outcome: OutcomeIgnored}, nil
	}

	pair, err := p.classifier.Classify(event)
	if err != nil {
		p.logger.Printf("tx %s: %v", event.Signature, err)
		return Result{Outcome: OutcomeMalformed}, err
	}

	p.logger.Printf("new pool detected: token=%s initial_sol=%g initial_tokens=%g initial_price=%.9f tx=%s%s chart=%s%s",
		pair.Quote.Mint, pair.Base.TokenAmount, pair.Quote.TokenAmount, pair.Price,
		p.explorerURL, event.Signature, p.chartURL, pair.Quote.Mint)

	if !p.paperTrading {
		return Result{Outcome: OutcomeWatched}, nil
	}

	if !p.filter.Check(pair) {
		p.logger.Printf("pool %s does not meet criteria (min_sol=%g min_tokens=%g)",
			pair.Quote.Mint, p.filter.MinBaseLiquidity, p.filter.MinQuoteLiquidity)
		return Result{Outcome: OutcomeIneligible}, nil
	}

	p.logger.Printf("pool %s meets criteria, starting paper trade", pair.Quote.Mint)

	trade, err := p.opener.Open(ctx, pair.Quote.Mint, pair.Price, event.Signature)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTradeParameters) {
			p.logger.Printf("pool %s: %v", pair.Quote.Mint, err)
			return Result{Outcome: OutcomeRejected}, err
		}
		return Result{Outcome: OutcomeError}, fmt.Errorf("open trade for %s: %w", pair.Quote.Mint, err)
	}

	return Result{Outcome: OutcomeOpened, TradeID: trade.ID}, nil
}
