package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-sniper/internal/discovery"
	"solana-pool-sniper/internal/domain"
	"solana-pool-sniper/internal/quote/stub"
	"solana-pool-sniper/internal/simulation"
	"solana-pool-sniper/internal/storage/memory"
)

const (
	bonkMint  = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	sigPrefix = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRn"
	sigChars  = "123456789ABCDEFGHJKMNPQRSTUVWXYZ"
)

func sig(i int) string {
	return sigPrefix + string(sigChars[i%len(sigChars)])
}

func poolEvent(signature string, solAmount, tokenAmount float64) *domain.PoolCreationEvent {
	return &domain.PoolCreationEvent{
		Signature: signature,
		Type:      domain.EventTypeCreatePool,
		Source:    "RAYDIUM",
		Timestamp: 1700000000,
		TokenTransfers: []domain.TokenTransfer{
			{Mint: bonkMint, TokenAmount: tokenAmount},
			{Mint: discovery.NativeMint, TokenAmount: solAmount},
		},
	}
}

// fakeOpener records Open calls and returns a fixed error when set.
type fakeOpener struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeOpener) Open(_ context.Context, token string, entryPrice float64, signature string) (*domain.SimulatedTrade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SimulatedTrade{ID: int64(f.calls), Token: token, EntryPrice: entryPrice, Signature: signature}, nil
}

func newTestPipeline(t *testing.T) (*Processor, *simulation.Simulator, *memory.SignatureLedger) {
	t.Helper()

	quotes := stub.NewSource()
	quotes.SetPrice(bonkMint, 0.000012)

	sim, err := simulation.NewSimulator(simulation.SimulatorOptions{
		Store:        memory.NewTradeStore(),
		Quotes:       quotes,
		Stake:        0.1,
		HoldingDelay: 20 * time.Millisecond,
		Logger:       log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.Close(context.Background()) })

	ledger := memory.NewSignatureLedger()
	proc, err := NewProcessor(ProcessorOptions{
		Ledger:       ledger,
		Opener:       sim,
		PaperTrading: true,
		Logger:       log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	return proc, sim, ledger
}

func TestProcessor_OpensTradeAndSettles(t *testing.T) {
	proc, sim, _ := newTestPipeline(t)
	ctx := context.Background()

	res, err := proc.Process(ctx, poolEvent(sig(0), 10, 1000000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeOpened, res.Outcome)
	assert.Equal(t, int64(1), res.TradeID)

	trade, err := sim.Trade(ctx, res.TradeID)
	require.NoError(t, err)
	assert.Equal(t, bonkMint, trade.Token)
	assert.InDelta(t, 0.00001, trade.EntryPrice, 1e-15)
	assert.Equal(t, sig(0), trade.Signature)

	require.Eventually(t, func() bool {
		doc, err := sim.Stats(ctx)
		return err == nil && doc.TotalTrades == 1
	}, 2*time.Second, 5*time.Millisecond)

	doc, err := sim.Stats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, doc.TotalProfit, 1e-9)
}

func TestProcessor_DuplicateOpensOnce(t *testing.T) {
	proc, sim, _ := newTestPipeline(t)
	ctx := context.Background()
	event := poolEvent(sig(1), 10, 1000000)

	first, err := proc.Process(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOpened, first.Outcome)

	second, err := proc.Process(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second.Outcome)
	assert.Zero(t, second.TradeID)

	doc, err := sim.Stats(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Trades, 1)
}

func TestProcessor_ConcurrentDuplicates(t *testing.T) {
	opener := &fakeOpener{}
	proc, err := NewProcessor(ProcessorOptions{
		Ledger:       memory.NewSignatureLedger(),
		Opener:       opener,
		PaperTrading: true,
		Logger:       log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	event := poolEvent(sig(2), 10, 1000000)
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = proc.Process(context.Background(), event)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, opener.calls)
}

func TestProcessor_MissingBaseLegIsMalformed(t *testing.T) {
	proc, sim, ledger := newTestPipeline(t)
	ctx := context.Background()

	event := poolEvent(sig(3), 10, 1000000)
	event.TokenTransfers[1].Mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

	res, err := proc.Process(ctx, event)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
	assert.Equal(t, OutcomeMalformed, res.Outcome)

	// Marked before classification: re-delivery is a duplicate.
	assert.True(t, ledger.Seen(sig(3)))
	res, err = proc.Process(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)

	doc, err := sim.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.Trades)
	assert.Equal(t, 0, doc.TotalTrades)
}

func TestProcessor_InvalidSignatureNotMarked(t *testing.T) {
	proc, _, ledger := newTestPipeline(t)

	for _, s := range []string{"", "sig-0", "OIl0"} {
		res, err := proc.Process(context.Background(), poolEvent(s, 10, 1000000))
		assert.ErrorIs(t, err, domain.ErrMalformedEvent)
		assert.Equal(t, OutcomeMalformed, res.Outcome)
	}
	assert.Equal(t, 0, ledger.Len())

	res, err := proc.Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
	assert.Equal(t, OutcomeMalformed, res.Outcome)
}

func TestProcessor_NonPoolCreationIgnored(t *testing.T) {
	proc, sim, ledger := newTestPipeline(t)

	event := poolEvent(sig(4), 10, 1000000)
	event.Type = "SWAP"

	res, err := proc.Process(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.True(t, ledger.Seen(sig(4)))

	doc, err := sim.Stats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Trades)
}

func TestProcessor_Ineligible(t *testing.T) {
	proc, sim, _ := newTestPipeline(t)

	tests := []struct {
		name   string
		sol    float64
		tokens float64
	}{
		{"low sol", 0.5, 1000000},
		{"low tokens", 10, 99999},
		{"both low", 0.1, 10},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := proc.Process(context.Background(), poolEvent(sig(10+i), tt.sol, tt.tokens))
			require.NoError(t, err)
			assert.Equal(t, OutcomeIneligible, res.Outcome)
		})
	}

	doc, err := sim.Stats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Trades)
}

func TestProcessor_ThresholdBoundaryIsEligible(t *testing.T) {
	proc, _, _ := newTestPipeline(t)

	res, err := proc.Process(context.Background(), poolEvent(sig(5), 1, 100000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeOpened, res.Outcome)
}

func TestProcessor_CustomFilter(t *testing.T) {
	opener := &fakeOpener{}
	proc, err := NewProcessor(ProcessorOptions{
		Ledger:       memory.NewSignatureLedger(),
		Opener:       opener,
		PaperTrading: true,
		Filter:       &discovery.EligibilityFilter{MinBaseLiquidity: 50, MinQuoteLiquidity: 10},
		Logger:       log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	res, err := proc.Process(context.Background(), poolEvent(sig(6), 10, 1000000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIneligible, res.Outcome)
	assert.Equal(t, 0, opener.calls)
}

func TestProcessor_WatchOnlyMode(t *testing.T) {
	var buf bytes.Buffer
	proc, err := NewProcessor(ProcessorOptions{
		Ledger:       memory.NewSignatureLedger(),
		PaperTrading: false,
		Logger:       log.New(&buf, "", 0),
	})
	require.NoError(t, err)

	res, err := proc.Process(context.Background(), poolEvent(sig(7), 10, 1000000))
	require.NoError(t, err)
	assert.Equal(t, OutcomeWatched, res.Outcome)

	out := buf.String()
	assert.Contains(t, out, DefaultExplorerURL+sig(7))
	assert.Contains(t, out, DefaultChartURL+bonkMint)
}

func TestProcessor_OpenErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome Outcome
	}{
		{"invalid parameters", domain.ErrInvalidTradeParameters, OutcomeRejected},
		{"internal", errors.New("store unavailable"), OutcomeError},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc, err := NewProcessor(ProcessorOptions{
				Ledger:       memory.NewSignatureLedger(),
				Opener:       &fakeOpener{err: tt.err},
				PaperTrading: true,
				Logger:       log.New(io.Discard, "", 0),
			})
			require.NoError(t, err)

			res, err := proc.Process(context.Background(), poolEvent(sig(20+i), 10, 1000000))
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.outcome, res.Outcome)
		})
	}
}

func TestNewProcessor_Validation(t *testing.T) {
	_, err := NewProcessor(ProcessorOptions{Opener: &fakeOpener{}, PaperTrading: true})
	assert.Error(t, err)

	_, err = NewProcessor(ProcessorOptions{Ledger: memory.NewSignatureLedger(), PaperTrading: true})
	assert.Error(t, err)

	_, err = NewProcessor(ProcessorOptions{Ledger: memory.NewSignatureLedger()})
	assert.NoError(t, err)
}
