package screener

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/strategyconfig"
	"github.com/wonny/sift/pkg/logger"
)

var screenDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

type fakeUniverse struct {
	symbols   []string
	benchmark string
	err       error
}

func (u *fakeUniverse) Symbols(ctx context.Context) ([]string, error) { return u.symbols, u.err }

func (u *fakeUniverse) Benchmark() string { return u.benchmark }

// fakeProvider serves fixed candles per symbol and timeframe. Reads
// are lock-free because nothing mutates the maps once a test starts.
type fakeProvider struct {
	candles map[string]map[contracts.Timeframe][]contracts.Candle
	errs    map[string]error
}

func (p *fakeProvider) Candles(ctx context.Context, symbol string, tf contracts.Timeframe, from, to time.Time) ([]contracts.Candle, error) {
	if err := p.errs[symbol]; err != nil {
		return nil, err
	}
	return p.candles[symbol][tf], nil
}

func dailyFlat(n int, close, volume float64) []contracts.Candle {
	out := make([]contracts.Candle, n)
	for i := range out {
		out[i] = contracts.Candle{
			Time:   screenDay.AddDate(0, 0, i-n+1),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: volume,
		}
	}
	return out
}

// breakoutCandles builds a symbol that clears every breakout stage
// from raw candles: a steady 0.5-per-bar intraday ramp over a tight
// opening range, with the last bar tripling its volume.
func breakoutCandles() map[contracts.Timeframe][]contracts.Candle {
	intraday := make([]contracts.Candle, 20)
	start := screenDay.Add(9*time.Hour + 15*time.Minute)
	for i := range intraday {
		c := 2995 + 0.5*float64(i)
		intraday[i] = contracts.Candle{
			Time:   start.Add(time.Duration(5*i) * time.Minute),
			Open:   c - 0.25,
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
			Volume: 1e6,
		}
	}
	intraday[19].High = intraday[19].Close + 1
	intraday[19].Low = intraday[19].Close - 1
	intraday[19].Volume = 3e6

	opening := []contracts.Candle{
		{Time: start, Open: 2990, High: 2992, Low: 2988, Close: 2991, Volume: 1e5},
		{Time: start.Add(5 * time.Minute), Open: 2991, High: 2993, Low: 2989.5, Close: 2992, Volume: 1e5},
		{Time: start.Add(10 * time.Minute), Open: 2992, High: 2992, Low: 2990, Close: 2991, Volume: 1e5},
	}

	return map[contracts.Timeframe][]contracts.Candle{
		contracts.TimeframeDaily:    dailyFlat(25, 3000, 5e6),
		contracts.TimeframeIntraday: intraday,
		contracts.TimeframeOpening:  opening,
	}
}

// swingCandles builds a symbol for a trimmed swing profile that only
// gates on daily history. The intraday bars close at 100 and the low
// controls the derived stop: a low of 99 leaves a 1.1% stop, while
// flat bars pin the stop 0.1% under the close.
func swingCandles(low float64) map[contracts.Timeframe][]contracts.Candle {
	intraday := make([]contracts.Candle, 20)
	start := screenDay.Add(9*time.Hour + 15*time.Minute)
	for i := range intraday {
		intraday[i] = contracts.Candle{
			Time:   start.Add(time.Duration(5*i) * time.Minute),
			Open:   100,
			High:   100 + (100 - low),
			Low:    low,
			Close:  100,
			Volume: 1e6,
		}
	}
	return map[contracts.Timeframe][]contracts.Candle{
		contracts.TimeframeDaily:    dailyFlat(210, 100, 1e6),
		contracts.TimeframeIntraday: intraday,
	}
}

// trimmedSwingProfile keeps only the history gate so runs exercise the
// ranking and setup phases without hand-tuning fifteen stages.
func trimmedSwingProfile() *strategyconfig.StrategyProfile {
	p := strategyconfig.SwingProfile()
	p.Stages = []string{"daily_history"}
	return p
}

func TestRunTieKeepsUniverseOrder(t *testing.T) {
	p := strategyconfig.BreakoutProfile()
	p.MaxCandidates = 1

	provider := &fakeProvider{candles: map[string]map[contracts.Timeframe][]contracts.Candle{
		"ZZZ": breakoutCandles(),
		"AAA": breakoutCandles(),
		"NIFTY50": {
			contracts.TimeframeDaily: {
				{Time: screenDay.AddDate(0, 0, -1), Open: 25000, High: 25000, Low: 25000, Close: 25000, Volume: 1e6},
				{Time: screenDay, Open: 25200, High: 25400, Low: 25200, Close: 25400, Volume: 1e6},
			},
		},
	}}
	universe := &fakeUniverse{symbols: []string{"ZZZ", "AAA"}, benchmark: "NIFTY50"}

	s, err := New(provider, universe, p, Options{Workers: 4}, logger.NewNop())
	require.NoError(t, err)

	report, err := s.Run(context.Background(), screenDay)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Evaluated)
	assert.Equal(t, 2, report.Passed)
	assert.Empty(t, report.Rejections)
	assert.NotEmpty(t, report.ConfigHash)
	assert.Equal(t, screenDay, report.RunAt)
	assert.Equal(t, []string{"ZZZ", "AAA"}, report.Universe)

	// Identical data scores identically; the universe order, not the
	// evaluation order, breaks the tie.
	require.Len(t, report.Candidates, 1)
	winner := report.Candidates[0]
	assert.Equal(t, "ZZZ", winner.Symbol)
	assert.Equal(t, 1, winner.Rank)
	assert.InDelta(t, 47.31, winner.Score, 0.01)
	assert.Nil(t, winner.Setup)

	require.NotNil(t, report.Sentiment)
	assert.Equal(t, "NIFTY50", report.Sentiment.Benchmark)
	assert.InDelta(t, 0.8, report.Sentiment.GapPct, 1e-9)
	assert.Equal(t, "Bullish", report.Sentiment.GapLabel)
	assert.InDelta(t, 1.6, report.Sentiment.ChangePct, 1e-9)
	assert.Equal(t, "Strong Bullish", report.Sentiment.Sentiment)
}

func TestRunQualityDropIsNotBackfilled(t *testing.T) {
	p := trimmedSwingProfile()
	p.MaxCandidates = 1

	provider := &fakeProvider{candles: map[string]map[contracts.Timeframe][]contracts.Candle{
		"TIGHT": swingCandles(100),
		"GOOD":  swingCandles(99),
	}}
	universe := &fakeUniverse{symbols: []string{"TIGHT", "GOOD"}}

	s, err := New(provider, universe, p, Options{Workers: 2}, logger.NewNop())
	require.NoError(t, err)

	report, err := s.Run(context.Background(), screenDay)
	require.NoError(t, err)

	// Both clear the pipeline and tie, so TIGHT takes the single slot.
	// Its setup fails the stop gate and the slot stays empty: GOOD is
	// not promoted in its place.
	assert.Equal(t, 2, report.Evaluated)
	assert.Equal(t, 2, report.Passed)
	assert.Empty(t, report.Candidates)

	require.Len(t, report.Rejections, 1)
	assert.Equal(t, contracts.Rejection{
		Symbol: "TIGHT",
		Stage:  "trade_quality",
		Reason: "stop too tight",
	}, report.Rejections[0])
	assert.Equal(t, map[string]int{"trade_quality": 1}, report.StageCounts)
}

func TestRunDerivesSetups(t *testing.T) {
	p := trimmedSwingProfile()
	// The derived target sits exactly at the reward multiple, so give
	// the r:r gate a little float headroom.
	p.Thresholds["min_risk_reward"] = 1.4

	provider := &fakeProvider{candles: map[string]map[contracts.Timeframe][]contracts.Candle{
		"GOOD": swingCandles(99),
	}}
	universe := &fakeUniverse{symbols: []string{"GOOD"}}

	s, err := New(provider, universe, p, Options{}, logger.NewNop())
	require.NoError(t, err)

	report, err := s.Run(context.Background(), screenDay)
	require.NoError(t, err)

	require.Len(t, report.Candidates, 1)
	cand := report.Candidates[0]
	require.NotNil(t, cand.Setup)
	assert.InDelta(t, 99, cand.Setup.SwingLow, 1e-9)
	assert.InDelta(t, 98.901, cand.Setup.Stop, 1e-6)
	assert.InDelta(t, 100, cand.Setup.EntryFast, 1e-9)
	assert.InDelta(t, 1.099, cand.Setup.Risk, 1e-6)
	assert.InDelta(t, 101.6485, cand.Setup.TargetFast, 1e-6)

	stopPct, ok := cand.Attributes.Get("stop_distance_pct")
	require.True(t, ok)
	assert.InDelta(t, 1.099, stopPct, 1e-6)
	rr, ok := cand.Attributes.Get("risk_reward")
	require.True(t, ok)
	assert.InDelta(t, 1.5, rr, 1e-9)

	assert.Nil(t, report.Sentiment)
	assert.Empty(t, report.Rejections)
}

func TestRunZeroPassedVsZeroEvaluated(t *testing.T) {
	p := strategyconfig.BreakoutProfile()

	empty := &fakeUniverse{symbols: nil}
	s, err := New(&fakeProvider{}, empty, p, Options{}, logger.NewNop())
	require.NoError(t, err)

	report, err := s.Run(context.Background(), screenDay)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.Zero(t, report.Evaluated)
	assert.Zero(t, report.Passed)

	// A universe that all fails is a different report from an empty one.
	provider := &fakeProvider{candles: map[string]map[contracts.Timeframe][]contracts.Candle{
		"THIN": {contracts.TimeframeDaily: dailyFlat(10, 3000, 5e6)},
	}}
	s, err = New(provider, &fakeUniverse{symbols: []string{"THIN"}}, p, Options{}, logger.NewNop())
	require.NoError(t, err)

	report, err = s.Run(context.Background(), screenDay)
	require.NoError(t, err)
	assert.False(t, report.Empty())
	assert.Equal(t, 1, report.Evaluated)
	assert.Zero(t, report.Passed)
	require.Len(t, report.Rejections, 1)
	assert.Equal(t, "daily_history", report.Rejections[0].Stage)
	assert.Equal(t, contracts.ReasonInsufficientHistory, report.Rejections[0].Reason)
	assert.Equal(t, map[string]int{"daily_history": 1}, report.StageCounts)
}

func TestRunIsDeterministicAcrossWorkerCounts(t *testing.T) {
	p := strategyconfig.BreakoutProfile()

	provider := &fakeProvider{candles: map[string]map[contracts.Timeframe][]contracts.Candle{
		"B1":   breakoutCandles(),
		"THIN": {contracts.TimeframeDaily: dailyFlat(10, 3000, 5e6)},
		"B2":   breakoutCandles(),
		"B3":   breakoutCandles(),
	}}
	universe := &fakeUniverse{symbols: []string{"B1", "THIN", "B2", "MISSING", "B3"}}

	run := func(workers int) *contracts.ScreenReport {
		s, err := New(provider, universe, p, Options{Workers: workers}, logger.NewNop())
		require.NoError(t, err)
		report, err := s.Run(context.Background(), screenDay)
		require.NoError(t, err)
		return report
	}

	serial := run(1)
	parallel := run(8)

	require.Len(t, serial.Candidates, 3)
	assert.Equal(t, "B1", serial.Candidates[0].Symbol)
	assert.Equal(t, "B2", serial.Candidates[1].Symbol)
	assert.Equal(t, "B3", serial.Candidates[2].Symbol)
	assert.Equal(t, []string{"THIN", "MISSING"}, []string{
		serial.Rejections[0].Symbol,
		serial.Rejections[1].Symbol,
	})

	assert.Equal(t, serial.Candidates, parallel.Candidates)
	assert.Equal(t, serial.Rejections, parallel.Rejections)
	assert.Equal(t, serial.StageCounts, parallel.StageCounts)
	assert.Equal(t, serial.Evaluated, parallel.Evaluated)
	assert.Equal(t, serial.Passed, parallel.Passed)
}

func TestRunStopsSchedulingWhenCancelled(t *testing.T) {
	p := strategyconfig.BreakoutProfile()

	symbols := make([]string, 40)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%02d", i)
	}
	s, err := New(&fakeProvider{}, &fakeUniverse{symbols: symbols}, p, Options{Workers: 2}, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := s.Run(ctx, screenDay)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The partial report still comes back well formed.
	require.NotNil(t, report)
	assert.Len(t, report.Universe, 40)
	assert.Less(t, report.Evaluated, 40)
	assert.Equal(t, report.Evaluated, len(report.Rejections))
}

func TestRunToleratesBenchmarkFailure(t *testing.T) {
	p := strategyconfig.BreakoutProfile()

	provider := &fakeProvider{
		candles: map[string]map[contracts.Timeframe][]contracts.Candle{
			"ZZZ": breakoutCandles(),
		},
		errs: map[string]error{"NIFTY50": errors.New("connection refused")},
	}
	universe := &fakeUniverse{symbols: []string{"ZZZ"}, benchmark: "NIFTY50"}

	s, err := New(provider, universe, p, Options{}, logger.NewNop())
	require.NoError(t, err)

	report, err := s.Run(context.Background(), screenDay)
	require.NoError(t, err)
	require.Len(t, report.Candidates, 1)
	assert.Nil(t, report.Sentiment)
}

func TestRunUniverseError(t *testing.T) {
	p := strategyconfig.BreakoutProfile()
	universe := &fakeUniverse{err: errors.New("exchange list unavailable")}

	s, err := New(&fakeProvider{}, universe, p, Options{}, logger.NewNop())
	require.NoError(t, err)

	report, err := s.Run(context.Background(), screenDay)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve universe")
}

func TestNewValidates(t *testing.T) {
	p := strategyconfig.BreakoutProfile()

	_, err := New(nil, &fakeUniverse{}, p, Options{}, logger.NewNop())
	require.Error(t, err)

	unknown := strategyconfig.BreakoutProfile()
	unknown.Stages = []string{"no_such_stage"}
	_, err = New(&fakeProvider{}, &fakeUniverse{}, unknown, Options{}, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build evaluator")

	noSetup := strategyconfig.SwingProfile()
	delete(noSetup.Thresholds, "swing_low_lookback")
	_, err = New(&fakeProvider{}, &fakeUniverse{}, noSetup, Options{}, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build setup calculator")

	noGate := strategyconfig.SwingProfile()
	delete(noGate.Thresholds, "sr_lookback")
	_, err = New(&fakeProvider{}, &fakeUniverse{}, noGate, Options{}, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build quality gate")
}
