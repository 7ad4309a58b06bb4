package contracts

import (
	"context"
	"time"
)

// CandleProvider supplies candles for one symbol and timeframe.
// Windows are half-open: a candle is included when from <= ts < to.
// ⭐ SSOT: data acquisition interface between feed and screener
type CandleProvider interface {
	Candles(ctx context.Context, symbol string, tf Timeframe, from, to time.Time) ([]Candle, error)
}

// UniverseSource resolves the symbol universe and its benchmark
// ⭐ SSOT: universe resolution interface
type UniverseSource interface {
	Symbols(ctx context.Context) ([]string, error)
	Benchmark() string
}
