package indicators

import (
	"fmt"

	"github.com/wonny/sift/internal/contracts"
)

// Column names shared between Enrich and the filter stages.
const (
	ColEMA5     = "ema5"
	ColEMA9     = "ema9"
	ColEMA20    = "ema20"
	ColEMA50    = "ema50"
	ColEMA200   = "ema200"
	ColRSI7     = "rsi7"
	ColRSI14    = "rsi14"
	ColADX14    = "adx14"
	ColATR14    = "atr14"
	ColVWAP     = "vwap"
	ColVolAvg20 = "vol_avg_20"
)

// Enrich attaches the standard indicator columns for the series
// timeframe. Daily bars carry the trend set, weekly bars the
// confirmation set, intraday bars the session set. Opening-range bars
// are consumed raw and get no columns.
func Enrich(s *contracts.Series) error {
	switch s.Timeframe() {
	case contracts.TimeframeDaily:
		return enrichDaily(s)
	case contracts.TimeframeWeekly:
		return enrichWeekly(s)
	case contracts.TimeframeIntraday:
		return enrichIntraday(s)
	case contracts.TimeframeOpening:
		return nil
	default:
		return fmt.Errorf("enrich: unknown timeframe %q", s.Timeframe())
	}
}

func enrichDaily(s *contracts.Series) error {
	closes := s.Closes()
	highs := s.Highs()
	lows := s.Lows()

	cols := map[string][]float64{
		ColEMA20:  EMA(closes, 20),
		ColEMA50:  EMA(closes, 50),
		ColEMA200: EMA(closes, 200),
		ColRSI14:  RSI(closes, 14),
		ColADX14:  ADX(highs, lows, closes, 14),
		ColATR14:  ATR(highs, lows, closes, 14),
	}
	return setColumns(s, cols)
}

func enrichWeekly(s *contracts.Series) error {
	closes := s.Closes()
	cols := map[string][]float64{
		ColEMA20: EMA(closes, 20),
		ColEMA50: EMA(closes, 50),
		ColRSI14: RSI(closes, 14),
	}
	return setColumns(s, cols)
}

func enrichIntraday(s *contracts.Series) error {
	closes := s.Closes()
	highs := s.Highs()
	lows := s.Lows()
	volumes := s.Volumes()

	cols := map[string][]float64{
		ColVWAP:     VWAP(highs, lows, closes, volumes),
		ColVolAvg20: SMA(volumes, 20),
		ColEMA5:     EMA(closes, 5),
		ColEMA9:     EMA(closes, 9),
		ColEMA20:    EMA(closes, 20),
		ColATR14:    ATR(highs, lows, closes, 14),
		ColRSI7:     RSI(closes, 7),
	}
	return setColumns(s, cols)
}

func setColumns(s *contracts.Series, cols map[string][]float64) error {
	for name, values := range cols {
		if err := s.SetColumn(name, values); err != nil {
			return fmt.Errorf("enrich: column %s: %w", name, err)
		}
	}
	return nil
}
