package contracts

import (
	"math"
	"testing"
	"time"
)

func makeCandles(n int) []Candle {
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]Candle, n)
	for i := range candles {
		px := 100.0 + float64(i)
		candles[i] = Candle{
			Time:   base.AddDate(0, 0, i),
			Open:   px,
			High:   px + 1,
			Low:    px - 1,
			Close:  px + 0.5,
			Volume: 1000 + float64(i),
		}
	}
	return candles
}

func TestNewSeriesCopiesCandles(t *testing.T) {
	candles := makeCandles(3)
	s := NewSeries("RELIANCE", TimeframeDaily, candles)

	// Mutating the caller's slice must not affect the series
	candles[0].Close = 9999

	if got := s.Candle(0).Close; got == 9999 {
		t.Error("Series shares the caller's candle slice")
	}

	if s.Symbol() != "RELIANCE" {
		t.Errorf("Symbol() = %q, want RELIANCE", s.Symbol())
	}
	if s.Timeframe() != TimeframeDaily {
		t.Errorf("Timeframe() = %q, want daily", s.Timeframe())
	}
}

func TestSetColumnLengthMismatch(t *testing.T) {
	s := NewSeries("RELIANCE", TimeframeDaily, makeCandles(5))

	err := s.SetColumn("ema20", []float64{1, 2, 3})
	if err != ErrColumnLength {
		t.Errorf("SetColumn() error = %v, want ErrColumnLength", err)
	}

	if err := s.SetColumn("ema20", []float64{1, 2, 3, 4, 5}); err != nil {
		t.Errorf("SetColumn() with aligned column failed: %v", err)
	}

	if !s.HasColumn("ema20") {
		t.Error("Expected ema20 column to be attached")
	}
}

func TestValueMissingIsNaN(t *testing.T) {
	s := NewSeries("RELIANCE", TimeframeDaily, makeCandles(5))

	if v := s.Value("rsi14", 2); !math.IsNaN(v) {
		t.Errorf("Value() for missing column = %v, want NaN", v)
	}

	col := []float64{math.NaN(), math.NaN(), 40, 45, 50}
	if err := s.SetColumn("rsi14", col); err != nil {
		t.Fatalf("SetColumn() failed: %v", err)
	}

	if v := s.Value("rsi14", 1); !math.IsNaN(v) {
		t.Errorf("Value() for warmup index = %v, want NaN", v)
	}
	if v := s.Latest("rsi14"); v != 50 {
		t.Errorf("Latest() = %v, want 50", v)
	}
	if v := s.Value("rsi14", 10); !math.IsNaN(v) {
		t.Errorf("Value() out of range = %v, want NaN", v)
	}
}

func TestEmptySeries(t *testing.T) {
	s := NewSeries("RELIANCE", TimeframeDaily, nil)

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Last(); ok {
		t.Error("Last() on empty series should report false")
	}
	if v := s.Latest("ema20"); !math.IsNaN(v) {
		t.Errorf("Latest() on empty series = %v, want NaN", v)
	}
	if err := s.SetColumn("ema20", nil); err != nil {
		t.Errorf("SetColumn() with empty column on empty series failed: %v", err)
	}
}

func TestSeriesExtractors(t *testing.T) {
	s := NewSeries("RELIANCE", TimeframeDaily, makeCandles(3))

	closes := s.Closes()
	if len(closes) != 3 || closes[2] != 102.5 {
		t.Errorf("Closes() = %v", closes)
	}

	vols := s.Volumes()
	if vols[0] != 1000 || vols[2] != 1002 {
		t.Errorf("Volumes() = %v", vols)
	}

	if highs := s.Highs(); highs[1] != 102 {
		t.Errorf("Highs()[1] = %v, want 102", highs[1])
	}
	if lows := s.Lows(); lows[1] != 100 {
		t.Errorf("Lows()[1] = %v, want 100", lows[1])
	}
}

func TestCandleShape(t *testing.T) {
	c := Candle{Open: 10, High: 14, Low: 9, Close: 12}

	if c.Range() != 5 {
		t.Errorf("Range() = %v, want 5", c.Range())
	}
	if c.Body() != 2 {
		t.Errorf("Body() = %v, want 2", c.Body())
	}
	if c.UpperWick() != 2 {
		t.Errorf("UpperWick() = %v, want 2", c.UpperWick())
	}
	if !c.Bullish() {
		t.Error("Bullish() = false, want true")
	}

	bearish := Candle{Open: 12, High: 14, Low: 9, Close: 10}
	if bearish.UpperWick() != 2 {
		t.Errorf("bearish UpperWick() = %v, want 2", bearish.UpperWick())
	}
	if bearish.Bullish() {
		t.Error("Bullish() = true for a bearish candle")
	}
}

func TestIsValidTimeframe(t *testing.T) {
	valid := []string{"daily", "weekly", "intraday", "opening"}
	for _, tf := range valid {
		if !IsValidTimeframe(tf) {
			t.Errorf("IsValidTimeframe(%q) = false, want true", tf)
		}
	}
	if IsValidTimeframe("monthly") {
		t.Error("IsValidTimeframe(monthly) = true, want false")
	}
}
