package contracts

import (
	"errors"
	"math"
)

// ErrColumnLength is returned when an indicator column does not align
// with the candle sequence
var ErrColumnLength = errors.New("indicator column length does not match candle count")

// Series is an ordered candle sequence for one (symbol, timeframe) pair
// plus index-aligned indicator columns. Missing indicator values are
// explicit NaN, never zero.
// ⭐ SSOT: all per-symbol market data enters the pipeline as a Series
type Series struct {
	symbol    string
	timeframe Timeframe
	candles   []Candle
	columns   map[string][]float64
}

// NewSeries builds a series from candles. The slice is copied so the
// series cannot be mutated through the caller's reference.
func NewSeries(symbol string, timeframe Timeframe, candles []Candle) *Series {
	owned := make([]Candle, len(candles))
	copy(owned, candles)
	return &Series{
		symbol:    symbol,
		timeframe: timeframe,
		candles:   owned,
		columns:   make(map[string][]float64),
	}
}

// Symbol returns the symbol this series belongs to
func (s *Series) Symbol() string {
	return s.symbol
}

// Timeframe returns the bar interval of the series
func (s *Series) Timeframe() Timeframe {
	return s.timeframe
}

// Len returns the number of candles
func (s *Series) Len() int {
	return len(s.candles)
}

// Candle returns the candle at index i. Callers must check Len first.
func (s *Series) Candle(i int) Candle {
	return s.candles[i]
}

// Candles returns the underlying candle slice. Read-only by convention.
func (s *Series) Candles() []Candle {
	return s.candles
}

// Last returns the most recent candle
func (s *Series) Last() (Candle, bool) {
	if len(s.candles) == 0 {
		return Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// SetColumn attaches an indicator column. The column must be exactly as
// long as the candle sequence; values for candles where the indicator
// is not yet defined must be NaN.
func (s *Series) SetColumn(name string, values []float64) error {
	if len(values) != len(s.candles) {
		return ErrColumnLength
	}
	owned := make([]float64, len(values))
	copy(owned, values)
	s.columns[name] = owned
	return nil
}

// Column returns a named indicator column
func (s *Series) Column(name string) ([]float64, bool) {
	col, ok := s.columns[name]
	return col, ok
}

// HasColumn reports whether a named indicator column is attached
func (s *Series) HasColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// ColumnNames returns the attached indicator names
func (s *Series) ColumnNames() []string {
	names := make([]string, 0, len(s.columns))
	for name := range s.columns {
		names = append(names, name)
	}
	return names
}

// Value returns the indicator value at index i, NaN when the column is
// missing or the index is out of range
func (s *Series) Value(name string, i int) float64 {
	col, ok := s.columns[name]
	if !ok || i < 0 || i >= len(col) {
		return math.NaN()
	}
	return col[i]
}

// Latest returns the most recent value of an indicator column, NaN when
// unavailable
func (s *Series) Latest(name string) float64 {
	return s.Value(name, len(s.candles)-1)
}

// Closes returns the close prices as a slice
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Close
	}
	return out
}

// Highs returns the high prices as a slice
func (s *Series) Highs() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.High
	}
	return out
}

// Lows returns the low prices as a slice
func (s *Series) Lows() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Low
	}
	return out
}

// Volumes returns the volumes as a slice
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.candles))
	for i, c := range s.candles {
		out[i] = c.Volume
	}
	return out
}
