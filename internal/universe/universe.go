// Package universe supplies the symbol lists a screening run iterates
// and the benchmark each list is measured against. Sources resolve in
// a fixed order: an explicit file beats a scraped constituents page,
// which beats the built-in list.
package universe

import (
	"context"
	"strings"
)

// DefaultBenchmark is the index the built-in universe trades against.
const DefaultBenchmark = "NIFTY50"

// nifty50 holds the NSE constituent symbols, December 2025 revision.
var nifty50 = []string{
	"ADANIENT", "ADANIPORTS", "APOLLOHOSP", "ASIANPAINT", "AXISBANK",
	"BAJAJ-AUTO", "BAJFINANCE", "BAJAJFINSV", "BEL", "BHARTIARTL",
	"CIPLA", "COALINDIA", "DRREDDY", "EICHERMOT", "GRASIM",
	"HCLTECH", "HDFCBANK", "HDFCLIFE", "HINDALCO", "HINDUNILVR",
	"ICICIBANK", "INDIGO", "INFY", "ITC", "JIOFIN",
	"JSWSTEEL", "KOTAKBANK", "LT", "M&M", "MARUTI",
	"MAXHEALTH", "NESTLEIND", "NTPC", "ONGC", "POWERGRID",
	"RELIANCE", "SBILIFE", "SBIN", "SHRIRAMFIN", "SUNPHARMA",
	"TATASTEEL", "TATACONSUM", "TCS", "TECHM", "TITAN",
	"TMPV", "TRENT", "ULTRACEMCO", "WIPRO",
}

// Static serves a fixed symbol list.
type Static struct {
	symbols   []string
	benchmark string
}

// NewStatic builds a source from a literal list. Symbols are trimmed,
// uppercased, and deduped; an empty benchmark falls back to the
// default index.
func NewStatic(symbols []string, benchmark string) *Static {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	return &Static{symbols: normalize(symbols), benchmark: benchmark}
}

// Default returns the built-in NIFTY50 universe.
func Default() *Static {
	return NewStatic(nifty50, DefaultBenchmark)
}

// Symbols returns a copy so callers cannot reorder the source.
func (s *Static) Symbols(ctx context.Context) ([]string, error) {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}

func (s *Static) Benchmark() string { return s.benchmark }

// normalize trims, uppercases, and dedupes while keeping input order.
func normalize(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
