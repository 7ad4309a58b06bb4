package universe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/sift/pkg/httputil"
	"github.com/wonny/sift/pkg/logger"
)

// symbolRe admits NSE-style trading symbols ("RELIANCE", "M&M",
// "BAJAJ-AUTO") and rejects company names and ISINs.
var symbolRe = regexp.MustCompile(`^[A-Z][A-Z0-9&-]{0,9}$`)

// Scraper extracts index constituents from an HTML page whose table
// rows lead with the trading symbol.
type Scraper struct {
	client    *httputil.Client
	url       string
	benchmark string
	log       *logger.Logger
}

func NewScraper(client *httputil.Client, url, benchmark string, log *logger.Logger) *Scraper {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scraper{client: client, url: url, benchmark: benchmark, log: log}
}

func (s *Scraper) Symbols(ctx context.Context) ([]string, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch constituents: status %d", resp.StatusCode)
	}

	symbols, err := parseConstituents(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituents: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols in constituents table at %s", s.url)
	}

	s.log.WithFields(map[string]interface{}{
		"url":   s.url,
		"count": len(symbols),
	}).Debug("Scraped universe")
	return symbols, nil
}

func (s *Scraper) Benchmark() string { return s.benchmark }

// parseConstituents walks every table row and keeps first-column cells
// that look like trading symbols. Header rows use th cells and fall
// out naturally; the index's own summary row is skipped by name.
func parseConstituents(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var symbols []string
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		sym := strings.TrimSpace(cells.Eq(0).Text())
		if !symbolRe.MatchString(sym) || strings.HasPrefix(sym, "NIFTY") {
			return
		}
		symbols = append(symbols, sym)
	})
	return normalize(symbols), nil
}
