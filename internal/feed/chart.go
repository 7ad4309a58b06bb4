package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/httputil"
	"github.com/wonny/sift/pkg/logger"
)

// chartTimeframes maps pipeline timeframes onto the chart endpoint's
// timeframe parameter. Opening bars are minute bars clipped afterwards.
var chartTimeframes = map[contracts.Timeframe]string{
	contracts.TimeframeDaily:    "day",
	contracts.TimeframeWeekly:   "week",
	contracts.TimeframeIntraday: "minute",
	contracts.TimeframeOpening:  "minute",
}

// chartRowRe matches one candle row in the quasi-JSON payload. Dates are
// yyyyMMdd for day or week bars and yyyyMMddHHmm for minute bars.
var chartRowRe = regexp.MustCompile(`\["(\d{8,12})",\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+),\s*([\d.]+)`)

// ChartProvider fetches candles from the configured chart endpoint.
// Requests are rate limited so screening a whole universe stays polite.
// ⭐ SSOT: chart API calls leave the process through this provider only
type ChartProvider struct {
	client   *httputil.Client
	endpoint string
	limiter  *rate.Limiter
	log      *logger.Logger
}

// NewChartProvider creates a chart-backed provider. endpoint is the
// vendor URL the candle query string is appended to. perSec bounds the
// request rate; values <= 0 fall back to 5 requests per second.
func NewChartProvider(client *httputil.Client, endpoint string, perSec int, log *logger.Logger) *ChartProvider {
	if perSec <= 0 {
		perSec = 5
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ChartProvider{
		client:   client,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		limiter:  rate.NewLimiter(rate.Limit(perSec), perSec),
		log:      log,
	}
}

// Candles implements contracts.CandleProvider.
func (p *ChartProvider) Candles(ctx context.Context, symbol string, tf contracts.Timeframe, from, to time.Time) ([]contracts.Candle, error) {
	chartTF, ok := chartTimeframes[tf]
	if !ok {
		return nil, fmt.Errorf("chart feed does not serve timeframe %q", tf)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	// The endpoint treats endTime as inclusive; step the half-open bound
	// back into the last included day.
	url := fmt.Sprintf(
		"%s?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=%s",
		p.endpoint, symbol, from.Format("20060102"), to.Add(-time.Second).Format("20060102"), chartTF,
	)

	resp, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch candles: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read chart response: %w", err)
	}

	candles, err := parseChartResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse chart response: %w", err)
	}
	candles = clipWindow(candles, tf, from, to)

	p.log.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"timeframe": string(tf),
		"count":     len(candles),
	}).Debug("Fetched candles")
	return candles, nil
}

// parseChartResponse decodes the quasi-JSON chart payload. The endpoint
// quotes strings with single quotes, so those are normalized before
// unmarshalling; a regex pass handles payloads that still fail.
func parseChartResponse(body string) ([]contracts.Candle, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return chartRows(rawData), nil
	}

	candles := chartRegexRows(body)
	if len(candles) == 0 {
		return nil, fmt.Errorf("unrecognized payload")
	}
	return candles, nil
}

// chartRows converts decoded rows into candles, skipping the header row
// and anything malformed.
func chartRows(rawData [][]interface{}) []contracts.Candle {
	var candles []contracts.Candle
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		ts, err := parseChartTime(strings.Trim(dateStr, "\""))
		if err != nil {
			continue
		}

		candles = append(candles, contracts.Candle{
			Time:   ts,
			Open:   toFloat(row[1]),
			High:   toFloat(row[2]),
			Low:    toFloat(row[3]),
			Close:  toFloat(row[4]),
			Volume: toFloat(row[5]),
		})
	}
	return candles
}

// chartRegexRows recovers candles from payloads the JSON decoder rejects.
func chartRegexRows(body string) []contracts.Candle {
	matches := chartRowRe.FindAllStringSubmatch(body, -1)

	var candles []contracts.Candle
	for _, match := range matches {
		ts, err := parseChartTime(match[1])
		if err != nil {
			continue
		}

		open, _ := strconv.ParseFloat(match[2], 64)
		high, _ := strconv.ParseFloat(match[3], 64)
		low, _ := strconv.ParseFloat(match[4], 64)
		closePrice, _ := strconv.ParseFloat(match[5], 64)
		volume, _ := strconv.ParseFloat(match[6], 64)

		candles = append(candles, contracts.Candle{
			Time:   ts,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}
	return candles
}

func parseChartTime(s string) (time.Time, error) {
	switch len(s) {
	case 8:
		return time.Parse("20060102", s)
	case 12:
		return time.Parse("200601021504", s)
	default:
		return time.Time{}, fmt.Errorf("unrecognized time %q", s)
	}
}

// toFloat converts the mixed numeric types the decoder yields.
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}

// clipWindow drops rows the endpoint returned outside the half-open
// request window. Requests are rounded to whole days, so minute feeds in
// particular come back wider than asked.
func clipWindow(candles []contracts.Candle, tf contracts.Timeframe, from, to time.Time) []contracts.Candle {
	if tf == contracts.TimeframeOpening {
		from, to = openingWindow(from)
	}

	var kept []contracts.Candle
	for _, c := range candles {
		if c.Time.Before(from) || !c.Time.Before(to) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
