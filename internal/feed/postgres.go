package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/database"
	"github.com/wonny/sift/pkg/logger"
)

// PostgresProvider reads candles out of the candles table an ingestion
// job keeps populated.
// ⭐ SSOT: candle reads from Postgres go through this provider only
type PostgresProvider struct {
	db  *database.DB
	log *logger.Logger
}

// NewPostgresProvider creates a provider backed by the given database.
func NewPostgresProvider(db *database.DB, log *logger.Logger) *PostgresProvider {
	if log == nil {
		log = logger.NewNop()
	}
	return &PostgresProvider{db: db, log: log}
}

// Candles implements contracts.CandleProvider.
func (p *PostgresProvider) Candles(ctx context.Context, symbol string, tf contracts.Timeframe, from, to time.Time) ([]contracts.Candle, error) {
	// Opening-range bars are stored as intraday rows; narrow the window
	// instead of querying a timeframe of their own.
	queryTF := tf
	if tf == contracts.TimeframeOpening {
		queryTF = contracts.TimeframeIntraday
		from, to = openingWindow(from)
	}

	query := `
		SELECT ts, open, high, low, close, volume
		FROM candles
		WHERE symbol = $1 AND timeframe = $2 AND ts >= $3 AND ts < $4
		ORDER BY ts ASC
	`

	rows, err := p.db.Pool.Query(ctx, query, symbol, string(queryTF), from, to)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var candles []contracts.Candle
	for rows.Next() {
		var c contracts.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}
