package snapshot

import (
	"time"

	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/shopspring/decimal"
)

// Columns of the latest state table, one row per symbol.
const selectColumns = "symbol, price, bid_price, ask_price, volume, price_change, change_percent, updated_at"

// rowScanner is the Scan method shared by database/sql and pgx rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (market.Record, error) {
	var (
		r         market.Record
		change    decimal.NullDecimal
		changePct decimal.NullDecimal
		updatedAt *time.Time
	)
	err := row.Scan(&r.Symbol, &r.Price, &r.BidPrice, &r.AskPrice, &r.Volume, &change, &changePct, &updatedAt)
	if err != nil {
		return market.Record{}, err
	}
	r.Change = change.Decimal
	r.ChangePercent = changePct.Decimal
	if updatedAt != nil {
		r.Timestamp = market.Timestamp{Time: *updatedAt}
	}
	return r, nil
}
