package market

import (
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Record is the latest known state of one symbol.
type Record struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	BidPrice      decimal.Decimal `json:"bidPrice"`
	AskPrice      decimal.Decimal `json:"askPrice"`
	Volume        int64           `json:"volume"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Timestamp     Timestamp       `json:"timestamp"`
}

// Spread is the ask minus the bid.
func (r Record) Spread() decimal.Decimal {
	return r.AskPrice.Sub(r.BidPrice)
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid market record")

// Validate checks the fields a record must have before it can be merged.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return errors.Wrap(ErrInvalid, "empty symbol")
	}
	if r.Volume < 0 {
		return errors.Wrapf(ErrInvalid, "%s: negative volume %d", r.Symbol, r.Volume)
	}
	if r.Price.IsNegative() || r.BidPrice.IsNegative() || r.AskPrice.IsNegative() {
		return errors.Wrapf(ErrInvalid, "%s: negative price", r.Symbol)
	}
	return nil
}

// DecodeRecord decodes and validates one JSON record.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := jsoniter.Unmarshal(data, &r); err != nil {
		return Record{}, errors.Wrap(err, "decode market record")
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// DecodeRecords decodes a JSON array of records. Decoding errors fail the
// whole payload, validation is left to the caller. Anything but an array,
// null included, is a decoding error.
func DecodeRecords(data []byte) ([]Record, error) {
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		return nil, errors.New("decode market records, payload is not an array")
	}
	var rs []Record
	if err := jsoniter.Unmarshal(data, &rs); err != nil {
		return nil, errors.Wrap(err, "decode market records")
	}
	return rs, nil
}

// The backend serializes its local date time without a zone.
const backendLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	backendLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Timestamp is the point in time a record was produced by the server.
// It accepts the backend "yyyy-MM-dd HH:mm:ss" local format, RFC 3339
// and unix epoch milliseconds.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}

	if s[0] != '"' {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "timestamp %s", s)
		}
		t.Time = time.UnixMilli(ms)
		return nil
	}

	s, err := strconv.Unquote(s)
	if err != nil {
		return errors.Wrap(err, "timestamp")
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errors.Errorf("timestamp %q has unknown format", s)
}

// MarshalJSON implements json.Marshaler using the backend format.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Local().Format(backendLayout))), nil
}
