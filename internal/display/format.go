package display

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatPrice renders d as US dollars with thousands separators and two decimals.
func FormatPrice(d decimal.Decimal) string {
	r := d.Round(2)
	f, _ := r.Abs().Float64()
	s := "$" + humanize.FormatFloat("#,###.##", f)
	if r.IsNegative() {
		return "-" + s
	}
	return s
}

// FormatChange renders an absolute and a percentage change, e.g. "+$1.00 (+0.5%)".
// Zero counts as a gain.
func FormatChange(change, changePercent decimal.Decimal) string {
	sign := ""
	if !change.IsNegative() {
		sign = "+"
	}
	return fmt.Sprintf("%s%s (%s%s%%)", sign, FormatPrice(change), sign, changePercent.String())
}

// FormatVolume renders v with thousands separators.
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}

// FormatElapsed renders whole seconds as m:ss.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatClock renders the local time of day, or an empty string for the zero time.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("3:04:05 PM")
}

// Direction is the sign class of a price change.
type Direction int

const (
	Neutral Direction = iota
	Positive
	Negative
)

// DirectionOf classifies change.
func DirectionOf(change decimal.Decimal) Direction {
	switch change.Sign() {
	case 1:
		return Positive
	case -1:
		return Negative
	default:
		return Neutral
	}
}

func (d Direction) String() string {
	switch d {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "neutral"
	}
}

// Arrow is the glyph shown next to a change.
func (d Direction) Arrow() string {
	switch d {
	case Positive:
		return "▲"
	case Negative:
		return "▼"
	default:
		return "-"
	}
}
