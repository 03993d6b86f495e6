package display

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"150", "$150.00"},
		{"2800.5", "$2,800.50"},
		{"1234567.891", "$1,234,567.89"},
		{"0", "$0.00"},
		{"-1.5", "-$1.50"},
		{"-0.001", "$0.00"},
		{"0.105", "$0.11"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(d(tt.in)), tt.in)
	}
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "+$1.00 (+0.5%)", FormatChange(d("1"), d("0.5")))
	assert.Equal(t, "+$0.00 (+0%)", FormatChange(decimal.Zero, decimal.Zero))
	assert.Equal(t, "-$2.25 (-0.75%)", FormatChange(d("-2.25"), d("-0.75")))
}

func TestFormatVolume(t *testing.T) {
	assert.Equal(t, "1,000", FormatVolume(1000))
	assert.Equal(t, "999", FormatVolume(999))
	assert.Equal(t, "12,345,678", FormatVolume(12345678))
}

func TestFormatElapsed(t *testing.T) {
	tests := map[int]string{0: "0:00", 5: "0:05", 65: "1:05", 600: "10:00", 3661: "61:01", -3: "0:00"}
	for in, want := range tests {
		assert.Equal(t, want, FormatElapsed(in), in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "", FormatClock(time.Time{}))

	at := time.Date(2024, 3, 1, 15, 4, 5, 0, time.Local)
	assert.Equal(t, "3:04:05 PM", FormatClock(at))
	assert.Equal(t, "9:30:00 AM", FormatClock(time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, Positive, DirectionOf(d("0.01")))
	assert.Equal(t, Negative, DirectionOf(d("-3")))
	assert.Equal(t, Neutral, DirectionOf(decimal.Zero))

	assert.Equal(t, "positive", Positive.String())
	assert.Equal(t, "negative", Negative.String())
	assert.Equal(t, "neutral", Neutral.String())
	assert.Equal(t, "▲", Positive.Arrow())
	assert.Equal(t, "▼", Negative.Arrow())
	assert.Equal(t, "-", Neutral.Arrow())
}
