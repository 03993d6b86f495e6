package display

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/milkywaybrain/marketstream/internal/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func view() reconciler.View {
	return reconciler.View{
		Rows: []reconciler.Row{
			{Record: market.Record{Symbol: "AAPL", Price: d("150"), BidPrice: d("149.95"), AskPrice: d("150.05"), Volume: 1000, Change: d("1"), ChangePercent: d("0.5")}},
			{Record: market.Record{Symbol: "GOOG", Price: d("2800.5"), BidPrice: d("2800"), AskPrice: d("2801"), Volume: 25000, Change: d("-3"), ChangePercent: d("-0.1")}, Changed: true},
		},
		TotalUpdates:   7,
		ElapsedSeconds: 65,
		Connected:      true,
	}
}

func TestRender(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, false)
	out := term.Render(Frame{Status: "Connected", View: view()})

	assert.Contains(t, out, "MarketStream")
	assert.Contains(t, out, "Connected")
	assert.Contains(t, out, "Total Updates: 7")
	assert.Contains(t, out, "Active Symbols: 2")
	assert.Contains(t, out, "Connected Time: 1:05")
	assert.Contains(t, out, "Last Update: N/A")

	lines := strings.Split(out, "\n")
	var aapl, goog string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "AAPL"):
			aapl = l
		case strings.Contains(l, "GOOG"):
			goog = l
		}
	}
	require.NotEmpty(t, aapl)
	require.NotEmpty(t, goog)

	assert.False(t, strings.HasPrefix(aapl, ChangedMarker))
	assert.Contains(t, aapl, "$150.00")
	assert.Contains(t, aapl, "▲ +$1.00 (+0.5%)")
	assert.Contains(t, aapl, "$0.10")
	assert.Contains(t, aapl, "1,000")

	assert.True(t, strings.HasPrefix(goog, ChangedMarker))
	assert.Contains(t, goog, "$2,800.50")
	assert.Contains(t, goog, "▼ -$3.00 (-0.1%)")
	assert.Contains(t, goog, "25,000")
	assert.Less(t, strings.Index(out, "AAPL"), strings.Index(out, "GOOG"))
}

func TestRenderEmpty(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{}, false)
	out := term.Render(Frame{Status: "Disconnected"})

	assert.Contains(t, out, "Disconnected")
	assert.Contains(t, out, "Loading market data...")
	assert.Contains(t, out, "Connected Time: 0:00")
}

func TestDrawClearsScreen(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, true)
	require.NoError(t, term.Draw(Frame{Status: "Connecting..."}))
	assert.True(t, strings.HasPrefix(buf.String(), clearScreen))

	buf.Reset()
	term = NewTerminal(&buf, false)
	require.NoError(t, term.Draw(Frame{Status: "Connecting..."}))
	assert.False(t, strings.HasPrefix(buf.String(), clearScreen))
}

// syncBuffer is a bytes.Buffer safe for a concurrent writer and reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestRunRepaints(t *testing.T) {
	out := &syncBuffer{}
	term := NewTerminal(out, false)

	var mu sync.Mutex
	frames := 0
	frame := func() Frame {
		mu.Lock()
		defer mu.Unlock()
		frames++
		return Frame{Status: "Connected", View: view()}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- term.Run(ctx, 5*time.Millisecond, frame) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return frames >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Contains(t, out.String(), "GOOG")
}
