// Package display renders the reconciled market state on a terminal.
package display

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/milkywaybrain/marketstream/internal/reconciler"
)

// ChangedMarker prefixes the rows inside their highlight window.
const ChangedMarker = "* "

const clearScreen = "\033[H\033[2J"

const rowFormat = "%-2s%-10s%14s%24s%14s%14s%10s%14s%14s"

// Frame is one repaint worth of state.
type Frame struct {
	Status string
	View   reconciler.View
}

// Terminal is for displaying market data on terminal.
type Terminal struct {
	out   io.Writer
	clear bool

	title    lipgloss.Style
	header   lipgloss.Style
	changed  lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	status   map[string]lipgloss.Style
}

// NewTerminal creates a terminal display writing to out.
// Output writer is os.Stdout except in tests. Styles degrade to plain text
// when out is not a terminal.
func NewTerminal(out io.Writer, clear bool) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out:      out,
		clear:    clear,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		header:   r.NewStyle().Bold(true).Underline(true),
		changed:  r.NewStyle().Bold(true).Background(lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}),
		positive: r.NewStyle().Foreground(lipgloss.Color("42")),
		negative: r.NewStyle().Foreground(lipgloss.Color("196")),
		status: map[string]lipgloss.Style{
			"Connected":     r.NewStyle().Foreground(lipgloss.Color("42")),
			"Connecting...": r.NewStyle().Foreground(lipgloss.Color("214")),
			"Disconnected":  r.NewStyle().Foreground(lipgloss.Color("196")),
		},
	}
}

// Render returns the text of one frame.
func (t *Terminal) Render(f Frame) string {
	var sb strings.Builder

	status := f.Status
	if st, ok := t.status[status]; ok {
		status = st.Render(status)
	}
	sb.WriteString(t.title.Render("MarketStream"))
	sb.WriteString("  ")
	sb.WriteString(status)
	sb.WriteString("\n\n")

	last := FormatClock(f.View.LastUpdate)
	if last == "" {
		last = "N/A"
	}
	fmt.Fprintf(&sb, "Total Updates: %d   Active Symbols: %d   Connected Time: %s   Last Update: %s\n\n",
		f.View.TotalUpdates, len(f.View.Rows), FormatElapsed(f.View.ElapsedSeconds), last)

	if len(f.View.Rows) == 0 {
		sb.WriteString("Loading market data...\n")
		return sb.String()
	}

	sb.WriteString(t.header.Render(fmt.Sprintf(rowFormat, "", "Symbol", "Price", "Change", "Bid", "Ask", "Spread", "Volume", "Time")))
	sb.WriteString("\n")
	for _, row := range f.View.Rows {
		r := row.Record
		marker := ""
		if row.Changed {
			marker = ChangedMarker
		}
		dir := DirectionOf(r.Change)
		change := dir.Arrow() + " " + FormatChange(r.Change, r.ChangePercent)
		line := fmt.Sprintf(rowFormat, marker, r.Symbol, FormatPrice(r.Price), change,
			FormatPrice(r.BidPrice), FormatPrice(r.AskPrice), FormatPrice(r.Spread()),
			FormatVolume(r.Volume), FormatClock(r.Timestamp.Time))

		switch {
		case row.Changed:
			line = t.changed.Render(line)
		case dir == Positive:
			line = t.positive.Render(line)
		case dir == Negative:
			line = t.negative.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Draw writes one frame to the output in a single write.
func (t *Terminal) Draw(f Frame) error {
	var buf bytes.Buffer
	if t.clear {
		buf.WriteString(clearScreen)
	}
	buf.WriteString(t.Render(f))
	_, err := t.out.Write(buf.Bytes())
	return err
}

// Run repaints every interval until ctx is done.
func (t *Terminal) Run(ctx context.Context, interval time.Duration, frame func() Frame) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	if err := t.Draw(frame()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := t.Draw(frame()); err != nil {
				return err
			}
		}
	}
}
