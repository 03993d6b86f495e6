package reconciler

import (
	"time"

	"github.com/milkywaybrain/marketstream/internal/market"
)

// Row is one displayed symbol.
type Row struct {
	Record  market.Record
	Changed bool
}

// View is a consistent copy of the state for the rendering layer.
type View struct {
	Rows           []Row // ascending by symbol
	TotalUpdates   int64
	LastUpdate     time.Time
	ElapsedSeconds int
	Connected      bool
}

// View copies the whole state under one lock.
func (rc *Reconciler) View() View {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	ordered := rc.orderedLocked()
	v := View{
		Rows:           make([]Row, 0, len(ordered)),
		TotalUpdates:   rc.totalUpdates,
		LastUpdate:     rc.lastUpdate,
		ElapsedSeconds: rc.elapsed,
		Connected:      !rc.connectedAt.IsZero(),
	}
	for _, symbol := range ordered {
		_, changed := rc.changed[symbol]
		v.Rows = append(v.Rows, Row{Record: rc.records[symbol], Changed: changed})
	}
	return v
}

// Symbols returns the row symbols in display order.
func (v View) Symbols() []string {
	symbols := make([]string, len(v.Rows))
	for i, row := range v.Rows {
		symbols[i] = row.Record.Symbol
	}
	return symbols
}
