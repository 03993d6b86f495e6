// Package reconciler merges the bulk snapshot and the live update stream of
// market records into one keyed, orderable state with expiring change markers.
//
// All mutation goes through the Reconciler methods. Readers get copies, so a
// value returned by SymbolsOrdered or View stays valid until they ask again.
package reconciler

import (
	"sort"
	"sync"
	"time"

	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultHighlightWindow is how long a symbol stays recently changed after an update.
const DefaultHighlightWindow = 500 * time.Millisecond

// highlight is the recently changed marker of one symbol.
// Only the expiry scheduled with the current seq may remove it.
type highlight struct {
	seq   uint64
	timer Timer
}

// Reconciler owns the market records of a session.
type Reconciler struct {
	clock  Clock
	window time.Duration

	mu      sync.Mutex
	records map[string]market.Record
	ordered []string // nil when the key set changed since the last sort
	changed map[string]highlight
	seq     uint64

	totalUpdates int64
	lastUpdate   time.Time
	connectedAt  time.Time
	elapsed      int
}

// New creates an empty reconciler. A zero window uses DefaultHighlightWindow
// and a nil clock uses SystemClock.
func New(window time.Duration, clock Clock) *Reconciler {
	if window <= 0 {
		window = DefaultHighlightWindow
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Reconciler{
		clock:   clock,
		window:  window,
		records: make(map[string]market.Record),
		changed: make(map[string]highlight),
	}
}

// ErrNoValidRecords is returned by LoadSnapshot when a non-empty snapshot
// holds no valid record.
var ErrNoValidRecords = errors.New("snapshot has no valid record")

// LoadSnapshot replaces all records with the given ones, keyed by symbol.
// A snapshot is a baseline, so nothing is marked as recently changed.
// Invalid records are skipped, but if none of a non-empty snapshot is valid
// the records are kept and ErrNoValidRecords is returned.
// It returns the number of records loaded.
func (rc *Reconciler) LoadSnapshot(records []market.Record) (int, error) {
	next := make(map[string]market.Record, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			log.Debug().Err(err).Msg("snapshot record skipped")
			continue
		}
		next[r.Symbol] = r
	}
	if len(next) == 0 && len(records) > 0 {
		return 0, errors.Wrapf(ErrNoValidRecords, "%d records rejected", len(records))
	}

	rc.mu.Lock()
	rc.records = next
	rc.ordered = nil
	rc.mu.Unlock()
	return len(next), nil
}

// ApplyUpdate upserts one live record and marks its symbol as recently
// changed for the highlight window, restarting the window if the symbol is
// already marked. Invalid records leave the state untouched.
func (rc *Reconciler) ApplyUpdate(r market.Record) error {
	if err := r.Validate(); err != nil {
		return errors.WithStack(err)
	}
	symbol := r.Symbol

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, ok := rc.records[symbol]; !ok {
		rc.ordered = nil
	}
	rc.records[symbol] = r
	rc.totalUpdates++
	rc.lastUpdate = rc.clock.Now()

	if prev, ok := rc.changed[symbol]; ok && prev.timer != nil {
		prev.timer.Stop()
	}
	rc.seq++
	seq := rc.seq
	rc.changed[symbol] = highlight{
		seq:   seq,
		timer: rc.clock.AfterFunc(rc.window, func() { rc.expire(symbol, seq) }),
	}
	return nil
}

// expire removes the marker of symbol if it was not refreshed since seq.
func (rc *Reconciler) expire(symbol string, seq uint64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if h, ok := rc.changed[symbol]; ok && h.seq == seq {
		delete(rc.changed, symbol)
	}
}

// Reset clears records, markers and counters. Connection tracking survives,
// the next tick recomputes the elapsed time.
func (rc *Reconciler) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	for _, h := range rc.changed {
		if h.timer != nil {
			h.timer.Stop()
		}
	}
	rc.records = make(map[string]market.Record)
	rc.changed = make(map[string]highlight)
	rc.ordered = nil
	rc.totalUpdates = 0
	rc.lastUpdate = time.Time{}
	rc.elapsed = 0
}

// SymbolsOrdered returns all symbols in ascending lexicographic order.
func (rc *Reconciler) SymbolsOrdered() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.orderedLocked()...)
}

func (rc *Reconciler) orderedLocked() []string {
	if rc.ordered == nil {
		rc.ordered = make([]string, 0, len(rc.records))
		for symbol := range rc.records {
			rc.ordered = append(rc.ordered, symbol)
		}
		sort.Strings(rc.ordered)
	}
	return rc.ordered
}

// Record returns the latest record of symbol.
func (rc *Reconciler) Record(symbol string) (market.Record, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	r, ok := rc.records[symbol]
	return r, ok
}

// Len is the number of symbols with a record.
func (rc *Reconciler) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.records)
}

// IsRecentlyChanged reports whether symbol is inside its highlight window.
func (rc *Reconciler) IsRecentlyChanged(symbol string) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	_, ok := rc.changed[symbol]
	return ok
}

// RecentlyChanged returns the marked symbols in ascending order.
func (rc *Reconciler) RecentlyChanged() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	symbols := make([]string, 0, len(rc.changed))
	for symbol := range rc.changed {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// TotalUpdates is the number of live updates applied since the last reset.
func (rc *Reconciler) TotalUpdates() int64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.totalUpdates
}

// LastUpdate is the local receipt time of the latest live update, zero if none.
func (rc *Reconciler) LastUpdate() time.Time {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.lastUpdate
}

// MarkConnected starts connection time tracking at.
func (rc *Reconciler) MarkConnected(at time.Time) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.connectedAt = at
	rc.elapsed = 0
}

// Tick recomputes the whole seconds elapsed since MarkConnected.
// It does nothing while not connected.
func (rc *Reconciler) Tick(now time.Time) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.connectedAt.IsZero() {
		return
	}
	elapsed := int(now.Sub(rc.connectedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	rc.elapsed = elapsed
}

// MarkDisconnected stops connection time tracking.
func (rc *Reconciler) MarkDisconnected() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.connectedAt = time.Time{}
	rc.elapsed = 0
}

// ElapsedConnectedSeconds is the value computed by the last Tick, 0 when
// not connected.
func (rc *Reconciler) ElapsedConnectedSeconds() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.elapsed
}
