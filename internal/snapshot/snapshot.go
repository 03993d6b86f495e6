// Package snapshot loads the latest record of every symbol in one call, from
// whichever store the backend keeps its latest state in.
package snapshot

import (
	"context"
	"time"

	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/pkg/errors"
)

// Source is a bulk snapshot source.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]market.Record, error)
}

// ErrNotFound is returned when the source has no record for a symbol.
var ErrNotFound = errors.New("symbol not found")

// reqContext bounds appCtx by timeoutSec, a zero timeout leaves it unbounded.
func reqContext(appCtx context.Context, timeoutSec int) (context.Context, context.CancelFunc) {
	if timeoutSec > 0 {
		return context.WithTimeout(appCtx, time.Duration(timeoutSec)*time.Second)
	}
	return context.WithCancel(appCtx)
}
