// Package feed subscribes to the live stream of market record updates.
//
// A Feed runs one connection at a time. Run blocks while the connection is
// alive: it calls onConnected once the subscription is established and
// onMessage for every payload received. Returning before onConnected means
// the connection could not be made, returning after it means the
// connection was lost. Cancelling ctx is an explicit disconnect and makes
// Run return nil.
package feed

import (
	"context"
	"io"
	"net"

	"github.com/pkg/errors"
)

// Feed is a live update source.
type Feed interface {
	Name() string
	Run(ctx context.Context, onConnected func(), onMessage func([]byte)) error
}

// ErrClosed is returned when the server ends the subscription.
var ErrClosed = errors.New("subscription closed by server")

// closeErr maps errors caused by a requested shutdown to nil.
func closeErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return errors.Wrap(ErrClosed, err.Error())
	}
	return err
}
