// Package console reads dashboard commands line by line.
package console

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrQuit is returned by Run when the quit command is read.
var ErrQuit = errors.New("quit requested")

// Controller is the set of actions the commands trigger.
type Controller interface {
	Connect(ctx context.Context) error
	Disconnect()
	Refresh(ctx context.Context) error
	Clear()
}

// Command names and their short aliases.
var commands = map[string]string{
	"connect":    "connect",
	"c":          "connect",
	"disconnect": "disconnect",
	"d":          "disconnect",
	"refresh":    "refresh",
	"r":          "refresh",
	"clear":      "clear",
	"x":          "clear",
	"quit":       "quit",
	"q":          "quit",
	"exit":       "quit",
}

// Console dispatches commands read from in to a controller.
type Console struct {
	in   io.Reader
	ctrl Controller
}

// New creates a console reading in.
func New(in io.Reader, ctrl Controller) *Console {
	return &Console{in: in, ctrl: ctrl}
}

// Run reads commands until ctx is done, the input ends or quit is read.
// Action errors are logged and do not stop the console.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			// Input closed, keep running on the remaining components.
			if err != nil {
				return errors.Wrap(err, "read commands")
			}
			return nil
		case line := <-lines:
			if err := c.Exec(ctx, line); err != nil {
				if errors.Is(err, ErrQuit) {
					return err
				}
				log.Warn().Str("command", strings.TrimSpace(line)).Err(err).Msg("command failed")
			}
		}
	}
}

// Exec runs one command line. Blank lines are ignored.
func (c *Console) Exec(ctx context.Context, line string) error {
	name := strings.ToLower(strings.TrimSpace(line))
	if name == "" {
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		return errors.Errorf("unknown command %q, use connect, disconnect, refresh, clear or quit", name)
	}

	switch cmd {
	case "connect":
		return c.ctrl.Connect(ctx)
	case "disconnect":
		c.ctrl.Disconnect()
	case "refresh":
		return c.ctrl.Refresh(ctx)
	case "clear":
		c.ctrl.Clear()
	case "quit":
		return ErrQuit
	}
	return nil
}
