package console

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/reconciler"
	"github.com/milkywaybrain/marketstream/internal/session"
	"github.com/milkywaybrain/marketstream/internal/testutils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recorder) Connect(context.Context) error { r.record("connect"); return r.err }
func (r *recorder) Disconnect()                   { r.record("disconnect") }
func (r *recorder) Refresh(context.Context) error { r.record("refresh"); return r.err }
func (r *recorder) Clear()                        { r.record("clear") }

func (r *recorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestExec(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"connect", []string{"connect"}},
		{"C", []string{"connect"}},
		{"  disconnect  ", []string{"disconnect"}},
		{"d", []string{"disconnect"}},
		{"refresh", []string{"refresh"}},
		{"r", []string{"refresh"}},
		{"clear", []string{"clear"}},
		{"x", []string{"clear"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rec := &recorder{}
			err := New(nil, rec).Exec(context.Background(), tt.line)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, rec.recorded())
		})
	}
}

func TestExecQuitAndUnknown(t *testing.T) {
	rec := &recorder{}
	c := New(nil, rec)

	assert.True(t, errors.Is(c.Exec(context.Background(), "quit"), ErrQuit))
	assert.True(t, errors.Is(c.Exec(context.Background(), "Q"), ErrQuit))

	err := c.Exec(context.Background(), "launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Empty(t, rec.recorded())
}

func TestRunUntilQuit(t *testing.T) {
	rec := &recorder{}
	in := strings.NewReader("refresh\nc\n\nbogus\nx\nquit\nd\n")

	err := New(in, rec).Run(context.Background())
	assert.True(t, errors.Is(err, ErrQuit))
	assert.Equal(t, []string{"refresh", "connect", "clear"}, rec.recorded())
}

func TestRunKeepsGoingOnActionError(t *testing.T) {
	rec := &recorder{err: errors.New("connection refused")}
	in := strings.NewReader("connect\nrefresh\n")

	err := New(in, rec).Run(context.Background())
	assert.NoError(t, err, "end of input")
	assert.Equal(t, []string{"connect", "refresh"}, rec.recorded())
}

func TestRunStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(pr, rec).Run(ctx) }()

	_, err := pw.Write([]byte("clear\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(rec.recorded()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConnectionOutlivesInput(t *testing.T) {
	clock := testutils.NewFakeClock(time.Now())
	fd := testutils.NewMockFeed()
	sess := session.New(&config.Session{TickIntervalMs: 5}, reconciler.New(0, clock), nil, fd, clock)
	t.Cleanup(sess.Close)

	require.NoError(t, New(strings.NewReader("connect\n"), sess).Run(context.Background()))
	assert.Equal(t, session.StatusConnected, sess.Status())
	assert.Never(t, func() bool { return sess.Status() != session.StatusConnected }, 100*time.Millisecond, 5*time.Millisecond)

	fd.In <- []byte(`{"symbol":"TSLA","price":210.4}`)
	require.Eventually(t, func() bool { return sess.Reconciler().TotalUpdates() == 1 }, 2*time.Second, 5*time.Millisecond)
}
