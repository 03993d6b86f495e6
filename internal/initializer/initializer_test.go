package initializer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func newConfig(t *testing.T, loads *int32) *config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != config.SnapshotsPath {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(loads, 1)
		_, _ = w.Write([]byte(`[{"symbol":"AAPL","price":150.00,"bidPrice":149.95,"askPrice":150.05,"volume":1000,"change":0,"changePercent":0,"timestamp":"2024-03-01 09:30:00"}]`))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Snapshot: config.Snapshot{Source: config.SourceREST},
		Connection: config.Connection{
			REST: config.REST{BaseURL: srv.URL},
		},
		Display: config.Display{RefreshIntervalMs: 5, Commands: true},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunUntilQuit(t *testing.T) {
	var loads int32
	cfg := newConfig(t, &loads)
	out := &syncBuffer{}
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, out, pr) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "AAPL") }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "Disconnected")

	_, err := pw.Write([]byte("refresh\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&loads) == 2 }, 2*time.Second, 5*time.Millisecond)

	_, err = pw.Write([]byte("quit\n"))
	require.NoError(t, err)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after quit")
	}
}

func TestRunUntilCancel(t *testing.T) {
	var loads int32
	cfg := newConfig(t, &loads)
	cfg.Display.Disabled = true
	cfg.Display.Commands = false

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, io.Discard, strings.NewReader("")) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&loads) == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunSourceConnectionError(t *testing.T) {
	cfg := &config.Config{Snapshot: config.Snapshot{Source: config.SourceRedis}}
	cfg.ApplyDefaults()
	cfg.Connection.Redis.Addr = "127.0.0.1:1"
	cfg.Connection.Redis.ReqTimeoutSec = 1

	err := run(context.Background(), cfg, io.Discard, strings.NewReader(""))
	assert.Error(t, err)
}

func TestNewFeed(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{config.SourceStomp, "stomp"},
		{config.SourceRedis, "redis"},
		{config.SourceKafka, "kafka"},
	}
	for _, tt := range tests {
		cfg := &config.Config{Feed: config.Feed{Source: tt.source}}
		fd := newFeed(cfg)
		require.NotNil(t, fd)
		assert.Equal(t, tt.want, fd.Name())
	}

	var none feed.Feed = newFeed(&config.Config{})
	assert.Nil(t, none)
}

func TestNewSourceNone(t *testing.T) {
	src, err := newSource(context.Background(), &config.Config{})
	assert.NoError(t, err)
	assert.Nil(t, src)
}

func TestSetupLogger(t *testing.T) {
	dir := t.TempDir()

	f, err := setupLogger(&config.Log{Level: "debug", FilePath: filepath.Join(dir, "app.log")})
	require.NoError(t, err)
	require.NotNil(t, f)
	require.NoError(t, f.Close())
	assert.FileExists(t, filepath.Join(dir, "app.log"))

	f, err = setupLogger(&config.Log{Level: "info", FilePath: filepath.Join(dir, "app")})
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.True(t, strings.HasPrefix(filepath.Base(f.Name()), "app_"))
	require.NoError(t, f.Close())

	f, err = setupLogger(&config.Log{Level: "error"})
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = setupLogger(&config.Log{FilePath: filepath.Join(dir, "missing", "app.log")})
	assert.Error(t, err)
}
