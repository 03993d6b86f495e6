// Package session owns the connection lifecycle of the dashboard and feeds
// the snapshot and live sources into the reconciler.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/feed"
	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/milkywaybrain/marketstream/internal/reconciler"
	"github.com/milkywaybrain/marketstream/internal/snapshot"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Status is the live connection state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "Connecting..."
	case StatusConnected:
		return "Connected"
	default:
		return "Disconnected"
	}
}

// ErrNoFeed is returned by Connect when no live source is configured.
var ErrNoFeed = errors.New("no live feed configured")

// Session drives one reconciler from a snapshot source and a live feed.
type Session struct {
	ID string

	rec         *reconciler.Reconciler
	src         snapshot.Source
	feed        feed.Feed
	clock       reconciler.Clock
	tick        time.Duration
	autoConnect bool
	log         zerolog.Logger

	// ctx outlives callers of Connect, only Close cancels it.
	ctx  context.Context
	stop context.CancelFunc

	// mu guards the connection state. Connection changes are pushed to the
	// reconciler while holding it, so both always agree.
	mu     sync.Mutex
	status Status
	gen    uint64
	cancel context.CancelFunc

	wg sync.WaitGroup
}

// New creates a disconnected session. src and fd may be nil.
func New(cfg *config.Session, rec *reconciler.Reconciler, src snapshot.Source, fd feed.Feed, clock reconciler.Clock) *Session {
	if clock == nil {
		clock = reconciler.SystemClock
	}
	tick := time.Duration(cfg.TickIntervalMs) * time.Millisecond
	if tick <= 0 {
		tick = time.Second
	}
	id := uuid.NewString()
	ctx, stop := context.WithCancel(context.Background())
	return &Session{
		ID:          id,
		ctx:         ctx,
		stop:        stop,
		rec:         rec,
		src:         src,
		feed:        fd,
		clock:       clock,
		tick:        tick,
		autoConnect: cfg.AutoConnect,
		log:         log.With().Str("session", id).Logger(),
	}
}

// Status returns the current connection state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Reconciler returns the state the session feeds.
func (s *Session) Reconciler() *reconciler.Reconciler {
	return s.rec
}

// Refresh replaces the records with a new bulk snapshot. On failure the
// error is logged and returned and the records are kept.
func (s *Session) Refresh(ctx context.Context) error {
	if s.src == nil {
		return nil
	}
	records, err := s.src.Load(ctx)
	if err != nil {
		s.log.Error().Stack().Err(errors.WithStack(err)).Str("source", s.src.Name()).Msg("snapshot load failed")
		return err
	}
	n, err := s.rec.LoadSnapshot(records)
	if err != nil {
		s.log.Error().Stack().Err(errors.WithStack(err)).Str("source", s.src.Name()).Msg("snapshot rejected")
		return err
	}
	s.log.Info().Str("source", s.src.Name()).Int("symbols", n).Msg("snapshot loaded")
	return nil
}

// Connect opens the live feed. It returns once the connection is
// established or has failed, and does nothing unless disconnected.
// ctx only bounds the wait, the connection lasts until Disconnect or Close.
func (s *Session) Connect(ctx context.Context) error {
	if s.feed == nil {
		return ErrNoFeed
	}
	s.mu.Lock()
	if s.status != StatusDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	gen := s.gen
	s.status = StatusConnecting
	runCtx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.mu.Unlock()
	s.log.Info().Str("feed", s.feed.Name()).Msg("connecting")

	ready := make(chan error, 1)
	var once sync.Once
	signal := func(err error) { once.Do(func() { ready <- err }) }

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.feed.Run(runCtx,
			func() {
				s.connected(runCtx, gen)
				signal(nil)
			},
			func(data []byte) { s.handleMessage(gen, data) },
		)
		s.finished(gen, err)
		signal(err)
	}()

	select {
	case err := <-ready:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (s *Session) connected(ctx context.Context, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.status = StatusConnected
	s.rec.MarkConnected(s.clock.Now())
	s.log.Info().Str("feed", s.feed.Name()).Msg("connected")

	s.wg.Add(1)
	go s.tickLoop(ctx)
}

// tickLoop refreshes the connected time until ctx is done.
func (s *Session) tickLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rec.Tick(s.clock.Now())
		}
	}
}

// finished handles the return of the feed run of generation gen.
func (s *Session) finished(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	wasConnected := s.status == StatusConnected
	s.status = StatusDisconnected
	s.rec.MarkDisconnected()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	switch {
	case err == nil:
		s.log.Info().Msg("disconnected")
	case wasConnected:
		s.log.Error().Stack().Err(errors.WithStack(err)).Msg("live connection lost")
	default:
		s.log.Error().Stack().Err(errors.WithStack(err)).Msg("live connection failed")
	}
}

// Disconnect closes the live feed. Messages still in flight are ignored.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.status != StatusDisconnected {
		s.log.Info().Msg("disconnected")
	}
	s.gen++
	s.status = StatusDisconnected
	s.rec.MarkDisconnected()
}

// Clear drops all records, markers and counters.
func (s *Session) Clear() {
	s.rec.Reset()
	s.log.Info().Msg("state cleared")
}

func (s *Session) handleMessage(gen uint64, data []byte) {
	r, err := market.DecodeRecord(data)
	if err != nil {
		s.log.Warn().Err(err).Int("bytes", len(data)).Msg("malformed update dropped")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	if err := s.rec.ApplyUpdate(r); err != nil {
		s.log.Warn().Err(err).Msg("update rejected")
	}
}

// Run loads the first snapshot, connects if configured to and then waits
// for ctx. The feed is closed before it returns.
func (s *Session) Run(ctx context.Context) error {
	_ = s.Refresh(ctx)
	if s.autoConnect {
		if err := s.Connect(ctx); err != nil {
			s.log.Error().Stack().Err(errors.WithStack(err)).Msg("auto connect failed")
		}
	}
	<-ctx.Done()
	s.Close()
	return nil
}

// Close disconnects and waits for the session goroutines.
func (s *Session) Close() {
	s.Disconnect()
	s.stop()
	s.wg.Wait()
}
