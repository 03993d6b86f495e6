package initializer

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/console"
	"github.com/milkywaybrain/marketstream/internal/display"
	"github.com/milkywaybrain/marketstream/internal/feed"
	"github.com/milkywaybrain/marketstream/internal/reconciler"
	"github.com/milkywaybrain/marketstream/internal/session"
	"github.com/milkywaybrain/marketstream/internal/snapshot"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Start will initialize various required systems and then execute the app.
func Start(mainCtx context.Context, cfg *config.Config) error {
	logFile, err := setupLogger(&cfg.Log)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	return run(mainCtx, cfg, os.Stdout, os.Stdin)
}

// run wires the sources, the session, the display and the command console
// together and blocks until ctx is done or the quit command is read.
func run(mainCtx context.Context, cfg *config.Config, out io.Writer, in io.Reader) error {
	// Establish connections to the snapshot source before anything runs.
	src, err := newSource(mainCtx, cfg)
	if err != nil {
		logErrStack(err)
		return err
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}
	fd := newFeed(cfg)

	rec := reconciler.New(time.Duration(cfg.Session.HighlightWindowMs)*time.Millisecond, nil)
	sess := session.New(&cfg.Session, rec, src, fd, nil)
	log.Info().Str("session", sess.ID).Str("snapshot", cfg.Snapshot.Source).Str("feed", cfg.Feed.Source).Msg("session created")

	// If any part fails, force all the other parts to stop and exit the app.
	appErrGroup, appCtx := errgroup.WithContext(mainCtx)

	appErrGroup.Go(func() error {
		return sess.Run(appCtx)
	})

	if !cfg.Display.Disabled {
		term := display.NewTerminal(out, cfg.Display.ClearScreen)
		interval := time.Duration(cfg.Display.RefreshIntervalMs) * time.Millisecond
		appErrGroup.Go(func() error {
			return term.Run(appCtx, interval, func() display.Frame {
				return display.Frame{Status: sess.Status().String(), View: rec.View()}
			})
		})
	}

	if cfg.Display.Commands {
		con := console.New(in, sess)
		appErrGroup.Go(func() error {
			return con.Run(appCtx)
		})
	}

	err = appErrGroup.Wait()
	if err != nil && !errors.Is(err, console.ErrQuit) {
		log.Error().Msg("exiting the app")
		return err
	}
	log.Info().Msg("app stopped")
	return nil
}

// newSource connects the configured snapshot source, nil if none is configured.
func newSource(ctx context.Context, cfg *config.Config) (snapshot.Source, error) {
	switch cfg.Snapshot.Source {
	case config.SourceREST:
		log.Info().Msg("rest snapshot source ready")
		return snapshot.NewREST(&cfg.Connection.REST), nil
	case config.SourceRedis:
		src, err := snapshot.NewRedis(ctx, &cfg.Connection.Redis, cfg.Snapshot.Symbols)
		if err != nil {
			return nil, errors.Wrap(err, "redis connection")
		}
		log.Info().Msg("redis connected")
		return src, nil
	case config.SourceMySQL:
		src, err := snapshot.NewMySQL(ctx, &cfg.Connection.MySQL)
		if err != nil {
			return nil, errors.Wrap(err, "mysql connection")
		}
		log.Info().Msg("mysql connected")
		return src, nil
	case config.SourcePostgres:
		src, err := snapshot.NewPostgres(ctx, &cfg.Connection.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "postgres connection")
		}
		log.Info().Msg("postgres connected")
		return src, nil
	case config.SourceElasticSearch:
		src, err := snapshot.NewElasticSearch(ctx, &cfg.Connection.ES)
		if err != nil {
			return nil, errors.Wrap(err, "elastic search connection")
		}
		log.Info().Msg("elastic search connected")
		return src, nil
	}
	return nil, nil
}

// newFeed creates the configured live feed, nil if none is configured.
// Feeds connect on demand, so nothing is dialed here.
func newFeed(cfg *config.Config) feed.Feed {
	switch cfg.Feed.Source {
	case config.SourceStomp:
		return feed.NewStomp(&cfg.Connection.Stomp, &cfg.Connection.WS)
	case config.SourceRedis:
		return feed.NewRedis(&cfg.Connection.Redis)
	case config.SourceKafka:
		return feed.NewKafka(&cfg.Connection.Kafka)
	}
	return nil
}
