package feed

import (
	"context"
	"net/url"

	"github.com/go-stomp/stomp/v3"
	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/connector"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Stomp subscribes to a STOMP topic carried over a websocket.
type Stomp struct {
	Cfg   *config.Stomp
	WSCfg *config.WS
}

// NewStomp creates a feed for the configured broker and topic.
func NewStomp(cfg *config.Stomp, wsCfg *config.WS) *Stomp {
	return &Stomp{Cfg: cfg, WSCfg: wsCfg}
}

func (s *Stomp) Name() string { return config.SourceStomp }

func (s *Stomp) Run(ctx context.Context, onConnected func(), onMessage func([]byte)) error {
	ws, err := connector.NewWebsocket(ctx, s.WSCfg, s.Cfg.URL)
	if err != nil {
		return errors.Wrap(err, "stomp websocket dial")
	}
	stream := connector.NewStream(&ws)

	// Connect and Subscribe block on the broker, closing the stream unblocks them.
	stop := context.AfterFunc(ctx, func() { _ = stream.Close() })
	conn, err := stomp.Connect(stream,
		stomp.ConnOpt.AcceptVersion(stomp.V12),
		stomp.ConnOpt.Host(s.host()),
		stomp.ConnOpt.HeartBeat(0, 0),
	)
	if err != nil {
		stop()
		_ = stream.Close()
		return closeErr(ctx, errors.Wrap(err, "stomp connect"))
	}
	sub, err := conn.Subscribe(s.Cfg.Topic, stomp.AckAuto)
	if !stop() {
		// ctx was cancelled during the handshake.
		_ = conn.MustDisconnect()
		return nil
	}
	if err != nil {
		_ = conn.MustDisconnect()
		return errors.Wrapf(err, "stomp subscribe %s", s.Cfg.Topic)
	}
	log.Debug().Str("feed", config.SourceStomp).Str("topic", s.Cfg.Topic).Msg("subscribed")
	onConnected()

	for {
		select {
		case <-ctx.Done():
			_ = conn.MustDisconnect()
			return nil
		case msg, ok := <-sub.C:
			if !ok {
				_ = conn.MustDisconnect()
				return closeErr(ctx, ErrClosed)
			}
			if msg.Err != nil {
				_ = conn.MustDisconnect()
				return closeErr(ctx, errors.Wrap(msg.Err, "stomp read"))
			}
			onMessage(msg.Body)
		}
	}
}

// host is the STOMP virtual host, the websocket host unless configured.
func (s *Stomp) host() string {
	if s.Cfg.Host != "" {
		return s.Cfg.Host
	}
	u, err := url.Parse(s.Cfg.URL)
	if err != nil || u.Hostname() == "" {
		return "/"
	}
	return u.Hostname()
}
