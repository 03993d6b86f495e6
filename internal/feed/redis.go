package feed

import (
	"context"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis receives records published on channels matching a pattern.
type Redis struct {
	Cfg *config.Redis
}

// NewRedis creates a feed for the configured redis and pattern.
func NewRedis(cfg *config.Redis) *Redis {
	return &Redis{Cfg: cfg}
}

func (r *Redis) Name() string { return config.SourceRedis }

func (r *Redis) Run(ctx context.Context, onConnected func(), onMessage func([]byte)) error {
	client := redis.NewClient(&redis.Options{
		Addr:     r.Cfg.Addr,
		Password: r.Cfg.Password,
		DB:       r.Cfg.DB,
	})
	defer client.Close()

	pubsub := client.PSubscribe(ctx, r.Cfg.Pattern)
	defer pubsub.Close()

	// Blocked reads only see a deadline, closing the subscription unblocks them.
	stop := context.AfterFunc(ctx, func() { _ = pubsub.Close() })
	defer stop()

	if _, err := pubsub.Receive(ctx); err != nil {
		return closeErr(ctx, errors.Wrapf(err, "redis psubscribe %s", r.Cfg.Pattern))
	}
	log.Debug().Str("feed", config.SourceRedis).Str("pattern", r.Cfg.Pattern).Msg("subscribed")
	onConnected()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return closeErr(ctx, errors.Wrap(err, "redis receive"))
		}
		onMessage([]byte(msg.Payload))
	}
}
