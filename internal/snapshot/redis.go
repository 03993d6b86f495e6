package snapshot

import (
	"context"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const scanCount = 100

// Redis loads snapshots from the backend record cache.
type Redis struct {
	Client  *redis.Client
	Cfg     *config.Redis
	Symbols []string
}

// NewRedis connects to the configured redis. When symbols is empty every key
// under the configured prefix is loaded.
func NewRedis(appCtx context.Context, cfg *config.Redis, symbols []string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := reqContext(appCtx, cfg.ReqTimeoutSec)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return &Redis{Client: client, Cfg: cfg, Symbols: symbols}, nil
}

func (r *Redis) Name() string { return config.SourceRedis }

// Load reads the cached record of every symbol. Missing keys and
// undecodable values are skipped.
func (r *Redis) Load(appCtx context.Context) ([]market.Record, error) {
	ctx, cancel := reqContext(appCtx, r.Cfg.ReqTimeoutSec)
	defer cancel()

	keys := make([]string, 0, len(r.Symbols))
	for _, symbol := range r.Symbols {
		keys = append(keys, r.Cfg.KeyPrefix+symbol)
	}
	if len(keys) == 0 {
		var err error
		keys, err = r.scanKeys(ctx)
		if err != nil {
			return nil, err
		}
	}
	if len(keys) == 0 {
		return []market.Record{}, nil
	}

	values, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis mget")
	}
	records := make([]market.Record, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		record, err := market.DecodeRecord([]byte(s))
		if err != nil {
			log.Debug().Str("key", keys[i]).Err(err).Msg("cached record skipped")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Redis) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.Client.Scan(ctx, 0, r.Cfg.KeyPrefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "redis scan")
	}
	return keys, nil
}

// Close closes the redis client.
func (r *Redis) Close() error {
	return r.Client.Close()
}
