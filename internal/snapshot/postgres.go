package snapshot

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/pkg/errors"
)

// Numerics come back as text so they scan into decimals without loss.
const pgSelectColumns = "symbol, price::text, bid_price::text, ask_price::text, volume, price_change::text, change_percent::text, updated_at"

// Querier is the query method of a pgx pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres is for reading the latest state table from postgres.
type Postgres struct {
	DB  Querier
	Cfg *config.Postgres

	pool *pgxpool.Pool
}

// NewPostgres creates a connection pool for the configured DSN.
func NewPostgres(appCtx context.Context, cfg *config.Postgres) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres dsn")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	ctx, cancel := reqContext(appCtx, cfg.ReqTimeoutSec)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres ping")
	}
	return &Postgres{DB: pool, Cfg: cfg, pool: pool}, nil
}

func (p *Postgres) Name() string { return config.SourcePostgres }

// Load selects every row of the latest state table.
func (p *Postgres) Load(appCtx context.Context) ([]market.Record, error) {
	ctx, cancel := reqContext(appCtx, p.Cfg.ReqTimeoutSec)
	defer cancel()

	rows, err := p.DB.Query(ctx, "SELECT "+pgSelectColumns+" FROM "+p.Cfg.Table)
	if err != nil {
		return nil, errors.Wrap(err, "postgres query")
	}
	defer rows.Close()

	var records []market.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "postgres scan")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "postgres rows")
	}
	return records, nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
