package snapshot

import (
	"context"
	"database/sql"
	"time"

	// Registers the mysql driver.
	_ "github.com/go-sql-driver/mysql"
	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/milkywaybrain/marketstream/internal/market"
	"github.com/pkg/errors"
)

// MySQL is for connecting and reading the latest state table from mysql.
type MySQL struct {
	DB  *sql.DB
	Cfg *config.MySQL
}

// NewMySQL initializes mysql connection with configured values.
func NewMySQL(appCtx context.Context, cfg *config.MySQL) (*MySQL, error) {
	dataSourceName := cfg.User + ":" + cfg.Password + cfg.URL + "/" + cfg.Schema + "?parseTime=true"
	db, err := sql.Open("mysql", dataSourceName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	db.SetConnMaxLifetime(time.Second * time.Duration(cfg.ConnMaxLifetimeSec))
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := reqContext(appCtx, cfg.ReqTimeoutSec)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "mysql ping")
	}
	return &MySQL{DB: db, Cfg: cfg}, nil
}

func (m *MySQL) Name() string { return config.SourceMySQL }

// Load selects every row of the latest state table.
func (m *MySQL) Load(appCtx context.Context) ([]market.Record, error) {
	ctx, cancel := reqContext(appCtx, m.Cfg.ReqTimeoutSec)
	defer cancel()

	rows, err := m.DB.QueryContext(ctx, "SELECT "+selectColumns+" FROM "+m.Cfg.Table)
	if err != nil {
		return nil, errors.Wrap(err, "mysql query")
	}
	defer rows.Close()

	var records []market.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "mysql scan")
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "mysql rows")
	}
	return records, nil
}

// Close closes the connection pool.
func (m *MySQL) Close() error {
	return m.DB.Close()
}
