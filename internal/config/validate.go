package config

import (
	"regexp"

	"github.com/pkg/errors"
)

// Table names are interpolated into SQL, so only plain identifiers are accepted.
var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that source names and values are usable.
func (c *Config) Validate() error {
	switch c.Snapshot.Source {
	case SourceNone, SourceREST, SourceRedis, SourceMySQL, SourcePostgres, SourceElasticSearch:
	default:
		return errors.Errorf("snapshot.source %q is not supported", c.Snapshot.Source)
	}

	switch c.Feed.Source {
	case SourceNone, SourceStomp, SourceRedis, SourceKafka:
	default:
		return errors.Errorf("feed.source %q is not supported", c.Feed.Source)
	}

	if c.Session.HighlightWindowMs < 0 {
		return errors.New("session.highlight_window_ms must be >= 0")
	}
	if c.Session.TickIntervalMs < 1 {
		return errors.New("session.tick_interval_ms must be >= 1")
	}
	if c.Display.RefreshIntervalMs < 1 {
		return errors.New("display.refresh_interval_ms must be >= 1")
	}

	if c.Feed.Source == SourceKafka && len(c.Connection.Kafka.Brokers) == 0 {
		return errors.New("connection.kafka.brokers cannot be empty")
	}
	if c.Snapshot.Source == SourceMySQL && !tableName.MatchString(c.Connection.MySQL.Table) {
		return errors.Errorf("connection.mysql.table %q is not a valid table name", c.Connection.MySQL.Table)
	}
	if c.Snapshot.Source == SourcePostgres {
		if c.Connection.Postgres.DSN == "" {
			return errors.New("connection.postgres.dsn is required")
		}
		if !tableName.MatchString(c.Connection.Postgres.Table) {
			return errors.Errorf("connection.postgres.table %q is not a valid table name", c.Connection.Postgres.Table)
		}
	}
	if c.Snapshot.Source == SourceElasticSearch && c.Connection.ES.IndexName == "" {
		return errors.New("connection.elastic_search.index_name is required")
	}

	switch c.Log.Level {
	case "error", "info", "debug":
	default:
		return errors.Errorf("log.level %q must be one of error, info, debug", c.Log.Level)
	}
	return nil
}
