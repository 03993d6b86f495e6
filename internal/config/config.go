package config

const (
	// DefaultRESTBaseURL is the market stream backend base REST url.
	DefaultRESTBaseURL = "http://localhost:8090"
	// SnapshotsPath returns the latest record of every available symbol.
	SnapshotsPath = "/api/market-data/snapshots"
	// SnapshotPath returns the latest record of one symbol, symbol is appended.
	SnapshotPath = "/api/market-data/snapshot/"
	// SymbolsPath returns the list of available symbols.
	SymbolsPath = "/api/market-data/symbols"
	// HealthPath is the backend liveness endpoint.
	HealthPath = "/api/market-data/health"

	// DefaultStompURL is the raw websocket endpoint of the STOMP broker.
	DefaultStompURL = "ws://localhost:8090/ws/websocket"
	// DefaultTopic is the topic carrying updates for all symbols.
	DefaultTopic = "/topic/market-data/all"
	// SymbolTopicPrefix is the prefix of the per symbol topics.
	SymbolTopicPrefix = "/topic/market-data/"

	// DefaultRedisKeyPrefix is the key prefix the backend caches records under.
	DefaultRedisKeyPrefix = "market:data:"
	// DefaultRedisPattern is the pub/sub channel pattern for live records.
	DefaultRedisPattern = "market-data.*"

	// DefaultKafkaTopic is the topic the backend produces records to.
	DefaultKafkaTopic = "market-data"
	// DefaultKafkaGroupID is the consumer group used by the kafka feed.
	DefaultKafkaGroupID = "marketstream-dashboard"

	// DefaultTable is the latest state table read by the SQL snapshot sources.
	DefaultTable = "market_data"
)

// Snapshot source names.
const (
	SourceNone          = ""
	SourceREST          = "rest"
	SourceRedis         = "redis"
	SourceMySQL         = "mysql"
	SourcePostgres      = "postgres"
	SourceElasticSearch = "elastic_search"
	SourceStomp         = "stomp"
	SourceKafka         = "kafka"
)

// Config contains config values for the app.
// Struct values are loaded from user defined JSON or YAML config file.
type Config struct {
	Session    Session    `json:"session" yaml:"session"`
	Snapshot   Snapshot   `json:"snapshot" yaml:"snapshot"`
	Feed       Feed       `json:"feed" yaml:"feed"`
	Connection Connection `json:"connection" yaml:"connection"`
	Display    Display    `json:"display" yaml:"display"`
	Log        Log        `json:"log" yaml:"log"`
}

// Session contains config values for the dashboard session.
type Session struct {
	AutoConnect       bool `json:"auto_connect" yaml:"auto_connect"`
	HighlightWindowMs int  `json:"highlight_window_ms" yaml:"highlight_window_ms"`
	TickIntervalMs    int  `json:"tick_interval_ms" yaml:"tick_interval_ms"`
}

// Snapshot contains config values for the bulk snapshot source.
type Snapshot struct {
	Source  string   `json:"source" yaml:"source"`
	Symbols []string `json:"symbols" yaml:"symbols"`
}

// Feed contains config values for the live update source.
type Feed struct {
	Source string `json:"source" yaml:"source"`

	// Symbol, if set, subscribes to the per symbol topic instead of the all symbols one.
	Symbol string `json:"symbol" yaml:"symbol"`
}

// Connection contains config values for different API and source connections.
type Connection struct {
	WS       WS       `json:"websocket" yaml:"websocket"`
	Stomp    Stomp    `json:"stomp" yaml:"stomp"`
	REST     REST     `json:"rest" yaml:"rest"`
	Redis    Redis    `json:"redis" yaml:"redis"`
	Kafka    Kafka    `json:"kafka" yaml:"kafka"`
	MySQL    MySQL    `json:"mysql" yaml:"mysql"`
	Postgres Postgres `json:"postgres" yaml:"postgres"`
	ES       ES       `json:"elastic_search" yaml:"elastic_search"`
}

// WS contains config values for websocket connection.
type WS struct {
	ConnTimeoutSec int `json:"conn_timeout_sec" yaml:"conn_timeout_sec"`
	ReadTimeoutSec int `json:"read_timeout_sec" yaml:"read_timeout_sec"`
}

// Stomp contains config values for the STOMP session.
type Stomp struct {
	URL   string `json:"url" yaml:"url"`
	Host  string `json:"host" yaml:"host"`
	Topic string `json:"topic" yaml:"topic"`
}

// REST contains config values for REST API connection.
type REST struct {
	BaseURL             string `json:"base_url" yaml:"base_url"`
	ReqTimeoutSec       int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	MaxIdleConns        int    `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int    `json:"max_idle_conns_per_host" yaml:"max_idle_conns_per_host"`
}

// Redis contains config values for redis.
type Redis struct {
	Addr          string `json:"addr" yaml:"addr"`
	Password      string `json:"password" yaml:"password"`
	DB            int    `json:"db" yaml:"db"`
	KeyPrefix     string `json:"key_prefix" yaml:"key_prefix"`
	Pattern       string `json:"pattern" yaml:"pattern"`
	ReqTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

// Kafka contains config values for kafka.
type Kafka struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
	GroupID string   `json:"group_id" yaml:"group_id"`
}

// MySQL contains config values for mysql.
type MySQL struct {
	User               string `json:"user" yaml:"user"`
	Password           string `json:"password" yaml:"password"`
	URL                string `json:"URL" yaml:"url"`
	Schema             string `json:"schema" yaml:"schema"`
	Table              string `json:"table" yaml:"table"`
	ReqTimeoutSec      int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	ConnMaxLifetimeSec int    `json:"conn_max_lifetime_sec" yaml:"conn_max_lifetime_sec"`
	MaxOpenConns       int    `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns       int    `json:"max_idle_conns" yaml:"max_idle_conns"`
}

// Postgres contains config values for postgres.
type Postgres struct {
	DSN           string `json:"dsn" yaml:"dsn"`
	Table         string `json:"table" yaml:"table"`
	ReqTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	MaxConns      int32  `json:"max_conns" yaml:"max_conns"`
}

// ES contains config values for elastic search.
type ES struct {
	Addresses           []string `json:"addresses" yaml:"addresses"`
	Username            string   `json:"username" yaml:"username"`
	Password            string   `json:"password" yaml:"password"`
	IndexName           string   `json:"index_name" yaml:"index_name"`
	ReqTimeoutSec       int      `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	MaxIdleConns        int      `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int      `json:"max_idle_conns_per_host" yaml:"max_idle_conns_per_host"`
	MaxSymbols          int      `json:"max_symbols" yaml:"max_symbols"`
}

// Display contains config values for terminal display.
type Display struct {
	Disabled          bool `json:"disabled" yaml:"disabled"`
	RefreshIntervalMs int  `json:"refresh_interval_ms" yaml:"refresh_interval_ms"`
	ClearScreen       bool `json:"clear_screen" yaml:"clear_screen"`
	Commands          bool `json:"commands" yaml:"commands"`
}

// Log contains config values for logging.
type Log struct {
	Level    string `json:"level" yaml:"level"`
	FilePath string `json:"file_path" yaml:"file_path"`
}
