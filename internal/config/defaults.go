package config

// Default values for optional configuration fields.
const (
	DefaultHighlightWindowMs = 500
	DefaultTickIntervalMs    = 1000
	DefaultRefreshIntervalMs = 250
	DefaultWSConnTimeoutSec  = 10
	DefaultReqTimeoutSec     = 10
	DefaultRedisAddr         = "localhost:6379"
	DefaultESMaxSymbols      = 1000
	DefaultLogLevel          = "info"
)

// ApplyDefaults fills zero valued optional fields.
func (c *Config) ApplyDefaults() {
	if c.Session.HighlightWindowMs == 0 {
		c.Session.HighlightWindowMs = DefaultHighlightWindowMs
	}
	if c.Session.TickIntervalMs == 0 {
		c.Session.TickIntervalMs = DefaultTickIntervalMs
	}

	if c.Connection.WS.ConnTimeoutSec == 0 {
		c.Connection.WS.ConnTimeoutSec = DefaultWSConnTimeoutSec
	}
	if c.Connection.Stomp.URL == "" {
		c.Connection.Stomp.URL = DefaultStompURL
	}
	if c.Connection.Stomp.Topic == "" {
		if c.Feed.Symbol != "" {
			c.Connection.Stomp.Topic = SymbolTopicPrefix + c.Feed.Symbol
		} else {
			c.Connection.Stomp.Topic = DefaultTopic
		}
	}

	if c.Connection.REST.BaseURL == "" {
		c.Connection.REST.BaseURL = DefaultRESTBaseURL
	}
	if c.Connection.REST.ReqTimeoutSec == 0 {
		c.Connection.REST.ReqTimeoutSec = DefaultReqTimeoutSec
	}

	if c.Connection.Redis.Addr == "" {
		c.Connection.Redis.Addr = DefaultRedisAddr
	}
	if c.Connection.Redis.KeyPrefix == "" {
		c.Connection.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if c.Connection.Redis.Pattern == "" {
		c.Connection.Redis.Pattern = DefaultRedisPattern
	}

	if c.Connection.Kafka.Topic == "" {
		c.Connection.Kafka.Topic = DefaultKafkaTopic
	}
	if c.Connection.Kafka.GroupID == "" {
		c.Connection.Kafka.GroupID = DefaultKafkaGroupID
	}

	if c.Connection.MySQL.Table == "" {
		c.Connection.MySQL.Table = DefaultTable
	}
	if c.Connection.Postgres.Table == "" {
		c.Connection.Postgres.Table = DefaultTable
	}
	if c.Connection.ES.MaxSymbols == 0 {
		c.Connection.ES.MaxSymbols = DefaultESMaxSymbols
	}

	if c.Display.RefreshIntervalMs == 0 {
		c.Display.RefreshIntervalMs = DefaultRefreshIntervalMs
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
