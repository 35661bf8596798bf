package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultChunkSize         = 5000
	DefaultWeekOrigin        = "1989-09-07"
	DefaultPanelTable        = "panel_sales"
	DefaultAPITimeout        = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultCacheSize         = 4096
	DefaultPollInterval      = 1 * time.Hour
	DefaultPollConcurrency   = 10
	DefaultReconcileInterval = 1 * time.Hour
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 10
	DefaultMinConns          = 2
	DefaultBufferSize        = 1000
	DefaultPingInterval      = 15 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultReconnectBase     = 1 * time.Second
	DefaultReconnectMax      = 60 * time.Second
	DefaultBatchSize         = 1000
	DefaultFlushInterval     = 1 * time.Second
	DefaultHealthPort        = 8080
	DefaultHealthPath        = "/healthz"
)

func (c *Config) applyDefaults() {
	// Data defaults
	if c.Data.ChunkSize == 0 {
		c.Data.ChunkSize = DefaultChunkSize
	}
	if c.Data.WeekOrigin == "" {
		c.Data.WeekOrigin = DefaultWeekOrigin
	}
	if c.Data.PanelTable == "" {
		c.Data.PanelTable = DefaultPanelTable
	}

	// Weather defaults
	if c.Weather.Timeout == 0 {
		c.Weather.Timeout = DefaultAPITimeout
	}
	if c.Weather.MaxRetries == 0 {
		c.Weather.MaxRetries = DefaultMaxRetries
	}
	if c.Weather.CacheSize == 0 {
		c.Weather.CacheSize = DefaultCacheSize
	}
	if c.Weather.PollInterval == 0 {
		c.Weather.PollInterval = DefaultPollInterval
	}
	if c.Weather.PollConcurrency == 0 {
		c.Weather.PollConcurrency = DefaultPollConcurrency
	}
	if c.Weather.ReconcileInterval == 0 {
		c.Weather.ReconcileInterval = DefaultReconcileInterval
	}

	// Stream defaults
	if c.Stream.BufferSize == 0 {
		c.Stream.BufferSize = DefaultBufferSize
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.ReadTimeout == 0 {
		c.Stream.ReadTimeout = DefaultReadTimeout
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBase
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMax
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
	if c.Health.Path == "" {
		c.Health.Path = DefaultHealthPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
