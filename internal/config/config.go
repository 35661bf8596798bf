package config

import (
	"time"
)

// Config is the root configuration for the weather gatherer.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Data     DataConfig     `yaml:"data"`
	Weather  WeatherConfig  `yaml:"weather"`
	Stream   StreamConfig   `yaml:"stream"`
	Database DatabaseConfig `yaml:"database"`
	Writer   WriterConfig   `yaml:"writer"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this gatherer.
type InstanceConfig struct {
	ID     string `yaml:"id"`
	Region string `yaml:"region"`
}

// DataConfig holds panel data settings.
type DataConfig struct {
	CSVPath    string `yaml:"csv_path"`
	ChunkSize  int    `yaml:"chunk_size"`
	WeekOrigin string `yaml:"week_origin"` // first week start, YYYY-MM-DD (UTC)
	PanelTable string `yaml:"panel_table"`
}

// OriginTime parses the configured week origin.
func (d DataConfig) OriginTime() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", d.WeekOrigin, time.UTC)
}

// WeatherConfig holds weather API settings.
type WeatherConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	Stations          []string      `yaml:"stations"` // empty means all registered stations
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	CacheSize         int           `yaml:"cache_size"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	PollConcurrency   int           `yaml:"poll_concurrency"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// StreamConfig holds WebSocket feed settings.
type StreamConfig struct {
	URL                string        `yaml:"url"`
	BufferSize         int           `yaml:"buffer_size"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// DatabaseConfig holds the PostgreSQL connection for panel and
// observation data.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
