package stream

import (
	"errors"
	"time"
)

// Errors returned by the feed.
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// FeedConfig holds WebSocket feed settings.
type FeedConfig struct {
	URL        string   // Provider WebSocket endpoint
	APIKey     string   // Bearer token, optional
	Stations   []string // Stations to subscribe to
	BufferSize int      // Raw message channel capacity (default: 1000)

	PingInterval       time.Duration // Keepalive ping cadence (default: 15s)
	ReadTimeout        time.Duration // Max silence before the read is abandoned (default: 30s)
	ReconnectBaseDelay time.Duration // First reconnect delay (default: 1s)
	ReconnectMaxDelay  time.Duration // Reconnect delay cap (default: 60s)
}

func (c *FeedConfig) applyDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = 1000
	}
	if c.PingInterval == 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = time.Second
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = 60 * time.Second
	}
}

// RawMessage is one frame off the wire, stamped with its receive time.
type RawMessage struct {
	Data       []byte
	ReceivedAt time.Time
}

// subscribeCmd is the subscription request sent after connecting.
type subscribeCmd struct {
	Type     string   `json:"type"`
	Stations []string `json:"stations"`
}

// obsWire is the provider's observation message layout.
type obsWire struct {
	Type       string  `json:"type"` // "observation"
	Station    string  `json:"station"`
	ObservedTS int64   `json:"observed_ts"` // Microseconds since epoch
	TempC      float64 `json:"temp_c"`
	DewPointC  float64 `json:"dew_point_c"`
	WindKPH    float64 `json:"wind_kph"`
	PrecipMM   float64 `json:"precip_mm"`
}
