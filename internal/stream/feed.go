package stream

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Feed maintains one WebSocket connection to the observation provider,
// resubscribing after every reconnect. Raw frames come out of Messages.
type Feed struct {
	cfg    FeedConfig
	logger *slog.Logger

	messages chan RawMessage

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	closed    bool

	writeMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFeed creates a feed. Start must be called before Messages produces
// anything.
func NewFeed(cfg FeedConfig, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Feed{
		cfg:      cfg,
		logger:   logger,
		messages: make(chan RawMessage, cfg.BufferSize),
	}
}

// Messages returns the raw message stream. The channel closes when the
// feed stops.
func (f *Feed) Messages() <-chan RawMessage { return f.messages }

// IsConnected reports the current connection state.
func (f *Feed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

// Start launches the connect/read/reconnect loop.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrAlreadyClosed
	}
	f.mu.Unlock()

	f.ctx, f.cancel = context.WithCancel(ctx)

	f.wg.Add(1)
	go f.run()

	f.logger.Info("observation feed started", "url", f.cfg.URL, "stations", len(f.cfg.Stations))
	return nil
}

// Stop closes the connection and waits for the loops to exit.
func (f *Feed) Stop(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	if f.cancel != nil {
		f.cancel()
	}
	f.closeConn()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(f.messages)
		f.logger.Info("observation feed stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run reconnects forever with capped exponential backoff, reading until
// the connection drops.
func (f *Feed) run() {
	defer f.wg.Done()

	delay := f.cfg.ReconnectBaseDelay
	for {
		if f.ctx.Err() != nil {
			return
		}

		err := f.connect()
		if err == nil {
			delay = f.cfg.ReconnectBaseDelay
			f.readUntilClosed()
		} else {
			f.logger.Warn("feed connect failed", "error", err, "retry_in", delay)
		}

		select {
		case <-f.ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > f.cfg.ReconnectMaxDelay {
			delay = f.cfg.ReconnectMaxDelay
		}
	}
}

// connect dials, subscribes, and starts the ping loop.
func (f *Feed) connect() error {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if f.cfg.APIKey != "" {
		header.Set("Authorization", "Bearer "+f.cfg.APIKey)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(f.ctx, f.cfg.URL, header)
	if err != nil {
		return err
	}

	conn.SetPingHandler(func(data string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
	})

	f.mu.Lock()
	f.conn = conn
	f.connected = true
	f.mu.Unlock()

	if err := f.subscribe(); err != nil {
		f.closeConn()
		return err
	}

	f.wg.Add(1)
	go f.pingLoop(conn)

	f.logger.Debug("feed connected", "url", f.cfg.URL)
	return nil
}

// subscribe requests the configured stations on the current connection.
func (f *Feed) subscribe() error {
	cmd := subscribeCmd{Type: "subscribe", Stations: f.cfg.Stations}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return f.send(data)
}

// send writes one text frame, serialized against concurrent pings.
func (f *Feed) send(data []byte) error {
	f.mu.RLock()
	conn := f.conn
	connected := f.connected
	f.mu.RUnlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// readUntilClosed pumps frames into the messages channel until the
// connection errors out.
func (f *Feed) readUntilClosed() {
	f.mu.RLock()
	conn := f.conn
	f.mu.RUnlock()
	if conn == nil {
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if f.ctx.Err() == nil {
				f.logger.Warn("feed read failed", "error", err)
			}
			f.closeConn()
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))

		msg := RawMessage{Data: data, ReceivedAt: time.Now()}
		select {
		case f.messages <- msg:
		case <-f.ctx.Done():
			f.closeConn()
			return
		}
	}
}

// pingLoop keeps the connection alive; the pong handler pushes the read
// deadline forward.
func (f *Feed) pingLoop(conn *websocket.Conn) {
	defer f.wg.Done()

	ticker := time.NewTicker(f.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.mu.RLock()
			current := f.conn
			f.mu.RUnlock()
			if current != conn {
				return // superseded by a reconnect
			}
			f.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			f.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// closeConn tears down the current connection, if any.
func (f *Feed) closeConn() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		_ = f.conn.Close()
		f.conn = nil
	}
	f.connected = false
}
