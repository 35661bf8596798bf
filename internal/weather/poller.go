package weather

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// StationSource provides the stations to poll.
type StationSource interface {
	ActiveStations() []Station
}

// DailyHandler receives fetched daily records.
type DailyHandler interface {
	HandleDaily(d Daily) error
}

// DailyHandlerFunc is a function adapter for DailyHandler.
type DailyHandlerFunc func(Daily) error

func (f DailyHandlerFunc) HandleDaily(d Daily) error { return f(d) }

// DayFetcher is the slice of the client the poller needs.
type DayFetcher interface {
	Day(ctx context.Context, station string, date time.Time) (Daily, error)
}

// PollerConfig holds poller settings.
type PollerConfig struct {
	Interval    time.Duration // Poll interval (default: 1h)
	Concurrency int           // Max concurrent requests (default: 10)
	Timeout     time.Duration // Per-request timeout (default: 10s)
}

// DefaultPollerConfig returns sensible defaults.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:    time.Hour,
		Concurrency: 10,
		Timeout:     10 * time.Second,
	}
}

// Poller periodically fetches the previous day's record for every active
// station and hands results to the handler.
type Poller struct {
	cfg      PollerConfig
	client   DayFetcher
	stations StationSource
	handler  DailyHandler
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a daily-record poller.
func NewPoller(cfg PollerConfig, client DayFetcher, stations StationSource, handler DailyHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultPollerConfig().Interval
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultPollerConfig().Concurrency
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultPollerConfig().Timeout
	}
	return &Poller{
		cfg:      cfg,
		client:   client,
		stations: stations,
		handler:  handler,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("daily poller started",
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
	)
	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("daily poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollAll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollAll()
		}
	}
}

// pollAll fetches yesterday's record for all active stations concurrently.
func (p *Poller) pollAll() {
	start := time.Now()

	stations := p.stations.ActiveStations()
	if len(stations) == 0 {
		p.logger.Debug("no active stations to poll")
		return
	}

	// Yesterday in UTC: today's record is still accumulating.
	date := p.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)

	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup
	var fetched, errored atomic.Int64

	for _, st := range stations {
		wg.Add(1)
		go func(station string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-p.ctx.Done():
				return
			}

			if err := p.pollStation(station, date); err != nil {
				p.logger.Warn("failed to poll station",
					"station", station,
					"err", err,
				)
				errored.Add(1)
				return
			}
			fetched.Add(1)
		}(st.ID)
	}

	wg.Wait()

	p.logger.Info("poll cycle complete",
		"stations", len(stations),
		"fetched", fetched.Load(),
		"errors", errored.Load(),
		"duration", time.Since(start),
	)
}

// pollStation fetches and handles one station's daily record.
func (p *Poller) pollStation(station string, date time.Time) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	d, err := p.client.Day(ctx, station, date)
	if err != nil {
		return err
	}

	if p.handler != nil {
		return p.handler.HandleDaily(d)
	}
	return nil
}
