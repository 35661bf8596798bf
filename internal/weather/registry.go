package weather

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StationLister is the slice of the client the registry needs.
type StationLister interface {
	Stations(ctx context.Context) ([]Station, error)
}

// RegistryConfig holds station registry settings.
type RegistryConfig struct {
	// ReconcileInterval is how often the catalog is refetched. Default 1h.
	ReconcileInterval time.Duration
	// Only lists station IDs to keep; empty keeps every active station.
	Only []string
}

// Registry maintains the station catalog in memory and keeps it fresh with
// a periodic reconcile against the provider.
type Registry struct {
	cfg    RegistryConfig
	client StationLister
	logger *slog.Logger

	mu         sync.RWMutex
	stations   map[string]Station
	lastSyncAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a station registry.
func NewRegistry(cfg RegistryConfig, client StationLister, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconcileInterval == 0 {
		cfg.ReconcileInterval = time.Hour
	}
	return &Registry{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		stations: make(map[string]Station),
	}
}

// Start performs the initial catalog sync and launches the reconcile loop.
func (r *Registry) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if err := r.sync(r.ctx); err != nil {
		return err
	}

	r.wg.Add(1)
	go r.reconcileLoop()

	r.logger.Info("station registry started",
		"stations", r.Len(),
		"reconcile_interval", r.cfg.ReconcileInterval,
	)
	return nil
}

// Stop shuts down the reconcile loop.
func (r *Registry) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("station registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveStations returns the active stations, filtered by cfg.Only.
func (r *Registry) ActiveStations() []Station {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Station, 0, len(r.stations))
	for _, s := range r.stations {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the catalog size.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stations)
}

// LastSyncAt returns the time of the last successful catalog sync.
func (r *Registry) LastSyncAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSyncAt
}

func (r *Registry) reconcileLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := r.sync(r.ctx); err != nil {
				// Keep serving the last good catalog.
				r.logger.Error("station reconcile failed", "error", err)
			}
		}
	}
}

// sync fetches the catalog and swaps it in.
func (r *Registry) sync(ctx context.Context) error {
	start := time.Now()

	stations, err := r.client.Stations(ctx)
	if err != nil {
		return err
	}

	keep := make(map[string]bool, len(r.cfg.Only))
	for _, id := range r.cfg.Only {
		keep[id] = true
	}

	next := make(map[string]Station, len(stations))
	for _, s := range stations {
		if len(keep) > 0 && !keep[s.ID] {
			continue
		}
		next[s.ID] = s
	}

	r.mu.Lock()
	r.stations = next
	r.lastSyncAt = time.Now()
	r.mu.Unlock()

	r.logger.Debug("station catalog synced",
		"stations", len(next),
		"duration", time.Since(start),
	)
	return nil
}
