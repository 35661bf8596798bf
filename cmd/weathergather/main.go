package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panelframe/panelframe/internal/config"
	"github.com/panelframe/panelframe/internal/loader"
	"github.com/panelframe/panelframe/internal/store"
	"github.com/panelframe/panelframe/internal/stream"
	"github.com/panelframe/panelframe/internal/version"
	"github.com/panelframe/panelframe/internal/weather"
)

func main() {
	configPath := flag.String("config", "configs/weathergather.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting weather gatherer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"weather_url", cfg.Weather.BaseURL,
		"stream_url", cfg.Stream.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := store.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Ingest the sales panel when one is configured.
	if cfg.Data.CSVPath != "" {
		if err := ingestPanel(ctx, cfg, pool, logger); err != nil {
			logger.Error("failed to ingest panel", "error", err)
			os.Exit(1)
		}
	}

	// Create weather API client
	client, err := weather.NewClient(
		cfg.Weather.BaseURL,
		cfg.Weather.APIKey,
		weather.WithLogger(logger),
		weather.WithTimeout(cfg.Weather.Timeout),
		weather.WithRetries(cfg.Weather.MaxRetries, time.Second),
		weather.WithCacheSize(cfg.Weather.CacheSize),
	)
	if err != nil {
		logger.Error("failed to create weather client", "error", err)
		os.Exit(1)
	}

	// Create station registry
	registry := weather.NewRegistry(weather.RegistryConfig{
		ReconcileInterval: cfg.Weather.ReconcileInterval,
		Only:              cfg.Weather.Stations,
	}, client, logger)

	// Start health server early so we can monitor sync progress
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: healthHandler(cfg.Health.Path, pool, registry),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	// Start station registry (initial sync)
	logger.Info("starting station registry")
	if err := registry.Start(ctx); err != nil {
		logger.Error("failed to start station registry", "error", err)
		os.Exit(1)
	}
	defer stopWithTimeout(registry.Stop, 30*time.Second)

	logger.Info("station registry started", "stations", registry.Len())

	// Start daily poller: each day's summaries go straight to the
	// weather_daily table.
	handler := weather.DailyHandlerFunc(func(d weather.Daily) error {
		return insertDaily(ctx, pool, d)
	})
	poller := weather.NewPoller(weather.PollerConfig{
		Interval:    cfg.Weather.PollInterval,
		Concurrency: cfg.Weather.PollConcurrency,
		Timeout:     cfg.Weather.Timeout,
	}, client, registry, handler, logger)

	if err := poller.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}
	defer stopWithTimeout(poller.Stop, 30*time.Second)

	// Start live observation pipeline: feed -> router -> writer
	stations := cfg.Weather.Stations
	if len(stations) == 0 {
		for _, s := range registry.ActiveStations() {
			stations = append(stations, s.ID)
		}
	}

	feed := stream.NewFeed(stream.FeedConfig{
		URL:                cfg.Stream.URL,
		APIKey:             cfg.Weather.APIKey,
		Stations:           stations,
		BufferSize:         cfg.Stream.BufferSize,
		PingInterval:       cfg.Stream.PingInterval,
		ReadTimeout:        cfg.Stream.ReadTimeout,
		ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
	}, logger)

	router := stream.NewRouter(feed.Messages(), cfg.Stream.BufferSize, logger)

	writer := store.NewObservationWriter(store.WriterConfig{
		BatchSize:     cfg.Writer.BatchSize,
		FlushInterval: cfg.Writer.FlushInterval,
	}, router.Buffer(), pool, logger)

	if err := writer.Start(ctx); err != nil {
		logger.Error("failed to start observation writer", "error", err)
		os.Exit(1)
	}
	if err := router.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}
	if err := feed.Start(ctx); err != nil {
		logger.Error("failed to start feed", "error", err)
		os.Exit(1)
	}

	logger.Info("weather gatherer running",
		"instance_id", cfg.Instance.ID,
		"run_id", writer.RunID(),
		"stations", len(stations),
		"health_url", fmt.Sprintf("http://localhost:%d%s", cfg.Health.Port, cfg.Health.Path),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down")

	// Stop upstream first so the writer drains what is already buffered.
	stopWithTimeout(feed.Stop, 10*time.Second)
	stopWithTimeout(router.Stop, 10*time.Second)
	stopWithTimeout(writer.Stop, 10*time.Second)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("weather gatherer stopped")
}

// ingestPanel loads the configured sales CSV and bulk-writes it into the
// panel table. Reruns are cheap: existing rows are skipped as conflicts.
func ingestPanel(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) error {
	origin, err := cfg.Data.OriginTime()
	if err != nil {
		return err
	}

	opts := loader.SalesSchema()
	opts.ChunkSize = cfg.Data.ChunkSize

	tf, err := loader.LoadPanel(cfg.Data.CSVPath, origin, opts)
	if err != nil {
		return err
	}
	logger.Info("panel loaded",
		"path", cfg.Data.CSVPath,
		"rows", tf.Rows(),
		"week_origin", cfg.Data.WeekOrigin,
	)

	writer := store.NewPanelWriter(pool, logger, cfg.Writer.BatchSize)
	inserted, conflicts, err := writer.Write(ctx, tf, cfg.Data.PanelTable)
	if err != nil {
		return err
	}
	logger.Info("panel ingested",
		"table", cfg.Data.PanelTable,
		"inserted", inserted,
		"conflicts", conflicts,
	)
	return nil
}

func stopWithTimeout(stop func(context.Context) error, d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	stop(ctx)
}

// insertDaily appends one daily summary; reruns of the same day are skipped
// by the unique constraint.
func insertDaily(ctx context.Context, pool *pgxpool.Pool, d weather.Daily) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO weather_daily (station, date, temp_mean_c, dew_point_c, wind_kph, precip_mm)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (station, date) DO NOTHING
	`, d.Station, d.Date, d.TempMeanC, d.DewPointC, d.WindKPH, d.PrecipMM)
	return err
}

// healthHandler reports database and registry health.
func healthHandler(path string, pool *pgxpool.Pool, registry *weather.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		health.Components["station_registry"] = map[string]any{
			"stations":  registry.Len(),
			"last_sync": registry.LastSyncAt(),
		}
		if registry.Len() == 0 {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
