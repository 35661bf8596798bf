package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panelframe/panelframe/internal/model"
	"github.com/panelframe/panelframe/internal/stream"
)

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	BatchSize     int           // Rows per insert batch (default: 1000)
	FlushInterval time.Duration // Max time a row waits in the batch (default: 1s)
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     1000,
		FlushInterval: time.Second,
	}
}

// WriterMetrics counts writer activity.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// obsRow is the observations table layout.
type obsRow struct {
	RunID      uuid.UUID
	Station    string
	ObservedAt int64 // µs since epoch
	ReceivedAt int64 // µs since epoch
	TempC      float64
	DewPointC  float64
	WindKPH    float64
	PrecipMM   float64
}

// ObservationWriter drains the stream buffer and writes observations to
// the observations table. Every Start gets a fresh run ID so ingest
// sessions can be told apart.
type ObservationWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	input *stream.GrowableBuffer[model.Observation]
	db    *pgxpool.Pool

	runID uuid.UUID

	batch       []obsRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics WriterMetrics
}

// NewObservationWriter creates an observation writer.
func NewObservationWriter(
	cfg WriterConfig,
	input *stream.GrowableBuffer[model.Observation],
	db *pgxpool.Pool,
	logger *slog.Logger,
) *ObservationWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultWriterConfig().FlushInterval
	}
	return &ObservationWriter{
		cfg:    cfg,
		input:  input,
		db:     db,
		logger: logger,
		batch:  make([]obsRow, 0, cfg.BatchSize),
	}
}

// RunID returns the current ingest run identifier.
func (w *ObservationWriter) RunID() uuid.UUID { return w.runID }

// Start begins consuming observations and writing to the database.
func (w *ObservationWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.runID = uuid.New()
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.consumeLoop()

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("observation writer started",
		"run_id", w.runID,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *ObservationWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping observation writer")

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("observation writer stopped")
	case <-ctx.Done():
		w.logger.Warn("observation writer stop timed out")
	}

	// Final flush runs on the caller's context, not the cancelled run context.
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *ObservationWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *ObservationWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			obs, ok := w.input.TryReceive()
			if !ok {
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}
			w.handleObservation(obs)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *ObservationWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleObservation transforms and adds an observation to the batch.
func (w *ObservationWriter) handleObservation(obs model.Observation) {
	row := w.transform(obs)

	w.batchMu.Lock()
	w.batch = append(w.batch, row)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// transform converts an Observation to an obsRow.
func (w *ObservationWriter) transform(obs model.Observation) obsRow {
	return obsRow{
		RunID:      w.runID,
		Station:    obs.Station,
		ObservedAt: obs.ObservedAt.UnixMicro(),
		ReceivedAt: obs.ReceivedAt.UnixMicro(),
		TempC:      obs.TempC,
		DewPointC:  obs.DewPointC,
		WindKPH:    obs.WindKPH,
		PrecipMM:   obs.PrecipMM,
	}
}

// flush writes the current batch to the database.
func (w *ObservationWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]obsRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed observations",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *ObservationWriter) batchInsert(ctx context.Context, rows []obsRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO observations (run_id, station, observed_at, received_at, temp_c, dew_point_c, wind_kph, precip_mm)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (station, observed_at) DO NOTHING
		`, r.RunID, r.Station, r.ObservedAt, r.ReceivedAt, r.TempC, r.DewPointC, r.WindKPH, r.PrecipMM)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
