package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/panelframe/panelframe/internal/model"
)

// RouterStats contains router counters.
type RouterStats struct {
	Received    int64
	Routed      int64
	ParseErrors int64
	Skipped     int64
	Buffer      BufferStats
}

// Router parses raw feed messages into observations and routes them into
// a growable buffer for the writers to consume.
type Router struct {
	logger *slog.Logger

	input  <-chan RawMessage
	output *GrowableBuffer[model.Observation]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	received    int64
	routed      int64
	parseErrors int64
	skipped     int64
}

// NewRouter creates a router reading from input with the given output
// buffer capacity.
func NewRouter(input <-chan RawMessage, bufferSize int, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		logger: logger,
		input:  input,
		output: NewGrowableBuffer[model.Observation](bufferSize),
	}
}

// Buffer returns the observation buffer writers drain.
func (r *Router) Buffer() *GrowableBuffer[model.Observation] { return r.output }

// Start begins routing.
func (r *Router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("observation router started")
	return nil
}

// Stop drains the input and closes the output buffer.
func (r *Router) Stop(ctx context.Context) error {
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
		r.output.Close()
		r.logger.Info("observation router stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current router counters.
func (r *Router) Stats() RouterStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RouterStats{
		Received:    r.received,
		Routed:      r.routed,
		ParseErrors: r.parseErrors,
		Skipped:     r.skipped,
		Buffer:      r.output.Stats(),
	}
}

func (r *Router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			r.drain()
			return
		case msg, ok := <-r.input:
			if !ok {
				return
			}
			r.handle(msg)
		}
	}
}

// drain routes whatever is already buffered on the input so cancellation
// does not drop messages the feed delivered before it stopped.
func (r *Router) drain() {
	for {
		select {
		case msg, ok := <-r.input:
			if !ok {
				return
			}
			r.handle(msg)
		default:
			return
		}
	}
}

// handle parses one raw message. Malformed frames are counted, never
// fatal: the feed carries command acks and heartbeats besides
// observations.
func (r *Router) handle(msg RawMessage) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	var wire obsWire
	if err := json.Unmarshal(msg.Data, &wire); err != nil {
		r.mu.Lock()
		r.parseErrors++
		r.mu.Unlock()
		r.logger.Debug("unparseable feed message", "error", err)
		return
	}
	if wire.Type != "observation" {
		r.mu.Lock()
		r.skipped++
		r.mu.Unlock()
		return
	}

	obs := model.Observation{
		Station:    wire.Station,
		ObservedAt: time.UnixMicro(wire.ObservedTS).UTC(),
		ReceivedAt: msg.ReceivedAt,
		TempC:      wire.TempC,
		DewPointC:  wire.DewPointC,
		WindKPH:    wire.WindKPH,
		PrecipMM:   wire.PrecipMM,
	}
	if !r.output.Send(obs) {
		return // buffer closed during shutdown
	}

	r.mu.Lock()
	r.routed++
	r.mu.Unlock()
}
