package telemetry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultBuffer is the queue length used when Async is given a non-positive size.
const DefaultBuffer = 64

// exportTimeout bounds a single sink export.
const exportTimeout = 10 * time.Second

// AsyncTracer queues runs for a Sink and exports them from one goroutine.
// When the queue is full the run is dropped.
type AsyncTracer struct {
	sink   Sink
	logger *zap.Logger
	queue  chan Run
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ Tracer = (*AsyncTracer)(nil)

// Async starts the export goroutine for sink.
func Async(sink Sink, logger *zap.Logger, buffer int) *AsyncTracer {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	t := &AsyncTracer{
		sink:   sink,
		logger: logger,
		queue:  make(chan Run, buffer),
		done:   make(chan struct{}),
	}
	go t.loop()
	return t
}

// Trace enqueues run. It never blocks.
func (t *AsyncTracer) Trace(run Run) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}

	select {
	case t.queue <- run:
	default:
		t.logger.Debug("telemetry queue full, dropping run", zap.String("run_id", run.ID.String()))
	}
}

// Close stops accepting runs and waits for queued runs to be exported, or for
// ctx to be done.
func (t *AsyncTracer) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *AsyncTracer) loop() {
	defer close(t.done)
	for run := range t.queue {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		if err := t.sink.Export(ctx, run); err != nil {
			t.logger.Warn("failed to export run",
				zap.String("run_id", run.ID.String()),
				zap.Error(err),
			)
		} else {
			t.logger.Debug("exported run", zap.String("run_id", run.ID.String()))
		}
		cancel()
	}
}
