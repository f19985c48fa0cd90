package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smartlpd/enforcement-api/internal/api/metrics"
	"github.com/smartlpd/enforcement-api/internal/core/domain"
	"github.com/smartlpd/enforcement-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

var _ ports.FineEventSink = (*Dispatcher)(nil)

// Dispatcher routes fine events to a fixed set of workers using consistent
// hashing on the fine id, guaranteeing per-fine event ordering.
//
// Enqueue never blocks the caller: an event that does not fit in its
// worker's buffer, or arrives after Shutdown, is dropped and counted.
type Dispatcher struct {
	workers   []chan domain.FineEvent
	processor ports.FineEventProcessor
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ports.FineEventProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.FineEvent, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.FineEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. ctx is handed to the processor;
// cancelling it aborts in-flight work, so it should outlive Shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its fine.
func (d *Dispatcher) Enqueue(event domain.FineEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(event, "dispatcher closed")
		return
	}

	idx := d.shardIndex(event.FineID)
	select {
	case d.workers[idx] <- event:
		metrics.FineEventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(event, "worker queue full")
	}
}

// Shutdown stops accepting events and waits until the workers have drained
// their queues or ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) drop(event domain.FineEvent, reason string) {
	metrics.FineEventsErrorsTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Int64("fine_id", event.FineID).
		Str("reason", reason).
		Msg("fine event dropped")
}

// shardIndex maps a fine id deterministically to a worker index.
func (d *Dispatcher) shardIndex(fineID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(fineID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

// runWorker processes events until its channel is closed and drained, or
// ctx is cancelled.
func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.FineEvent) {
	defer d.wg.Done()

	depth := metrics.FineEventsQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			if err := d.processor.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("event_id", event.ID).
					Int64("fine_id", event.FineID).
					Int("worker_id", id).
					Msg("fine event processing failed")
			}
		}
	}
}
