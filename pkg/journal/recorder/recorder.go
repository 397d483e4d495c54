package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
	"mercator-hq/loupe/pkg/telemetry/logging"
	"mercator-hq/loupe/pkg/telemetry/metrics"
)

// Recorder writes exchanges to a journal backend asynchronously. Record never
// blocks: when the buffer is full the exchange is dropped and counted.
type Recorder struct {
	storage journal.Storage
	backend string
	config  config.RecorderConfig
	logger  *logging.Logger
	metrics *metrics.Collector

	recordChan chan *journal.Exchange
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once

	// mu orders sends against Close: once closed is set under the write
	// lock no further exchange can enter recordChan, so the final drain
	// sees every accepted exchange.
	mu     sync.RWMutex
	closed bool
}

// New creates a recorder for storage and starts its background writer.
// collector may be nil.
func New(storage journal.Storage, cfg config.JournalConfig, logger *logging.Logger, collector *metrics.Collector) *Recorder {
	rc := cfg.Recorder
	if rc.AsyncBuffer <= 0 {
		rc.AsyncBuffer = config.DefaultJournalRecorderAsyncBuffer
	}
	if rc.WriteTimeout <= 0 {
		rc.WriteTimeout = config.DefaultJournalRecorderWriteTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	r := &Recorder{
		storage:    storage,
		backend:    cfg.Backend,
		config:     rc,
		logger:     logger.With("component", "journal.recorder"),
		metrics:    collector,
		recordChan: make(chan *journal.Exchange, rc.AsyncBuffer),
		done:       make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("journal recorder initialized",
		"backend", cfg.Backend,
		"async_buffer", rc.AsyncBuffer,
		"write_timeout", rc.WriteTimeout,
	)

	return r
}

// Record enqueues exchange for writing. It assigns an ID and RecordedAt when
// they are unset.
func (r *Recorder) Record(exchange *journal.Exchange) {
	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}
	if exchange.RecordedAt.IsZero() {
		exchange.RecordedAt = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(exchange, "recorder closed")
		return
	}

	select {
	case r.recordChan <- exchange:
		r.metrics.UpdateJournalQueue(len(r.recordChan))
	default:
		r.drop(exchange, "buffer full")
	}
}

// Close stops accepting exchanges, drains the buffer and waits for pending
// writes. It does not close the storage backend.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down journal recorder")
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.done)
		r.wg.Wait()
		r.logger.Info("journal recorder shut down complete")
	})
	return nil
}

// Pending returns the number of exchanges waiting to be written.
func (r *Recorder) Pending() int {
	return len(r.recordChan)
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case exchange := <-r.recordChan:
			r.write(exchange)

		case <-r.done:
			r.logger.Debug("draining journal buffer before shutdown", "pending_count", len(r.recordChan))
			for {
				select {
				case exchange := <-r.recordChan:
					r.write(exchange)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(exchange *journal.Exchange) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := r.storage.Store(ctx, exchange)
	r.metrics.RecordJournalWrite(r.backend, err)
	r.metrics.UpdateJournalQueue(len(r.recordChan))

	if err != nil {
		r.logger.Error("failed to store journal exchange",
			"record_id", exchange.ID,
			"request_id", exchange.RequestID,
			"error", err,
		)
		return
	}

	if duration := time.Since(start); duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow journal write",
			"record_id", exchange.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

func (r *Recorder) drop(exchange *journal.Exchange, reason string) {
	r.metrics.RecordJournalDrop()
	r.logger.Warn("dropping journal exchange",
		"request_id", exchange.RequestID,
		"reason", reason,
		"buffer_capacity", cap(r.recordChan),
	)
}
