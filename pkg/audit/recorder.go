package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RecorderConfig contains configuration for the audit recorder.
type RecorderConfig struct {
	// Enabled enables audit recording.
	Enabled bool

	// QueueSize is the size of the async write queue.
	// Default: 1024
	QueueSize int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		QueueSize:    1024,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes audit records asynchronously. Enqueueing never
// blocks the caller: when the queue is full the record is dropped and
// counted, which keeps evaluation latency independent of storage.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	records chan *Record
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger

	mu      sync.Mutex
	dropped int64
}

// NewRecorder creates a recorder over the given storage and starts its
// background writer.
func NewRecorder(storage Storage, config *RecorderConfig, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		records: make(chan *Record, config.QueueSize),
		done:    make(chan struct{}),
		logger:  logger.With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("audit recorder started", "queue_size", config.QueueSize)
	return r
}

// Record enqueues a record for async writing. It returns immediately.
func (r *Recorder) Record(record *Record) {
	if !r.config.Enabled || record == nil {
		return
	}

	select {
	case r.records <- record:
	default:
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.logger.Warn("audit queue full, dropping record",
			"record_id", record.ID,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of records dropped due to a full queue.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close drains the queue and stops the background writer.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.records:
			r.write(record)
		case <-r.done:
			for {
				select {
				case record := <-r.records:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(record *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", record.ID,
			"error", err,
		)
		return
	}

	r.logger.Debug("audit record stored",
		"record_id", record.ID,
		"decision", record.Decision,
	)
}
