package archive

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/configurator/pkg/telemetry/metrics"
	"mercator-hq/configurator/pkg/vehicle/solution"
)

// RecorderConfig contains configuration for the Recorder.
type RecorderConfig struct {
	// AsyncBuffer is the size of the write queue.
	// Default: 256
	AsyncBuffer int

	// WriteTimeout bounds each storage write, and how long Record waits
	// for room in a full queue.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		AsyncBuffer:  256,
		WriteTimeout: 5 * time.Second,
	}
}

// Event is a session event worth archiving.
type Event struct {
	Action    Action
	SessionID string
	TreeRef   string
	Document  string
	Detail    string

	// Solution is the solution concerned, if any.
	Solution *solution.Solution
}

// Recorder turns session events into records and writes them to storage
// in the background. A nil *Recorder records nothing.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	metrics *metrics.Collector
	logger  *slog.Logger

	// mu guards closed. Record holds it for reading across the send so
	// Close cannot drain the queue underneath a pending record.
	mu     sync.RWMutex
	closed bool
	queue  chan *Record
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	clock sync.Mutex
	now   func() time.Time
	last  time.Time
}

// NewRecorder starts a recorder writing to storage. collector may be nil.
func NewRecorder(storage Storage, config *RecorderConfig, collector *metrics.Collector, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		metrics: collector,
		logger:  logger.With("component", "archive.recorder"),
		queue:   make(chan *Record, config.AsyncBuffer),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	r.wg.Add(1)
	go r.worker()

	return r
}

// NewRecord builds the record for ev without storing it.
func NewRecord(ev Event, at time.Time) *Record {
	rec := &Record{
		ID:         uuid.New().String(),
		Action:     ev.Action,
		SessionID:  ev.SessionID,
		TreeRef:    ev.TreeRef,
		Document:   ev.Document,
		Detail:     ev.Detail,
		RecordedAt: at.UTC(),
	}
	if s := ev.Solution; s != nil {
		rec.SolutionHash = s.Hash()
		rec.ModelName = s.ModelName()
		rec.MarkPath = solution.EncodePath(s.MarkPath())
		rec.Price = s.Price()
	}
	return rec
}

// Record queues ev for storage and returns without waiting for the write.
func (r *Recorder) Record(ctx context.Context, ev Event) error {
	if r == nil {
		return nil
	}

	rec := NewRecord(ev, r.timestamp())

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return &RecorderError{RecordID: rec.ID, Cause: context.Canceled}
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.queue <- rec:
		r.logger.Debug("archive record queued", "record_id", rec.ID, "action", rec.Action)
		return nil
	case <-ctx.Done():
		return &RecorderError{RecordID: rec.ID, Cause: ctx.Err()}
	case <-timer.C:
		r.logger.Error("archive queue full, dropping record",
			"record_id", rec.ID,
			"action", rec.Action,
			"capacity", r.config.AsyncBuffer,
		)
		r.metrics.RecordArchive(string(rec.Action), context.DeadlineExceeded)
		return &RecorderError{RecordID: rec.ID, Cause: context.DeadlineExceeded}
	}
}

// timestamp returns the current time, strictly after the previous one so
// records sort in the order they were made.
func (r *Recorder) timestamp() time.Time {
	r.clock.Lock()
	defer r.clock.Unlock()

	at := r.now().UTC()
	if !at.After(r.last) {
		at = r.last.Add(time.Nanosecond)
	}
	r.last = at
	return at
}

// Close stops accepting events, writes everything already queued and
// waits for the writes to finish. It does not close the storage.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.done)
		r.mu.Unlock()
		r.wg.Wait()
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.queue:
			r.write(rec)
		case <-r.done:
			for {
				select {
				case rec := <-r.queue:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	err := r.storage.Store(ctx, rec)
	r.metrics.RecordArchive(string(rec.Action), err)
	if err != nil {
		r.logger.Error("failed to store archive record",
			"record_id", rec.ID,
			"action", rec.Action,
			"error", err,
		)
		return
	}

	r.logger.Debug("archive record stored",
		"record_id", rec.ID,
		"action", rec.Action,
		"solution", rec.SolutionHash,
	)
}
