package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"guardrail-hq/meridian/pkg/evidence"
	"guardrail-hq/meridian/pkg/policy/engine"
)

// Config contains configuration for the decision recorder.
type Config struct {
	// Enabled enables decision recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Decision bundles everything the recorder needs about one policy
// evaluation.
type Decision struct {
	RequestID string
	Tool      string
	Policy    *engine.Policy
	Order     engine.Order
	Proposed  float64
	Result    *engine.EvaluationResult

	// Solver context; MaxAllowed is meaningful only when
	// LimitingFactor is set.
	MaxAllowed     float64
	LimitingFactor string

	Duration time.Duration
}

// Recorder records policy decisions asynchronously. Record returns
// immediately; a background worker drains the channel into storage.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	recordChan chan *evidence.DecisionRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a recorder backed by the given storage and
// starts its write worker.
func NewRecorder(storage evidence.Storage, config *Config, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *evidence.DecisionRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "evidence.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("decision recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds a decision record and enqueues it for async writing.
// A full channel drops the record rather than blocking the caller.
func (r *Recorder) Record(d Decision) error {
	if !r.config.Enabled {
		return nil
	}

	record := newRecord(d)

	select {
	case r.recordChan <- record:
		return nil
	case <-r.done:
		return evidence.NewRecorderError(record.ID, context.Canceled)
	default:
		r.logger.Error("decision channel full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return evidence.NewRecorderError(record.ID, context.DeadlineExceeded)
	}
}

// Close shuts the recorder down, draining pending writes first.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	r.logger.Info("decision recorder shut down")
	return nil
}

// worker drains the channel into storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records before exit.
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *evidence.DecisionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store decision record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("decision recorded",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"approved", record.Approved,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow decision write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// newRecord converts a Decision into a persistable record.
func newRecord(d Decision) *evidence.DecisionRecord {
	now := time.Now()

	record := &evidence.DecisionRecord{
		ID:        uuid.New().String(),
		RequestID: d.RequestID,

		EvaluatedTime: now.Add(-d.Duration),
		RecordedTime:  now,

		Tool: d.Tool,

		OrderValue:      d.Order.OrderValue,
		Quantity:        d.Order.Quantity,
		CustomerSegment: d.Order.CustomerSegment,
		ProductMargin:   d.Order.ProductMargin,

		ProposedDiscount: d.Proposed,

		MaxAllowed:     d.MaxAllowed,
		LimitingFactor: d.LimitingFactor,

		EvaluationDuration: d.Duration,
	}

	if record.CustomerSegment == "" {
		record.CustomerSegment = engine.SegmentUnknown
	}

	if d.Policy != nil {
		record.PolicyID = d.Policy.ID
		record.PolicyName = d.Policy.Name
	}

	if d.Result != nil {
		record.Approved = d.Result.Approved
		record.CalculatedMargin = d.Result.CalculatedMargin
		record.AppliedRules = append([]string(nil), d.Result.AppliedRules...)
		record.Violations = make([]string, 0, len(d.Result.Violations))
		for _, v := range d.Result.Violations {
			record.Violations = append(record.Violations, v.Rule)
		}
	}

	return record
}
