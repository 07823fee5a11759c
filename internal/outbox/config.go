package outbox

import "time"

const (
	defaultDispatchInterval    = 2 * time.Second
	defaultBatchSize           = 50
	defaultPublishMaxAttempts  = 3
	defaultPublishBackoff      = 200 * time.Millisecond
	defaultRetryWindow         = 5 * time.Minute
	defaultMaxDispatchAttempts = 10
	defaultProcessingTimeout   = 10 * time.Minute
	defaultMaxFailedPerBatch   = 25
)

// DispatcherConfig controls polling and retry behaviour of the Dispatcher.
type DispatcherConfig struct {
	// DispatchInterval is the time between dispatch cycles.
	DispatchInterval time.Duration
	// BatchSize is the max number of events processed per cycle.
	BatchSize int
	// PublishMaxAttempts is the number of in-cycle publish attempts for one event.
	PublishMaxAttempts int
	// PublishBackoff is the initial delay between in-cycle publish attempts.
	PublishBackoff time.Duration
	// RetryWindow is the minimum age of a FAILED event before it is retried.
	RetryWindow time.Duration
	// MaxDispatchAttempts is the number of failed cycles before an event becomes INVALID.
	MaxDispatchAttempts int
	// ProcessingTimeout is the age after which a PROCESSING event is considered stuck.
	ProcessingTimeout time.Duration
	// MaxFailedPerBatch limits how many failed events are reclaimed per cycle.
	MaxFailedPerBatch int
}

// DefaultDispatcherConfig returns the baseline configuration.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		DispatchInterval:    defaultDispatchInterval,
		BatchSize:           defaultBatchSize,
		PublishMaxAttempts:  defaultPublishMaxAttempts,
		PublishBackoff:      defaultPublishBackoff,
		RetryWindow:         defaultRetryWindow,
		MaxDispatchAttempts: defaultMaxDispatchAttempts,
		ProcessingTimeout:   defaultProcessingTimeout,
		MaxFailedPerBatch:   defaultMaxFailedPerBatch,
	}
}

func (cfg *DispatcherConfig) normalize() {
	defaults := DefaultDispatcherConfig()
	if cfg.DispatchInterval <= 0 {
		cfg.DispatchInterval = defaults.DispatchInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.PublishMaxAttempts <= 0 {
		cfg.PublishMaxAttempts = defaults.PublishMaxAttempts
	}
	if cfg.PublishBackoff <= 0 {
		cfg.PublishBackoff = defaults.PublishBackoff
	}
	if cfg.RetryWindow <= 0 {
		cfg.RetryWindow = defaults.RetryWindow
	}
	if cfg.MaxDispatchAttempts <= 0 {
		cfg.MaxDispatchAttempts = defaults.MaxDispatchAttempts
	}
	if cfg.ProcessingTimeout <= 0 {
		cfg.ProcessingTimeout = defaults.ProcessingTimeout
	}
	if cfg.MaxFailedPerBatch <= 0 {
		cfg.MaxFailedPerBatch = defaults.MaxFailedPerBatch
	}
}

// DispatcherOption mutates dispatcher configuration at construction.
type DispatcherOption func(*Dispatcher)

// WithConfig replaces the whole configuration. Zero fields fall back to defaults.
func WithConfig(cfg DispatcherConfig) DispatcherOption {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

func WithBatchSize(size int) DispatcherOption {
	return func(d *Dispatcher) {
		if size > 0 {
			d.cfg.BatchSize = size
		}
	}
}

func WithDispatchInterval(interval time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if interval > 0 {
			d.cfg.DispatchInterval = interval
		}
	}
}

func WithMaxDispatchAttempts(attempts int) DispatcherOption {
	return func(d *Dispatcher) {
		if attempts > 0 {
			d.cfg.MaxDispatchAttempts = attempts
		}
	}
}

func WithPublishBackoff(backoff time.Duration, maxAttempts int) DispatcherOption {
	return func(d *Dispatcher) {
		if backoff > 0 {
			d.cfg.PublishBackoff = backoff
		}
		if maxAttempts > 0 {
			d.cfg.PublishMaxAttempts = maxAttempts
		}
	}
}

// WithRetryClassifier marks errors that must not be retried; such events go straight to INVALID.
func WithRetryClassifier(isNonRetryable func(error) bool) DispatcherOption {
	return func(d *Dispatcher) {
		if isNonRetryable != nil {
			d.isNonRetryable = isNonRetryable
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}
