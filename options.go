package vecrank

import (
	"log/slog"

	"github.com/hupe1980/vecrank/internal/engine"
	"github.com/hupe1980/vecrank/resource"
)

type options struct {
	workers          int
	minRowsPerWorker int
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Create.
type Option func(*options)

// WithWorkers caps the goroutines one PerformQuery may use to compute
// distances. 0 (the default) means GOMAXPROCS, 1 keeps ranking on the
// calling goroutine. Negative values make Create fail.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMinRowsPerWorker sets the smallest number of documents handed to one
// ranking goroutine. Small stores are ranked serially.
func WithMinRowsPerWorker(n int) Option {
	return func(o *options) {
		o.minRowsPerWorker = n
	}
}

// WithResourceController accounts the store's buffers against a shared
// memory budget and borrows ranking goroutines from its worker slots.
//
// Example limiting all stores of a process to 1GB:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	store, err := vecrank.Create(ctx, state.Init, vecrank.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecrank.BasicMetricsCollector{}
//	store, _ := vecrank.Create(ctx, state.Init, vecrank.WithMetricsCollector(metrics))
//	// ... use store ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecrank.NewJSONLogger(slog.LevelInfo)
//	store, _ := vecrank.Create(ctx, state.Init, vecrank.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) engineConfig() (engine.Config, error) {
	if o.workers < 0 || o.minRowsPerWorker < 0 {
		return engine.Config{}, ErrInvalidWorkers
	}
	return engine.Config{
		Workers:          o.workers,
		MinRowsPerWorker: o.minRowsPerWorker,
		Controller:       o.controller,
	}, nil
}

// QueryOption configures PerformQuery.
type QueryOption func(*queryOptions)

type queryOptions struct {
	documentCount int
	set           bool
}

// WithDocumentCount limits the result to the n closest documents.
// n is clamped to [0, DocumentCount()].
func WithDocumentCount(n int) QueryOption {
	return func(o *queryOptions) {
		o.documentCount = n
		o.set = true
	}
}
