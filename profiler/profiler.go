// Package profiler tracks per-operation timing for the frame pipeline and
// emits periodic reports, so real-time regressions are visible in the logs.
package profiler

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// TimeTracker tracks timing statistics for one named operation over a sliding
// window of samples.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// Options configures the runtime profiler.
type Options struct {
	// ReportInterval specifies how often to emit status reports (default: 2s).
	ReportInterval time.Duration
	// MaxSamples bounds the per-operation sliding window (default: 600).
	MaxSamples int
	// Logger receives the periodic reports; nil disables reporting.
	Logger *slog.Logger
}

// RuntimeProfiler tracks operation timings and emits periodic reports through
// a structured logger. It is safe for use from multiple goroutines.
type RuntimeProfiler struct {
	reportInterval time.Duration
	maxSamples     int
	logger         *slog.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool

	operations map[string]*TimeTracker
}

// New creates a runtime profiler with the specified options.
func New(opts Options) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600
	}
	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		logger:         opts.Logger,
		operations:     make(map[string]*TimeTracker),
	}
}

// Start begins the periodic reporting loop. Calling Start on a running
// profiler is a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.running || rp.logger == nil {
		return
	}
	rp.running = true

	// A fresh context per start keeps the Start/Stop pair re-entrant.
	ctx, cancel := context.WithCancel(context.Background())
	rp.cancel = cancel

	rp.wg.Add(1)
	go func() {
		defer rp.wg.Done()
		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rp.report()
			}
		}
	}()
}

// Stop halts reporting and waits for the report loop to finish.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

// StartOperation begins timing a named operation.
//
// Returns:
//   - A function to call when the operation completes.
func (rp *RuntimeProfiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		rp.record(name, time.Since(start))
	}
}

// Stats returns the sample count, mean, min and max for a named operation.
func (rp *RuntimeProfiler) Stats(name string) (count int64, mean, min, max time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	t, ok := rp.operations[name]
	if !ok || len(t.durations) == 0 {
		return 0, 0, 0, 0
	}
	return t.count, t.totalTime / time.Duration(len(t.durations)), t.minTime, t.maxTime
}

func (rp *RuntimeProfiler) record(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	t, ok := rp.operations[name]
	if !ok {
		t = &TimeTracker{minTime: duration, maxTime: duration}
		rp.operations[name] = t
	}

	t.durations = append(t.durations, duration)
	if len(t.durations) > rp.maxSamples {
		t.totalTime -= t.durations[0]
		t.durations = t.durations[1:]
	}
	t.totalTime += duration
	t.count++
	if duration < t.minTime {
		t.minTime = duration
	}
	if duration > t.maxTime {
		t.maxTime = duration
	}
}

func (rp *RuntimeProfiler) report() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	for name, t := range rp.operations {
		if len(t.durations) == 0 {
			continue
		}
		rp.logger.Info("operation timing",
			"operation", name,
			"count", t.count,
			"mean_ms", float64(t.totalTime.Microseconds())/float64(len(t.durations))/1000.0,
			"min_ms", float64(t.minTime.Microseconds())/1000.0,
			"max_ms", float64(t.maxTime.Microseconds())/1000.0,
			"goroutines", runtime.NumGoroutine(),
		)
	}
}
