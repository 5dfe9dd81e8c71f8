package profiler

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOperationRecordsTiming(t *testing.T) {
	rp := New(Options{})

	stop := rp.StartOperation("frame_processing")
	time.Sleep(2 * time.Millisecond)
	stop()

	count, mean, min, max := rp.Stats("frame_processing")
	assert.Equal(t, int64(1), count)
	assert.GreaterOrEqual(t, mean, 2*time.Millisecond)
	assert.LessOrEqual(t, min, max)
}

func TestStatsUnknownOperation(t *testing.T) {
	rp := New(Options{})
	count, _, _, _ := rp.Stats("absent")
	assert.Equal(t, int64(0), count)
}

func TestSlidingWindowBoundsSamples(t *testing.T) {
	rp := New(Options{MaxSamples: 3})
	for i := 0; i < 10; i++ {
		rp.StartOperation("op")()
	}
	count, _, _, _ := rp.Stats("op")
	assert.Equal(t, int64(10), count)
	assert.Len(t, rp.operations["op"].durations, 3)
}

func TestStopWithoutStartIsSafe(t *testing.T) {
	rp := New(Options{})
	assert.NotPanics(t, rp.Stop)
}

func TestRestartAfterStop(t *testing.T) {
	rp := New(Options{
		ReportInterval: time.Hour,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	rp.Start()
	rp.Stop()

	// A stopped profiler starts a fresh report loop.
	rp.Start()
	rp.mu.Lock()
	running := rp.running
	rp.mu.Unlock()
	assert.True(t, running)
	rp.Stop()
}
