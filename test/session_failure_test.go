package test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/session"
)

func TestSessionGeometryMismatchIsFatal(t *testing.T) {
	cfg := sessionConfig(t)
	source := &ManualSource{}
	sink := &RecordingSink{}

	fatal := make(chan error, 1)
	sess := session.New(session.Options{
		Config:  cfg,
		Source:  source,
		Sink:    sink,
		Logger:  discardLogger(),
		OnFatal: func(err error) { fatal <- err },
	})
	require.NoError(t, sess.Start())
	defer sess.Stop()

	big := NewFrameGenerator(640, 480).Static()
	defer big.Close()
	small := NewFrameGenerator(320, 240).Static()
	defer small.Close()

	source.Emit(big)
	source.Emit(small)

	select {
	case err := <-fatal:
		assert.True(t, errors.Is(err, motion.ErrGeometryMismatch))
	case <-time.After(time.Second):
		t.Fatal("expected a fatal session error")
	}

	// The failed cycle publishes nothing and later frames are ignored.
	source.Emit(big)
	assert.Len(t, sink.All(), 1)
}

func TestSessionDegradedRegionLogsWarning(t *testing.T) {
	cfg := sessionConfig(t)
	// Region beyond any 640x480 frame.
	cfg.RegionX, cfg.RegionY = 700, 0
	cfg.RegionWidth, cfg.RegionHeight = 100, 100

	source := &ManualSource{}
	sink := &RecordingSink{}
	sess := session.New(session.Options{
		Config: cfg,
		Source: source,
		Sink:   sink,
		Logger: discardLogger(),
	})
	require.NoError(t, sess.Start())
	defer sess.Stop()

	gen := NewFrameGenerator(640, 480)
	baseline := gen.Static()
	defer baseline.Close()
	moving := gen.WithMotion(100, 100, 60)
	defer moving.Close()

	source.Emit(baseline)
	source.Emit(moving)

	updates := sink.All()
	require.Len(t, updates, 2)
	// Full-frame fallback still finds the motion outside the bad region.
	assert.True(t, updates[1].Result.Degraded)
	assert.True(t, updates[1].Result.MotionDetected)

	data, err := os.ReadFile(cfg.LogPath)
	require.NoError(t, err)
	warnings := strings.Count(string(data), "region of interest out of bounds")
	assert.Equal(t, 1, warnings, "one warning per degraded cycle")
}

func TestSessionStopReleasesSourceDespitePriorRelease(t *testing.T) {
	cfg := sessionConfig(t)
	source := &ManualSource{UnsubscribeErr: errors.New("device busy")}
	sink := &RecordingSink{}
	sess := session.New(session.Options{
		Config: cfg,
		Source: source,
		Sink:   sink,
		Logger: discardLogger(),
	})
	require.NoError(t, sess.Start())

	// A failing release step is logged but never prevents the rest of Stop.
	assert.NotPanics(t, sess.Stop)
	assert.True(t, source.Unsubscribed)

	// Stop is idempotent.
	assert.NotPanics(t, sess.Stop)
}

func TestSessionLoggerRecoversAfterLogPathRestored(t *testing.T) {
	cfg := sessionConfig(t)
	// The log file's parent directory does not exist yet, so every append
	// fails until an operator restores it.
	logDir := filepath.Join(t.TempDir(), "logs")
	cfg.LogPath = filepath.Join(logDir, "motion.log")

	sess := session.New(session.Options{
		Config: cfg,
		Source: &ManualSource{},
		Sink:   &RecordingSink{},
		Logger: discardLogger(),
	})
	require.NoError(t, sess.Start())
	defer sess.Stop()

	failures, _ := sess.Logger().Health()
	require.Greater(t, failures, 0)
	require.False(t, sess.Logger().Retry())

	// Restoring the directory lets an explicit probe recover the logger.
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	require.True(t, sess.Logger().Retry())
	failures, critical := sess.Logger().Health()
	assert.Equal(t, 0, failures)
	assert.False(t, critical)

	data, err := os.ReadFile(cfg.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log file recovered")
}

func TestSessionCannotRestartAfterStop(t *testing.T) {
	cfg := sessionConfig(t)
	sess := session.New(session.Options{
		Config: cfg,
		Source: &ManualSource{},
		Sink:   &RecordingSink{},
		Logger: discardLogger(),
	})
	require.NoError(t, sess.Start())
	sess.Stop()
	assert.Error(t, sess.Start())
}
