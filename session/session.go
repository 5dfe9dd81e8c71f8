// Package session owns the lifecycle of one capture session: it subscribes to
// a frame source, runs the analysis pipeline once per frame, drives the motion
// state machine and cooldown-gated side effects, and publishes fully-formed
// results to the presentation sink.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-motion/config"
	"github.com/nvr-ai/go-motion/images"
	"github.com/nvr-ai/go-motion/logging"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/profiler"
	"github.com/nvr-ai/go-motion/snapshot"
)

// FrameSource delivers frames of fixed geometry via a callback for the
// session's lifetime. The source owns each frame buffer until the callback
// returns; the session clones before mutating.
type FrameSource interface {
	Subscribe(onFrame func(frame gocv.Mat)) error
	Unsubscribe() error
}

// Update is one fully-formed per-cycle result handed to the presentation
// side. The sink takes ownership of Frame and must Close it.
type Update struct {
	// Frame is the annotated color frame (motion rectangles, region outline).
	Frame gocv.Mat
	// Result is the pipeline outcome for this cycle.
	Result motion.Result
	// Event is the lifecycle event emitted this cycle, if any.
	Event motion.Event
	// State is the machine state after this cycle.
	State motion.State
	// Status is a short operator-facing status line.
	Status string
	// At is the cycle timestamp.
	At time.Time
}

// PresentationSink receives one Update per processed cycle. The pipeline
// computes the full result before publishing, so the sink never observes
// partial state.
type PresentationSink interface {
	Publish(update Update)
}

// Alerter plays the audible alert. External collaborator.
type Alerter interface {
	Alert()
}

// Options wires a Session's collaborators. Source and Sink are required.
type Options struct {
	Config  *config.Config
	Source  FrameSource
	Sink    PresentationSink
	Alerter Alerter
	Logger  *slog.Logger
	// Notify surfaces the logger's critical-failure notification.
	Notify logging.Notifier
	// OnFatal is invoked (on its own goroutine) when a cycle fails in a way
	// that must end the session, e.g. a frame geometry mismatch.
	OnFatal func(err error)
}

// Session runs the motion pipeline for one capture session. Frame callbacks
// are serialized by an internal mutex, so overlapping callbacks cannot corrupt
// the background model or the state machine; Stop acquires the same mutex and
// therefore drains any in-flight frame before releasing resources.
type Session struct {
	ID uuid.UUID

	cfg     *config.Config
	source  FrameSource
	sink    PresentationSink
	alerter Alerter
	slog    *slog.Logger
	onFatal func(err error)

	mu       sync.Mutex
	running  bool
	stopped  bool
	pipeline *motion.Pipeline
	machine  *motion.StateMachine
	gate     *motion.Gate
	logger   *logging.ResilientLogger
	store    *snapshot.Store
	prof     *profiler.RuntimeProfiler
}

// New constructs a Session from opts. The configuration is validated and then
// treated as immutable for the session's duration.
func New(opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	_ = cfg.Validate()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New()

	gate := motion.NewGate()
	gate.SetCooldown(motion.ChannelAlert, cfg.AlertCooldown())
	gate.SetCooldown(motion.ChannelSnapshot, cfg.SnapshotCooldown())

	return &Session{
		ID:      id,
		cfg:     cfg,
		source:  opts.Source,
		sink:    opts.Sink,
		alerter: opts.Alerter,
		slog:    logger.With("session", id.String()),
		onFatal: opts.OnFatal,
		pipeline: motion.NewPipeline(motion.PipelineConfig{
			Threshold:  cfg.Threshold,
			BlurKernel: cfg.BlurKernel,
			Region:     cfg.Region(),
			Bounds: motion.SizeBounds{
				MinWidth:  cfg.MinBlobWidth,
				MinHeight: cfg.MinBlobHeight,
				MaxWidth:  cfg.MaxBlobWidth,
				MaxHeight: cfg.MaxBlobHeight,
			},
		}),
		machine: motion.NewStateMachine(cfg.GracePeriod()),
		gate:    gate,
		logger: logging.New(logging.Options{
			Path:                 cfg.LogPath,
			Source:               "motion-session",
			NotificationCooldown: cfg.NotificationCooldown(),
			Fallback:             logging.SlogSink{Logger: logger},
			Notify:               opts.Notify,
			Diagnostics:          logger,
		}),
		store: snapshot.NewStore(snapshot.Options{
			Dir:       cfg.SnapshotDir,
			Thumbnail: cfg.SnapshotThumbnail,
		}),
		prof: profiler.New(profiler.Options{Logger: logger}),
	}
}

// Start resets all temporal state and subscribes to the frame source. The
// state machine is reset at session start, never at stop, so no stale
// activity survives a restart.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("session already running")
	}
	if s.stopped {
		s.mu.Unlock()
		return errors.New("session already stopped; create a new session")
	}
	s.machine.Reset()
	s.pipeline.Reset()
	s.running = true
	s.mu.Unlock()

	s.prof.Start()
	if err := s.source.Subscribe(s.onFrame); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.prof.Stop()
		return errors.Wrap(err, "subscribing to frame source")
	}
	s.log("capture session started")
	s.slog.Info("capture session started")
	return nil
}

// Stop drains any in-flight frame, then releases the subscription and the
// pipeline buffers. Each release step is independently attempted; a failure in
// one never prevents the others.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.running = false
	s.mu.Unlock()

	if err := s.source.Unsubscribe(); err != nil {
		s.slog.Error("frame source release failed", "error", err)
		s.log("frame source release failed: " + err.Error())
	}

	s.mu.Lock()
	s.pipeline.Close()
	s.mu.Unlock()

	s.prof.Stop()
	s.log("capture session stopped")
	s.slog.Info("capture session stopped")
}

// onFrame processes one raw color frame end to end. It runs entirely under
// the session mutex: the pipeline, state machine and gates are never touched
// concurrently.
func (s *Session) onFrame(frame gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}

	stop := s.prof.StartOperation("frame_processing")
	defer stop()

	now := time.Now()

	// The source owns the incoming buffer; clone before drawing on it.
	annotated := frame.Clone()

	result, err := s.pipeline.Process(frame)
	if err != nil {
		annotated.Close()
		s.fail(err)
		return
	}

	if result.Degraded {
		s.log("region of interest out of bounds for current frame, processed full frame")
		s.slog.Warn("region of interest out of bounds, full-frame fallback",
			"frame_width", result.FrameSize.X, "frame_height", result.FrameSize.Y)
	}

	images.DrawBlobs(&annotated, result.Blobs)
	if region := s.cfg.Region(); !region.Empty() && !result.Degraded {
		images.DrawRegion(&annotated, region)
	}

	event := s.machine.Update(result.MotionDetected, now)
	status := s.handleEvent(event)

	if result.MotionDetected {
		if s.cfg.EnableAlert && s.alerter != nil && s.gate.TryFire(motion.ChannelAlert, now) {
			s.alerter.Alert()
		}
		if s.cfg.EnableSnapshot && s.gate.TryFire(motion.ChannelSnapshot, now) {
			path, err := s.store.Save(annotated, now)
			switch {
			case err == nil:
				s.log("snapshot saved: " + path)
			case errors.Is(err, snapshot.ErrThumbnail):
				// The primary snapshot is durable; only the thumbnail failed.
				s.log("snapshot saved: " + path)
				s.slog.Warn("snapshot thumbnail failed", "path", path, "error", err)
			default:
				// Side-channel failure: report and continue.
				s.log("snapshot save failed: " + err.Error())
				status = "snapshot save failed"
			}
		}
	}

	s.sink.Publish(Update{
		Frame:  annotated,
		Result: result,
		Event:  event,
		State:  s.machine.State(),
		Status: status,
		At:     now,
	})
}

// handleEvent logs lifecycle transitions and derives the status line.
func (s *Session) handleEvent(event motion.Event) string {
	switch event.Kind {
	case motion.EventStarted:
		s.log("motion started")
		s.slog.Info("motion started", "at", event.At)
		return "motion detected"
	case motion.EventOngoing:
		return "motion detected"
	case motion.EventStopped:
		s.log(fmt.Sprintf("motion stopped after %.1fs", event.Duration.Seconds()))
		s.slog.Info("motion stopped", "duration", event.Duration)
		return "monitoring"
	default:
		if s.machine.State() == motion.StateActive {
			return "motion detected"
		}
		return "monitoring"
	}
}

// fail ends the session after a precondition violation or unexpected internal
// failure. The error propagates to the owner through OnFatal; further frames
// are ignored.
func (s *Session) fail(err error) {
	s.running = false
	s.log("frame processing failed: " + err.Error())
	s.slog.Error("frame processing failed, stopping session", "error", err)
	if s.onFatal != nil {
		go s.onFatal(err)
	}
}

// Logger exposes the session's durable logger for collaborators that need to
// record their own entries.
func (s *Session) Logger() *logging.ResilientLogger {
	return s.logger
}

func (s *Session) log(message string) {
	if s.cfg.EnableLog {
		s.logger.Log(message)
	}
}
