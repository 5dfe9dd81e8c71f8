// Command go-motion watches a camera feed and reports motion within a
// configurable region of interest, with cooldown-gated alerting and snapshot
// persistence.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-motion/config"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/session"
)

func main() {
	var (
		configPath  string
		device      int
		snapshotDir string
		logPath     string
		showWindow  bool
		debug       bool
	)
	flag.StringVar(&configPath, "config", "go-motion.json", "Path to JSON configuration file")
	flag.IntVar(&device, "device", -1, "Video capture device ID (overrides config)")
	flag.StringVar(&snapshotDir, "snapshot-dir", "", "Snapshot output directory (overrides config)")
	flag.StringVar(&logPath, "log", "", "Durable log file path (overrides config)")
	flag.BoolVar(&showWindow, "show-window", false, "Show a visualization window")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", configPath, "error", err)
	}
	if device >= 0 {
		cfg.CameraDevice = device
	}
	if snapshotDir != "" {
		cfg.SnapshotDir = snapshotDir
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}

	capture, err := gocv.OpenVideoCapture(cfg.CameraDevice)
	if err != nil {
		logger.Error("opening video capture device failed", "device", cfg.CameraDevice, "error", err)
		os.Exit(1)
	}
	defer capture.Close()

	var sink session.PresentationSink = consoleSink{logger: logger}
	if showWindow {
		window := gocv.NewWindow("Motion")
		defer window.Close()
		sink = &windowSink{window: window}
	}

	fatal := make(chan error, 1)
	sess := session.New(session.Options{
		Config:  cfg,
		Source:  &cameraSource{capture: capture},
		Sink:    sink,
		Alerter: bellAlerter{},
		Logger:  logger,
		Notify: func(message string) {
			fmt.Fprintln(os.Stderr, "NOTICE: "+message)
		},
		OnFatal: func(err error) {
			select {
			case fatal <- err:
			default:
			}
		},
	})

	if err := sess.Start(); err != nil {
		logger.Error("session start failed", "error", err)
		os.Exit(1)
	}

	// While the durable logger is critically failed, periodically probe
	// whether the log file is writable again.
	probeDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-probeDone:
				return
			case <-ticker.C:
				if _, critical := sess.Logger().Health(); critical && sess.Logger().Retry() {
					logger.Info("durable log file recovered")
				}
			}
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-fatal:
		logger.Error("session ended", "error", err)
	case sig := <-sigs:
		logger.Info("shutting down", "signal", sig.String())
	}
	close(probeDone)
	sess.Stop()
}

// cameraSource adapts a gocv.VideoCapture into a session.FrameSource. Frames
// are delivered on a dedicated goroutine; the read buffer is reused between
// callbacks, so subscribers must clone anything they keep.
type cameraSource struct {
	capture *gocv.VideoCapture

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

func (c *cameraSource) Subscribe(onFrame func(frame gocv.Mat)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return fmt.Errorf("camera source already subscribed")
	}
	c.done = make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		frame := gocv.NewMat()
		defer frame.Close()
		for {
			select {
			case <-c.done:
				return
			default:
			}
			if ok := c.capture.Read(&frame); !ok {
				return
			}
			if frame.Empty() {
				continue
			}
			onFrame(frame)
		}
	}()
	return nil
}

func (c *cameraSource) Unsubscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		return nil
	}
	close(c.done)
	c.wg.Wait()
	c.done = nil
	return nil
}

// consoleSink reports lifecycle events to the structured logger and releases
// each annotated frame.
type consoleSink struct {
	logger *slog.Logger
}

func (s consoleSink) Publish(update session.Update) {
	defer update.Frame.Close()
	switch update.Event.Kind {
	case motion.EventStarted:
		s.logger.Info("motion started", "blobs", len(update.Result.Blobs))
	case motion.EventStopped:
		s.logger.Info("motion stopped", "duration", update.Event.Duration)
	}
}

// windowSink displays each annotated frame.
type windowSink struct {
	window *gocv.Window
}

func (s *windowSink) Publish(update session.Update) {
	defer update.Frame.Close()
	s.window.SetWindowTitle("Motion - " + update.Status)
	s.window.IMShow(update.Frame)
	s.window.WaitKey(1)
}

// bellAlerter rings the terminal bell. Audio playback proper is an external
// collaborator.
type bellAlerter struct{}

func (bellAlerter) Alert() {
	fmt.Fprint(os.Stderr, "\a")
}
