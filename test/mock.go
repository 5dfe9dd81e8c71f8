// Package test provides deterministic frame generation and collaborator fakes
// for exercising the motion pipeline end to end.
package test

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-motion/session"
)

// FrameGenerator creates deterministic test frames with controlled motion
// patterns. Callers own the returned Mats and must Close them.
type FrameGenerator struct {
	width  int
	height int
}

// NewFrameGenerator creates a generator for frames of the given dimensions.
func NewFrameGenerator(width, height int) *FrameGenerator {
	return &FrameGenerator{width: width, height: height}
}

// Static creates a uniform mid-gray color frame, the motionless baseline.
func (g *FrameGenerator) Static() gocv.Mat {
	frame := gocv.NewMatWithSize(g.height, g.width, gocv.MatTypeCV8UC3)
	frame.SetTo(gocv.NewScalar(128, 128, 128, 0))
	return frame
}

// WithMotion creates a baseline frame with a bright square of the given size
// at (x, y), simulating a moved object.
func (g *FrameGenerator) WithMotion(x, y, size int) gocv.Mat {
	frame := g.Static()
	rect := image.Rect(x, y, x+size, y+size)
	gocv.Rectangle(&frame, rect, color.RGBA{R: 255, G: 255, B: 255, A: 0}, -1)
	return frame
}

// ManualSource is a session.FrameSource driven explicitly by the test: each
// Emit delivers one frame synchronously to the subscriber.
type ManualSource struct {
	mu      sync.Mutex
	onFrame func(frame gocv.Mat)

	UnsubscribeErr error
	Unsubscribed   bool
}

// Subscribe records the session callback.
func (s *ManualSource) Subscribe(onFrame func(frame gocv.Mat)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFrame = onFrame
	return nil
}

// Unsubscribe marks the source released.
func (s *ManualSource) Unsubscribe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Unsubscribed = true
	s.onFrame = nil
	return s.UnsubscribeErr
}

// Emit delivers one frame to the subscriber, if any. The source retains
// ownership of the Mat, mirroring a real frame source.
func (s *ManualSource) Emit(frame gocv.Mat) {
	s.mu.Lock()
	onFrame := s.onFrame
	s.mu.Unlock()
	if onFrame != nil {
		onFrame(frame)
	}
}

// RecordingSink collects published updates and releases their frames.
type RecordingSink struct {
	mu      sync.Mutex
	Updates []session.Update
}

// Publish records the update. Frames are closed immediately; tests inspect
// the derived values only.
func (s *RecordingSink) Publish(update session.Update) {
	update.Frame.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	update.Frame = gocv.Mat{}
	s.Updates = append(s.Updates, update)
}

// All returns a copy of the collected updates.
func (s *RecordingSink) All() []session.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]session.Update(nil), s.Updates...)
}

// CountingAlerter counts alert firings.
type CountingAlerter struct {
	mu    sync.Mutex
	Count int
}

// Alert increments the counter.
func (a *CountingAlerter) Alert() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Count++
}

// Fired returns the number of alerts fired.
func (a *CountingAlerter) Fired() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Count
}
