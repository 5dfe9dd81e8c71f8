// Package motion implements the per-frame motion analysis pipeline: background
// differencing, thresholding, region-of-interest cropping, blob extraction and
// size filtering, plus the temporal state machine and cooldown gates that turn
// noisy per-frame detections into stable motion lifecycle events.
package motion

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// BackgroundModel holds exactly one previous grayscale frame and computes the
// absolute per-pixel difference against the current frame. After every
// comparison the model re-anchors itself to the current frame, so each stored
// frame is read exactly once.
//
// The stored frame is exclusively owned by the pipeline execution path and is
// never shared with the presentation side.
type BackgroundModel struct {
	prev        gocv.Mat
	initialized bool
}

// NewBackgroundModel returns an empty model. The first call to Diff primes it.
func NewBackgroundModel() *BackgroundModel {
	return &BackgroundModel{prev: gocv.NewMat()}
}

// Diff computes |cur - prev| into dst, then re-anchors the model to cur.
//
// Arguments:
//   - cur: The current grayscale frame. The model copies it; the caller keeps
//     ownership of cur.
//   - dst: Destination for the difference map, reused between calls.
//
// Returns:
//   - ErrNoBackground when no previous frame exists yet (the model is primed
//     with cur and no difference is produced).
//   - ErrGeometryMismatch when cur's dimensions differ from the stored frame.
func (m *BackgroundModel) Diff(cur gocv.Mat, dst *gocv.Mat) error {
	if !m.initialized {
		cur.CopyTo(&m.prev)
		m.initialized = true
		return ErrNoBackground
	}
	if cur.Cols() != m.prev.Cols() || cur.Rows() != m.prev.Rows() {
		return errors.Wrapf(ErrGeometryMismatch, "current %dx%d previous %dx%d",
			cur.Cols(), cur.Rows(), m.prev.Cols(), m.prev.Rows())
	}
	gocv.AbsDiff(cur, m.prev, dst)
	cur.CopyTo(&m.prev)
	return nil
}

// Reset discards the stored frame so the next Diff primes the model again.
// Called at capture-session start.
func (m *BackgroundModel) Reset() {
	m.initialized = false
}

// Close releases the stored frame's native buffer.
func (m *BackgroundModel) Close() {
	m.initialized = false
	if !m.prev.Empty() {
		m.prev.Close()
	}
}
