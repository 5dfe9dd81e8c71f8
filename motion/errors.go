package motion

import "github.com/pkg/errors"

// Error kinds for a processing cycle. Only ErrGeometryMismatch should end a
// capture session; an out-of-bounds region of interest is not an error at all,
// it is reported through Result.Degraded and the cycle continues full-frame.
var (
	// ErrNoBackground is returned by the background model on the first frame,
	// before a comparison baseline exists. The pipeline maps it to a cycle
	// with no motion decision.
	ErrNoBackground = errors.New("no background frame to compare against")

	// ErrGeometryMismatch indicates the current frame's dimensions differ from
	// the stored background frame. Consistent frame geometry is the frame
	// source's responsibility; the pipeline fails fast rather than resizing.
	ErrGeometryMismatch = errors.New("frame geometry mismatch")
)
