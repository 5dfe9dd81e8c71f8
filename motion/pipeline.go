package motion

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-motion/images"
)

// DefaultThreshold is the reference intensity cutoff for the binary motion mask.
const DefaultThreshold = 15

// PipelineConfig holds the immutable per-session parameters of the frame
// analysis pipeline.
type PipelineConfig struct {
	// Threshold is the per-pixel intensity cutoff applied to the difference map.
	Threshold int
	// BlurKernel is the Gaussian denoise kernel size; values below 3 disable
	// the denoise stage.
	BlurKernel int
	// Region restricts blob search to a sub-rectangle of the frame. The zero
	// rectangle searches the whole frame.
	Region image.Rectangle
	// Bounds are the blob size limits.
	Bounds SizeBounds
}

// Result is the outcome of one fully processed frame. Only fully-formed
// Results cross to the presentation side.
type Result struct {
	// Blobs are the surviving motion rectangles in full-frame coordinates.
	Blobs []image.Rectangle
	// MotionDetected is true when at least one blob survived the size filter.
	MotionDetected bool
	// Degraded reports an out-of-bounds region fallback this cycle.
	Degraded bool
	// FrameSize is the processed frame's dimensions.
	FrameSize image.Point
}

// Pipeline runs the frame analysis stages in order: grayscale conversion,
// optional denoise, background differencing, thresholding, region cropping,
// blob extraction and size filtering.
//
// A Pipeline is exclusively owned by one capture session and must not be used
// from more than one goroutine at a time; the session serializes frame
// callbacks. Intermediate Mats are reused across cycles.
type Pipeline struct {
	cfg        PipelineConfig
	background *BackgroundModel

	gray gocv.Mat
	diff gocv.Mat
	mask gocv.Mat
}

// NewPipeline constructs a pipeline with the given configuration. Zero-value
// threshold and bounds fall back to the reference defaults.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Bounds == (SizeBounds{}) {
		cfg.Bounds = DefaultSizeBounds
	}
	return &Pipeline{
		cfg:        cfg,
		background: NewBackgroundModel(),
		gray:       gocv.NewMat(),
		diff:       gocv.NewMat(),
		mask:       gocv.NewMat(),
	}
}

// Process runs the full pipeline for one frame.
//
// The first frame of a session primes the background model and yields a Result
// with MotionDetected false regardless of content. An out-of-bounds region is
// reported through Result.Degraded and the cycle continues full-frame. Only
// geometry mismatches and unexpected internal failures return an error; the
// caller should treat those as fatal to the session.
func (p *Pipeline) Process(frame gocv.Mat) (Result, error) {
	if frame.Empty() {
		return Result{}, errors.Wrap(ErrGeometryMismatch, "empty input frame")
	}

	images.ToGrayscale(frame, &p.gray)
	if p.cfg.BlurKernel >= 3 {
		images.Denoise(p.gray, &p.gray, p.cfg.BlurKernel)
	}

	size := image.Pt(p.gray.Cols(), p.gray.Rows())

	if err := p.background.Diff(p.gray, &p.diff); err != nil {
		if errors.Is(err, ErrNoBackground) {
			// First frame: no baseline, no motion decision possible.
			return Result{FrameSize: size}, nil
		}
		return Result{}, err
	}

	gocv.Threshold(p.diff, &p.mask, float32(p.cfg.Threshold), 255, gocv.ThresholdBinary)

	crop := Crop(p.mask, p.cfg.Region)
	defer crop.Close()

	blobs := FilterBlobs(ExtractBlobs(crop.Mask, crop.Offset), p.cfg.Bounds)

	return Result{
		Blobs:          blobs,
		MotionDetected: len(blobs) > 0,
		Degraded:       crop.Degraded,
		FrameSize:      size,
	}, nil
}

// Config returns the pipeline's immutable configuration.
func (p *Pipeline) Config() PipelineConfig {
	return p.cfg
}

// Reset discards the background baseline. Called at capture-session start so
// no state survives across sessions.
func (p *Pipeline) Reset() {
	p.background.Reset()
}

// Close releases all native buffers owned by the pipeline.
func (p *Pipeline) Close() {
	p.background.Close()
	p.gray.Close()
	p.diff.Close()
	p.mask.Close()
}
