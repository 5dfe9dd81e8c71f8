// Package images - Frame conversion helpers for the motion analysis pipeline.
package images

import (
	"image"

	"gocv.io/x/gocv"
)

// ToGrayscale converts a color frame to a single-channel intensity frame using
// the fixed BT.601 luma transform OpenCV applies for BGR input.
//
// The conversion is stateless; dst is overwritten every call and may be reused
// across frames to avoid per-cycle allocations.
//
// Arguments:
//   - src: The input frame. Already-grayscale frames are copied through unchanged.
//   - dst: Destination Mat, reused between calls.
func ToGrayscale(src gocv.Mat, dst *gocv.Mat) {
	if src.Channels() == 1 {
		src.CopyTo(dst)
		return
	}
	gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
}

// Denoise applies a Gaussian blur with the given kernel size to suppress
// sensor noise ahead of frame differencing. A kernel size below 3 is a no-op.
// Even kernel sizes are rounded up; OpenCV requires odd kernels.
func Denoise(src gocv.Mat, dst *gocv.Mat, kernelSize int) {
	if kernelSize < 3 {
		src.CopyTo(dst)
		return
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}
	gocv.GaussianBlur(src, dst, image.Pt(kernelSize, kernelSize), 0, 0, gocv.BorderDefault)
}
