package images

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Overlay colors match the conventional annotation scheme: detected motion in
// red, the configured search region in green.
var (
	BlobColor   = color.RGBA{R: 255, A: 255}
	RegionColor = color.RGBA{G: 255, A: 255}
)

// DrawBlobs draws each bounding rectangle onto the frame in place.
//
// Arguments:
//   - frame: The color frame to annotate; mutated in place.
//   - blobs: Bounding rectangles in full-frame coordinates.
func DrawBlobs(frame *gocv.Mat, blobs []image.Rectangle) {
	for _, b := range blobs {
		gocv.Rectangle(frame, b, BlobColor, 2)
	}
}

// DrawRegion outlines the configured region of interest onto the frame in place.
// Empty rectangles are skipped.
func DrawRegion(frame *gocv.Mat, region image.Rectangle) {
	if region.Empty() {
		return
	}
	gocv.Rectangle(frame, region, RegionColor, 1)
}
