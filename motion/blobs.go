package motion

import (
	"image"

	"gocv.io/x/gocv"
)

// SizeBounds constrains the bounding rectangles that count as motion.
// Sub-minimum blobs are sensor noise; oversized blobs indicate a global
// illumination shift rather than localized motion.
type SizeBounds struct {
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
}

// DefaultSizeBounds are the reference blob bounds.
var DefaultSizeBounds = SizeBounds{
	MinWidth:  20,
	MinHeight: 20,
	MaxWidth:  500,
	MaxHeight: 500,
}

// Contains reports whether r satisfies the configured bounds.
func (b SizeBounds) Contains(r image.Rectangle) bool {
	w, h := r.Dx(), r.Dy()
	return w >= b.MinWidth && w <= b.MaxWidth && h >= b.MinHeight && h <= b.MaxHeight
}

// ExtractBlobs finds the maximal connected regions of "on" pixels in the
// binary mask and reports each as an axis-aligned bounding rectangle,
// translated by offset back into full-frame coordinates.
//
// Connectivity follows OpenCV contour extraction, which treats diagonal
// neighbors as connected (8-connectivity).
func ExtractBlobs(mask gocv.Mat, offset image.Point) []image.Rectangle {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	blobs := make([]image.Rectangle, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		blobs = append(blobs, rect.Add(offset))
	}
	return blobs
}

// FilterBlobs retains only the rectangles within bounds. Order is preserved
// but is irrelevant to downstream logic.
func FilterBlobs(blobs []image.Rectangle, bounds SizeBounds) []image.Rectangle {
	kept := blobs[:0]
	for _, b := range blobs {
		if bounds.Contains(b) {
			kept = append(kept, b)
		}
	}
	return kept
}
