package images

import "image"

// IoU returns the intersection-over-union of two axis-aligned rectangles,
// in the range [0, 1]. Non-overlapping rectangles score 0.
//
// Used by the pipeline tests to check that a reported blob covers the region
// where motion was injected, without requiring pixel-exact bounds.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := inter.Dx() * inter.Dy()
	unionArea := a.Dx()*a.Dy() + b.Dx()*b.Dy() - interArea
	if unionArea == 0 {
		return 0
	}
	return float64(interArea) / float64(unionArea)
}
