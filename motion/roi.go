package motion

import (
	"image"

	"gocv.io/x/gocv"
)

// CropResult is the outcome of restricting the binary mask to the configured
// region of interest. Mask is either a sub-mask view into the input or the
// input itself; Close releases the view when one was taken.
type CropResult struct {
	// Mask is the region to search for blobs.
	Mask gocv.Mat
	// Offset translates blob coordinates found in Mask back into full-frame
	// coordinates.
	Offset image.Point
	// Degraded reports that a configured region was out of bounds for this
	// frame and full-frame processing was used instead.
	Degraded bool

	view bool
}

// Close releases the sub-mask view. Safe to call when no view was taken.
func (c *CropResult) Close() {
	if c.view {
		c.Mask.Close()
		c.view = false
	}
}

// Crop restricts mask to the configured region of interest.
//
// An empty region means the whole frame is the search area. A region that does
// not satisfy 0 <= x, 0 <= y, x+w <= W, y+h <= H for the current mask falls
// back to full-frame processing for this cycle only; the configured region is
// never mutated.
func Crop(mask gocv.Mat, region image.Rectangle) CropResult {
	if region.Empty() {
		return CropResult{Mask: mask}
	}
	w, h := mask.Cols(), mask.Rows()
	if region.Min.X < 0 || region.Min.Y < 0 || region.Max.X > w || region.Max.Y > h {
		return CropResult{Mask: mask, Degraded: true}
	}
	return CropResult{
		Mask:   mask.Region(region),
		Offset: region.Min,
		view:   true,
	}
}
