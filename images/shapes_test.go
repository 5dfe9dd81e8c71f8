package images

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoU(t *testing.T) {
	a := image.Rect(0, 0, 10, 10)

	assert.InDelta(t, 1.0, IoU(a, a), 1e-9)
	assert.Equal(t, 0.0, IoU(a, image.Rect(20, 20, 30, 30)))

	// 5x5 intersection over 100 + 100 - 25 union.
	b := image.Rect(5, 5, 15, 15)
	assert.InDelta(t, 25.0/175.0, IoU(a, b), 1e-9)
}

func TestIoUDegenerateRectangles(t *testing.T) {
	assert.Equal(t, 0.0, IoU(image.Rectangle{}, image.Rectangle{}))
	assert.Equal(t, 0.0, IoU(image.Rect(0, 0, 10, 10), image.Rectangle{}))
}
