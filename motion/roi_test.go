package motion

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCropAbsentRegionUsesFullMask(t *testing.T) {
	mask := grayFrame(t, 640, 480, 0)

	crop := Crop(mask, image.Rectangle{})
	defer crop.Close()

	assert.Equal(t, image.Point{}, crop.Offset)
	assert.False(t, crop.Degraded)
	assert.Equal(t, 640, crop.Mask.Cols())
	assert.Equal(t, 480, crop.Mask.Rows())
}

func TestCropValidRegion(t *testing.T) {
	mask := grayFrame(t, 640, 480, 0)
	region := image.Rect(100, 50, 300, 250)

	crop := Crop(mask, region)
	defer crop.Close()

	assert.Equal(t, image.Pt(100, 50), crop.Offset)
	assert.False(t, crop.Degraded)
	assert.Equal(t, 200, crop.Mask.Cols())
	assert.Equal(t, 200, crop.Mask.Rows())
}

func TestCropOutOfBoundsFallsBackToFullFrame(t *testing.T) {
	mask := grayFrame(t, 640, 480, 0)
	// Region starts beyond the right edge of a 640x480 frame.
	region := image.Rect(700, 0, 800, 100)

	crop := Crop(mask, region)
	defer crop.Close()

	assert.True(t, crop.Degraded)
	assert.Equal(t, image.Point{}, crop.Offset)
	assert.Equal(t, 640, crop.Mask.Cols())
	assert.Equal(t, 480, crop.Mask.Rows())
}

func TestCropPartiallyOutOfBoundsAlsoDegrades(t *testing.T) {
	mask := grayFrame(t, 640, 480, 0)
	cases := []image.Rectangle{
		image.Rect(-10, 0, 90, 100),
		image.Rect(0, -5, 100, 95),
		image.Rect(600, 0, 700, 100),
		image.Rect(0, 440, 100, 540),
	}
	for _, region := range cases {
		crop := Crop(mask, region)
		assert.True(t, crop.Degraded, "region %v", region)
		crop.Close()
	}
}
