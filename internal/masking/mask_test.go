package masking

import (
	"image"
	"image/color"
	"testing"

	"mask-mender/internal/opencv/conversion"
	"mask-mender/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gray   = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	yellow = color.NRGBA{R: 250, G: 220, B: 20, A: 255}
)

// photoWithYellowBox returns a gray w x h image with a yellow rectangle.
func photoWithYellowBox(t *testing.T, w, h int, box image.Rectangle) *safe.Mat {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(box) {
				img.SetNRGBA(x, y, yellow)
			} else {
				img.SetNRGBA(x, y, gray)
			}
		}
	}

	mat, err := conversion.ImageToMat(img, nil, "photo")
	require.NoError(t, err)
	t.Cleanup(mat.Close)
	return mat
}

func at(t *testing.T, mask *safe.Mat, x, y int) uint8 {
	t.Helper()
	img, err := conversion.MatToImage(mask)
	require.NoError(t, err)
	return img.(*image.Gray).GrayAt(x, y).Y
}

func TestDetectYellowMarksOnlyTheBox(t *testing.T) {
	box := image.Rect(10, 5, 20, 15)
	src := photoWithYellowBox(t, 40, 30, box)

	mask, err := DetectYellow(src, DefaultYellow, nil)
	require.NoError(t, err)
	defer mask.Close()

	assert.Equal(t, uint8(On), at(t, mask, 15, 10))
	assert.Equal(t, uint8(Off), at(t, mask, 2, 2))
	assert.Equal(t, uint8(Off), at(t, mask, 25, 10))

	coverage, err := Measure(mask)
	require.NoError(t, err)
	assert.Equal(t, box.Dx()*box.Dy(), coverage.Pixels)
	assert.Equal(t, 40*30, coverage.Total)
	assert.InDelta(t, 100.0/1200.0, coverage.Fraction, 1e-9)
}

func TestDetectYellowWithoutYellowIsEmpty(t *testing.T) {
	src := photoWithYellowBox(t, 16, 16, image.Rectangle{})

	mask, err := DetectYellow(src, DefaultYellow, nil)
	require.NoError(t, err)
	defer mask.Close()

	coverage, err := Measure(mask)
	require.NoError(t, err)
	assert.True(t, coverage.Empty())
}

func TestPaintDrawAndErase(t *testing.T) {
	mask, err := NewEmpty(50, 50, nil)
	require.NoError(t, err)
	defer mask.Close()

	require.NoError(t, Paint(mask, image.Pt(25, 25), 10, Draw))
	assert.Equal(t, uint8(On), at(t, mask, 25, 25))
	assert.Equal(t, uint8(On), at(t, mask, 33, 25))
	assert.Equal(t, uint8(Off), at(t, mask, 40, 25))

	require.NoError(t, Paint(mask, image.Pt(25, 25), 3, Erase))
	assert.Equal(t, uint8(Off), at(t, mask, 25, 25))
	assert.Equal(t, uint8(On), at(t, mask, 33, 25))
}

func TestPaintClipsAtBorder(t *testing.T) {
	mask, err := NewEmpty(20, 20, nil)
	require.NoError(t, err)
	defer mask.Close()

	require.NoError(t, Paint(mask, image.Pt(-3, -3), 6, Draw))
	assert.Equal(t, uint8(On), at(t, mask, 0, 0))

	require.NoError(t, Paint(mask, image.Pt(500, 500), 6, Draw))
	coverage, err := Measure(mask)
	require.NoError(t, err)
	assert.Less(t, coverage.Pixels, 40)
}

func TestPaintRejectsZeroRadius(t *testing.T) {
	mask, err := NewEmpty(5, 5, nil)
	require.NoError(t, err)
	defer mask.Close()

	assert.Error(t, Paint(mask, image.Pt(2, 2), 0, Draw))
}

func TestClear(t *testing.T) {
	mask, err := NewEmpty(10, 10, nil)
	require.NoError(t, err)
	defer mask.Close()

	require.NoError(t, Paint(mask, image.Pt(5, 5), 4, Draw))
	require.NoError(t, Clear(mask))

	coverage, err := Measure(mask)
	require.NoError(t, err)
	assert.Zero(t, coverage.Pixels)
}

func TestDilateGrowsRegion(t *testing.T) {
	mask, err := NewEmpty(30, 30, nil)
	require.NoError(t, err)
	defer mask.Close()
	require.NoError(t, Paint(mask, image.Pt(15, 15), 2, Draw))

	before, err := Measure(mask)
	require.NoError(t, err)

	require.NoError(t, Dilate(mask, 0))
	same, err := Measure(mask)
	require.NoError(t, err)
	assert.Equal(t, before, same)

	require.NoError(t, Dilate(mask, 3))
	after, err := Measure(mask)
	require.NoError(t, err)
	assert.Greater(t, after.Pixels, before.Pixels)
	assert.Equal(t, uint8(On), at(t, mask, 19, 15))
}

func TestFromGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.SetGray(1, 2, color.Gray{Y: 3})

	bgr, err := conversion.ImageToMat(img, nil, "picture")
	require.NoError(t, err)
	defer bgr.Close()
	grayMat, err := conversion.ConvertBGRToGray(bgr)
	require.NoError(t, err)
	defer grayMat.Close()

	mask, err := FromGray(grayMat, nil)
	require.NoError(t, err)
	defer mask.Close()

	assert.Equal(t, uint8(On), at(t, mask, 1, 2))
	assert.Equal(t, uint8(Off), at(t, mask, 0, 0))
}

func TestOverlayPaintsMaskedPixels(t *testing.T) {
	src := photoWithYellowBox(t, 20, 20, image.Rectangle{})
	mask, err := NewEmpty(20, 20, nil)
	require.NoError(t, err)
	defer mask.Close()
	require.NoError(t, Paint(mask, image.Pt(10, 10), 3, Draw))

	preview, err := Overlay(src, mask, [3]uint8{0, 0, 255})
	require.NoError(t, err)

	red := color.NRGBAModel.Convert(preview.At(10, 10)).(color.NRGBA)
	untouched := color.NRGBAModel.Convert(preview.At(0, 0)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, red)
	assert.Equal(t, gray, untouched)
}

func TestOverlayRejectsSizeMismatch(t *testing.T) {
	src := photoWithYellowBox(t, 20, 20, image.Rectangle{})
	mask, err := NewEmpty(10, 20, nil)
	require.NoError(t, err)
	defer mask.Close()

	_, err = Overlay(src, mask, [3]uint8{0, 0, 255})
	assert.Error(t, err)
}

func TestStrokeModeString(t *testing.T) {
	assert.Equal(t, "draw", Draw.String())
	assert.Equal(t, "erase", Erase.String())
}
