package inpaint

import (
	"image"
	"image/color"
	"testing"

	"mask-mender/internal/masking"
	"mask-mender/internal/opencv/conversion"
	"mask-mender/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"TELEA", Telea},
		{"telea", Telea},
		{" NS ", NS},
		{"ns", NS},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseAlgorithm("patchmatch")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestAlgorithmNames(t *testing.T) {
	assert.Equal(t, []string{"TELEA", "NS"}, Names())
	assert.Equal(t, "Algorithm(7)", Algorithm(7).String())
}

// blueWithRedDot is a flat blue image with a red square that the mask covers.
func blueWithRedDot(t *testing.T) (*safe.Mat, *safe.Mat) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			c := color.NRGBA{R: 20, G: 60, B: 200, A: 255}
			if x >= 18 && x < 22 && y >= 18 && y < 22 {
				c = color.NRGBA{R: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	src, err := conversion.ImageToMat(img, nil, "src")
	require.NoError(t, err)
	t.Cleanup(src.Close)

	mask, err := masking.NewEmpty(40, 40, nil)
	require.NoError(t, err)
	t.Cleanup(mask.Close)
	require.NoError(t, masking.Paint(mask, image.Pt(20, 20), 4, masking.Draw))

	return src, mask
}

func pixel(t *testing.T, mat *safe.Mat, x, y int) color.NRGBA {
	t.Helper()
	img, err := conversion.MatToImage(mat)
	require.NoError(t, err)
	return img.(*image.NRGBA).NRGBAAt(x, y)
}

func TestInpaintFillsMaskedRegion(t *testing.T) {
	for _, alg := range Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			src, mask := blueWithRedDot(t)

			dst, err := Inpaint(src, mask, Options{Radius: 3, Algorithm: alg}, nil)
			require.NoError(t, err)
			defer dst.Close()

			assert.Equal(t, src.Rows(), dst.Rows())
			assert.Equal(t, src.Cols(), dst.Cols())

			px := pixel(t, dst, 20, 20)
			assert.InDelta(t, 200, int(px.B), 10)
			assert.InDelta(t, 20, int(px.R), 10)

			// The source is untouched.
			assert.Equal(t, uint8(255), pixel(t, src, 20, 20).R)
		})
	}
}

func TestInpaintEmptyMaskKeepsImage(t *testing.T) {
	src, mask := blueWithRedDot(t)
	require.NoError(t, masking.Clear(mask))

	dst, err := Inpaint(src, mask, DefaultOptions(), nil)
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, uint8(255), pixel(t, dst, 20, 20).R)
}

func TestInpaintValidates(t *testing.T) {
	src, mask := blueWithRedDot(t)

	_, err := Inpaint(src, mask, Options{Radius: 0, Algorithm: Telea}, nil)
	assert.Error(t, err)

	_, err = Inpaint(src, mask, Options{Radius: 3, Algorithm: Algorithm(9)}, nil)
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	small, err := masking.NewEmpty(10, 10, nil)
	require.NoError(t, err)
	defer small.Close()
	_, err = Inpaint(src, small, DefaultOptions(), nil)
	assert.Error(t, err)

	grayMat, err := safe.NewMat(40, 40, gocv.MatTypeCV8UC1)
	require.NoError(t, err)
	defer grayMat.Close()
	_, err = Inpaint(grayMat, mask, DefaultOptions(), nil)
	assert.Error(t, err)
}
