package preview

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitStretchesToSurface(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1200, 300))
	out := Fit(src, 600, 400)
	require.NotNil(t, out)
	assert.Equal(t, image.Rect(0, 0, 600, 400), out.Bounds())
}

func TestFitSameSizeCopies(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{R: 9, A: 255})

	out := Fit(src, 4, 4)
	require.NotNil(t, out)
	assert.Equal(t, uint8(9), out.NRGBAAt(1, 1).R)

	out.SetNRGBA(1, 1, color.NRGBA{R: 1, A: 255})
	assert.Equal(t, uint8(9), src.NRGBAAt(1, 1).R)
}

func TestFitDegenerate(t *testing.T) {
	assert.Nil(t, Fit(nil, 10, 10))
	assert.Nil(t, Fit(image.NewNRGBA(image.Rect(0, 0, 2, 2)), 0, 10))
}

func TestPlaceholderIsBlack(t *testing.T) {
	p := Placeholder(6, 4)
	assert.Equal(t, image.Rect(0, 0, 6, 4), p.Bounds())
	assert.Equal(t, color.NRGBA{A: 255}, p.NRGBAAt(3, 2))
}

func TestCanvasToImage(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float32
		want   image.Point
		wantOK bool
	}{
		{"origin", 0, 0, image.Pt(0, 0), true},
		{"center", 300, 200, image.Pt(1000, 500), true},
		{"truncates", 0.59, 0.39, image.Pt(1, 0), true},
		{"last pixel", 599.99, 399.99, image.Pt(1999, 999), true},
		{"right edge", 600, 10, image.Point{}, false},
		{"negative", -1, 10, image.Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanvasToImage(tt.x, tt.y, 600, 400, 2000, 1000)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanvasToImageDegenerate(t *testing.T) {
	_, ok := CanvasToImage(1, 1, 0, 400, 10, 10)
	assert.False(t, ok)
	_, ok = CanvasToImage(1, 1, 600, 400, 0, 10)
	assert.False(t, ok)
}
