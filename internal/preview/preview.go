// Package preview renders bitmaps for the fixed-size display surface and
// maps pointer positions on that surface back to image pixels.
package preview

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Fit stretches img to exactly width x height with Lanczos resampling. The
// aspect ratio is not preserved so that surface coordinates scale linearly
// on both axes.
func Fit(img image.Image, width, height int) *image.NRGBA {
	if img == nil || width <= 0 || height <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Placeholder is the blank surface shown before any image is loaded.
func Placeholder(width, height int) *image.NRGBA {
	return imaging.New(width, height, color.Black)
}

// CanvasToImage converts a position on a surface of size (surfaceW,
// surfaceH) showing a stretched image of size (imageW, imageH) to image
// pixel coordinates. ok is false when the position is off the surface or
// any size is degenerate.
func CanvasToImage(x, y, surfaceW, surfaceH float32, imageW, imageH int) (p image.Point, ok bool) {
	if surfaceW <= 0 || surfaceH <= 0 || imageW <= 0 || imageH <= 0 {
		return image.Point{}, false
	}
	if x < 0 || y < 0 || x >= surfaceW || y >= surfaceH {
		return image.Point{}, false
	}

	px := int(x * float32(imageW) / surfaceW)
	py := int(y * float32(imageH) / surfaceH)
	if px >= imageW {
		px = imageW - 1
	}
	if py >= imageH {
		py = imageH - 1
	}
	return image.Pt(px, py), true
}
