// Package masking builds and edits inpainting masks: single-channel 8-bit
// Mats the size of the source image where non-zero pixels mark the region
// to fill.
package masking

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"mask-mender/internal/opencv/conversion"
	"mask-mender/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	// On is the value written for masked pixels.
	On = 255
	// Off is the value written for unmasked pixels.
	Off = 0
)

// ErrEmptyMask reports a mask without any non-zero pixel.
var ErrEmptyMask = errors.New("mask is empty")

// StrokeMode selects whether a brush stroke adds to or removes from the mask.
type StrokeMode int

const (
	Draw StrokeMode = iota
	Erase
)

func (m StrokeMode) String() string {
	if m == Erase {
		return "erase"
	}
	return "draw"
}

// HSVRange is an inclusive OpenCV HSV threshold.
type HSVRange struct {
	Lower [3]float64
	Upper [3]float64
}

// DefaultYellow matches saturated yellows: H 20-30, S and V 100-255.
var DefaultYellow = HSVRange{
	Lower: [3]float64{20, 100, 100},
	Upper: [3]float64{30, 255, 255},
}

// NewEmpty returns an all-zero mask of the given size.
func NewEmpty(rows, cols int, tracker safe.MemoryTracker) (*safe.Mat, error) {
	return safe.NewMatWithTracker(rows, cols, gocv.MatTypeCV8UC1, tracker, "mask")
}

// DetectYellow thresholds src in HSV space and returns a mask that is On
// wherever the pixel falls inside r.
func DetectYellow(src *safe.Mat, r HSVRange, tracker safe.MemoryTracker) (*safe.Mat, error) {
	hsv, err := conversion.ConvertBGRToHSV(src)
	if err != nil {
		return nil, fmt.Errorf("yellow detection: %w", err)
	}
	defer hsv.Close()

	mask, err := NewEmpty(src.Rows(), src.Cols(), tracker)
	if err != nil {
		return nil, err
	}

	lower := gocv.NewScalar(r.Lower[0], r.Lower[1], r.Lower[2], 0)
	upper := gocv.NewScalar(r.Upper[0], r.Upper[1], r.Upper[2], 0)
	hsvMat := hsv.GetMat()
	if err := mask.Update(func(m *gocv.Mat) {
		gocv.InRangeWithScalar(hsvMat, lower, upper, m)
	}); err != nil {
		mask.Close()
		return nil, err
	}

	return mask, nil
}

// FromGray binarizes a single-channel image: every non-zero pixel becomes On.
func FromGray(gray *safe.Mat, tracker safe.MemoryTracker) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(gray, "mask from gray"); err != nil {
		return nil, err
	}
	if gray.Channels() != 1 {
		return nil, fmt.Errorf("mask source must be single-channel, got %d", gray.Channels())
	}

	mask, err := NewEmpty(gray.Rows(), gray.Cols(), tracker)
	if err != nil {
		return nil, err
	}

	src := gray.GetMat()
	if err := mask.Update(func(m *gocv.Mat) {
		gocv.Threshold(src, m, 0, On, gocv.ThresholdBinary)
	}); err != nil {
		mask.Close()
		return nil, err
	}
	return mask, nil
}

// Paint stamps a filled circle of the given radius at p. Draw writes On,
// Erase writes Off. Points partially or fully outside the mask are clipped.
func Paint(mask *safe.Mat, p image.Point, radius int, mode StrokeMode) error {
	if err := safe.ValidateMatForOperation(mask, "mask paint"); err != nil {
		return err
	}
	if radius < 1 {
		return fmt.Errorf("brush radius %d must be at least 1", radius)
	}

	value := uint8(On)
	if mode == Erase {
		value = Off
	}
	c := color.RGBA{R: value, G: value, B: value, A: 0}

	return mask.Update(func(m *gocv.Mat) {
		gocv.Circle(m, p, radius, c, -1)
	})
}

// Clear resets every pixel to Off.
func Clear(mask *safe.Mat) error {
	return conversion.FillMat(mask, Off)
}

// Dilate grows the masked region by roughly pixels in every direction.
// Zero is a no-op.
func Dilate(mask *safe.Mat, pixels int) error {
	if pixels <= 0 {
		return nil
	}
	if err := safe.ValidateMatForOperation(mask, "mask dilate"); err != nil {
		return err
	}

	size := 2*pixels + 1
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(size, size))
	defer kernel.Close()

	grown := gocv.NewMat()
	defer grown.Close()

	return mask.Update(func(m *gocv.Mat) {
		gocv.Dilate(*m, &grown, kernel)
		grown.CopyTo(m)
	})
}

// Coverage reports how many pixels are masked and their share of the image.
type Coverage struct {
	Pixels   int
	Total    int
	Fraction float64
}

func (c Coverage) Empty() bool {
	return c.Pixels == 0
}

func Measure(mask *safe.Mat) (Coverage, error) {
	if err := safe.ValidateMatForOperation(mask, "mask coverage"); err != nil {
		return Coverage{}, err
	}

	total := mask.Rows() * mask.Cols()
	pixels := gocv.CountNonZero(mask.GetMat())

	return Coverage{
		Pixels:   pixels,
		Total:    total,
		Fraction: float64(pixels) / float64(total),
	}, nil
}
