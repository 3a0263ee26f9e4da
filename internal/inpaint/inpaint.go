package inpaint

import (
	"errors"
	"fmt"
	"strings"

	"mask-mender/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var ErrUnknownAlgorithm = errors.New("unknown inpaint algorithm")

// Algorithm selects one of OpenCV's inpainting methods.
type Algorithm int

const (
	// Telea is the fast marching method.
	Telea Algorithm = iota
	// NS is the Navier-Stokes based method.
	NS
)

// DefaultRadius is the neighbourhood, in pixels, each fill step samples.
const DefaultRadius float32 = 3

func (a Algorithm) String() string {
	switch a {
	case Telea:
		return "TELEA"
	case NS:
		return "NS"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

func (a Algorithm) method() (gocv.InpaintMethods, error) {
	switch a {
	case Telea:
		return gocv.Telea, nil
	case NS:
		return gocv.NS, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
}

// Algorithms lists the selectable algorithms in display order.
func Algorithms() []Algorithm {
	return []Algorithm{Telea, NS}
}

// Names returns the canonical names of Algorithms.
func Names() []string {
	names := make([]string, 0, 2)
	for _, a := range Algorithms() {
		names = append(names, a.String())
	}
	return names
}

func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TELEA":
		return Telea, nil
	case "NS":
		return NS, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

type Options struct {
	Radius    float32
	Algorithm Algorithm
}

func DefaultOptions() Options {
	return Options{Radius: DefaultRadius, Algorithm: Telea}
}

// Inpaint fills every non-zero mask pixel of src from its surroundings and
// returns the result as a new Mat. src must be 3-channel BGR and mask a
// same-sized single-channel 8-bit Mat.
func Inpaint(src, mask *safe.Mat, opts Options, tracker safe.MemoryTracker) (*safe.Mat, error) {
	if err := safe.ValidateColorImage(src, "inpaint"); err != nil {
		return nil, err
	}
	if err := safe.ValidateMask(src, mask, "inpaint"); err != nil {
		return nil, err
	}
	if opts.Radius <= 0 {
		return nil, fmt.Errorf("inpaint radius %g must be positive", opts.Radius)
	}
	method, err := opts.Algorithm.method()
	if err != nil {
		return nil, err
	}

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), src.Type(), tracker, "inpaint_result")
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	maskMat := mask.GetMat()
	if err := dst.Update(func(m *gocv.Mat) {
		gocv.Inpaint(srcMat, maskMat, m, opts.Radius, method)
	}); err != nil {
		dst.Close()
		return nil, err
	}

	if dst.Empty() {
		dst.Close()
		return nil, fmt.Errorf("inpaint produced an empty image")
	}

	return dst, nil
}
