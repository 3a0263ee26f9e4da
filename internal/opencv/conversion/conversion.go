package conversion

import (
	"fmt"
	"image"

	"mask-mender/internal/opencv/safe"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// MatToImage converts an 8-bit GoCV Mat (gray, BGR or BGRA) to a Go image.
// Gray Mats become *image.Gray, color Mats become *image.NRGBA.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()
	channels := src.Channels()

	mat := src.GetMat()
	data, err := mat.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to access Mat data: %w", err)
	}
	if len(data) < rows*cols*channels {
		return nil, fmt.Errorf("Mat data too short: %d bytes for %dx%dx%d", len(data), cols, rows, channels)
	}

	switch channels {
	case 1:
		img := image.NewGray(image.Rect(0, 0, cols, rows))
		copy(img.Pix, data[:rows*cols])
		return img, nil
	case 3, 4:
		img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
		for i, j := 0, 0; i < rows*cols*channels; i, j = i+channels, j+4 {
			img.Pix[j+0] = data[i+2]
			img.Pix[j+1] = data[i+1]
			img.Pix[j+2] = data[i+0]
			if channels == 4 {
				img.Pix[j+3] = data[i+3]
			} else {
				img.Pix[j+3] = 255
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

// ImageToMat converts any Go image to a 3-channel BGR Mat. Alpha is
// dropped. Used for pictures OpenCV's codecs cannot decode.
func ImageToMat(img image.Image, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if err := safe.ValidateDimensions(width, height, "image to Mat conversion"); err != nil {
		return nil, err
	}

	nrgba := imaging.Clone(img)
	data := make([]byte, 0, width*height*3)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		data = append(data, nrgba.Pix[i+2], nrgba.Pix[i+1], nrgba.Pix[i])
	}

	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from pixels: %w", err)
	}
	defer mat.Close()

	// NewMatFromBytes borrows data; clone so the Mat owns its memory.
	return safe.NewMatFromMatWithTracker(mat, tracker, tag)
}
