package masking

import (
	"fmt"
	"image"

	"mask-mender/internal/opencv/conversion"
	"mask-mender/internal/opencv/safe"
)

// Overlay renders src with every masked pixel replaced by the BGR color,
// producing the preview shown while the user edits the mask.
func Overlay(src, mask *safe.Mat, bgr [3]uint8) (image.Image, error) {
	if err := safe.ValidateMask(src, mask, "mask overlay"); err != nil {
		return nil, err
	}

	base, err := conversion.MatToImage(src)
	if err != nil {
		return nil, fmt.Errorf("overlay base: %w", err)
	}
	preview, ok := base.(*image.NRGBA)
	if !ok {
		return nil, fmt.Errorf("overlay requires a color image, got %T", base)
	}

	maskImg, err := conversion.MatToImage(mask)
	if err != nil {
		return nil, fmt.Errorf("overlay mask: %w", err)
	}
	gray := maskImg.(*image.Gray)

	for i, v := range gray.Pix {
		if v == Off {
			continue
		}
		j := i * 4
		preview.Pix[j+0] = bgr[2]
		preview.Pix[j+1] = bgr[1]
		preview.Pix[j+2] = bgr[0]
		preview.Pix[j+3] = 255
	}

	return preview, nil
}
