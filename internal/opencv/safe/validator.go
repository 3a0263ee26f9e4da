package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

const maxDimension = 32768

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidateMask checks that mask is a single-channel 8-bit Mat with the same
// size as src.
func ValidateMask(src, mask *Mat, operation string) error {
	if err := ValidateMatForOperation(src, operation); err != nil {
		return err
	}
	if err := ValidateMatForOperation(mask, operation); err != nil {
		return err
	}

	if mask.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("mask must be single-channel 8-bit for operation: %s", operation)
	}

	if mask.Rows() != src.Rows() || mask.Cols() != src.Cols() {
		return fmt.Errorf("mask size %dx%d does not match image size %dx%d for operation: %s",
			mask.Cols(), mask.Rows(), src.Cols(), src.Rows(), operation)
	}

	return nil
}

// ValidateColorImage checks for the 3-channel BGR layout OpenCV color
// conversions and inpainting expect.
func ValidateColorImage(src *Mat, operation string) error {
	if err := ValidateMatForOperation(src, operation); err != nil {
		return err
	}

	if src.Channels() != 3 {
		return fmt.Errorf("%s requires 3 channels, got %d", operation, src.Channels())
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > maxDimension || height > maxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}
