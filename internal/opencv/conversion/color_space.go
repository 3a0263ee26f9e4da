package conversion

import (
	"mask-mender/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertBGRToHSV converts BGR image to HSV color space
func ConvertBGRToHSV(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateColorImage(src, "BGR to HSV conversion"); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3)
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	if err := dst.Update(func(dstMat *gocv.Mat) {
		gocv.CvtColor(srcMat, dstMat, gocv.ColorBGRToHSV)
	}); err != nil {
		dst.Close()
		return nil, err
	}

	return dst, nil
}

// ConvertBGRToGray converts a BGR image to a single-channel gray image
func ConvertBGRToGray(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateColorImage(src, "BGR to gray conversion"); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	if err := dst.Update(func(dstMat *gocv.Mat) {
		gocv.CvtColor(srcMat, dstMat, gocv.ColorBGRToGray)
	}); err != nil {
		dst.Close()
		return nil, err
	}

	return dst, nil
}
