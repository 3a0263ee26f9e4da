package services

import (
	"fmt"
	"image"

	"mask-mender/internal/config"
	"mask-mender/internal/logger"
	"mask-mender/internal/masking"
	"mask-mender/internal/models"
	"mask-mender/internal/opencv/conversion"
	"mask-mender/internal/opencv/safe"
)

// MaskService builds and edits masks with the configured brush, color range
// and overlay.
type MaskService struct {
	cfg     config.MaskConfig
	tracker safe.MemoryTracker
	logger  logger.Logger
}

func NewMaskService(cfg config.MaskConfig, tracker safe.MemoryTracker, log logger.Logger) *MaskService {
	return &MaskService{
		cfg:     cfg,
		tracker: tracker,
		logger:  log,
	}
}

// Acquire produces the initial mask for a freshly loaded image.
func (ms *MaskService) Acquire(original *models.ImageData, source models.MaskSource) (*safe.Mat, error) {
	if original == nil || original.Mat == nil {
		return nil, models.ErrNoImage
	}

	switch source {
	case models.MaskYellow:
		mask, err := masking.DetectYellow(original.Mat, masking.HSVRange(ms.cfg.Yellow), ms.tracker)
		if err != nil {
			return nil, err
		}
		if coverage, err := masking.Measure(mask); err == nil {
			ms.logger.Info("MaskService", "yellow mask detected", map[string]interface{}{
				"pixels":   coverage.Pixels,
				"fraction": coverage.Fraction,
			})
		}
		return mask, nil
	case models.MaskBrush:
		return masking.NewEmpty(original.Height, original.Width, ms.tracker)
	default:
		return nil, fmt.Errorf("unknown mask source %d", source)
	}
}

// FromImage turns a mask picture into a mask for original: any non-black
// pixel marks the fill region. The picture must match the original's size.
func (ms *MaskService) FromImage(original, picture *models.ImageData) (*safe.Mat, error) {
	if original == nil || picture == nil || picture.Mat == nil {
		return nil, models.ErrNoImage
	}
	if picture.Width != original.Width || picture.Height != original.Height {
		return nil, fmt.Errorf("mask image is %dx%d, source is %dx%d",
			picture.Width, picture.Height, original.Width, original.Height)
	}

	gray, err := conversion.ConvertBGRToGray(picture.Mat)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	return masking.FromGray(gray, ms.tracker)
}

// Stroke paints or erases one brush dab.
func (ms *MaskService) Stroke(mask *safe.Mat, p image.Point, mode masking.StrokeMode) error {
	return masking.Paint(mask, p, ms.cfg.BrushRadius, mode)
}

func (ms *MaskService) Clear(mask *safe.Mat) error {
	return masking.Clear(mask)
}

// Preview renders original with the mask overlay color.
func (ms *MaskService) Preview(original *models.ImageData, mask *safe.Mat) (image.Image, error) {
	if original == nil {
		return nil, models.ErrNoImage
	}
	return masking.Overlay(original.Mat, mask, ms.cfg.Overlay)
}

// Prepare returns the mask handed to the inpainter: a dilated copy when
// dilation is configured, otherwise a plain copy. The caller closes it.
func (ms *MaskService) Prepare(mask *safe.Mat) (*safe.Mat, error) {
	prepared, err := mask.Clone()
	if err != nil {
		return nil, err
	}
	if err := masking.Dilate(prepared, ms.cfg.Dilate); err != nil {
		prepared.Close()
		return nil, err
	}
	return prepared, nil
}
