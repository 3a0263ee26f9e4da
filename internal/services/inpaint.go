package services

import (
	"context"
	"fmt"
	"time"

	"mask-mender/internal/inpaint"
	"mask-mender/internal/logger"
	"mask-mender/internal/masking"
	"mask-mender/internal/models"
	"mask-mender/internal/opencv/conversion"
	"mask-mender/internal/opencv/safe"
)

// InpaintService runs the fill over a workspace and records the result.
type InpaintService struct {
	masks   *MaskService
	radius  float32
	tracker safe.MemoryTracker
	logger  logger.Logger
}

func NewInpaintService(masks *MaskService, radius float32, tracker safe.MemoryTracker, log logger.Logger) *InpaintService {
	return &InpaintService{
		masks:   masks,
		radius:  radius,
		tracker: tracker,
		logger:  log,
	}
}

// Run inpaints the workspace original with its current mask using
// algorithm and stores the result in the workspace. An empty mask is
// allowed; the result is then a copy of the original.
func (s *InpaintService) Run(ctx context.Context, ws *models.Workspace, algorithm inpaint.Algorithm) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	original := ws.Original()
	mask := ws.Mask()
	if original == nil || mask == nil {
		return nil, models.ErrNoImage
	}

	prepared, err := s.masks.Prepare(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare mask: %w", err)
	}
	defer prepared.Close()

	coverage, err := masking.Measure(prepared)
	if err != nil {
		return nil, err
	}
	if coverage.Empty() {
		s.logger.Warning("InpaintService", "mask is empty, result equals original", nil)
	}

	startTime := time.Now()
	resultMat, err := inpaint.Inpaint(original.Mat, prepared, inpaint.Options{
		Radius:    s.radius,
		Algorithm: algorithm,
	}, s.tracker)
	if err != nil {
		s.logger.Error("InpaintService", err, map[string]interface{}{
			"algorithm": algorithm.String(),
		})
		return nil, fmt.Errorf("inpaint failed: %w", err)
	}
	duration := time.Since(startTime)

	img, err := conversion.MatToImage(resultMat)
	if err != nil {
		resultMat.Close()
		return nil, fmt.Errorf("failed to convert result: %w", err)
	}

	result := &models.ImageData{
		Image:    img,
		Mat:      resultMat,
		Width:    resultMat.Cols(),
		Height:   resultMat.Rows(),
		Channels: resultMat.Channels(),
		Format:   original.Format,
		Source:   original.Source,
		LoadTime: time.Now(),
	}

	record := models.NewInpaintRecord(algorithm.String(), s.radius, coverage.Pixels, duration)
	if err := ws.SetResult(result, record); err != nil {
		result.Close()
		return nil, err
	}

	s.logger.Info("InpaintService", "inpainting completed", map[string]interface{}{
		"id":            record.ID,
		"algorithm":     record.Algorithm,
		"radius":        record.Radius,
		"masked_pixels": coverage.Pixels,
		"masked_share":  coverage.Fraction,
		"duration":      duration.String(),
	})

	return result, nil
}
