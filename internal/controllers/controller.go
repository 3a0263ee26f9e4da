package controllers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"mask-mender/internal/config"
	"mask-mender/internal/inpaint"
	"mask-mender/internal/logger"
	"mask-mender/internal/masking"
	"mask-mender/internal/models"
	"mask-mender/internal/opencv/memory"
	"mask-mender/internal/preview"
	"mask-mender/internal/services"

	"fyne.io/fyne/v2"
)

const (
	StatusMaskCleared     = "Mask cleared."
	StatusInpaintComplete = "Inpainting completed!"
	statusInpaintDoneFmt  = "Inpainting done using %s."
	statusSavedFmt        = "Result saved to: %s"

	operationTimeout = 30 * time.Second
)

// View is the window surface the controller drives. Handlers registered
// through the Set*Handler methods are invoked on the UI goroutine.
type View interface {
	SetUploadHandler(func(fyne.URIReadCloser))
	SetStrokeHandler(func(image.Point, masking.StrokeMode))
	SetClearHandler(func())
	SetInpaintHandler(func())
	SetSaveHandler(func(fyne.URIWriteCloser))
	SetAlgorithmHandler(func(string))

	// ShowImage displays a bitmap already fitted to the surface. imageSize is
	// the size of the underlying image, used to map pointer positions; a zero
	// size disables drawing.
	ShowImage(display image.Image, imageSize image.Point)
	UpdateStatus(status string)
	SetButtons(state models.ButtonState)
	SetHistory(history []models.InpaintRecord)
	SetMemoryInfo(stats memory.Stats)
	ShowError(title string, err error)
}

// Controller runs every user action of one window synchronously: it updates
// the workspace and then redraws the view.
type Controller struct {
	variant   models.Variant
	display   config.DisplayConfig
	algorithm inpaint.Algorithm

	images    *services.ImageService
	masks     *services.MaskService
	inpainter *services.InpaintService
	workspace *models.Workspace
	tracker   *memory.Tracker
	logger    logger.Logger

	view View
}

func NewController(
	variant models.Variant,
	cfg config.Config,
	images *services.ImageService,
	masks *services.MaskService,
	inpainter *services.InpaintService,
	workspace *models.Workspace,
	tracker *memory.Tracker,
	log logger.Logger,
) (*Controller, error) {
	algorithm, err := inpaint.ParseAlgorithm(cfg.Inpaint.Algorithm)
	if err != nil {
		return nil, err
	}
	// Without an algorithm choice the window always uses Telea.
	if !variant.AllowAlgorithmChoice {
		algorithm = inpaint.Telea
	}

	return &Controller{
		variant:   variant,
		display:   cfg.Display,
		algorithm: algorithm,
		images:    images,
		masks:     masks,
		inpainter: inpainter,
		workspace: workspace,
		tracker:   tracker,
		logger:    log,
	}, nil
}

// SetView connects the view's events to the controller and draws the
// initial state.
func (c *Controller) SetView(view View) {
	c.view = view

	view.SetUploadHandler(c.Upload)
	view.SetInpaintHandler(c.Inpaint)
	if c.variant.MaskSource == models.MaskBrush {
		view.SetStrokeHandler(c.Stroke)
	}
	if c.variant.AllowClear {
		view.SetClearHandler(c.ClearMask)
	}
	if c.variant.AllowSave {
		view.SetSaveHandler(c.Save)
	}
	if c.variant.AllowAlgorithmChoice {
		view.SetAlgorithmHandler(c.SetAlgorithm)
	}

	view.ShowImage(preview.Placeholder(c.display.Width, c.display.Height), image.Point{})
	view.UpdateStatus(c.variant.Hint)
	c.refreshButtons()
}

// Algorithm returns the algorithm the next Inpaint will use.
func (c *Controller) Algorithm() inpaint.Algorithm {
	return c.algorithm
}

// Upload loads the picked file, acquires its mask and shows it. A nil
// reader means the dialog was cancelled.
func (c *Controller) Upload(reader fyne.URIReadCloser) {
	if reader == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	data, err := c.images.LoadURI(ctx, reader)
	if err != nil {
		c.handleError("Image load failed", err)
		return
	}

	mask, err := c.masks.Acquire(data, c.variant.MaskSource)
	if err != nil {
		data.Close()
		c.handleError("Mask detection failed", err)
		return
	}

	c.workspace.Load(data, mask)

	c.logger.Info("Controller", "image ready", map[string]interface{}{
		"variant": c.variant.Name,
		"source":  data.Source,
	})

	c.show(data.Image)
	c.view.UpdateStatus(c.variant.LoadedStatus)
	c.refreshButtons()
}

// Stroke paints or erases one brush stamp at an image-space point and
// redraws the overlay preview. Ignored until an image is loaded.
func (c *Controller) Stroke(p image.Point, mode masking.StrokeMode) {
	mask := c.workspace.Mask()
	if mask == nil {
		return
	}

	if err := c.masks.Stroke(mask, p, mode); err != nil {
		c.handleError("Mask update failed", err)
		return
	}
	c.showOverlay()
}

// ClearMask erases the whole mask.
func (c *Controller) ClearMask() {
	mask := c.workspace.Mask()
	if mask == nil {
		return
	}

	if err := c.masks.Clear(mask); err != nil {
		c.handleError("Mask clear failed", err)
		return
	}
	c.show(c.workspace.Original().Image)
	c.view.UpdateStatus(StatusMaskCleared)
}

// Inpaint fills the masked region of the original and shows the result.
// No-op before an upload.
func (c *Controller) Inpaint() {
	if !c.workspace.HasImage() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	result, err := c.inpainter.Run(ctx, c.workspace, c.algorithm)
	if err != nil {
		c.handleError("Inpainting failed", err)
		return
	}

	c.show(result.Image)
	if c.variant.AllowAlgorithmChoice {
		c.view.UpdateStatus(fmt.Sprintf(statusInpaintDoneFmt, c.algorithm))
	} else {
		c.view.UpdateStatus(StatusInpaintComplete)
	}
	c.view.SetHistory(c.workspace.History())
	c.refreshButtons()
}

// Save writes the latest result to the picked destination. A nil writer
// means the dialog was cancelled; without a result nothing is written.
func (c *Controller) Save(writer fyne.URIWriteCloser) {
	if writer == nil {
		return
	}

	result := c.workspace.Result()
	if result == nil {
		writer.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	path, err := c.images.SaveURI(ctx, writer, result)
	if err != nil {
		c.handleError("Image save failed", err)
		return
	}

	c.logger.Info("Controller", "result saved", map[string]interface{}{
		"path": path,
	})
	c.view.UpdateStatus(fmt.Sprintf(statusSavedFmt, path))
	c.refreshMemory()
}

// SetAlgorithm selects the fill algorithm by name. Unknown names keep the
// current selection.
func (c *Controller) SetAlgorithm(name string) {
	algorithm, err := inpaint.ParseAlgorithm(name)
	if err != nil {
		c.logger.Warning("Controller", "ignoring unknown algorithm", map[string]interface{}{
			"name": name,
		})
		return
	}
	c.algorithm = algorithm
}

func (c *Controller) showOverlay() {
	img, err := c.masks.Preview(c.workspace.Original(), c.workspace.Mask())
	if err != nil {
		c.handleError("Preview failed", err)
		return
	}
	c.show(img)
}

func (c *Controller) show(img image.Image) {
	size := image.Point{}
	if original := c.workspace.Original(); original != nil {
		size = image.Pt(original.Width, original.Height)
	}
	c.view.ShowImage(preview.Fit(img, c.display.Width, c.display.Height), size)
	c.refreshMemory()
}

func (c *Controller) refreshButtons() {
	c.view.SetButtons(c.workspace.Buttons(c.variant))
}

func (c *Controller) refreshMemory() {
	if c.tracker != nil {
		c.view.SetMemoryInfo(c.tracker.Stats())
	}
}

func (c *Controller) handleError(title string, err error) {
	c.logger.Error("Controller", err, map[string]interface{}{
		"operation": title,
	})
	if c.view == nil {
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("operation timed out: %w", err)
	}
	c.view.ShowError(title, err)
	c.view.UpdateStatus(title)
}
