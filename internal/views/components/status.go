package components

import (
	"fmt"
	"time"

	"mask-mender/internal/models"
	"mask-mender/internal/opencv/memory"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar shows the loaded image, completed inpaint runs and OpenCV
// memory in use.
type StatusBar struct {
	container  *fyne.Container
	imageInfo  *widget.Label
	runInfo    *widget.Label
	memoryInfo *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{
		imageInfo:  widget.NewLabel("No image loaded"),
		runInfo:    widget.NewLabel("Runs: 0"),
		memoryInfo: widget.NewLabel("Mats: --"),
	}
	sb.container = container.NewHBox(
		sb.imageInfo,
		widget.NewSeparator(),
		sb.runInfo,
		widget.NewSeparator(),
		sb.memoryInfo,
	)
	return sb
}

// SetImageInfo updates the image information display
func (sb *StatusBar) SetImageInfo(width, height int) {
	if width == 0 || height == 0 {
		sb.imageInfo.SetText("No image loaded")
		return
	}
	sb.imageInfo.SetText(fmt.Sprintf("Image: %dx%d", width, height))
}

// SetHistory shows how many inpaint runs completed and how the last one went.
func (sb *StatusBar) SetHistory(history []models.InpaintRecord) {
	if len(history) == 0 {
		sb.runInfo.SetText("Runs: 0")
		return
	}
	last := history[len(history)-1]
	sb.runInfo.SetText(fmt.Sprintf("Runs: %d (last %s, %s)",
		len(history), last.Algorithm, last.Duration.Round(time.Millisecond)))
}

// SetMemoryInfo updates the memory usage display
func (sb *StatusBar) SetMemoryInfo(stats memory.Stats) {
	sb.memoryInfo.SetText(fmt.Sprintf("Mats: %d (%.1f MB)",
		stats.ActiveMats, float64(stats.LiveBytes())/(1024*1024)))
}

func (sb *StatusBar) ImageInfo() string {
	return sb.imageInfo.Text
}

func (sb *StatusBar) RunInfo() string {
	return sb.runInfo.Text
}

func (sb *StatusBar) MemoryInfo() string {
	return sb.memoryInfo.Text
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
