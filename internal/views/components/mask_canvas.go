package components

import (
	"image"
	"image/color"

	"mask-mender/internal/masking"
	"mask-mender/internal/preview"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var (
	_ desktop.Mouseable = (*MaskCanvas)(nil)
	_ desktop.Hoverable = (*MaskCanvas)(nil)
	_ fyne.Draggable    = (*MaskCanvas)(nil)
)

// MaskCanvas is the fixed-size drawing surface. It stretches the displayed
// bitmap over its whole area and reports brush strokes in image pixels:
// the primary button draws, the secondary button erases.
type MaskCanvas struct {
	widget.BaseWidget

	OnStroke func(p image.Point, mode masking.StrokeMode)

	surface    fyne.Size
	background *canvas.Rectangle
	display    *canvas.Image
	imageSize  image.Point

	pressed bool
	mode    masking.StrokeMode
}

func NewMaskCanvas(width, height int) *MaskCanvas {
	mc := &MaskCanvas{
		surface:    fyne.NewSize(float32(width), float32(height)),
		background: canvas.NewRectangle(color.Black),
		display:    canvas.NewImageFromImage(preview.Placeholder(width, height)),
	}
	mc.display.FillMode = canvas.ImageFillStretch
	mc.display.ScaleMode = canvas.ImageScaleSmooth
	mc.display.SetMinSize(mc.surface)
	mc.background.SetMinSize(mc.surface)

	mc.ExtendBaseWidget(mc)
	return mc
}

func (mc *MaskCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(mc.background, mc.display))
}

func (mc *MaskCanvas) MinSize() fyne.Size {
	return mc.surface
}

// SetImage replaces the displayed bitmap. imageSize is the size of the
// image the strokes refer to; the zero size disables drawing.
func (mc *MaskCanvas) SetImage(img image.Image, imageSize image.Point) {
	mc.display.Image = img
	mc.imageSize = imageSize
	mc.display.Refresh()
}

// Image returns the bitmap currently displayed.
func (mc *MaskCanvas) Image() image.Image {
	return mc.display.Image
}

func (mc *MaskCanvas) MouseDown(ev *desktop.MouseEvent) {
	switch ev.Button {
	case desktop.MouseButtonPrimary:
		mc.mode = masking.Draw
	case desktop.MouseButtonSecondary:
		mc.mode = masking.Erase
	default:
		return
	}
	mc.pressed = true
	mc.stroke(ev.Position)
}

func (mc *MaskCanvas) MouseUp(*desktop.MouseEvent) {
	mc.pressed = false
}

func (mc *MaskCanvas) MouseIn(*desktop.MouseEvent) {}

func (mc *MaskCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if mc.pressed && ev.Button&mc.strokeButton() != 0 {
		mc.stroke(ev.Position)
	}
}

// MouseOut ends the stroke; a release outside the canvas is never delivered.
func (mc *MaskCanvas) MouseOut() {
	mc.pressed = false
}

func (mc *MaskCanvas) Dragged(ev *fyne.DragEvent) {
	if mc.pressed {
		mc.stroke(ev.Position)
	}
}

func (mc *MaskCanvas) DragEnd() {
	mc.pressed = false
}

func (mc *MaskCanvas) strokeButton() desktop.MouseButton {
	if mc.mode == masking.Erase {
		return desktop.MouseButtonSecondary
	}
	return desktop.MouseButtonPrimary
}

func (mc *MaskCanvas) stroke(pos fyne.Position) {
	if mc.OnStroke == nil {
		return
	}
	size := mc.Size()
	p, ok := preview.CanvasToImage(pos.X, pos.Y, size.Width, size.Height, mc.imageSize.X, mc.imageSize.Y)
	if !ok {
		return
	}
	mc.OnStroke(p, mc.mode)
}
