package views

import (
	"image"
	"testing"

	"mask-mender/internal/config"
	"mask-mender/internal/models"
	"mask-mender/internal/preview"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newView(t *testing.T, variant models.Variant) *MainView {
	t.Helper()
	a := test.NewTempApp(t)
	w := a.NewWindow("")
	t.Cleanup(w.Close)
	return NewMainView(w, variant, config.Default())
}

func TestMainViewInitialState(t *testing.T) {
	mv := newView(t, models.ManualVariant)

	assert.Equal(t, "Manual Inpaint - Draw Mask", mv.window.Title())
	assert.Equal(t, models.ManualVariant.Hint, mv.Status())
	assert.False(t, mv.uploadButton.Disabled())
	assert.True(t, mv.clearButton.Disabled())
	assert.True(t, mv.inpaintButton.Disabled())
	assert.True(t, mv.saveButton.Disabled())
	assert.Equal(t, "TELEA", mv.algorithmSelect.Selected)
}

func TestMainViewYellowLayout(t *testing.T) {
	mv := newView(t, models.YellowVariant)

	assert.Equal(t, "Inpaint Yellow-Masked Image", mv.window.Title())
	content, ok := mv.mainContainer.Objects[0].(*fyne.Container)
	require.True(t, ok)
	assert.Contains(t, content.Objects, fyne.CanvasObject(mv.inpaintButton))
	assert.NotContains(t, content.Objects, fyne.CanvasObject(mv.saveButton))
	assert.NotContains(t, content.Objects, fyne.CanvasObject(mv.clearButton))
}

func TestMainViewButtonsAndStatus(t *testing.T) {
	mv := newView(t, models.ManualVariant)

	mv.SetButtons(models.ButtonState{Upload: true, Clear: true, Inpaint: true})
	assert.False(t, mv.clearButton.Disabled())
	assert.False(t, mv.inpaintButton.Disabled())
	assert.True(t, mv.saveButton.Disabled())

	mv.UpdateStatus("Mask cleared.")
	assert.Equal(t, "Mask cleared.", mv.Status())
}

func TestMainViewForwardsEvents(t *testing.T) {
	mv := newView(t, models.ManualVariant)

	var inpainted, cleared int
	var algorithm string
	mv.SetInpaintHandler(func() { inpainted++ })
	mv.SetClearHandler(func() { cleared++ })
	mv.SetAlgorithmHandler(func(name string) { algorithm = name })
	mv.SetButtons(models.ButtonState{Upload: true, Clear: true, Inpaint: true})

	test.Tap(mv.inpaintButton)
	test.Tap(mv.clearButton)
	mv.algorithmSelect.SetSelected("NS")

	assert.Equal(t, 1, inpainted)
	assert.Equal(t, 1, cleared)
	assert.Equal(t, "NS", algorithm)
}

func TestMainViewShowImage(t *testing.T) {
	mv := newView(t, models.ManualVariant)
	img := preview.Placeholder(600, 400)

	mv.ShowImage(img, image.Pt(60, 40))

	assert.Same(t, img, mv.canvas.Image())
	assert.Equal(t, "Image: 60x40", mv.statusBar.ImageInfo())
}

func TestMainViewSetHistory(t *testing.T) {
	mv := newView(t, models.YellowVariant)

	mv.SetHistory([]models.InpaintRecord{models.NewInpaintRecord("TELEA", 3, 4, 0)})

	assert.Equal(t, "Runs: 1 (last TELEA, 0s)", mv.statusBar.RunInfo())
}
