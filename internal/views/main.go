package views

import (
	"image"

	"mask-mender/internal/config"
	"mask-mender/internal/inpaint"
	"mask-mender/internal/masking"
	"mask-mender/internal/models"
	"mask-mender/internal/opencv/memory"
	"mask-mender/internal/services"
	"mask-mender/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainView is the single window of either application: the drawing
// surface, a hint label, the action buttons and, for the manual variant,
// the algorithm picker.
type MainView struct {
	window      fyne.Window
	variant     models.Variant
	defaultName string

	mainContainer   *fyne.Container
	canvas          *components.MaskCanvas
	hintLabel       *widget.Label
	statusBar       *components.StatusBar
	uploadButton    *widget.Button
	clearButton     *widget.Button
	inpaintButton   *widget.Button
	saveButton      *widget.Button
	algorithmSelect *widget.Select

	uploadHandler    func(fyne.URIReadCloser)
	strokeHandler    func(image.Point, masking.StrokeMode)
	clearHandler     func()
	inpaintHandler   func()
	saveHandler      func(fyne.URIWriteCloser)
	algorithmHandler func(string)
}

func NewMainView(window fyne.Window, variant models.Variant, cfg config.Config) *MainView {
	view := &MainView{
		window:      window,
		variant:     variant,
		defaultName: cfg.Save.DefaultName,
	}

	view.initializeComponents(cfg)
	view.buildLayout()
	window.SetTitle(variant.Title)
	return view
}

func (mv *MainView) initializeComponents(cfg config.Config) {
	mv.canvas = components.NewMaskCanvas(cfg.Display.Width, cfg.Display.Height)
	mv.canvas.OnStroke = func(p image.Point, mode masking.StrokeMode) {
		if mv.strokeHandler != nil {
			mv.strokeHandler(p, mode)
		}
	}

	mv.hintLabel = widget.NewLabel(mv.variant.Hint)
	mv.hintLabel.Alignment = fyne.TextAlignCenter
	mv.statusBar = components.NewStatusBar()

	mv.uploadButton = widget.NewButton("Upload Image", mv.showOpenDialog)
	mv.clearButton = widget.NewButton("Clear Mask", func() {
		if mv.clearHandler != nil {
			mv.clearHandler()
		}
	})
	mv.inpaintButton = widget.NewButton("Inpaint Image", func() {
		if mv.inpaintHandler != nil {
			mv.inpaintHandler()
		}
	})
	mv.saveButton = widget.NewButton("Save Result", mv.showSaveDialog)

	mv.algorithmSelect = widget.NewSelect(inpaint.Names(), func(name string) {
		if mv.algorithmHandler != nil {
			mv.algorithmHandler(name)
		}
	})
	if alg, err := inpaint.ParseAlgorithm(cfg.Inpaint.Algorithm); err == nil {
		mv.algorithmSelect.Selected = alg.String()
	}

	mv.clearButton.Disable()
	mv.inpaintButton.Disable()
	mv.saveButton.Disable()
}

func (mv *MainView) buildLayout() {
	content := container.NewVBox(
		container.NewCenter(mv.canvas),
		mv.hintLabel,
		mv.uploadButton,
	)
	if mv.variant.AllowClear {
		content.Add(mv.clearButton)
	}
	content.Add(mv.inpaintButton)
	if mv.variant.AllowSave {
		content.Add(mv.saveButton)
	}
	if mv.variant.AllowAlgorithmChoice {
		content.Add(container.NewCenter(mv.algorithmSelect))
	}

	mv.mainContainer = container.NewBorder(nil, mv.statusBar.GetContainer(), nil, nil, content)
	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) showOpenDialog() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.ShowError("File selection error", err)
			return
		}
		if mv.uploadHandler != nil {
			mv.uploadHandler(reader)
		} else if reader != nil {
			reader.Close()
		}
	}, mv.window)
	open.SetFilter(storage.NewExtensionFileFilter(services.OpenExtensions))
	open.Show()
}

func (mv *MainView) showSaveDialog() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mv.ShowError("File save error", err)
			return
		}
		if mv.saveHandler != nil {
			mv.saveHandler(writer)
		} else if writer != nil {
			writer.Close()
		}
	}, mv.window)
	save.SetFileName(mv.defaultName)
	save.Show()
}

func (mv *MainView) SetUploadHandler(handler func(fyne.URIReadCloser)) {
	mv.uploadHandler = handler
}

func (mv *MainView) SetStrokeHandler(handler func(image.Point, masking.StrokeMode)) {
	mv.strokeHandler = handler
}

func (mv *MainView) SetClearHandler(handler func()) {
	mv.clearHandler = handler
}

func (mv *MainView) SetInpaintHandler(handler func()) {
	mv.inpaintHandler = handler
}

func (mv *MainView) SetSaveHandler(handler func(fyne.URIWriteCloser)) {
	mv.saveHandler = handler
}

func (mv *MainView) SetAlgorithmHandler(handler func(string)) {
	mv.algorithmHandler = handler
}

// ShowImage updates the drawing surface
func (mv *MainView) ShowImage(display image.Image, imageSize image.Point) {
	fyne.Do(func() {
		mv.canvas.SetImage(display, imageSize)
		mv.statusBar.SetImageInfo(imageSize.X, imageSize.Y)
	})
}

// UpdateStatus replaces the hint label text
func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.hintLabel.SetText(status)
	})
}

func (mv *MainView) SetButtons(state models.ButtonState) {
	fyne.Do(func() {
		setEnabled(mv.uploadButton, state.Upload)
		setEnabled(mv.clearButton, state.Clear)
		setEnabled(mv.inpaintButton, state.Inpaint)
		setEnabled(mv.saveButton, state.Save)
	})
}

func (mv *MainView) SetHistory(history []models.InpaintRecord) {
	fyne.Do(func() {
		mv.statusBar.SetHistory(history)
	})
}

func (mv *MainView) SetMemoryInfo(stats memory.Stats) {
	fyne.Do(func() {
		mv.statusBar.SetMemoryInfo(stats)
	})
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(err, mv.window)
	})
}

// Show displays the view
func (mv *MainView) Show() {
	fyne.Do(func() {
		mv.window.Show()
	})
}

// Status returns the text of the hint label.
func (mv *MainView) Status() string {
	return mv.hintLabel.Text
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
