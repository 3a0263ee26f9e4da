package app

import (
	"fmt"
	"runtime"

	"mask-mender/internal/config"
	"mask-mender/internal/controllers"
	"mask-mender/internal/logger"
	"mask-mender/internal/models"
	"mask-mender/internal/opencv/memory"
	"mask-mender/internal/services"
	"mask-mender/internal/shutdown"
	"mask-mender/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppVersion = "1.0.0"
	appIDBase  = "com.maskmender."

	// Room below the drawing surface for the hint, buttons and status bar.
	controlsHeight = 260
)

// Application is one desktop window of either variant with its services
// wired together.
type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	logger     logger.Logger
	view       *views.MainView
	controller *controllers.Controller
	workspace  *models.Workspace
	tracker    *memory.Tracker
	shutdown   *shutdown.Manager
}

// NewApplication creates the Fyne app for variant and wires it.
func NewApplication(variant models.Variant, cfg config.Config, log logger.Logger) (*Application, error) {
	id := appIDBase + variant.Name
	app.SetMetadata(fyne.AppMetadata{
		ID:      id,
		Name:    variant.Title,
		Version: AppVersion,
	})
	return newApplication(app.NewWithID(id), variant, cfg, log)
}

func newApplication(fyneApp fyne.App, variant models.Variant, cfg config.Config, log logger.Logger) (*Application, error) {
	window := fyneApp.NewWindow(variant.Title)
	window.Resize(fyne.NewSize(float32(cfg.Display.Width), float32(cfg.Display.Height+controlsHeight)))
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"variant":    variant.Name,
		"version":    AppVersion,
		"display":    fmt.Sprintf("%dx%d", cfg.Display.Width, cfg.Display.Height),
		"go_version": runtime.Version(),
	})

	tracker := memory.NewTracker(log)
	workspace := models.NewWorkspace()

	imageService := services.NewImageService(tracker, log, cfg.Save.JPEGQuality)
	maskService := services.NewMaskService(cfg.Mask, tracker, log)
	inpaintService := services.NewInpaintService(maskService, cfg.Inpaint.Radius, tracker, log)

	controller, err := controllers.NewController(variant, cfg,
		imageService, maskService, inpaintService, workspace, tracker, log)
	if err != nil {
		return nil, err
	}

	view := views.NewMainView(window, variant, cfg)
	controller.SetView(view)

	manager := shutdown.NewManager(log, shutdown.DefaultTimeout)
	manager.Register("memory tracker", tracker)
	manager.Register("workspace", workspace)

	a := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     log,
		view:       view,
		controller: controller,
		workspace:  workspace,
		tracker:    tracker,
		shutdown:   manager,
	}

	window.SetCloseIntercept(func() {
		log.Info("Application", "shutdown requested", nil)
		a.shutdown.Shutdown()
		a.window.Close()
	})

	return a, nil
}

// Run shows the window and blocks until the app quits.
func (a *Application) Run() {
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.view.Show()
	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.shutdown.Shutdown()
}
