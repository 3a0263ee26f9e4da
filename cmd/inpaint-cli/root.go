package main

import (
	"context"
	"fmt"

	"mask-mender/internal/config"
	"mask-mender/internal/inpaint"
	"mask-mender/internal/logger"
	"mask-mender/internal/masking"
	"mask-mender/internal/models"
	"mask-mender/internal/opencv/memory"
	"mask-mender/internal/opencv/safe"
	"mask-mender/internal/services"

	"github.com/spf13/cobra"
)

// env carries the loaded configuration and services for one invocation.
type env struct {
	cfg      config.Config
	log      logger.Logger
	tracker  *memory.Tracker
	images   *services.ImageService
	masks    *services.MaskService
	inpaints *services.InpaintService
}

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	e := &env{}

	root := &cobra.Command{
		Use:           "inpaint-cli",
		Short:         "Fill masked regions of an image with OpenCV inpainting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if e.tracker != nil {
				e.tracker.Shutdown()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(newYellowCmd(e), newMaskCmd(e))
	return root
}

func (e *env) setup(opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	config.ApplyEnv(&cfg)
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.cfg = cfg
	e.log = logger.New(cfg.Log.Format, logger.ParseLevel(cfg.Log.Level))
	e.tracker = memory.NewTracker(e.log)
	e.rebuild()
	return nil
}

// rebuild recreates the services from the current configuration.
func (e *env) rebuild() {
	e.images = services.NewImageService(e.tracker, e.log, e.cfg.Save.JPEGQuality)
	e.masks = services.NewMaskService(e.cfg.Mask, e.tracker, e.log)
	e.inpaints = services.NewInpaintService(e.masks, e.cfg.Inpaint.Radius, e.tracker, e.log)
}

type fillOptions struct {
	src         string
	dst         string
	algorithm   string
	radius      float32
	requireMask bool
}

func (o *fillOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.src, "src", "", "source image")
	cmd.Flags().StringVar(&o.dst, "dst", "", "destination image; .png is appended when there is no extension")
	cmd.Flags().StringVar(&o.algorithm, "algorithm", "", "inpainting algorithm (TELEA or NS)")
	cmd.Flags().Float32Var(&o.radius, "radius", 0, "inpainting neighbourhood radius")
	cmd.Flags().BoolVar(&o.requireMask, "require-mask", false, "fail when the mask is empty")
	_ = cmd.MarkFlagRequired("src")
	_ = cmd.MarkFlagRequired("dst")
}

// apply folds flag overrides into the configuration and returns the
// algorithm to use.
func (o *fillOptions) apply(e *env) (inpaint.Algorithm, error) {
	if o.algorithm != "" {
		e.cfg.Inpaint.Algorithm = o.algorithm
	}
	if o.radius != 0 {
		e.cfg.Inpaint.Radius = o.radius
	}
	if err := e.cfg.Validate(); err != nil {
		return 0, err
	}
	e.rebuild()
	return inpaint.ParseAlgorithm(e.cfg.Inpaint.Algorithm)
}

// run loads src, builds its mask with acquire, fills it and writes the
// result. It returns the path written.
func (o *fillOptions) run(ctx context.Context, e *env, acquire func(*models.ImageData) (*safe.Mat, error)) (string, error) {
	algorithm, err := o.apply(e)
	if err != nil {
		return "", err
	}

	original, err := e.images.LoadFile(ctx, o.src)
	if err != nil {
		return "", err
	}

	mask, err := acquire(original)
	if err != nil {
		original.Close()
		return "", err
	}

	ws := models.NewWorkspace()
	defer ws.Shutdown()
	ws.Load(original, mask)

	coverage, err := masking.Measure(mask)
	if err != nil {
		return "", err
	}
	if coverage.Empty() && o.requireMask {
		return "", fmt.Errorf("%s: %w", o.src, masking.ErrEmptyMask)
	}

	result, err := e.inpaints.Run(ctx, ws, algorithm)
	if err != nil {
		return "", err
	}

	path, err := e.images.SaveFile(ctx, o.dst, result)
	if err != nil {
		return "", err
	}

	e.log.Info("CLI", "result written", map[string]interface{}{
		"src":           o.src,
		"dst":           path,
		"algorithm":     algorithm.String(),
		"masked_pixels": coverage.Pixels,
	})
	return path, nil
}
