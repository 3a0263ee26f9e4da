package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	EnvConfigPath = "MASK_MENDER_CONFIG"
	EnvLogLevel   = "LOG_LEVEL"
	EnvDebug      = "DEBUG"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Display DisplayConfig `yaml:"display"`
	Mask    MaskConfig    `yaml:"mask"`
	Inpaint InpaintConfig `yaml:"inpaint"`
	Save    SaveConfig    `yaml:"save"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DisplayConfig is the fixed size of the drawing surface in device
// independent pixels.
type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type MaskConfig struct {
	BrushRadius int      `yaml:"brush_radius"`
	Dilate      int      `yaml:"dilate"`
	Yellow      HSVRange `yaml:"yellow"`
	// Overlay is the BGR color painted over masked pixels in the preview.
	Overlay [3]uint8 `yaml:"overlay"`
}

// HSVRange holds inclusive OpenCV HSV bounds (H in [0,180], S and V in [0,255]).
type HSVRange struct {
	Lower [3]float64 `yaml:"lower"`
	Upper [3]float64 `yaml:"upper"`
}

type InpaintConfig struct {
	Radius    float32 `yaml:"radius"`
	Algorithm string  `yaml:"algorithm"`
}

type SaveConfig struct {
	JPEGQuality int    `yaml:"jpeg_quality"`
	DefaultName string `yaml:"default_name"`
}

func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Display: DisplayConfig{
			Width:  600,
			Height: 400,
		},
		Mask: MaskConfig{
			BrushRadius: 10,
			Yellow: HSVRange{
				Lower: [3]float64{20, 100, 100},
				Upper: [3]float64{30, 255, 255},
			},
			Overlay: [3]uint8{0, 0, 255},
		},
		Inpaint: InpaintConfig{
			Radius:    3,
			Algorithm: "TELEA",
		},
		Save: SaveConfig{
			JPEGQuality: 95,
			DefaultName: "result.png",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged. The result is not validated; call Validate after
// applying any overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv lets LOG_LEVEL and DEBUG=1 override the configured log level.
func ApplyEnv(cfg *Config) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
		return
	}
	if os.Getenv(EnvDebug) == "1" {
		cfg.Log.Level = "debug"
	}
}

// FromEnv loads the file named by MASK_MENDER_CONFIG, applies environment
// overrides and validates.
func FromEnv() (Config, error) {
	cfg, err := Load(os.Getenv(EnvConfigPath))
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var problems []string

	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		problems = append(problems, fmt.Sprintf("display size %dx%d must be positive", c.Display.Width, c.Display.Height))
	}
	if c.Mask.BrushRadius < 1 {
		problems = append(problems, fmt.Sprintf("brush radius %d must be at least 1", c.Mask.BrushRadius))
	}
	if c.Mask.Dilate < 0 {
		problems = append(problems, fmt.Sprintf("mask dilation %d must not be negative", c.Mask.Dilate))
	}
	if err := c.Mask.Yellow.validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Inpaint.Radius <= 0 {
		problems = append(problems, fmt.Sprintf("inpaint radius %g must be positive", c.Inpaint.Radius))
	}
	switch strings.ToUpper(c.Inpaint.Algorithm) {
	case "TELEA", "NS":
	default:
		problems = append(problems, fmt.Sprintf("unknown inpaint algorithm %q", c.Inpaint.Algorithm))
	}
	if c.Save.JPEGQuality < 1 || c.Save.JPEGQuality > 100 {
		problems = append(problems, fmt.Sprintf("jpeg quality %d outside [1,100]", c.Save.JPEGQuality))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (r HSVRange) validate() error {
	maxima := [3]float64{180, 255, 255}
	names := [3]string{"hue", "saturation", "value"}
	for i := range r.Lower {
		if r.Lower[i] < 0 || r.Upper[i] > maxima[i] {
			return fmt.Errorf("yellow %s bounds [%g,%g] outside [0,%g]", names[i], r.Lower[i], r.Upper[i], maxima[i])
		}
		if r.Lower[i] > r.Upper[i] {
			return fmt.Errorf("yellow %s lower bound %g above upper bound %g", names[i], r.Lower[i], r.Upper[i])
		}
	}
	return nil
}
