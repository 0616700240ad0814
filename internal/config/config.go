package config

import (
	"errors"
	"fmt"
	"os"

	"Ember3D/internal/animation"

	"github.com/pelletier/go-toml/v2"
)

// WindowConfig describes the application window the IBL pass restores its viewport to.
type WindowConfig struct {
	Width  int32  `toml:"width"`
	Height int32  `toml:"height"`
	Title  string `toml:"title"`
}

// IBLConfig holds source paths and capture resolutions for the IBL precomputation.
type IBLConfig struct {
	EnvironmentPath string  `toml:"environment_path"`
	IrradiancePath  string  `toml:"irradiance_path"`
	BRDFLutPath     string  `toml:"brdf_lut_path"`
	EnvironmentSize int32   `toml:"environment_size"`
	IrradianceSize  int32   `toml:"irradiance_size"`
	PrefilterSize   int32   `toml:"prefilter_size"`
	PrefilterLevels int     `toml:"prefilter_levels"`
	CaptureNear     float32 `toml:"capture_near"`
	CaptureFar      float32 `toml:"capture_far"`
}

// AnimationConfig selects the animated model, where it stands and the skinning limits.
type AnimationConfig struct {
	ModelPath string     `toml:"model_path"`
	Clip      int        `toml:"clip"`
	MaxBones  int        `toml:"max_bones"`
	Position  [3]float32 `toml:"position"`
	Rotation  [3]float32 `toml:"rotation"` // Euler degrees
	Scale     float32    `toml:"scale"`
}

// CameraConfig sets up the orbit camera of the viewer.
type CameraConfig struct {
	Fov        float32 `toml:"fov"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
	Distance   float32 `toml:"distance"`
	OrbitSpeed float32 `toml:"orbit_speed"`
}

// LogConfig mirrors logger.Options.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type Config struct {
	Window    WindowConfig    `toml:"window"`
	IBL       IBLConfig       `toml:"ibl"`
	Animation AnimationConfig `toml:"animation"`
	Camera    CameraConfig    `toml:"camera"`
	Log       LogConfig       `toml:"log"`
}

// Default returns the settings the engine ships with.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Ember3D",
		},
		IBL: IBLConfig{
			EnvironmentPath: "data/skyboxes/clouds.hdr",
			IrradiancePath:  "data/IBL/clouds/output_iem.hdr",
			BRDFLutPath:     "data/IBL/brdf_lut.png",
			EnvironmentSize: 512,
			IrradianceSize:  32,
			PrefilterSize:   128,
			PrefilterLevels: 5,
			CaptureNear:     0.1,
			CaptureFar:      10.0,
		},
		Animation: AnimationConfig{
			ModelPath: "data/models/spartan.glb",
			Clip:      0,
			MaxBones:  100,
			Scale:     1,
		},
		Camera: CameraConfig{
			Fov:        45,
			Near:       0.1,
			Far:        100,
			Distance:   4,
			OrbitSpeed: 10,
		},
		Log: LogConfig{
			Level:       "info",
			Development: true,
		},
	}
}

// Load reads a TOML file on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first setting that would break the IBL or skinning passes.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	case c.IBL.EnvironmentSize <= 0:
		return fmt.Errorf("ibl.environment_size must be positive, got %d", c.IBL.EnvironmentSize)
	case c.IBL.IrradianceSize <= 0:
		return fmt.Errorf("ibl.irradiance_size must be positive, got %d", c.IBL.IrradianceSize)
	case c.IBL.PrefilterSize <= 0:
		return fmt.Errorf("ibl.prefilter_size must be positive, got %d", c.IBL.PrefilterSize)
	case c.IBL.PrefilterLevels < 1:
		return fmt.Errorf("ibl.prefilter_levels must be at least 1, got %d", c.IBL.PrefilterLevels)
	case c.IBL.PrefilterSize>>(c.IBL.PrefilterLevels-1) < 1:
		return fmt.Errorf("ibl.prefilter_size %d is too small for %d mip levels", c.IBL.PrefilterSize, c.IBL.PrefilterLevels)
	case c.IBL.CaptureNear <= 0 || c.IBL.CaptureFar <= c.IBL.CaptureNear:
		return fmt.Errorf("ibl capture planes must satisfy 0 < near < far, got %v/%v", c.IBL.CaptureNear, c.IBL.CaptureFar)
	case c.Animation.MaxBones < 1 || c.Animation.MaxBones > animation.MaxBones:
		return fmt.Errorf("animation.max_bones must be in [1, %d], got %d", animation.MaxBones, c.Animation.MaxBones)
	case c.Animation.Clip < 0:
		return fmt.Errorf("animation.clip must not be negative, got %d", c.Animation.Clip)
	case c.Animation.Scale <= 0:
		return fmt.Errorf("animation.scale must be positive, got %v", c.Animation.Scale)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 180:
		return fmt.Errorf("camera.fov must be in (0, 180), got %v", c.Camera.Fov)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera planes must satisfy 0 < near < far, got %v/%v", c.Camera.Near, c.Camera.Far)
	case c.Camera.Distance <= 0:
		return fmt.Errorf("camera.distance must be positive, got %v", c.Camera.Distance)
	}
	return nil
}
