package ibl

import (
	"fmt"

	"Ember3D/internal/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Options sizes the generated maps.
type Options struct {
	EnvironmentSize int32
	IrradianceSize  int32
	PrefilterSize   int32
	PrefilterLevels int
	Near            float32
	Far             float32
}

func DefaultOptions() Options {
	return Options{
		EnvironmentSize: 512,
		IrradianceSize:  32,
		PrefilterSize:   128,
		PrefilterLevels: 5,
		Near:            0.1,
		Far:             10,
	}
}

// Shaders are the three capture programs.
type Shaders struct {
	Equirectangular Program
	Irradiance      Program
	Prefilter       Program
}

// Sources are the image paths Init loads. Irradiance names a pre-integrated
// HDR image; when empty or unloadable the irradiance map is convolved from
// the environment instead.
type Sources struct {
	Environment string
	Irradiance  string
	BRDFLut     string
}

// Maps are the results consumed by PBR shading.
type Maps struct {
	Environment Texture
	Irradiance  Texture
	Prefilter   Texture
	BRDFLut     Texture
}

// Generator runs the IBL passes once and owns every map it produces until
// Release.
type Generator struct {
	backend Backend
	loader  Loader
	shaders Shaders
	opts    Options

	cube    *UnitCubeMesh
	capture *Capture
	maps    Maps

	loadErrs    error
	initialized bool
}

func NewGenerator(backend Backend, loader Loader, shaders Shaders, opts Options) *Generator {
	return &Generator{
		backend: backend,
		loader:  loader,
		shaders: shaders,
		opts:    opts,
	}
}

// Init loads the sources and builds the environment, irradiance and
// prefiltered maps in that order. Source load failures are logged and
// collected in LoadErrors; the passes still run with a blank input. A capture
// failure stops Init and is returned. The default framebuffer and a
// windowWidth x windowHeight viewport are restored on every return path.
func (g *Generator) Init(src Sources, windowWidth, windowHeight int32) (err error) {
	if g.initialized {
		return ErrAlreadyInitialized
	}
	g.initialized = true

	defer func() {
		g.backend.BindFramebuffer(0)
		g.backend.Viewport(windowWidth, windowHeight)
		if err != nil {
			logger.Log.Error("IBL precomputation failed", zap.Error(err))
		}
	}()

	envSource := g.load("environment", src.Environment, g.loader.LoadHDR)
	var irradianceSource Texture
	if src.Irradiance != "" {
		irradianceSource = g.load("irradiance", src.Irradiance, g.loader.LoadHDR)
	}
	g.maps.BRDFLut = g.load("brdf lut", src.BRDFLut, g.loader.LoadImage)
	defer func() {
		if envSource != 0 {
			g.loader.ReleaseTexture(envSource)
		}
		if irradianceSource != 0 {
			g.loader.ReleaseTexture(irradianceSource)
		}
	}()

	g.cube = NewUnitCubeMesh(g.backend)
	g.capture = NewCapture(g.backend, g.cube, g.opts.EnvironmentSize, g.opts.Near, g.opts.Far)

	g.maps.Environment, err = EquirectangularToCubemap{
		Program: g.shaders.Equirectangular,
		Size:    g.opts.EnvironmentSize,
		Mipmaps: true,
	}.Convert(g.capture, envSource)
	if err != nil {
		return fmt.Errorf("environment cubemap: %w", err)
	}

	if irradianceSource != 0 {
		g.maps.Irradiance, err = EquirectangularToCubemap{
			Program: g.shaders.Equirectangular,
			Size:    g.opts.IrradianceSize,
		}.Convert(g.capture, irradianceSource)
	} else {
		g.maps.Irradiance, err = IrradianceConvolution{
			Program: g.shaders.Irradiance,
			Size:    g.opts.IrradianceSize,
		}.Convolve(g.capture, g.maps.Environment)
	}
	if err != nil {
		return fmt.Errorf("irradiance map: %w", err)
	}

	g.maps.Prefilter, err = SpecularPrefilter{
		Program:   g.shaders.Prefilter,
		Size:      g.opts.PrefilterSize,
		MipLevels: g.opts.PrefilterLevels,
	}.Prefilter(g.capture, g.maps.Environment)
	if err != nil {
		return fmt.Errorf("prefilter map: %w", err)
	}

	logger.Log.Info("IBL maps ready",
		zap.Int32("environment", g.opts.EnvironmentSize),
		zap.Int32("irradiance", g.opts.IrradianceSize),
		zap.Int32("prefilter", g.opts.PrefilterSize),
		zap.Int("prefilterLevels", g.opts.PrefilterLevels),
		zap.Int("loadFailures", len(multierr.Errors(g.loadErrs))))
	return nil
}

func (g *Generator) load(kind, path string, fn func(string) (Texture, error)) Texture {
	tex, err := fn(path)
	if err != nil {
		err = fmt.Errorf("%w: %s %q: %v", ErrTextureLoad, kind, path, err)
		g.loadErrs = multierr.Append(g.loadErrs, err)
		logger.Log.Error("Failed to load IBL source, continuing with a blank texture",
			zap.String("kind", kind), zap.String("path", path), zap.Error(err))
		return 0
	}
	return tex
}

// Maps returns the generated maps. Handles of passes that did not run are zero.
func (g *Generator) Maps() Maps { return g.maps }

func (g *Generator) BRDFLut() Texture { return g.maps.BRDFLut }

// Cube returns the shared unit cube, for drawing the environment as a skybox.
// It is nil before Init.
func (g *Generator) Cube() *UnitCubeMesh { return g.cube }

// LoadErrors returns the combined source load failures of the last Init.
// Use multierr.Errors to split them.
func (g *Generator) LoadErrors() error { return g.loadErrs }

// Release deletes the maps, the capture target and the cube. Safe to call
// more than once.
func (g *Generator) Release() {
	for _, tex := range []*Texture{&g.maps.Environment, &g.maps.Irradiance, &g.maps.Prefilter} {
		if *tex != 0 {
			g.backend.DeleteTexture(*tex)
			*tex = 0
		}
	}
	if g.maps.BRDFLut != 0 {
		g.loader.ReleaseTexture(g.maps.BRDFLut)
		g.maps.BRDFLut = 0
	}
	if g.capture != nil {
		g.capture.Release()
	}
	if g.cube != nil {
		g.cube.Release()
	}
}
