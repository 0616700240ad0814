package ibl

import (
	"Ember3D/internal/logger"

	"go.uber.org/zap"
)

// EquirectangularToCubemap projects a lat-long HDR image onto a cubemap.
type EquirectangularToCubemap struct {
	Program Program
	Size    int32
	// Mipmaps generates the full mip chain after the six faces are written.
	Mipmaps bool
}

// Convert renders source into a new cubemap. The returned texture belongs to
// the caller even when the error is non-nil.
func (p EquirectangularToCubemap) Convert(c *Capture, source Texture) (Texture, error) {
	dst := c.backend.CreateCubemap(p.Size, p.Mipmaps)
	c.begin(p.Program, p.Size, "equirectangularMap", func(unit int32) {
		c.backend.BindTexture2D(unit, source)
	})
	if err := c.renderFaces(p.Program, dst, 0); err != nil {
		return dst, err
	}
	if p.Mipmaps {
		c.backend.GenerateMipmap(dst)
	}
	logger.Log.Debug("Equirectangular map converted", zap.Int32("size", p.Size), zap.Bool("mipmaps", p.Mipmaps))
	return dst, nil
}

// IrradianceConvolution integrates an environment cubemap over the hemisphere
// around each output direction. The integral itself lives in Program.
type IrradianceConvolution struct {
	Program Program
	Size    int32
}

// Convolve renders the irradiance of env into a new cubemap. The returned
// texture belongs to the caller even when the error is non-nil.
func (p IrradianceConvolution) Convolve(c *Capture, env Texture) (Texture, error) {
	dst := c.backend.CreateCubemap(p.Size, false)
	c.begin(p.Program, p.Size, "environmentMap", func(unit int32) {
		c.backend.BindCubemap(unit, env)
	})
	if err := c.renderFaces(p.Program, dst, 0); err != nil {
		return dst, err
	}
	logger.Log.Debug("Irradiance map convolved", zap.Int32("size", p.Size))
	return dst, nil
}

// SpecularPrefilter builds a mip chain where level m holds env convolved at
// roughness m/(MipLevels-1).
type SpecularPrefilter struct {
	Program   Program
	Size      int32
	MipLevels int
}

// Prefilter renders every level of a new mipmapped cubemap. env must already
// have its mip chain. The returned texture belongs to the caller even when
// the error is non-nil.
func (p SpecularPrefilter) Prefilter(c *Capture, env Texture) (Texture, error) {
	levels := p.MipLevels
	if levels < 1 {
		levels = 1
	}

	dst := c.backend.CreateCubemap(p.Size, true)
	c.begin(p.Program, p.Size, "environmentMap", func(unit int32) {
		c.backend.BindCubemap(unit, env)
	})

	for mip := 0; mip < levels; mip++ {
		size := MipSize(p.Size, mip)
		c.backend.ResizeCaptureTarget(c.target, size)
		c.backend.Viewport(size, size)

		roughness := Roughness(mip, levels)
		p.Program.SetFloat("roughness", roughness)
		if err := c.renderFaces(p.Program, dst, int32(mip)); err != nil {
			return dst, err
		}
		logger.Log.Debug("Prefilter level rendered",
			zap.Int("mip", mip), zap.Int32("size", size), zap.Float32("roughness", roughness))
	}
	return dst, nil
}
