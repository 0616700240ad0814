// Package ibl precomputes the image-based lighting maps used by PBR shading:
// an environment cubemap converted from an equirectangular HDR image, a
// diffuse irradiance cubemap and a roughness-indexed prefiltered specular
// mip chain. All passes share one offscreen capture target and one unit cube.
//
// The package issues no graphics calls itself. Every GPU operation goes
// through Backend and Program, which the renderer implements on OpenGL.
package ibl

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// CubeFaces is the number of faces rendered per cubemap level.
const CubeFaces = 6

var (
	ErrTextureLoad           = errors.New("ibl source texture could not be loaded")
	ErrFramebufferIncomplete = errors.New("capture framebuffer is incomplete")
	ErrAlreadyInitialized    = errors.New("ibl generator already initialized")
)

// GPU resource handles. Zero is never a valid resource.
type (
	Texture     uint32
	Framebuffer uint32
	Mesh        uint32
)

// Backend is the set of graphics operations the capture passes need.
type Backend interface {
	// CreateCubemap allocates an RGB16F cubemap of size x size per face.
	// A mipmapped cubemap gets storage for its full mip chain.
	CreateCubemap(size int32, mipmapped bool) Texture
	GenerateMipmap(tex Texture)
	DeleteTexture(tex Texture)

	// CreateCaptureTarget allocates a framebuffer with a depth attachment.
	CreateCaptureTarget(size int32) Framebuffer
	ResizeCaptureTarget(fb Framebuffer, size int32)
	AttachCubeFace(fb Framebuffer, tex Texture, face int, mip int32)
	CheckFramebuffer(fb Framebuffer) error
	DeleteCaptureTarget(fb Framebuffer)

	// BindFramebuffer with 0 selects the default framebuffer.
	BindFramebuffer(fb Framebuffer)
	Viewport(width, height int32)
	Clear()

	BindTexture2D(unit int32, tex Texture)
	BindCubemap(unit int32, tex Texture)

	// CreateMesh uploads interleaved float vertices. layout lists the
	// component count of each attribute in location order.
	CreateMesh(vertices []float32, layout []int32) Mesh
	DrawTriangles(mesh Mesh, vertexCount int32)
	DeleteMesh(mesh Mesh)
}

// Program is a compiled shader program with named uniforms.
type Program interface {
	Use()
	SetInt(name string, value int32)
	SetFloat(name string, value float32)
	SetMat4(name string, value mgl32.Mat4)
}

// Loader loads 2D source images onto the GPU. Textures it returns are
// given back through ReleaseTexture, never deleted on the Backend.
type Loader interface {
	LoadHDR(path string) (Texture, error)
	LoadImage(path string) (Texture, error)
	ReleaseTexture(tex Texture)
}
