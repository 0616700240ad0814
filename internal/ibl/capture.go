package ibl

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// CaptureProjection is the 90 degree square frustum that maps one cube face
// onto the whole viewport.
func CaptureProjection(near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(90), 1, near, far)
}

// CaptureViews returns the view for each face in GL cubemap order
// (+X, -X, +Y, -Y, +Z, -Z). The up vectors follow the cubemap convention:
// -Y for the side faces, +Z and -Z for the top and bottom.
func CaptureViews() [CubeFaces]mgl32.Mat4 {
	origin := mgl32.Vec3{0, 0, 0}
	return [CubeFaces]mgl32.Mat4{
		mgl32.LookAtV(origin, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}),
		mgl32.LookAtV(origin, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}),
		mgl32.LookAtV(origin, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}),
	}
}

// MipSize is the edge length of mip level mip for a base size, never below 1.
func MipSize(base int32, mip int) int32 {
	size := base >> uint(mip)
	if size < 1 {
		return 1
	}
	return size
}

// Roughness maps mip level mip of levels linearly onto [0, 1].
// A single-level chain is a mirror.
func Roughness(mip, levels int) float32 {
	if levels <= 1 {
		return 0
	}
	return float32(mip) / float32(levels-1)
}

// Capture owns the offscreen target and camera setup shared by every pass.
// Only one pass may use it at a time; each pass resizes it before drawing.
type Capture struct {
	backend    Backend
	target     Framebuffer
	cube       *UnitCubeMesh
	Projection mgl32.Mat4
	Views      [CubeFaces]mgl32.Mat4
}

// NewCapture allocates the capture target at size.
func NewCapture(backend Backend, cube *UnitCubeMesh, size int32, near, far float32) *Capture {
	return &Capture{
		backend:    backend,
		target:     backend.CreateCaptureTarget(size),
		cube:       cube,
		Projection: CaptureProjection(near, far),
		Views:      CaptureViews(),
	}
}

// begin binds the target at size and prepares program to sample source as a
// texture of the given kind on unit 0.
func (c *Capture) begin(program Program, size int32, sampler string, bind func(unit int32)) {
	c.backend.BindFramebuffer(c.target)
	c.backend.ResizeCaptureTarget(c.target, size)
	c.backend.Viewport(size, size)

	program.Use()
	program.SetInt(sampler, 0)
	program.SetMat4("projection", c.Projection)
	bind(0)
}

// renderFaces draws the cube once per face into mip level mip of dst.
// The target is validated once it has its first color attachment.
func (c *Capture) renderFaces(program Program, dst Texture, mip int32) error {
	for face := 0; face < CubeFaces; face++ {
		program.SetMat4("view", c.Views[face])
		c.backend.AttachCubeFace(c.target, dst, face, mip)
		if face == 0 {
			if err := c.backend.CheckFramebuffer(c.target); err != nil {
				return fmt.Errorf("%w: mip %d: %v", ErrFramebufferIncomplete, mip, err)
			}
		}
		c.backend.Clear()
		c.cube.Draw()
	}
	return nil
}

// Release deletes the capture target. Further calls are no-ops.
func (c *Capture) Release() {
	if c.target == 0 {
		return
	}
	c.backend.DeleteCaptureTarget(c.target)
	c.target = 0
}
