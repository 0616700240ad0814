package renderer

import (
	"Ember3D/internal/ibl"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Skybox draws an environment cubemap behind the scene using the IBL unit
// cube. It owns neither the cube nor the cubemap.
type Skybox struct {
	Cube      *ibl.UnitCubeMesh
	TextureID ibl.Texture
	Shader    *Shader
}

func NewSkybox(cube *ibl.UnitCubeMesh, environment ibl.Texture, shader *Shader) *Skybox {
	return &Skybox{Cube: cube, TextureID: environment, Shader: shader}
}

// Render draws the skybox at the far plane. The shader strips translation
// from view, so the camera's full view matrix can be passed.
func (s *Skybox) Render(view, projection mgl32.Mat4) {
	if s.TextureID == 0 || s.Cube == nil {
		return
	}

	s.Shader.Use()
	s.Shader.SetMat4("view", view)
	s.Shader.SetMat4("projection", projection)
	s.Shader.SetInt("environmentMap", 0)

	gl.DepthFunc(gl.LEQUAL)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(s.TextureID))

	s.Cube.Draw()

	// Restore OpenGL state
	gl.DepthFunc(gl.LESS)
}
