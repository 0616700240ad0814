package renderer

import (
	"fmt"

	"Ember3D/internal/ibl"
	"Ember3D/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// GLBackend runs the IBL capture passes on the current OpenGL context.
type GLBackend struct {
	depthBuffers map[ibl.Framebuffer]uint32
	meshBuffers  map[ibl.Mesh]uint32
}

var (
	_ ibl.Backend = (*GLBackend)(nil)
	_ ibl.Program = (*Shader)(nil)
)

func NewGLBackend() *GLBackend {
	return &GLBackend{
		depthBuffers: make(map[ibl.Framebuffer]uint32),
		meshBuffers:  make(map[ibl.Mesh]uint32),
	}
}

func (b *GLBackend) CreateCubemap(size int32, mipmapped bool) ibl.Texture {
	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, textureID)
	for face := uint32(0); face < ibl.CubeFaces; face++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, 0, gl.RGB16F, size, size, 0, gl.RGB, gl.FLOAT, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	if mipmapped {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		// Allocate the chain now so lower levels can be attached before GenerateMipmap.
		gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
	} else {
		gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	logger.Log.Debug("Cubemap allocated",
		zap.Uint32("textureID", textureID),
		zap.Int32("size", size),
		zap.Bool("mipmapped", mipmapped))
	return ibl.Texture(textureID)
}

func (b *GLBackend) GenerateMipmap(tex ibl.Texture) {
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(tex))
	gl.GenerateMipmap(gl.TEXTURE_CUBE_MAP)
}

func (b *GLBackend) DeleteTexture(tex ibl.Texture) {
	textureID := uint32(tex)
	gl.DeleteTextures(1, &textureID)
}

func (b *GLBackend) CreateCaptureTarget(size int32) ibl.Framebuffer {
	var fbo, rbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.GenRenderbuffers(1, &rbo)

	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, size, size)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rbo)

	b.depthBuffers[ibl.Framebuffer(fbo)] = rbo
	return ibl.Framebuffer(fbo)
}

func (b *GLBackend) ResizeCaptureTarget(fb ibl.Framebuffer, size int32) {
	rbo, ok := b.depthBuffers[fb]
	if !ok {
		logger.Log.Warn("Resize of unknown capture target", zap.Uint32("framebuffer", uint32(fb)))
		return
	}
	gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, size, size)
}

func (b *GLBackend) AttachCubeFace(fb ibl.Framebuffer, tex ibl.Texture, face int, mip int32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), uint32(tex), mip)
}

func (b *GLBackend) CheckFramebuffer(fb ibl.Framebuffer) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("status 0x%x", status)
	}
	return nil
}

func (b *GLBackend) DeleteCaptureTarget(fb ibl.Framebuffer) {
	if rbo, ok := b.depthBuffers[fb]; ok {
		gl.DeleteRenderbuffers(1, &rbo)
		delete(b.depthBuffers, fb)
	}
	fbo := uint32(fb)
	gl.DeleteFramebuffers(1, &fbo)
}

func (b *GLBackend) BindFramebuffer(fb ibl.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

func (b *GLBackend) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

func (b *GLBackend) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (b *GLBackend) BindTexture2D(unit int32, tex ibl.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func (b *GLBackend) BindCubemap(unit int32, tex ibl.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(tex))
}

// CreateMesh uploads interleaved float vertices into a VAO with one
// attribute per layout entry.
func (b *GLBackend) CreateMesh(vertices []float32, layout []int32) ibl.Mesh {
	var stride int32
	for _, n := range layout {
		stride += n
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	offset := 0
	for location, n := range layout {
		gl.VertexAttribPointer(uint32(location), n, gl.FLOAT, false, stride*4, gl.PtrOffset(offset*4))
		gl.EnableVertexAttribArray(uint32(location))
		offset += int(n)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	b.meshBuffers[ibl.Mesh(vao)] = vbo
	return ibl.Mesh(vao)
}

func (b *GLBackend) DrawTriangles(mesh ibl.Mesh, vertexCount int32) {
	gl.BindVertexArray(uint32(mesh))
	gl.DrawArrays(gl.TRIANGLES, 0, vertexCount)
	gl.BindVertexArray(0)
}

func (b *GLBackend) DeleteMesh(mesh ibl.Mesh) {
	if vbo, ok := b.meshBuffers[mesh]; ok {
		gl.DeleteBuffers(1, &vbo)
		delete(b.meshBuffers, mesh)
	}
	vao := uint32(mesh)
	gl.DeleteVertexArrays(1, &vao)
}
