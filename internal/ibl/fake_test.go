package ibl

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

type attachment struct {
	fb   Framebuffer
	tex  Texture
	face int
	mip  int32
}

// fakeBackend records every call the passes make.
type fakeBackend struct {
	nextHandle uint32

	cubemaps     map[Texture]int32
	mipmapped    map[Texture]bool
	mipmapsBuilt []Texture
	deleted      []Texture

	targets        []Framebuffer
	resizes        []int32
	attachments    []attachment
	checks         int
	failCheckAt    int // 1-based; 0 never fails
	deletedTargets []Framebuffer

	bound     []Framebuffer
	viewports [][2]int32
	clears    int

	bound2D   map[int32]Texture
	boundCube map[int32]Texture

	meshes        []Mesh
	meshLayouts   [][]int32
	meshVertices  []int
	draws         int
	drawnVertices []int32
	deletedMeshes []Mesh
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		cubemaps:  make(map[Texture]int32),
		mipmapped: make(map[Texture]bool),
		bound2D:   make(map[int32]Texture),
		boundCube: make(map[int32]Texture),
	}
}

func (f *fakeBackend) handle() uint32 {
	f.nextHandle++
	return f.nextHandle
}

func (f *fakeBackend) CreateCubemap(size int32, mipmapped bool) Texture {
	tex := Texture(f.handle())
	f.cubemaps[tex] = size
	f.mipmapped[tex] = mipmapped
	return tex
}

func (f *fakeBackend) GenerateMipmap(tex Texture) { f.mipmapsBuilt = append(f.mipmapsBuilt, tex) }
func (f *fakeBackend) DeleteTexture(tex Texture)  { f.deleted = append(f.deleted, tex) }

func (f *fakeBackend) CreateCaptureTarget(size int32) Framebuffer {
	fb := Framebuffer(f.handle())
	f.targets = append(f.targets, fb)
	f.resizes = append(f.resizes, size)
	return fb
}

func (f *fakeBackend) ResizeCaptureTarget(_ Framebuffer, size int32) {
	f.resizes = append(f.resizes, size)
}

func (f *fakeBackend) AttachCubeFace(fb Framebuffer, tex Texture, face int, mip int32) {
	f.attachments = append(f.attachments, attachment{fb: fb, tex: tex, face: face, mip: mip})
}

func (f *fakeBackend) CheckFramebuffer(Framebuffer) error {
	f.checks++
	if f.failCheckAt > 0 && f.checks == f.failCheckAt {
		return errors.New("GL_FRAMEBUFFER_INCOMPLETE_ATTACHMENT")
	}
	return nil
}

func (f *fakeBackend) DeleteCaptureTarget(fb Framebuffer) {
	f.deletedTargets = append(f.deletedTargets, fb)
}

func (f *fakeBackend) BindFramebuffer(fb Framebuffer) { f.bound = append(f.bound, fb) }

func (f *fakeBackend) Viewport(w, h int32) { f.viewports = append(f.viewports, [2]int32{w, h}) }

func (f *fakeBackend) Clear() { f.clears++ }

func (f *fakeBackend) BindTexture2D(unit int32, tex Texture) { f.bound2D[unit] = tex }
func (f *fakeBackend) BindCubemap(unit int32, tex Texture)   { f.boundCube[unit] = tex }

func (f *fakeBackend) CreateMesh(vertices []float32, layout []int32) Mesh {
	m := Mesh(f.handle())
	f.meshes = append(f.meshes, m)
	f.meshLayouts = append(f.meshLayouts, layout)
	f.meshVertices = append(f.meshVertices, len(vertices))
	return m
}

func (f *fakeBackend) DrawTriangles(_ Mesh, count int32) {
	f.draws++
	f.drawnVertices = append(f.drawnVertices, count)
}

func (f *fakeBackend) DeleteMesh(m Mesh) { f.deletedMeshes = append(f.deletedMeshes, m) }

func (f *fakeBackend) attachmentsFor(tex Texture) []attachment {
	var out []attachment
	for _, a := range f.attachments {
		if a.tex == tex {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeBackend) lastViewport() [2]int32 { return f.viewports[len(f.viewports)-1] }
func (f *fakeBackend) lastBound() Framebuffer { return f.bound[len(f.bound)-1] }

// fakeProgram records uniforms in call order.
type fakeProgram struct {
	uses     int
	ints     map[string]int32
	floats   []float32
	mats     map[string][]mgl32.Mat4
	floatKey []string
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{
		ints: make(map[string]int32),
		mats: make(map[string][]mgl32.Mat4),
	}
}

func (p *fakeProgram) Use()                            { p.uses++ }
func (p *fakeProgram) SetInt(name string, value int32) { p.ints[name] = value }

func (p *fakeProgram) SetFloat(name string, value float32) {
	p.floatKey = append(p.floatKey, name)
	p.floats = append(p.floats, value)
}

func (p *fakeProgram) SetMat4(name string, value mgl32.Mat4) {
	p.mats[name] = append(p.mats[name], value)
}

// fakeLoader hands out fixed handles and fails the paths listed in fail.
type fakeLoader struct {
	next     uint32
	fail     map[string]bool
	calls    []string
	released []Texture
}

func (l *fakeLoader) load(path string) (Texture, error) {
	l.calls = append(l.calls, path)
	if l.fail[path] {
		return 0, errors.New("no such file")
	}
	l.next++
	return Texture(1000 + l.next), nil
}

func (l *fakeLoader) LoadHDR(path string) (Texture, error)   { return l.load(path) }
func (l *fakeLoader) LoadImage(path string) (Texture, error) { return l.load(path) }
func (l *fakeLoader) ReleaseTexture(tex Texture)             { l.released = append(l.released, tex) }
