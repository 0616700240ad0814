package ibl

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureProjection(t *testing.T) {
	want := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 10)
	assert.Equal(t, want, CaptureProjection(0.1, 10))
}

func TestCaptureViewsLookDownEachAxis(t *testing.T) {
	faces := []struct {
		dir mgl32.Vec3
		up  mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
	}

	views := CaptureViews()
	for i, f := range faces {
		forward := views[i].Mul4x1(f.dir.Vec4(0)).Vec3()
		assert.True(t, forward.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5), "face %d forward %v", i, forward)

		up := views[i].Mul4x1(f.up.Vec4(0)).Vec3()
		assert.True(t, up.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5), "face %d up %v", i, up)
	}
}

func TestMipSize(t *testing.T) {
	want := []int32{128, 64, 32, 16, 8}
	for mip, size := range want {
		assert.Equal(t, size, MipSize(128, mip))
	}
	assert.Equal(t, int32(1), MipSize(4, 5))
}

func TestRoughnessMapping(t *testing.T) {
	want := []float32{0, 0.25, 0.5, 0.75, 1}
	for mip, r := range want {
		assert.Equal(t, r, Roughness(mip, 5), "mip %d", mip)
	}
	assert.Equal(t, float32(0), Roughness(0, 1))
	assert.Equal(t, float32(0), Roughness(0, 0))
}

func TestUnitCubeMesh(t *testing.T) {
	backend := newFakeBackend()
	cube := NewUnitCubeMesh(backend)

	require.Len(t, backend.meshes, 1)
	assert.Equal(t, []int32{3, 3, 2}, backend.meshLayouts[0])
	assert.Equal(t, cubeVertexCount*cubeFloatsPerVertex, backend.meshVertices[0])

	cube.Draw()
	assert.Equal(t, []int32{36}, backend.drawnVertices)

	cube.Release()
	cube.Release()
	assert.Equal(t, []Mesh{backend.meshes[0]}, backend.deletedMeshes)
}

func TestCubeVerticesAreUnitCube(t *testing.T) {
	require.Len(t, cubeVertices, cubeVertexCount*cubeFloatsPerVertex)
	for v := 0; v < cubeVertexCount; v++ {
		vert := cubeVertices[v*cubeFloatsPerVertex : (v+1)*cubeFloatsPerVertex]
		for _, c := range vert[:3] {
			assert.Contains(t, []float32{-1, 1}, c, "vertex %d", v)
		}
		normal := mgl32.Vec3{vert[3], vert[4], vert[5]}
		assert.InDelta(t, 1.0, normal.Len(), 1e-6, "vertex %d", v)
	}
}

func newTestCapture(backend *fakeBackend) *Capture {
	return NewCapture(backend, NewUnitCubeMesh(backend), 512, 0.1, 10)
}

func TestEquirectangularConvertsSixFaces(t *testing.T) {
	backend := newFakeBackend()
	program := newFakeProgram()
	c := newTestCapture(backend)

	env, err := EquirectangularToCubemap{Program: program, Size: 512, Mipmaps: true}.Convert(c, 77)
	require.NoError(t, err)

	faces := backend.attachmentsFor(env)
	require.Len(t, faces, CubeFaces)
	for i, a := range faces {
		assert.Equal(t, i, a.face)
		assert.Equal(t, int32(0), a.mip)
	}
	assert.Equal(t, Texture(77), backend.bound2D[0])
	assert.Equal(t, int32(0), program.ints["equirectangularMap"])
	assert.Equal(t, []mgl32.Mat4{c.Projection}, program.mats["projection"])
	assert.Equal(t, c.Views[:], program.mats["view"])
	assert.Equal(t, []Texture{env}, backend.mipmapsBuilt)
	assert.True(t, backend.mipmapped[env])
	assert.Equal(t, int32(512), backend.cubemaps[env])
	assert.Equal(t, CubeFaces, backend.draws)
	assert.Equal(t, CubeFaces, backend.clears)
}

func TestIrradianceConvolvesSixFaces(t *testing.T) {
	backend := newFakeBackend()
	program := newFakeProgram()
	c := newTestCapture(backend)

	irr, err := IrradianceConvolution{Program: program, Size: 32}.Convolve(c, 9)
	require.NoError(t, err)

	assert.Len(t, backend.attachmentsFor(irr), CubeFaces)
	assert.Equal(t, Texture(9), backend.boundCube[0])
	assert.Equal(t, int32(0), program.ints["environmentMap"])
	assert.Equal(t, [][2]int32{{32, 32}}, backend.viewports)
	assert.Empty(t, backend.mipmapsBuilt)
	assert.False(t, backend.mipmapped[irr])
}

func TestPrefilterRendersEveryMip(t *testing.T) {
	backend := newFakeBackend()
	program := newFakeProgram()
	c := newTestCapture(backend)

	pre, err := SpecularPrefilter{Program: program, Size: 128, MipLevels: 5}.Prefilter(c, 9)
	require.NoError(t, err)

	faces := backend.attachmentsFor(pre)
	require.Len(t, faces, 5*CubeFaces)
	perMip := make(map[int32]int)
	for _, a := range faces {
		perMip[a.mip]++
	}
	for mip := int32(0); mip < 5; mip++ {
		assert.Equal(t, CubeFaces, perMip[mip], "mip %d", mip)
	}

	assert.Equal(t, []float32{0, 0.25, 0.5, 0.75, 1}, program.floats)
	assert.Equal(t, [][2]int32{{128, 128}, {128, 128}, {64, 64}, {32, 32}, {16, 16}, {8, 8}}, backend.viewports)
	assert.Equal(t, []int32{512, 128, 128, 64, 32, 16, 8}, backend.resizes)
	assert.True(t, backend.mipmapped[pre])
}

func TestPrefilterSingleLevelIsMirror(t *testing.T) {
	backend := newFakeBackend()
	program := newFakeProgram()
	c := newTestCapture(backend)

	pre, err := SpecularPrefilter{Program: program, Size: 64, MipLevels: 1}.Prefilter(c, 9)
	require.NoError(t, err)

	assert.Len(t, backend.attachmentsFor(pre), CubeFaces)
	assert.Equal(t, []float32{0}, program.floats)
}

func TestCaptureStopsOnIncompleteTarget(t *testing.T) {
	backend := newFakeBackend()
	backend.failCheckAt = 1
	c := newTestCapture(backend)

	env, err := EquirectangularToCubemap{Program: newFakeProgram(), Size: 512, Mipmaps: true}.Convert(c, 1)
	assert.ErrorIs(t, err, ErrFramebufferIncomplete)
	assert.NotZero(t, env)
	assert.Len(t, backend.attachmentsFor(env), 1)
	assert.Zero(t, backend.draws)
	assert.Empty(t, backend.mipmapsBuilt)
}

func TestCaptureRelease(t *testing.T) {
	backend := newFakeBackend()
	c := newTestCapture(backend)

	c.Release()
	c.Release()
	assert.Equal(t, backend.targets, backend.deletedTargets)
}
