package ibl

// cubeVertices is a unit cube as 36 vertices of position, normal and uv.
var cubeVertices = []float32{
	// back face
	-1, -1, -1, 0, 0, -1, 0, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	1, -1, -1, 0, 0, -1, 1, 0,
	1, 1, -1, 0, 0, -1, 1, 1,
	-1, -1, -1, 0, 0, -1, 0, 0,
	-1, 1, -1, 0, 0, -1, 0, 1,
	// front face
	-1, -1, 1, 0, 0, 1, 0, 0,
	1, -1, 1, 0, 0, 1, 1, 0,
	1, 1, 1, 0, 0, 1, 1, 1,
	1, 1, 1, 0, 0, 1, 1, 1,
	-1, 1, 1, 0, 0, 1, 0, 1,
	-1, -1, 1, 0, 0, 1, 0, 0,
	// left face
	-1, 1, 1, -1, 0, 0, 1, 0,
	-1, 1, -1, -1, 0, 0, 1, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, -1, -1, 0, 0, 0, 1,
	-1, -1, 1, -1, 0, 0, 0, 0,
	-1, 1, 1, -1, 0, 0, 1, 0,
	// right face
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, -1, 1, 0, 0, 1, 1,
	1, -1, -1, 1, 0, 0, 0, 1,
	1, 1, 1, 1, 0, 0, 1, 0,
	1, -1, 1, 1, 0, 0, 0, 0,
	// bottom face
	-1, -1, -1, 0, -1, 0, 0, 1,
	1, -1, -1, 0, -1, 0, 1, 1,
	1, -1, 1, 0, -1, 0, 1, 0,
	1, -1, 1, 0, -1, 0, 1, 0,
	-1, -1, 1, 0, -1, 0, 0, 0,
	-1, -1, -1, 0, -1, 0, 0, 1,
	// top face
	-1, 1, -1, 0, 1, 0, 0, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	1, 1, -1, 0, 1, 0, 1, 1,
	1, 1, 1, 0, 1, 0, 1, 0,
	-1, 1, -1, 0, 1, 0, 0, 1,
	-1, 1, 1, 0, 1, 0, 0, 0,
}

// cubeLayout is position(3), normal(3), uv(2) at locations 0, 1 and 2.
var cubeLayout = []int32{3, 3, 2}

const (
	cubeFloatsPerVertex = 8
	cubeVertexCount     = 36
)

// UnitCubeMesh is the cube every capture pass draws.
type UnitCubeMesh struct {
	backend Backend
	mesh    Mesh
}

// NewUnitCubeMesh uploads the cube once.
func NewUnitCubeMesh(backend Backend) *UnitCubeMesh {
	return &UnitCubeMesh{
		backend: backend,
		mesh:    backend.CreateMesh(cubeVertices, cubeLayout),
	}
}

func (m *UnitCubeMesh) Draw() {
	m.backend.DrawTriangles(m.mesh, cubeVertexCount)
}

// Release frees the vertex buffer. Further calls are no-ops.
func (m *UnitCubeMesh) Release() {
	if m.mesh == 0 {
		return
	}
	m.backend.DeleteMesh(m.mesh)
	m.mesh = 0
}
