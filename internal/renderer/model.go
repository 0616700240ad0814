package renderer

import (
	"Ember3D/internal/loader"
	"Ember3D/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Vertex attribute locations of the skinning shader.
const (
	attribPosition = 0
	attribNormal   = 1
	attribBoneIDs  = 5
	attribWeights  = 6
)

// floatsPerSkinnedVertex covers position, normal and weights.
const floatsPerSkinnedVertex = 3 + 3 + loader.MaxBoneInfluence

type Material struct {
	Albedo    mgl32.Vec3
	Metallic  float32 // 0.0 = dielectric, 1.0 = metallic
	Roughness float32 // 0.0 = mirror, 1.0 = completely rough
	AO        float32
}

func DefaultMaterial() Material {
	return Material{Albedo: mgl32.Vec3{0.8, 0.8, 0.8}, Metallic: 0.1, Roughness: 0.5, AO: 1}
}

// SkinnedPrimitive is one uploaded loader.SkinnedMesh.
type SkinnedPrimitive struct {
	Name       string
	VAO        uint32
	VBO        uint32 // position, normal, weights
	BoneVBO    uint32 // bone ids
	EBO        uint32
	IndexCount int32
}

// SkinnedModel is a set of primitives sharing one transform and material.
type SkinnedModel struct {
	ModelMatrix mgl32.Mat4
	Position    mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Quat
	Material    Material
	Primitives  []SkinnedPrimitive
}

func NewSkinnedModel() *SkinnedModel {
	m := &SkinnedModel{
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.QuatIdent(),
		Material: DefaultMaterial(),
	}
	m.updateModelMatrix()
	return m
}

func (m *SkinnedModel) SetPosition(x, y, z float32) {
	m.Position = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

func (m *SkinnedModel) SetScale(x, y, z float32) {
	m.Scale = mgl32.Vec3{x, y, z}
	m.updateModelMatrix()
}

// Rotate applies Euler angles in degrees on top of the current rotation.
func (m *SkinnedModel) Rotate(angleX, angleY, angleZ float32) {
	q := mgl32.AnglesToQuat(mgl32.DegToRad(angleX), mgl32.DegToRad(angleY), mgl32.DegToRad(angleZ), mgl32.XYZ)
	m.Rotation = m.Rotation.Mul(q).Normalize()
	m.updateModelMatrix()
}

func (m *SkinnedModel) updateModelMatrix() {
	// T * R * S: scale first, then rotate, then translate.
	scaleMatrix := mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])
	rotationMatrix := m.Rotation.Mat4()
	translationMatrix := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	m.ModelMatrix = translationMatrix.Mul4(rotationMatrix).Mul4(scaleMatrix)
}

// interleaveSkinned packs position, normal and weights per vertex. Missing
// normals are written as zero.
func interleaveSkinned(mesh loader.SkinnedMesh) []float32 {
	data := make([]float32, 0, len(mesh.Positions)*floatsPerSkinnedVertex)
	for i, p := range mesh.Positions {
		data = append(data, p.X(), p.Y(), p.Z())
		if i < len(mesh.Normals) {
			n := mesh.Normals[i]
			data = append(data, n.X(), n.Y(), n.Z())
		} else {
			data = append(data, 0, 0, 0)
		}
		var w [loader.MaxBoneInfluence]float32
		if i < len(mesh.Weights) {
			w = mesh.Weights[i]
		}
		data = append(data, w[:]...)
	}
	return data
}

// flattenBoneIDs lays bone ids out per vertex; vertices without ids get -1.
func flattenBoneIDs(mesh loader.SkinnedMesh) []int32 {
	ids := make([]int32, 0, len(mesh.Positions)*loader.MaxBoneInfluence)
	for i := range mesh.Positions {
		if i < len(mesh.BoneIDs) {
			ids = append(ids, mesh.BoneIDs[i][:]...)
			continue
		}
		for j := 0; j < loader.MaxBoneInfluence; j++ {
			ids = append(ids, -1)
		}
	}
	return ids
}

// UploadSkinnedModel creates GPU buffers for every mesh. A GL context must be
// current.
func UploadSkinnedModel(meshes []loader.SkinnedMesh) *SkinnedModel {
	model := NewSkinnedModel()
	for _, mesh := range meshes {
		model.Primitives = append(model.Primitives, uploadSkinnedPrimitive(mesh))
	}
	logger.Log.Info("Skinned model uploaded", zap.Int("primitives", len(model.Primitives)))
	return model
}

func uploadSkinnedPrimitive(mesh loader.SkinnedMesh) SkinnedPrimitive {
	prim := SkinnedPrimitive{Name: mesh.Name, IndexCount: int32(len(mesh.Indices))}
	vertices := interleaveSkinned(mesh)
	boneIDs := flattenBoneIDs(mesh)

	gl.GenVertexArrays(1, &prim.VAO)
	gl.BindVertexArray(prim.VAO)

	gl.GenBuffers(1, &prim.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, prim.VBO)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	}
	stride := int32(floatsPerSkinnedVertex * 4)
	gl.VertexAttribPointer(attribPosition, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointer(attribNormal, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointer(attribWeights, loader.MaxBoneInfluence, gl.FLOAT, false, stride, gl.PtrOffset(6*4))
	gl.EnableVertexAttribArray(attribWeights)

	gl.GenBuffers(1, &prim.BoneVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, prim.BoneVBO)
	if len(boneIDs) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(boneIDs)*4, gl.Ptr(boneIDs), gl.STATIC_DRAW)
	}
	gl.VertexAttribIPointer(attribBoneIDs, loader.MaxBoneInfluence, gl.INT, loader.MaxBoneInfluence*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(attribBoneIDs)

	gl.GenBuffers(1, &prim.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, prim.EBO)
	if len(mesh.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return prim
}

// Draw issues one indexed draw per primitive with the bound program.
func (m *SkinnedModel) Draw(shader *Shader) {
	shader.SetMat4("model", m.ModelMatrix)
	shader.SetVec3("albedo", m.Material.Albedo)
	shader.SetFloat("metallic", m.Material.Metallic)
	shader.SetFloat("roughness", m.Material.Roughness)
	shader.SetFloat("ao", m.Material.AO)

	for _, prim := range m.Primitives {
		if prim.IndexCount == 0 {
			continue
		}
		gl.BindVertexArray(prim.VAO)
		gl.DrawElements(gl.TRIANGLES, prim.IndexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// UploadBoneMatrices writes the player's final bone matrices to the
// finalBonesMatrices array of shader, which must be in use.
func UploadBoneMatrices(shader *Shader, matrices []mgl32.Mat4) {
	shader.uniforms.SetMat4Array("finalBonesMatrices", matrices)
}

func (m *SkinnedModel) Delete() {
	for i := range m.Primitives {
		prim := &m.Primitives[i]
		gl.DeleteVertexArrays(1, &prim.VAO)
		gl.DeleteBuffers(1, &prim.VBO)
		gl.DeleteBuffers(1, &prim.BoneVBO)
		gl.DeleteBuffers(1, &prim.EBO)
	}
	m.Primitives = nil
}
