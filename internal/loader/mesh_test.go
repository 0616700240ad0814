package loader

import (
	"testing"

	"Ember3D/internal/animation"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSkinnedMeshesRemapsJoints(t *testing.T) {
	doc := twoJointDocument(t)

	positions := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	joints := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, [][4]uint16{{0, 0, 0, 0}, {1, 0, 0, 0}, {0, 1, 0, 0}})
	weights := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {0.5, 0.5, 0, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name: "body",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{
				gltf.POSITION:  positions,
				gltf.JOINTS_0:  joints,
				gltf.WEIGHTS_0: weights,
			},
		}},
	}}
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "mesh", Mesh: gltf.Index(0), Skin: gltf.Index(0)})

	// Pre-register an unrelated bone so skin ids are offset from joint indices.
	registry := animation.NewBoneRegistry()
	registry.Register("prop", mgl32.Ident4())

	meshes, err := LoadSkinnedMeshes(doc, registry)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "body/0", m.Name)
	assert.Len(t, m.Positions, 3)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Positions[1])
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)

	assert.Equal(t, [MaxBoneInfluence]int32{1, -1, -1, -1}, m.BoneIDs[0])
	assert.Equal(t, [MaxBoneInfluence]int32{2, -1, -1, -1}, m.BoneIDs[1])
	assert.Equal(t, [MaxBoneInfluence]int32{1, 2, -1, -1}, m.BoneIDs[2])
	assert.Equal(t, [MaxBoneInfluence]float32{0.5, 0.5, 0, 0}, m.Weights[2])
}

func TestLoadSkinnedMeshesSkipsStaticNodes(t *testing.T) {
	doc := twoJointDocument(t)
	positions := modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, [][3]float32{{0, 0, 0}})
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
		Attributes: map[string]int{gltf.POSITION: positions},
	}}}}
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "static", Mesh: gltf.Index(0)})

	meshes, err := LoadSkinnedMeshes(doc, animation.NewBoneRegistry())
	require.NoError(t, err)
	assert.Empty(t, meshes)
}
