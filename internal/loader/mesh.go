package loader

import (
	"fmt"

	"Ember3D/internal/animation"
	"Ember3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// MaxBoneInfluence is the number of joints that may weight a single vertex.
const MaxBoneInfluence = 4

// SkinnedMesh is one skinned primitive ready for GPU upload. BoneIDs hold
// registry indices, not skin-local joint indices.
type SkinnedMesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	BoneIDs   [][MaxBoneInfluence]int32
	Weights   [][MaxBoneInfluence]float32
	Indices   []uint32
}

// LoadSkinnedMeshes reads every skinned primitive in the document. Joints are
// registered in registry first, so the returned bone ids match the ones a
// clip built against the same registry writes to.
func LoadSkinnedMeshes(doc *gltf.Document, registry *animation.BoneRegistry) ([]SkinnedMesh, error) {
	if err := RegisterSkins(doc, registry); err != nil {
		return nil, err
	}

	var meshes []SkinnedMesh
	for n, node := range doc.Nodes {
		if node.Mesh == nil || node.Skin == nil {
			continue
		}
		skin := doc.Skins[*node.Skin]
		jointIDs := make([]int32, len(skin.Joints))
		for j, joint := range skin.Joints {
			info, _ := registry.Lookup(NodeName(doc, joint))
			jointIDs[j] = int32(info.ID)
		}

		mesh := doc.Meshes[*node.Mesh]
		for p, prim := range mesh.Primitives {
			sm, err := readSkinnedPrimitive(doc, prim, jointIDs)
			if err != nil {
				return nil, fmt.Errorf("node %s primitive %d: %w", NodeName(doc, n), p, err)
			}
			sm.Name = fmt.Sprintf("%s/%d", mesh.Name, p)
			meshes = append(meshes, sm)
		}
	}

	logger.Log.Info("Skinned meshes loaded",
		zap.Int("meshes", len(meshes)),
		zap.Int("bones", registry.Len()))
	return meshes, nil
}

func readSkinnedPrimitive(doc *gltf.Document, prim *gltf.Primitive, jointIDs []int32) (SkinnedMesh, error) {
	var sm SkinnedMesh

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return sm, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return sm, fmt.Errorf("positions: %w", err)
	}
	sm.Positions = make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		sm.Positions[i] = mgl32.Vec3(p)
	}

	sm.Normals = make([]mgl32.Vec3, len(positions))
	if normalIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normalIdx], nil)
		if err != nil {
			return sm, fmt.Errorf("normals: %w", err)
		}
		for i := 0; i < len(normals) && i < len(sm.Normals); i++ {
			sm.Normals[i] = mgl32.Vec3(normals[i])
		}
	}

	sm.BoneIDs = make([][MaxBoneInfluence]int32, len(positions))
	sm.Weights = make([][MaxBoneInfluence]float32, len(positions))
	for i := range sm.BoneIDs {
		sm.BoneIDs[i] = [MaxBoneInfluence]int32{-1, -1, -1, -1}
	}

	jointsIdx, hasJoints := prim.Attributes[gltf.JOINTS_0]
	weightsIdx, hasWeights := prim.Attributes[gltf.WEIGHTS_0]
	if hasJoints && hasWeights {
		joints, err := modeler.ReadJoints(doc, doc.Accessors[jointsIdx], nil)
		if err != nil {
			return sm, fmt.Errorf("joints: %w", err)
		}
		weights, err := modeler.ReadWeights(doc, doc.Accessors[weightsIdx], nil)
		if err != nil {
			return sm, fmt.Errorf("weights: %w", err)
		}
		for v := 0; v < len(sm.BoneIDs) && v < len(joints) && v < len(weights); v++ {
			for k := 0; k < MaxBoneInfluence; k++ {
				if weights[v][k] == 0 {
					continue
				}
				joint := int(joints[v][k])
				if joint >= len(jointIDs) {
					return sm, fmt.Errorf("vertex %d references joint %d of %d", v, joint, len(jointIDs))
				}
				sm.BoneIDs[v][k] = jointIDs[joint]
				sm.Weights[v][k] = weights[v][k]
			}
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return sm, fmt.Errorf("indices: %w", err)
		}
		sm.Indices = indices
	} else {
		sm.Indices = make([]uint32, len(positions))
		for i := range sm.Indices {
			sm.Indices[i] = uint32(i)
		}
	}
	return sm, nil
}
