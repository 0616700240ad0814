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

// twoJointDocument builds root -> child where child rises from y=0 to y=2 over
// one second, skinned with an inverse bind that moves child down by one.
func twoJointDocument(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{
		{Name: "root", Children: []int{1}},
		{Name: "child", Translation: [3]float64{0, 1, 0}},
	}
	doc.Scenes[0].Nodes = []int{0}

	input := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1})
	output := modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{{0, 0, 0}, {0, 2, 0}})
	doc.Animations = []*gltf.Animation{{
		Name:     "rise",
		Samplers: []*gltf.AnimationSampler{{Input: input, Output: output, Interpolation: gltf.InterpolationLinear}},
		Channels: []*gltf.AnimationChannel{{
			Sampler: 0,
			Target:  gltf.AnimationChannelTarget{Node: gltf.Index(1), Path: gltf.TRSTranslation},
		}},
	}}

	inverseBinds := modeler.WriteAccessor(doc, gltf.TargetNone, [][4][4]float32{
		{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
		{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, -1, 0, 1}},
	})
	doc.Skins = []*gltf.Skin{{
		Name:                "body",
		Joints:              []int{0, 1},
		InverseBindMatrices: gltf.Index(inverseBinds),
	}}
	return doc
}

func TestAnimationFromDocument(t *testing.T) {
	doc := twoJointDocument(t)
	registry := animation.NewBoneRegistry()

	clip, err := AnimationFromDocument(doc, registry, 0)
	require.NoError(t, err)

	assert.Equal(t, "rise", clip.Name())
	assert.Equal(t, float32(1), clip.Duration())
	assert.Equal(t, float32(1), clip.TicksPerSecond())
	assert.Equal(t, 2, clip.Skeleton().Len())

	root, ok := registry.Lookup("root")
	require.True(t, ok)
	assert.Equal(t, 0, root.ID)
	child, ok := registry.Lookup("child")
	require.True(t, ok)
	assert.Equal(t, 1, child.ID)
	assert.Equal(t, mgl32.Translate3D(0, -1, 0), child.Offset)

	bone, ok := clip.FindBone("child")
	require.True(t, ok)
	assert.Equal(t, 1, bone.ID())
	_, ok = clip.FindBone("root")
	assert.False(t, ok)

	player, err := animation.NewPlayer(clip, 0)
	require.NoError(t, err)
	player.Update(0.5)

	m := player.FinalBoneMatrices()[child.ID]
	assert.InDelta(t, 0.0, m.Col(3).Y(), 1e-5, "global y=1 shifted by the inverse bind")
}

func TestAnimationFromDocumentFillsRestPose(t *testing.T) {
	doc := twoJointDocument(t)
	doc.Nodes[1].Scale = [3]float64{2, 2, 2}

	clip, err := AnimationFromDocument(doc, nil, 0)
	require.NoError(t, err)

	bone, ok := clip.FindBone("child")
	require.True(t, ok)
	bone.Update(0)
	p := bone.LocalTransform().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 2.0, p.X(), 1e-5)
}

func TestAnimationFromDocumentMissingClip(t *testing.T) {
	doc := twoJointDocument(t)

	_, err := AnimationFromDocument(doc, nil, 3)
	assert.ErrorIs(t, err, ErrNoAnimation)

	_, err = AnimationFromDocument(doc, nil, -1)
	assert.ErrorIs(t, err, ErrNoAnimation)
}

func TestAnimationFromDocumentCubicSpline(t *testing.T) {
	doc := twoJointDocument(t)
	output := modeler.WriteAccessor(doc, gltf.TargetNone, [][3]float32{
		{9, 9, 9}, {0, 0, 0}, {9, 9, 9},
		{9, 9, 9}, {0, 4, 0}, {9, 9, 9},
	})
	sampler := doc.Animations[0].Samplers[0]
	sampler.Output = output
	sampler.Interpolation = gltf.InterpolationCubicSpline

	clip, err := AnimationFromDocument(doc, nil, 0)
	require.NoError(t, err)

	bone, _ := clip.FindBone("child")
	bone.Update(0.5)
	assert.InDelta(t, 2.0, bone.LocalTransform().Col(3).Y(), 1e-5)
}

func TestHierarchyWithSeveralRoots(t *testing.T) {
	doc := twoJointDocument(t)
	doc.Nodes = append(doc.Nodes, &gltf.Node{})
	doc.Scenes[0].Nodes = []int{0, 2}

	clip, err := AnimationFromDocument(doc, nil, 0)
	require.NoError(t, err)

	s := clip.Skeleton()
	assert.Equal(t, sceneRootName, s.Node(s.Root()).Name)
	_, ok := s.Find("node_2")
	assert.True(t, ok)
	assert.Equal(t, 4, s.Len())
}

func TestHierarchyRejectsSharedChild(t *testing.T) {
	doc := twoJointDocument(t)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "other", Children: []int{1}})
	doc.Scenes[0].Nodes = []int{0, 2}

	_, err := AnimationFromDocument(doc, nil, 0)
	assert.Error(t, err)
}

func TestNodeTransformPrefersMatrix(t *testing.T) {
	node := &gltf.Node{
		Matrix:      [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 3, 4, 5, 1},
		Translation: [3]float64{9, 9, 9},
	}
	assert.Equal(t, mgl32.Translate3D(3, 4, 5), nodeTransform(node))

	node = &gltf.Node{Translation: [3]float64{1, 2, 3}}
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), nodeTransform(node))
}

func TestAnimationFromDocumentStep(t *testing.T) {
	doc := twoJointDocument(t)
	doc.Animations[0].Samplers[0].Interpolation = gltf.InterpolationStep

	clip, err := AnimationFromDocument(doc, nil, 0)
	require.NoError(t, err)

	bone, ok := clip.FindBone("child")
	require.True(t, ok)
	bone.Update(0.5)
	assert.InDelta(t, 0.0, bone.LocalTransform().Col(3).Y(), 1e-6)
	bone.Update(1)
	assert.InDelta(t, 2.0, bone.LocalTransform().Col(3).Y(), 1e-6)
}
