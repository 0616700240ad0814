package loader

import (
	"errors"
	"fmt"

	"Ember3D/internal/animation"
	"Ember3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

var (
	ErrNoAnimation = errors.New("asset has no animation at the requested index")
	ErrNoSkeleton  = errors.New("asset has no scene nodes")
)

// sceneRootName names the synthetic node used when a scene has several roots.
const sceneRootName = "__scene_root"

// LoadAnimation opens a glTF or GLB file and builds clip clipIndex.
// Skin joints are registered in registry with their inverse bind matrices
// before the clip is built, so mesh and clip agree on bone indices.
func LoadAnimation(path string, registry *animation.BoneRegistry, clipIndex int) (*animation.Clip, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	clip, err := AnimationFromDocument(doc, registry, clipIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// AnimationFromDocument converts an already decoded document.
func AnimationFromDocument(doc *gltf.Document, registry *animation.BoneRegistry, clipIndex int) (*animation.Clip, error) {
	if clipIndex < 0 || clipIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoAnimation, clipIndex, len(doc.Animations))
	}
	if len(doc.Nodes) == 0 {
		return nil, ErrNoSkeleton
	}
	if registry == nil {
		registry = animation.NewBoneRegistry()
	}

	if err := RegisterSkins(doc, registry); err != nil {
		return nil, err
	}

	root, err := hierarchy(doc)
	if err != nil {
		return nil, err
	}

	anim := doc.Animations[clipIndex]
	channels, duration, err := readChannels(doc, anim)
	if err != nil {
		return nil, fmt.Errorf("animation %q: %w", anim.Name, err)
	}

	// glTF keys are in seconds, so one tick is one second.
	return animation.NewClip(animation.ClipData{
		Name:           anim.Name,
		Duration:       duration,
		TicksPerSecond: 1,
		Channels:       channels,
		Root:           root,
	}, registry)
}

// RegisterSkins adds every skin joint to registry in joint order.
// Joints shared between skins keep the first inverse bind matrix seen.
func RegisterSkins(doc *gltf.Document, registry *animation.BoneRegistry) error {
	for s, skin := range doc.Skins {
		var inverseBinds [][4][4]float32
		if skin.InverseBindMatrices != nil {
			data, err := modeler.ReadAccessor(doc, doc.Accessors[*skin.InverseBindMatrices], nil)
			if err != nil {
				return fmt.Errorf("skin %d inverse bind matrices: %w", s, err)
			}
			mats, ok := data.([][4][4]float32)
			if !ok {
				return fmt.Errorf("skin %d inverse bind matrices: unexpected accessor type %T", s, data)
			}
			inverseBinds = mats
		}

		for j, joint := range skin.Joints {
			offset := mgl32.Ident4()
			if j < len(inverseBinds) {
				offset = columnMajor(inverseBinds[j])
			}
			registry.Register(NodeName(doc, joint), offset)
		}
		logger.Log.Debug("Registered skin joints",
			zap.Int("skin", s),
			zap.String("name", skin.Name),
			zap.Int("joints", len(skin.Joints)))
	}
	return nil
}

// NodeName returns the node's name, or a stable placeholder for unnamed nodes.
func NodeName(doc *gltf.Document, index int) string {
	if name := doc.Nodes[index].Name; name != "" {
		return name
	}
	return fmt.Sprintf("node_%d", index)
}

func columnMajor(m [4][4]float32) mgl32.Mat4 {
	var out mgl32.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = m[c][r]
		}
	}
	return out
}

// hierarchy mirrors the default scene into nested NodeData.
func hierarchy(doc *gltf.Document) (animation.NodeData, error) {
	roots := sceneRoots(doc)
	if len(roots) == 0 {
		return animation.NodeData{}, ErrNoSkeleton
	}

	visited := make(map[int]bool, len(doc.Nodes))
	var build func(int) (animation.NodeData, error)
	build = func(index int) (animation.NodeData, error) {
		if visited[index] {
			return animation.NodeData{}, fmt.Errorf("node %d is reachable twice", index)
		}
		visited[index] = true

		node := doc.Nodes[index]
		data := animation.NodeData{
			Name:      NodeName(doc, index),
			Transform: nodeTransform(node),
			Children:  make([]animation.NodeData, 0, len(node.Children)),
		}
		for _, child := range node.Children {
			childData, err := build(child)
			if err != nil {
				return animation.NodeData{}, err
			}
			data.Children = append(data.Children, childData)
		}
		return data, nil
	}

	if len(roots) == 1 {
		return build(roots[0])
	}
	top := animation.NodeData{Name: sceneRootName, Transform: mgl32.Ident4()}
	for _, r := range roots {
		child, err := build(r)
		if err != nil {
			return animation.NodeData{}, err
		}
		top.Children = append(top.Children, child)
	}
	return top, nil
}

// sceneRoots returns the default scene's root nodes, or every parentless node
// when the document declares no scene.
func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		if len(doc.Scenes[scene].Nodes) > 0 {
			return doc.Scenes[scene].Nodes
		}
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			hasParent[c] = true
		}
	}
	var roots []int
	for i, parented := range hasParent {
		if !parented {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeTransform(node *gltf.Node) mgl32.Mat4 {
	m := node.MatrixOrDefault()
	var mat mgl32.Mat4
	for i := range m {
		mat[i] = float32(m[i])
	}
	if mat != mgl32.Ident4() {
		return mat
	}

	t, r, s := restPose(node)
	return mgl32.Translate3D(t.X(), t.Y(), t.Z()).
		Mul4(r.Mat4()).
		Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

func restPose(node *gltf.Node) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	return mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
		mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}
