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

// nodeChannel gathers the TRS samplers that target one node.
type nodeChannel struct {
	node      int
	positions []animation.Keyframe[mgl32.Vec3]
	rotations []animation.Keyframe[mgl32.Quat]
	scales    []animation.Keyframe[mgl32.Vec3]

	positionInterp animation.Interpolation
	rotationInterp animation.Interpolation
	scaleInterp    animation.Interpolation
}

// readChannels groups the animation's samplers per target node and returns
// the clip length, which is the latest key time of any sampler.
func readChannels(doc *gltf.Document, anim *gltf.Animation) ([]animation.Channel, float32, error) {
	var (
		order    []int
		byNode   = make(map[int]*nodeChannel)
		duration float32
	)

	for i, ch := range anim.Channels {
		if ch.Target.Node == nil {
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, 0, fmt.Errorf("channel %d references sampler %d", i, ch.Sampler)
		}
		sampler := anim.Samplers[ch.Sampler]

		times, err := readScalars(doc, sampler.Input)
		if err != nil {
			return nil, 0, fmt.Errorf("channel %d input: %w", i, err)
		}
		if len(times) > 0 && times[len(times)-1] > duration {
			duration = times[len(times)-1]
		}

		node := *ch.Target.Node
		nc, ok := byNode[node]
		if !ok {
			nc = &nodeChannel{node: node}
			byNode[node] = nc
			order = append(order, node)
		}

		cubic := sampler.Interpolation == gltf.InterpolationCubicSpline
		interp := animation.Linear
		if sampler.Interpolation == gltf.InterpolationStep {
			interp = animation.Step
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation:
			values, err := readVec3s(doc, sampler.Output, len(times), cubic)
			if err != nil {
				return nil, 0, fmt.Errorf("channel %d translation: %w", i, err)
			}
			nc.positions = vec3Keys(times, values)
			nc.positionInterp = interp
		case gltf.TRSScale:
			values, err := readVec3s(doc, sampler.Output, len(times), cubic)
			if err != nil {
				return nil, 0, fmt.Errorf("channel %d scale: %w", i, err)
			}
			nc.scales = vec3Keys(times, values)
			nc.scaleInterp = interp
		case gltf.TRSRotation:
			values, err := readQuats(doc, sampler.Output, len(times), cubic)
			if err != nil {
				return nil, 0, fmt.Errorf("channel %d rotation: %w", i, err)
			}
			nc.rotations = quatKeys(times, values)
			nc.rotationInterp = interp
		default:
			logger.Log.Debug("Skipping unsupported animation path",
				zap.Int("channel", i), zap.String("path", fmt.Sprint(ch.Target.Path)))
		}
	}

	channels := make([]animation.Channel, 0, len(order))
	for _, node := range order {
		nc := byNode[node]
		t, r, s := restPose(doc.Nodes[node])
		if len(nc.positions) == 0 {
			nc.positions = []animation.Keyframe[mgl32.Vec3]{{Value: t}}
		}
		if len(nc.rotations) == 0 {
			nc.rotations = []animation.Keyframe[mgl32.Quat]{{Value: r}}
		}
		if len(nc.scales) == 0 {
			nc.scales = []animation.Keyframe[mgl32.Vec3]{{Value: s}}
		}
		channels = append(channels, animation.Channel{
			Name:      NodeName(doc, node),
			Positions: nc.positions,
			Rotations: nc.rotations,
			Scales:    nc.scales,

			PositionInterp: nc.positionInterp,
			RotationInterp: nc.rotationInterp,
			ScaleInterp:    nc.scaleInterp,
		})
	}
	return channels, duration, nil
}

func readScalars(doc *gltf.Document, accessor int) ([]float32, error) {
	data, err := readAccessor(doc, accessor)
	if err != nil {
		return nil, err
	}
	values, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float scalars, got %T", accessor, data)
	}
	return values, nil
}

// readVec3s returns count values. Cubic spline outputs store
// (in-tangent, value, out-tangent) triplets, of which only the value is kept.
func readVec3s(doc *gltf.Document, accessor, count int, cubic bool) ([]mgl32.Vec3, error) {
	data, err := readAccessor(doc, accessor)
	if err != nil {
		return nil, err
	}
	raw, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float vec3, got %T", accessor, data)
	}
	raw, err = splineValues(raw, count, cubic)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessor, err)
	}
	out := make([]mgl32.Vec3, len(raw))
	for i, v := range raw {
		out[i] = mgl32.Vec3(v)
	}
	return out, nil
}

// readQuats converts glTF (x, y, z, w) rotations to unit quaternions.
func readQuats(doc *gltf.Document, accessor, count int, cubic bool) ([]mgl32.Quat, error) {
	data, err := readAccessor(doc, accessor)
	if err != nil {
		return nil, err
	}
	raw, ok := data.([][4]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: expected float vec4, got %T", accessor, data)
	}
	raw, err = splineValues(raw, count, cubic)
	if err != nil {
		return nil, fmt.Errorf("accessor %d: %w", accessor, err)
	}
	out := make([]mgl32.Quat, len(raw))
	for i, v := range raw {
		out[i] = mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
	}
	return out, nil
}

func splineValues[T any](raw []T, count int, cubic bool) ([]T, error) {
	if !cubic {
		if len(raw) != count {
			return nil, fmt.Errorf("%d outputs for %d keys", len(raw), count)
		}
		return raw, nil
	}
	if len(raw) != count*3 {
		return nil, fmt.Errorf("%d cubic spline outputs for %d keys", len(raw), count)
	}
	values := make([]T, count)
	for i := range values {
		values[i] = raw[i*3+1]
	}
	return values, nil
}

func readAccessor(doc *gltf.Document, index int) (any, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	return modeler.ReadAccessor(doc, doc.Accessors[index], nil)
}

func vec3Keys(times []float32, values []mgl32.Vec3) []animation.Keyframe[mgl32.Vec3] {
	keys := make([]animation.Keyframe[mgl32.Vec3], len(times))
	for i := range times {
		keys[i] = animation.Keyframe[mgl32.Vec3]{Value: values[i], Time: times[i]}
	}
	return keys
}

func quatKeys(times []float32, values []mgl32.Quat) []animation.Keyframe[mgl32.Quat] {
	keys := make([]animation.Keyframe[mgl32.Quat], len(times))
	for i := range times {
		keys[i] = animation.Keyframe[mgl32.Quat]{Value: values[i], Time: times[i]}
	}
	return keys
}
