// Package animation evaluates skeletal animation clips into skinning matrices.
//
// A Clip owns one Bone per animated joint. Each Bone holds position, rotation
// and scale tracks that are sampled at the player's current tick and composed
// into a local transform. The Player walks the Skeleton from the root,
// composes parent-relative transforms and writes one matrix per registered
// bone index.
package animation

import (
	"errors"
	"fmt"

	"Ember3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	ErrEmptyTrack     = errors.New("keyframe track has no samples")
	ErrUnorderedTrack = errors.New("keyframe timestamps are not strictly increasing")
)

// Interpolation selects how a track blends between neighbouring samples.
type Interpolation int

const (
	Linear Interpolation = iota
	// Step holds each sample until the next one starts.
	Step
)

// Keyframe is one sample of a track, expressed in ticks.
type Keyframe[T any] struct {
	Value T
	Time  float32
}

// Track is an immutable, chronologically ordered keyframe sequence.
type Track[T any] struct {
	keys   []Keyframe[T]
	interp func(a, b T, t float32) T
}

func newTrack[T any](keys []Keyframe[T], interp func(a, b T, t float32) T) (Track[T], error) {
	if len(keys) == 0 {
		return Track[T]{}, ErrEmptyTrack
	}
	for i := 1; i < len(keys); i++ {
		if keys[i].Time <= keys[i-1].Time {
			return Track[T]{}, fmt.Errorf("%w: key %d at %v follows %v", ErrUnorderedTrack, i, keys[i].Time, keys[i-1].Time)
		}
	}
	owned := make([]Keyframe[T], len(keys))
	copy(owned, keys)
	return Track[T]{keys: owned, interp: interp}, nil
}

// NewVec3Track builds a position or scale track. Samples are blended linearly.
func NewVec3Track(keys []Keyframe[mgl32.Vec3]) (Track[mgl32.Vec3], error) {
	return newTrack(keys, LerpVec3)
}

// NewQuatTrack builds a rotation track. Samples are slerped and renormalized.
func NewQuatTrack(keys []Keyframe[mgl32.Quat]) (Track[mgl32.Quat], error) {
	return newTrack(keys, SlerpQuat)
}

// NewStepTrack builds a track of any value type that holds each sample.
func NewStepTrack[T any](keys []Keyframe[T]) (Track[T], error) {
	return newTrack(keys, holdPrevious[T])
}

// Len returns the number of samples.
func (tr Track[T]) Len() int { return len(tr.keys) }

// Start returns the first sample time in ticks.
func (tr Track[T]) Start() float32 { return tr.keys[0].Time }

// End returns the last sample time in ticks.
func (tr Track[T]) End() float32 { return tr.keys[len(tr.keys)-1].Time }

// Sample evaluates the track at time. A single-sample track is held constant.
// Times outside [Start, End] are clamped to the first or last sample.
func (tr Track[T]) Sample(time float32) T {
	if len(tr.keys) == 1 {
		return tr.keys[0].Value
	}
	if time <= tr.keys[0].Time {
		if time < tr.keys[0].Time {
			logger.Log.Debug("Keyframe query before first sample, clamping",
				zap.Float32("time", time), zap.Float32("start", tr.keys[0].Time))
		}
		return tr.keys[0].Value
	}
	last := len(tr.keys) - 1
	if time >= tr.keys[last].Time {
		if time > tr.keys[last].Time {
			logger.Log.Debug("Keyframe query past last sample, clamping",
				zap.Float32("time", time), zap.Float32("end", tr.keys[last].Time))
		}
		return tr.keys[last].Value
	}

	i := tr.nextIndex(time)
	prev, next := tr.keys[i-1], tr.keys[i]
	factor := (time - prev.Time) / (next.Time - prev.Time)
	return tr.interp(prev.Value, next.Value, factor)
}

// nextIndex returns the first key strictly later than time. Callers guarantee
// keys[0].Time < time < keys[last].Time.
func (tr Track[T]) nextIndex(time float32) int {
	for i := 1; i < len(tr.keys); i++ {
		if time < tr.keys[i].Time {
			return i
		}
	}
	return len(tr.keys) - 1
}

func holdPrevious[T any](a, _ T, _ float32) T { return a }

// LerpVec3 blends a towards b componentwise.
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpQuat interpolates along the shorter arc and returns a unit quaternion.
func SlerpQuat(a, b mgl32.Quat, t float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}
