package animation

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Channel is the imported keyframe data for one animated joint. The zero
// Interpolation of each track is Linear.
type Channel struct {
	Name      string
	Positions []Keyframe[mgl32.Vec3]
	Rotations []Keyframe[mgl32.Quat]
	Scales    []Keyframe[mgl32.Vec3]

	PositionInterp Interpolation
	RotationInterp Interpolation
	ScaleInterp    Interpolation
}

// Bone animates one skeleton joint.
type Bone struct {
	name      string
	id        int
	positions Track[mgl32.Vec3]
	rotations Track[mgl32.Quat]
	scales    Track[mgl32.Vec3]
	local     mgl32.Mat4
}

// NewBone validates the channel's tracks and binds them to bone index id.
func NewBone(id int, ch Channel) (*Bone, error) {
	positions, err := vec3Track(ch.Positions, ch.PositionInterp)
	if err != nil {
		return nil, fmt.Errorf("bone %q positions: %w", ch.Name, err)
	}
	rotations, err := NewQuatTrack(ch.Rotations)
	if ch.RotationInterp == Step {
		rotations, err = NewStepTrack(ch.Rotations)
	}
	if err != nil {
		return nil, fmt.Errorf("bone %q rotations: %w", ch.Name, err)
	}
	scales, err := vec3Track(ch.Scales, ch.ScaleInterp)
	if err != nil {
		return nil, fmt.Errorf("bone %q scales: %w", ch.Name, err)
	}

	return &Bone{
		name:      ch.Name,
		id:        id,
		positions: positions,
		rotations: rotations,
		scales:    scales,
		local:     mgl32.Ident4(),
	}, nil
}

func vec3Track(keys []Keyframe[mgl32.Vec3], mode Interpolation) (Track[mgl32.Vec3], error) {
	if mode == Step {
		return NewStepTrack(keys)
	}
	return NewVec3Track(keys)
}

// Update samples all three tracks at time and rebuilds the local transform as T*R*S.
func (b *Bone) Update(time float32) {
	p := b.positions.Sample(time)
	r := b.rotations.Sample(time)
	s := b.scales.Sample(time)

	translation := mgl32.Translate3D(p.X(), p.Y(), p.Z())
	rotation := r.Mat4()
	scale := mgl32.Scale3D(s.X(), s.Y(), s.Z())
	b.local = translation.Mul4(rotation).Mul4(scale)
}

// LocalTransform is the transform computed by the last Update.
func (b *Bone) LocalTransform() mgl32.Mat4 { return b.local }

func (b *Bone) Name() string { return b.name }
func (b *Bone) ID() int      { return b.id }
