package animation

import (
	"errors"
	"fmt"

	"Ember3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultTicksPerSecond is used when an asset does not declare a tick rate.
const DefaultTicksPerSecond = 25.0

var ErrDuplicateChannel = errors.New("joint is animated by more than one channel")

// ClipData is the importer's view of one animation.
type ClipData struct {
	Name           string
	Duration       float32 // ticks
	TicksPerSecond float32
	Channels       []Channel
	Root           NodeData
}

// Clip is an immutable animation bound to a skeleton and a bone registry.
type Clip struct {
	name           string
	duration       float32
	ticksPerSecond float32
	bones          []*Bone
	byName         map[string]int
	skeleton       *Skeleton
	registry       *BoneRegistry
}

// NewClip builds bones for every channel. Channels whose joint is not yet in
// registry are registered with an identity offset, so every animated joint
// owns a skinning slot.
func NewClip(data ClipData, registry *BoneRegistry) (*Clip, error) {
	if registry == nil {
		registry = NewBoneRegistry()
	}

	tps := data.TicksPerSecond
	if tps <= 0 {
		tps = DefaultTicksPerSecond
	}

	clip := &Clip{
		name:           data.Name,
		duration:       data.Duration,
		ticksPerSecond: tps,
		bones:          make([]*Bone, 0, len(data.Channels)),
		byName:         make(map[string]int, len(data.Channels)),
		skeleton:       NewSkeleton(data.Root),
		registry:       registry,
	}

	for _, ch := range data.Channels {
		if _, dup := clip.byName[ch.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateChannel, ch.Name)
		}

		info, ok := registry.Lookup(ch.Name)
		if !ok {
			info.ID = registry.Register(ch.Name, mgl32.Ident4())
			logger.Log.Debug("Registered missing bone",
				zap.String("clip", data.Name),
				zap.String("bone", ch.Name),
				zap.Int("id", info.ID))
		}

		bone, err := NewBone(info.ID, ch)
		if err != nil {
			return nil, fmt.Errorf("clip %q: %w", data.Name, err)
		}
		clip.byName[ch.Name] = len(clip.bones)
		clip.bones = append(clip.bones, bone)
	}

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("clip %q: %w", data.Name, err)
	}

	logger.Log.Info("Animation clip ready",
		zap.String("clip", data.Name),
		zap.Int("bones", len(clip.bones)),
		zap.Int("nodes", clip.skeleton.Len()),
		zap.Float32("duration", clip.duration),
		zap.Float32("ticksPerSecond", clip.ticksPerSecond))
	return clip, nil
}

// FindBone returns the bone animating the joint called name.
func (c *Clip) FindBone(name string) (*Bone, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.bones[i], true
}

// Bones returns the clip's bones in channel order.
func (c *Clip) Bones() []*Bone { return c.bones }

func (c *Clip) Name() string            { return c.name }
func (c *Clip) Duration() float32       { return c.duration }
func (c *Clip) TicksPerSecond() float32 { return c.ticksPerSecond }
func (c *Clip) Skeleton() *Skeleton     { return c.skeleton }
func (c *Clip) Registry() *BoneRegistry { return c.registry }
