package animation

import (
	"errors"
	"fmt"
	"math"

	"Ember3D/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaxBones is the skinning capacity shared with the skinning vertex shader.
const MaxBones = 100

var ErrBoneCapacity = errors.New("bone index exceeds skinning capacity")

// Player advances one clip and produces its skinning matrices.
// A Player is not safe for concurrent use.
type Player struct {
	clip        *Clip
	currentTime float32
	matrices    []mgl32.Mat4
}

// NewPlayer creates a player with room for capacity bones. A capacity of 0
// selects MaxBones. clip may be nil.
func NewPlayer(clip *Clip, capacity int) (*Player, error) {
	if capacity <= 0 {
		capacity = MaxBones
	}
	p := &Player{matrices: make([]mgl32.Mat4, capacity)}
	for i := range p.matrices {
		p.matrices[i] = mgl32.Ident4()
	}
	if err := p.Play(clip); err != nil {
		return nil, err
	}
	return p, nil
}

// Play switches to clip and rewinds to tick 0. Skinning slots keep their last
// values until the next Update overwrites them.
func (p *Player) Play(clip *Clip) error {
	if clip != nil {
		if highest := clip.Registry().MaxID(); highest >= len(p.matrices) {
			return fmt.Errorf("%w: clip %q uses index %d, capacity is %d",
				ErrBoneCapacity, clip.Name(), highest, len(p.matrices))
		}
	}
	p.clip = clip
	p.currentTime = 0
	return nil
}

// Update advances playback by dt seconds, wraps into [0, duration) and
// recomputes every skinning matrix. With no clip it does nothing.
func (p *Player) Update(dt float32) {
	if p.clip == nil {
		return
	}
	p.currentTime = wrap(p.currentTime+p.clip.TicksPerSecond()*dt, p.clip.Duration())

	skeleton := p.clip.Skeleton()
	if skeleton.Len() == 0 {
		return
	}
	p.compose(skeleton, skeleton.Root(), mgl32.Ident4())
}

func wrap(t, duration float32) float32 {
	if duration <= 0 {
		return 0
	}
	t = float32(math.Mod(float64(t), float64(duration)))
	if t < 0 {
		t += duration
	}
	if t >= duration {
		t = 0
	}
	return t
}

// compose walks the skeleton depth-first in pre-order.
func (p *Player) compose(skeleton *Skeleton, index int, parent mgl32.Mat4) {
	node := skeleton.node(index)

	transform := node.Transform
	if bone, ok := p.clip.FindBone(node.Name); ok {
		bone.Update(p.currentTime)
		transform = bone.LocalTransform()
	}
	global := parent.Mul4(transform)

	if info, ok := p.clip.Registry().Lookup(node.Name); ok {
		if info.ID >= 0 && info.ID < len(p.matrices) {
			p.matrices[info.ID] = global.Mul4(info.Offset)
		} else {
			logger.Log.Warn("Bone index outside skinning range, skipping",
				zap.String("bone", node.Name), zap.Int("id", info.ID))
		}
	}

	for _, child := range node.Children {
		p.compose(skeleton, child, global)
	}
}

// FinalBoneMatrices returns the skinning matrices indexed by bone id.
// The slice is owned by the player and rewritten by every Update.
func (p *Player) FinalBoneMatrices() []mgl32.Mat4 { return p.matrices }

func (p *Player) CurrentTime() float32 { return p.currentTime }
func (p *Player) Clip() *Clip          { return p.clip }
