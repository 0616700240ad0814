package animation

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrDuplicateBoneIndex = errors.New("two bones share a global index")

// BoneInfo binds a bone name to its skinning slot and inverse bind matrix.
type BoneInfo struct {
	ID     int
	Offset mgl32.Mat4
}

// BoneRegistry is the bone-index table shared by a model's mesh and its clips.
// IDs are handed out densely in registration order.
type BoneRegistry struct {
	mu    sync.RWMutex
	infos map[string]BoneInfo
	next  int
}

func NewBoneRegistry() *BoneRegistry {
	return &BoneRegistry{infos: make(map[string]BoneInfo)}
}

// Register returns the id already assigned to name, or assigns the next free
// id with the given offset.
func (r *BoneRegistry) Register(name string, offset mgl32.Mat4) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, exists := r.infos[name]; exists {
		return info.ID
	}
	id := r.next
	r.infos[name] = BoneInfo{ID: id, Offset: offset}
	r.next++
	return id
}

// Set stores info under name verbatim. Used by importers that carry their own ids.
func (r *BoneRegistry) Set(name string, info BoneInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.infos[name] = info
	if info.ID >= r.next {
		r.next = info.ID + 1
	}
}

// Lookup reports the entry for name.
func (r *BoneRegistry) Lookup(name string) (BoneInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.infos[name]
	return info, ok
}

func (r *BoneRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.infos)
}

// MaxID returns the highest id in use, or -1 when empty.
func (r *BoneRegistry) MaxID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	highest := -1
	for _, info := range r.infos {
		if info.ID > highest {
			highest = info.ID
		}
	}
	return highest
}

// Names returns registered names sorted by id.
func (r *BoneRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.infos))
	for name := range r.infos {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return r.infos[names[i]].ID < r.infos[names[j]].ID
	})
	return names
}

// Validate checks that no two names share an id.
func (r *BoneRegistry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make(map[int]string, len(r.infos))
	for name, info := range r.infos {
		if other, taken := owners[info.ID]; taken {
			return fmt.Errorf("%w: %q and %q both use %d", ErrDuplicateBoneIndex, other, name, info.ID)
		}
		owners[info.ID] = name
	}
	return nil
}
