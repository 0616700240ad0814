package animation

import "github.com/go-gl/mathgl/mgl32"

// NodeData is the imported, nested form of a skeleton node.
type NodeData struct {
	Name      string
	Transform mgl32.Mat4
	Children  []NodeData
}

// SkeletonNode is one joint of a Skeleton. Children are indices into the
// owning Skeleton, in declaration order.
type SkeletonNode struct {
	Name      string
	Transform mgl32.Mat4
	Children  []int
}

// Skeleton is an immutable joint hierarchy stored as a flat arena.
// Nodes are laid out in depth-first pre-order, so the root is index 0.
type Skeleton struct {
	nodes  []SkeletonNode
	byName map[string]int
}

// NewSkeleton flattens root into an arena.
func NewSkeleton(root NodeData) *Skeleton {
	s := &Skeleton{byName: make(map[string]int)}
	s.add(root)
	return s
}

func (s *Skeleton) add(data NodeData) int {
	index := len(s.nodes)
	s.nodes = append(s.nodes, SkeletonNode{Name: data.Name, Transform: data.Transform})
	if _, exists := s.byName[data.Name]; !exists {
		s.byName[data.Name] = index
	}

	children := make([]int, 0, len(data.Children))
	for _, child := range data.Children {
		children = append(children, s.add(child))
	}
	s.nodes[index].Children = children
	return index
}

// Root returns the index of the root node.
func (s *Skeleton) Root() int { return 0 }

// Len returns the number of nodes.
func (s *Skeleton) Len() int { return len(s.nodes) }

// Node returns a copy of node i.
func (s *Skeleton) Node(i int) SkeletonNode {
	n := s.nodes[i]
	n.Children = append([]int(nil), n.Children...)
	return n
}

// Find returns the index of the first node named name in pre-order.
func (s *Skeleton) Find(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// node is the allocation-free accessor used by the player's walk.
func (s *Skeleton) node(i int) *SkeletonNode { return &s.nodes[i] }
