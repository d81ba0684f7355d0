package octree

import (
	"fmt"

	"constella/orrery/internal/geom"
)

const (
	DefaultCapacity = 8
	DefaultMaxDepth = 8
)

// Entry is one positioned member stored in the tree.
type Entry struct {
	ID   string    `json:"id"`
	Pos  geom.Vec3 `json:"pos"`
	Mass float64   `json:"mass"`
}

// Tree is a capacity-and-depth bounded octree. A node either holds
// entries directly (leaf) or has exactly 8 children and no entries
// (internal), never both; the only exception is a leaf at the depth
// limit, which grows past capacity instead of subdividing.
type Tree struct {
	bounds   geom.Box
	capacity int
	maxDepth int
	depth    int
	count    int
	entries  []Entry
	children *[8]*Tree
}

// New validates the configuration and returns an empty tree. The
// bounds must be a real volume and capacity at least 1.
func New(bounds geom.Box, capacity, maxDepth int) (*Tree, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("octree capacity must be at least 1, got %d", capacity)
	}
	if maxDepth < 0 {
		return nil, fmt.Errorf("octree max depth must not be negative, got %d", maxDepth)
	}
	if bounds.Min.X >= bounds.Max.X || bounds.Min.Y >= bounds.Max.Y || bounds.Min.Z >= bounds.Max.Z {
		return nil, fmt.Errorf("octree bounds are degenerate: %+v", bounds)
	}
	return &Tree{bounds: bounds, capacity: capacity, maxDepth: maxDepth}, nil
}

// Build bulk-loads entries into a fresh tree. Entries outside the
// bounds are refused, not silently dropped: the caller gets the
// refused count and decides whether its bounds were sized wrong.
func Build(bounds geom.Box, capacity, maxDepth int, entries []Entry) (*Tree, int, error) {
	t, err := New(bounds, capacity, maxDepth)
	if err != nil {
		return nil, 0, err
	}
	refused := 0
	for _, e := range entries {
		if !t.Insert(e) {
			refused++
		}
	}
	return t, refused, nil
}

// Insert adds an entry, reporting false when the position lies
// outside this node's bounds.
func (t *Tree) Insert(e Entry) bool {
	if !t.bounds.Contains(e.Pos) {
		return false
	}

	if t.children == nil {
		if len(t.entries) < t.capacity || t.depth == t.maxDepth {
			t.entries = append(t.entries, e)
			t.count++
			return true
		}
		t.subdivide()
	}

	// Children tile the bounds, so exactly the first containing child
	// accepts; boundary points are owned by the lowest octant index.
	for _, c := range t.children {
		if c.Insert(e) {
			t.count++
			return true
		}
	}
	return false
}

func (t *Tree) subdivide() {
	children := new([8]*Tree)
	for i := range children {
		children[i] = &Tree{
			bounds:   t.bounds.Octant(i),
			capacity: t.capacity,
			maxDepth: t.maxDepth,
			depth:    t.depth + 1,
		}
	}
	t.children = children

	// Push every held entry down; this node becomes purely internal.
	entries := t.entries
	t.entries = nil
	for _, e := range entries {
		for _, c := range t.children {
			if c.Insert(e) {
				break
			}
		}
	}
}

// Len is the number of entries stored in this subtree.
func (t *Tree) Len() int {
	return t.count
}

func (t *Tree) Bounds() geom.Box {
	return t.bounds
}

// QueryBox returns every entry inside the query box, pruning subtrees
// whose bounds do not overlap it.
func (t *Tree) QueryBox(box geom.Box) []Entry {
	var out []Entry
	t.queryBox(box, &out)
	return out
}

func (t *Tree) queryBox(box geom.Box, out *[]Entry) {
	if t.count == 0 || !t.bounds.Intersects(box) {
		return
	}
	if t.children == nil {
		for _, e := range t.entries {
			if box.Contains(e.Pos) {
				*out = append(*out, e)
			}
		}
		return
	}
	for _, c := range t.children {
		c.queryBox(box, out)
	}
}

// QueryRadius returns every entry within radius of center.
func (t *Tree) QueryRadius(center geom.Vec3, radius float64) []Entry {
	var out []Entry
	t.queryRadius(center, radius, &out)
	return out
}

func (t *Tree) queryRadius(center geom.Vec3, radius float64, out *[]Entry) {
	if t.count == 0 || !t.bounds.IntersectsSphere(center, radius) {
		return
	}
	if t.children == nil {
		rr := radius * radius
		for _, e := range t.entries {
			if e.Pos.DistanceSq(center) <= rr {
				*out = append(*out, e)
			}
		}
		return
	}
	for _, c := range t.children {
		c.queryRadius(center, radius, out)
	}
}
