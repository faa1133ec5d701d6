// Package spatial provides a loose octree spatial index, used by the
// exchange package to accelerate near-duplicate vertex welding.
package spatial

import (
	"errors"

	"github.com/Cubernator/MeshReduction/geom"
)

const (
	OctreeMaxDepth     = 21
	OctreeMaxLeafItems = 100
)

var (
	ErrOctreeItemNotInserted = errors.New("spatial: item does not overlap the tree's bounds")
	ErrOctreeCannotSplitNode = errors.New("spatial: node has reached max depth or is not a leaf")
)

// IntersectsAABB is implemented by anything the octree can store or
// query with: it must be able to test itself against an axis-aligned
// bounding box.
type IntersectsAABB interface {
	IntersectsAABB(query geom.AABB) bool
}

// Octree is a loose octree over any IntersectsAABB item: an item is
// recorded in every leaf its bounds overlap, so a query against a
// single leaf can never miss an item straddling a split boundary.
// Nodes are linked directly by pointer and depth is carried as a plain
// field rather than derived from an encoded node id, so insert, split
// and query are ordinary recursive tree descents.
type Octree struct {
	root     *octreeNode
	items    []IntersectsAABB
	numNodes int
}

// NewOctree constructs a bounded octree covering aabb.
func NewOctree(aabb geom.AABB) *Octree {
	return &Octree{root: newOctreeNode(aabb, 0), numNodes: 1}
}

// Insert adds item to the octree. It is recorded in every leaf its
// bounds overlap; a leaf that then exceeds OctreeMaxLeafItems is split
// immediately. Returns ErrOctreeItemNotInserted if item overlaps no
// node at all.
func (o *Octree) Insert(item IntersectsAABB) error {
	var leaves []*octreeNode
	o.root.collectLeaves(item, &leaves)

	if len(leaves) == 0 {
		return ErrOctreeItemNotInserted
	}

	index := len(o.items)
	o.items = append(o.items, item)

	for _, leaf := range leaves {
		leaf.items = append(leaf.items, index)
		if leaf.shouldSplit() {
			o.split(leaf)
		}
	}

	return nil
}

// split replaces a leaf with its eight octant children, redistributing
// its items (by the same loose, possibly-duplicating membership test
// Insert uses) to whichever children they overlap.
func (o *Octree) split(n *octreeNode) error {
	if !n.canSplit() {
		return ErrOctreeCannotSplitNode
	}

	n.children = make([]*octreeNode, 8)
	for octant := 0; octant < 8; octant++ {
		childAABB := n.aabb.Octant(octant)
		child := newOctreeNode(childAABB, n.depth+1)
		o.numNodes++

		for _, index := range n.items {
			if o.items[index].IntersectsAABB(childAABB) {
				child.items = append(child.items, index)
			}
		}

		n.children[octant] = child
	}

	n.items = nil
	n.isLeaf = false

	return nil
}

// Query returns the indices of every inserted item stored in a leaf
// whose bounds overlap query, deduplicated across leaves. This is a
// broad-phase result: a leaf larger than query can contain items that
// do not themselves intersect it, so callers needing an exact answer
// must still test each returned item against query directly.
func (o *Octree) Query(query geom.AABB) []int {
	seen := make(map[int]bool)
	var result []int
	o.root.query(query, seen, &result)
	return result
}

// GetNumberOfItems returns the number of items inserted into the tree.
func (o *Octree) GetNumberOfItems() int {
	return len(o.items)
}

// GetNumberOfNodes returns the number of nodes (leaf and internal) in
// the tree.
func (o *Octree) GetNumberOfNodes() int {
	return o.numNodes
}

// octreeNode is a single node of the octree, either a leaf holding item
// indices or an internal node with eight pointer-linked children.
type octreeNode struct {
	items    []int
	children []*octreeNode
	aabb     geom.AABB
	depth    int
	isLeaf   bool
}

func newOctreeNode(aabb geom.AABB, depth int) *octreeNode {
	return &octreeNode{aabb: aabb, depth: depth, isLeaf: true}
}

// collectLeaves appends every leaf descendant (including n itself)
// whose bounds overlap item to out.
func (n *octreeNode) collectLeaves(item IntersectsAABB, out *[]*octreeNode) {
	if !item.IntersectsAABB(n.aabb) {
		return
	}
	if n.isLeaf {
		*out = append(*out, n)
		return
	}
	for _, child := range n.children {
		child.collectLeaves(item, out)
	}
}

// query appends every item index stored under n whose leaf overlaps
// query, skipping indices already recorded in seen.
func (n *octreeNode) query(query geom.AABB, seen map[int]bool, out *[]int) {
	if !n.aabb.IntersectsAABB(query) {
		return
	}
	if n.isLeaf {
		for _, index := range n.items {
			if seen[index] {
				continue
			}
			seen[index] = true
			*out = append(*out, index)
		}
		return
	}
	for _, child := range n.children {
		child.query(query, seen, out)
	}
}

func (n *octreeNode) canSplit() bool {
	return n.isLeaf && n.depth < OctreeMaxDepth
}

func (n *octreeNode) shouldSplit() bool {
	return n.canSplit() && len(n.items) > OctreeMaxLeafItems
}
