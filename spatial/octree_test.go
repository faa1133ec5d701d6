package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubernator/MeshReduction/geom"
)

func unitOctree() *Octree {
	aabb := geom.NewAABB(geom.NewVector(0, 0, 0), geom.NewVector(10, 10, 10))
	return NewOctree(aabb)
}

func TestOctreeInsertAndQuery(t *testing.T) {
	o := unitOctree()

	points := []geom.Vector{
		geom.NewVector(1, 1, 1),
		geom.NewVector(-5, -5, -5),
		geom.NewVector(5, 5, 5),
	}
	for _, p := range points {
		require.NoError(t, o.Insert(p))
	}

	assert.Equal(t, 3, o.GetNumberOfItems())

	query := geom.NewAABB(geom.NewVector(0, 0, 0), geom.NewVector(2, 2, 2))
	hits := o.Query(query)

	assert.Contains(t, hits, 0)
	assert.NotContains(t, hits, 1)
}

func TestOctreeInsertOutsideBoundsFails(t *testing.T) {
	o := unitOctree()
	err := o.Insert(geom.NewVector(100, 100, 100))
	assert.ErrorIs(t, err, ErrOctreeItemNotInserted)
}

func TestOctreeSplitsAfterExceedingLeafCapacity(t *testing.T) {
	o := unitOctree()

	for i := 0; i < OctreeMaxLeafItems+1; i++ {
		x := float64(i%10) - 5
		y := float64((i/10)%10) - 5
		require.NoError(t, o.Insert(geom.NewVector(x, y, 0)))
	}

	assert.Greater(t, o.GetNumberOfNodes(), 1)
}

func TestOctreeSplitDistributesItemsToOverlappingOctants(t *testing.T) {
	o := unitOctree()

	require.NoError(t, o.Insert(geom.NewVector(1, 1, 1)))
	require.NoError(t, o.Insert(geom.NewVector(-1, -1, -1)))

	require.NoError(t, o.split(o.root))

	assert.False(t, o.root.isLeaf)
	assert.Len(t, o.root.children, 8)
	for _, child := range o.root.children {
		assert.Equal(t, 1, child.depth)
	}

	var total int
	for _, child := range o.root.children {
		total += len(child.items)
	}
	assert.Equal(t, 2, total, "each of the two points should land in exactly one octant")
}

func TestOctreeCannotSplitPastMaxDepth(t *testing.T) {
	o := unitOctree()
	o.root.depth = OctreeMaxDepth
	assert.ErrorIs(t, o.split(o.root), ErrOctreeCannotSplitNode)
}
