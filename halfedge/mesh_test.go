package halfedge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubernator/MeshReduction/geom"
)

// tetrahedron returns the 4 vertices / 4 faces of a closed, manifold
// tetrahedron, wound consistently outward.
func tetrahedron() ([]geom.Vector, [][3]int) {
	positions := []geom.Vector{
		geom.NewVector(0, 0, 0),
		geom.NewVector(1, 0, 0),
		geom.NewVector(0, 1, 0),
		geom.NewVector(0, 0, 1),
	}
	faces := [][3]int{
		{0, 2, 1},
		{0, 1, 3},
		{1, 2, 3},
		{2, 0, 3},
	}
	return positions, faces
}

// openQuad returns a single triangle pair (a quad split along its
// diagonal), which has a boundary on every outer edge.
func openQuad() ([]geom.Vector, [][3]int) {
	positions := []geom.Vector{
		geom.NewVector(0, 0, 0),
		geom.NewVector(1, 0, 0),
		geom.NewVector(1, 1, 0),
		geom.NewVector(0, 1, 0),
	}
	faces := [][3]int{
		{0, 1, 2},
		{0, 2, 3},
	}
	return positions, faces
}

// bowtie returns two triangles that share only a single apex vertex (no
// shared edge), producing a non-manifold vertex that must be split.
func bowtie() ([]geom.Vector, [][3]int) {
	positions := []geom.Vector{
		geom.NewVector(0, 0, 0),   // 0: apex (shared)
		geom.NewVector(-1, 1, 0),  // 1
		geom.NewVector(-1, -1, 0), // 2
		geom.NewVector(1, 1, 0),   // 3
		geom.NewVector(1, -1, 0),  // 4
	}
	faces := [][3]int{
		{0, 1, 2},
		{0, 4, 3},
	}
	return positions, faces
}

func TestNewMeshRejectsEmptyFaces(t *testing.T) {
	_, err := NewMesh(nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)
}

func TestNewMeshRejectsOutOfRangeVertex(t *testing.T) {
	positions := []geom.Vector{geom.NewVector(0, 0, 0), geom.NewVector(1, 0, 0), geom.NewVector(0, 1, 0)}
	_, err := NewMesh(positions, nil, [][3]int{{0, 1, 5}})
	assert.ErrorIs(t, err, ErrVertexIndexRange)
}

func TestNewMeshRejectsDuplicateDirectedEdge(t *testing.T) {
	positions := []geom.Vector{
		geom.NewVector(0, 0, 0), geom.NewVector(1, 0, 0), geom.NewVector(0, 1, 0), geom.NewVector(1, 1, 0),
	}
	faces := [][3]int{{0, 1, 2}, {0, 1, 3}}
	_, err := NewMesh(positions, nil, faces)
	assert.ErrorIs(t, err, ErrDuplicateEdge)
}

func TestTetrahedronIsClosedAndManifold(t *testing.T) {
	positions, faces := tetrahedron()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	require.NoError(t, m.Validate())
	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 4, m.FaceCount())
	assert.Equal(t, 12, m.NumHalfEdges())

	for v := 0; v < m.NumVertices(); v++ {
		assert.False(t, m.IsVertexBoundary(MeshIndex(v)), "vertex %d should not be boundary", v)
		assert.Equal(t, 3, m.Valency(MeshIndex(v)))
	}
}

func TestOpenQuadHasBoundary(t *testing.T) {
	positions, faces := openQuad()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	require.NoError(t, m.Validate())
	for v := 0; v < m.NumVertices(); v++ {
		assert.True(t, m.IsVertexBoundary(MeshIndex(v)))
	}
}

func TestBowtieSplitsNonManifoldVertex(t *testing.T) {
	positions, faces := bowtie()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	require.NoError(t, m.Validate())
	// One extra vertex was created to resolve the shared apex.
	assert.Equal(t, len(positions)+1, m.NumVertices())

	fan0 := m.EdgeFan(0).All()
	assert.Len(t, fan0, 2, "original apex copy should see only its own triangle's fan")
}

func TestEdgeFanCorruptionPanics(t *testing.T) {
	positions, faces := tetrahedron()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	// Corrupt the topology by making a half-edge opposite itself, which
	// produces a fan walk that never returns to its start.
	e := MeshIndex(0)
	m.halfEdges[e].Opposite = e

	assert.Panics(t, func() {
		m.EdgeFan(m.halfEdges[e].From).All()
	})
}

func TestCollapseEdgeReducesFaceCount(t *testing.T) {
	positions, faces := tetrahedron()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	e := m.ConnectingEdge(0, 1)
	require.NotEqual(t, Invalid, e)

	newPos := m.VertexPosition(0).Midpoint(m.VertexPosition(1))
	removed := m.CollapseEdge(e, newPos)

	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, m.FaceCount())
	assert.Equal(t, 3, m.LiveVertexCount())
}

func TestCleanupDataCompactsArrays(t *testing.T) {
	// The octahedron's (0, 2) edge is contractable (see
	// TestIsPairContractableAcceptsOnLargerMesh), so the collapsed mesh
	// still satisfies every invariant Validate checks.
	positions, faces := octahedron()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	e := m.ConnectingEdge(0, 2)
	newPos := m.VertexPosition(0).Midpoint(m.VertexPosition(2))
	m.CollapseEdge(e, newPos)
	m.CleanupData()

	assert.Equal(t, 5, m.NumVertices())
	assert.Equal(t, 6, m.NumFaces())
	assert.Equal(t, 18, m.NumHalfEdges())
	require.NoError(t, m.Validate())
}

func TestRecomputeNormalsProducesUnitVectors(t *testing.T) {
	positions, faces := tetrahedron()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	m.RecomputeNormals()
	for v := 0; v < m.NumVertices(); v++ {
		n := m.VertexNormal(MeshIndex(v))
		assert.InDelta(t, 1.0, n.Mag(), 1e-9)
	}
}

func TestResetRebuildsFromOriginalSoup(t *testing.T) {
	positions, faces := tetrahedron()
	m, err := NewMesh(positions, nil, faces)
	require.NoError(t, err)

	e := m.ConnectingEdge(0, 1)
	m.CollapseEdge(e, m.VertexPosition(0))
	assert.True(t, m.IsDirty())

	require.NoError(t, m.Reset())
	assert.False(t, m.IsDirty())
	assert.Equal(t, 4, m.FaceCount())
}
