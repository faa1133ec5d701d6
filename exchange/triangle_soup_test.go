package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubernator/MeshReduction/geom"
)

func tetrahedronSoup() TriangleSoup {
	return TriangleSoup{
		Name: "tet",
		Positions: []geom.Vector{
			geom.NewVector(0, 0, 0),
			geom.NewVector(1, 0, 0),
			geom.NewVector(0, 1, 0),
			geom.NewVector(0, 0, 1),
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3},
		},
	}
}

func TestToMeshBuildsHalfEdgeMesh(t *testing.T) {
	m, err := ToMesh(tetrahedronSoup())
	require.NoError(t, err)

	assert.Equal(t, 4, m.NumVertices())
	assert.Equal(t, 4, m.FaceCount())
	require.NoError(t, m.Validate())
}

func TestToTriangleSoupRoundTripsFaceCount(t *testing.T) {
	soup := tetrahedronSoup()
	m, err := ToMesh(soup)
	require.NoError(t, err)

	out := ToTriangleSoup(m, "tet", 2)
	assert.Equal(t, "tet", out.Name)
	assert.Equal(t, 2, out.MaterialIdx)
	assert.Len(t, out.Faces, 4)
	assert.Len(t, out.Positions, 4)
}
