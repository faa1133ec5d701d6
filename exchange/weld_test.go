package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Cubernator/MeshReduction/geom"
)

func TestWeldMergesCoincidentVertices(t *testing.T) {
	// Two triangles sharing an edge, but exported with one vertex per
	// face-corner (6 positions, no shared indices).
	soup := TriangleSoup{
		Positions: []geom.Vector{
			geom.NewVector(0, 0, 0),
			geom.NewVector(1, 0, 0),
			geom.NewVector(0, 1, 0),
			geom.NewVector(1, 0, 0),
			geom.NewVector(1, 1, 0),
			geom.NewVector(0, 1, 0),
		},
		Faces: [][3]int{{0, 1, 2}, {3, 4, 5}},
	}

	welded := Weld(soup, 1e-6)

	assert.Len(t, welded.Positions, 4)
	assert.Equal(t, welded.Faces[0][1], welded.Faces[1][0], "shared vertex (1,0,0) should share an index")
	assert.Equal(t, welded.Faces[0][2], welded.Faces[1][2], "shared vertex (0,1,0) should share an index")
}

func TestWeldLeavesDistinctVerticesDistinct(t *testing.T) {
	soup := TriangleSoup{
		Positions: []geom.Vector{
			geom.NewVector(0, 0, 0),
			geom.NewVector(1, 0, 0),
			geom.NewVector(0, 1, 0),
		},
		Faces: [][3]int{{0, 1, 2}},
	}

	welded := Weld(soup, 1e-6)
	assert.Len(t, welded.Positions, 3)
}

func TestWeldEmptySoup(t *testing.T) {
	welded := Weld(TriangleSoup{}, 1e-6)
	assert.Empty(t, welded.Positions)
}
