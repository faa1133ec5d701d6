package exchange

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cubernator/MeshReduction/geom"
)

func TestReadOBJParsesVerticesAndFaces(t *testing.T) {
	data := strings.Join([]string{
		"g patchA",
		"v 0 0 0",
		"v 1 0 0",
		"v 0 1 0",
		"f 1 2 3",
		"f 1/1 2/2 3/3",
	}, "\n") + "\n"

	soup, err := ReadOBJ(strings.NewReader(data))
	require.NoError(t, err)

	assert.Len(t, soup.Positions, 3)
	assert.Equal(t, geom.NewVector(1, 0, 0), soup.Positions[1])
	assert.Equal(t, [][3]int{{0, 1, 2}, {0, 1, 2}}, soup.Faces)
	assert.Equal(t, "patchA", soup.Name)
}

func TestReadOBJSkipsCommentsAndUnknownPrefixes(t *testing.T) {
	data := "# a comment\nvt 0 0\nvn 0 1 0\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	soup, err := ReadOBJ(strings.NewReader(data))
	require.NoError(t, err)

	assert.Len(t, soup.Positions, 3)
	assert.Len(t, soup.Faces, 1)
}

func TestReadOBJRejectsMalformedVertex(t *testing.T) {
	_, err := ReadOBJ(strings.NewReader("v 0 0\n"))
	assert.ErrorIs(t, err, ErrInvalidVertex)
}

func TestReadOBJRejectsMalformedFaceReference(t *testing.T) {
	_, err := ReadOBJ(strings.NewReader("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 x 3\n"))
	assert.ErrorIs(t, err, ErrInvalidFace)
}

func TestReadOBJRejectsNonTriangularFace(t *testing.T) {
	data := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3 4\n"
	_, err := ReadOBJ(strings.NewReader(data))
	assert.ErrorIs(t, err, ErrNonTriangular)
}

func TestWriteThenReadOBJRoundTrips(t *testing.T) {
	soup := TriangleSoup{
		Name: "tri",
		Positions: []geom.Vector{
			geom.NewVector(0, 0, 0),
			geom.NewVector(1, 0, 0),
			geom.NewVector(0, 1, 0),
		},
		Faces: [][3]int{{0, 1, 2}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, soup))

	got, err := ReadOBJ(&buf)
	require.NoError(t, err)

	assert.Equal(t, soup.Positions, got.Positions)
	assert.Equal(t, soup.Faces, got.Faces)
}
