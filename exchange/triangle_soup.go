// Package exchange is the import/export boundary between an external
// mesh representation (a flat triangle soup, as produced by a file
// format or a calling application) and the half-edge core.
package exchange

import (
	"errors"

	"github.com/Cubernator/MeshReduction/geom"
	"github.com/Cubernator/MeshReduction/halfedge"
)

// ErrNonTriangular is returned when a face does not have exactly 3
// vertex indices, before any attempt is made to build a Mesh.
var ErrNonTriangular = errors.New("exchange: face is not a triangle")

// TriangleSoup is a flat, unindexed-by-topology mesh representation:
// one position (and optionally one normal) per vertex, one index
// triple per triangle, and the bookkeeping a file format typically
// carries alongside geometry.
type TriangleSoup struct {
	Name        string
	Positions   []geom.Vector
	Normals     []geom.Vector
	Faces       [][3]int
	MaterialIdx int
}

// ToMesh builds a half-edge Mesh from a triangle soup. Every face must
// already be triangular.
func ToMesh(soup TriangleSoup) (*halfedge.Mesh, error) {
	return halfedge.NewMesh(soup.Positions, soup.Normals, soup.Faces)
}

// ToTriangleSoup flattens mesh back into a triangle soup for export.
// Faces whose vertices have been invalidated by a collapse must already
// be removed by CleanupData before calling this.
func ToTriangleSoup(mesh *halfedge.Mesh, name string, materialIdx int) TriangleSoup {
	n := mesh.NumVertices()
	positions := make([]geom.Vector, n)
	normals := make([]geom.Vector, n)
	for v := 0; v < n; v++ {
		vi := halfedge.MeshIndex(v)
		positions[v] = mesh.VertexPosition(vi)
		normals[v] = mesh.VertexNormal(vi)
	}

	faceCount := mesh.NumFaces()
	faces := make([][3]int, 0, faceCount)
	for f := 0; f < faceCount; f++ {
		fi := halfedge.MeshIndex(f)
		e0 := mesh.FaceEdge(fi)
		e1 := mesh.Next(e0)
		e2 := mesh.Next(e1)

		faces = append(faces, [3]int{
			int(mesh.From(e0)),
			int(mesh.From(e1)),
			int(mesh.From(e2)),
		})
	}

	return TriangleSoup{
		Name:        name,
		Positions:   positions,
		Normals:     normals,
		Faces:       faces,
		MaterialIdx: materialIdx,
	}
}
