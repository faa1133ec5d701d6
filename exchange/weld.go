package exchange

import (
	"github.com/Cubernator/MeshReduction/geom"
	"github.com/Cubernator/MeshReduction/spatial"
)

// Weld merges vertices of soup that lie within epsilon of each other,
// remapping face indices accordingly. Real OBJ exports frequently emit
// one vertex per face corner (so every triangle is its own disconnected
// island); welding turns that into the union-find-free, roughly
// manifold input the half-edge core expects.
//
// Vertices are looked up via a spatial.Octree instead of an all-pairs
// scan, so Weld stays sub-quadratic on large soups.
func Weld(soup TriangleSoup, epsilon float64) TriangleSoup {
	if len(soup.Positions) == 0 {
		return soup
	}

	bounds := geom.NewAABBFromPoints(soup.Positions).Buffer(0.01)
	tree := spatial.NewOctree(bounds)

	remap := make([]int, len(soup.Positions))
	kept := make([]geom.Vector, 0, len(soup.Positions))
	var keptNormals []geom.Vector
	hasNormals := len(soup.Normals) == len(soup.Positions)
	if hasNormals {
		keptNormals = make([]geom.Vector, 0, len(soup.Positions))
	}

	half := geom.NewVector(epsilon, epsilon, epsilon)

	for i, p := range soup.Positions {
		query := geom.NewAABB(p, half)
		match := -1

		for _, candidate := range tree.Query(query) {
			if kept[candidate].Sub(p).Mag() <= epsilon {
				match = candidate
				break
			}
		}

		if match >= 0 {
			remap[i] = match
			continue
		}

		newIndex := len(kept)
		kept = append(kept, p)
		if hasNormals {
			keptNormals = append(keptNormals, soup.Normals[i])
		}
		_ = tree.Insert(p)
		remap[i] = newIndex
	}

	faces := make([][3]int, len(soup.Faces))
	for i, f := range soup.Faces {
		faces[i] = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
	}

	return TriangleSoup{
		Name:        soup.Name,
		Positions:   kept,
		Normals:     keptNormals,
		Faces:       faces,
		MaterialIdx: soup.MaterialIdx,
	}
}
