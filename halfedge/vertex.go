package halfedge

import "github.com/Cubernator/MeshReduction/geom"

// Vertex holds a position, a normal, and an anchor half-edge. If the
// vertex lies on the mesh boundary, Edge MUST reference a boundary
// half-edge (invariant 5).
type Vertex struct {
	Position geom.Vector
	Normal   geom.Vector
	Edge     MeshIndex
}

// isLive reports whether v has not been invalidated by CollapseEdge.
func (v Vertex) isLive() bool {
	return v.Edge != Invalid
}
