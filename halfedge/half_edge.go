// Package halfedge implements the index-based half-edge connectivity
// structure used to represent and mutate triangular meshes: vertex and
// face arrays, an edge-fan iterator, incremental edge collapse, and
// compaction.
package halfedge

// MeshIndex is an opaque non-negative identifier for a vertex,
// half-edge, or face. Identifiers are dense indices into the owning
// Mesh's arrays and may be rewritten by CleanupData.
type MeshIndex int32

// Invalid is the sentinel MeshIndex marking absence.
const Invalid MeshIndex = -1

// IsValid reports whether i is not the Invalid sentinel.
func (i MeshIndex) IsValid() bool {
	return i != Invalid
}

// HalfEdge is one directed half of an edge of the mesh.
type HalfEdge struct {
	// From is the vertex this half-edge points away from. Always valid
	// for a live half-edge.
	From MeshIndex

	// Face is the face to the left of this half-edge, or Invalid if
	// this half-edge lies on the mesh boundary.
	Face MeshIndex

	// Opposite is the paired half-edge running in the reverse
	// direction. Always valid for a live half-edge.
	Opposite MeshIndex

	// Next and Prev are the CCW-next and CW-previous half-edges around
	// Face. Both are Invalid iff this half-edge is a boundary edge.
	Next, Prev MeshIndex
}

// IsBoundary reports whether h has no incident face.
func (h HalfEdge) IsBoundary() bool {
	return h.Face == Invalid
}

// isLive reports whether h has not been invalidated by CollapseEdge.
func (h HalfEdge) isLive() bool {
	return h.From != Invalid
}

// invalidHalfEdge is the sentinel tuple written over a removed half-edge.
var invalidHalfEdge = HalfEdge{From: Invalid, Face: Invalid, Opposite: Invalid, Next: Invalid, Prev: Invalid}
