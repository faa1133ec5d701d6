package halfedge

import "github.com/Cubernator/MeshReduction/geom"

// IsPairContractable decides whether collapsing the edge from v0 to v1
// onto newPos would produce a degenerate or non-manifold mesh. It has
// two phases -- topological, then geometric -- and any failure returns
// false. The decimator must call this before CollapseEdge; CollapseEdge
// itself performs no such checks.
func (m *Mesh) IsPairContractable(v0, v1 MeshIndex, newPos geom.Vector) bool {
	e0 := m.ConnectingEdge(v0, v1)
	if e0 == Invalid {
		return false
	}
	e1 := m.halfEdges[e0].Opposite

	bc := 0
	if m.IsVertexBoundary(v0) {
		bc++
	}
	if m.IsVertexBoundary(v1) {
		bc++
	}

	switch bc {
	case 0:
		if m.liveVertexCount <= 4 {
			return false
		}
	case 1:
		if m.liveVertexCount <= 3 {
			return false
		}
	case 2:
		if !m.IsBoundary(e0) && !m.IsBoundary(e1) {
			return false
		}
	}

	if m.Valency(v0) <= 3 && m.Valency(v1) <= 3 {
		return false
	}

	if !m.sharedNeighborsOK(v0, v1, e0, e1) {
		return false
	}

	return m.noFaceFlips(v0, v1, e0, e1, newPos)
}

// sharedNeighborsOK implements the per-shared-neighbor checks of the
// topological phase.
func (m *Mesh) sharedNeighborsOK(v0, v1, e0, e1 MeshIndex) bool {
	neighbors0 := m.neighborSet(v0)

	for _, e := range m.EdgeFan(v1).All() {
		v2 := m.End(e)
		if v2 == v0 {
			continue
		}
		if !neighbors0[v2] {
			continue
		}

		if m.IsVertexBoundary(v2) {
			be := m.vertices[v2].Edge
			other := m.End(be)
			if (other == v0 && m.IsBoundary(e0)) || (other == v1 && m.IsBoundary(e1)) {
				return false
			}
		}

		if m.Valency(v2) <= 3 {
			return false
		}
	}

	return true
}

// neighborSet returns the set of vertices directly connected to v.
func (m *Mesh) neighborSet(v MeshIndex) map[MeshIndex]bool {
	set := make(map[MeshIndex]bool)
	for _, e := range m.EdgeFan(v).All() {
		set[m.End(e)] = true
	}
	return set
}

// noFaceFlips implements the geometric phase: no triangle incident to
// v0 or v1, other than the two collapsing themselves, may have its
// normal flip under the substitution of newPos.
func (m *Mesh) noFaceFlips(v0, v1, e0, e1 MeshIndex, newPos geom.Vector) bool {
	var e0n, e1n MeshIndex = Invalid, Invalid
	if !m.IsBoundary(e0) {
		e0n = m.halfEdges[e0].Next
	}
	if !m.IsBoundary(e1) {
		e1n = m.halfEdges[e1].Next
	}
	excluded := map[MeshIndex]bool{e0: true, e1: true}
	if e0n != Invalid {
		excluded[e0n] = true
	}
	if e1n != Invalid {
		excluded[e1n] = true
	}

	for _, v := range []MeshIndex{v0, v1} {
		for _, e := range m.EdgeFan(v).All() {
			if m.IsBoundary(e) || excluded[e] {
				continue
			}

			f := m.halfEdges[e].Face
			nOld := m.FaceNormal(f)

			next := m.halfEdges[e].Next
			nextNext := m.halfEdges[next].Next
			p1 := m.vertices[m.halfEdges[next].From].Position
			p2 := m.vertices[m.halfEdges[nextNext].From].Position
			nNew := geom.TriangleNormal(newPos, p1, p2)

			if nOld.Dot(nNew) < 0 {
				return false
			}
		}
	}

	return true
}
