package halfedge

import (
	"fmt"
	"sync"

	"github.com/Cubernator/MeshReduction/geom"
)

// Mesh is the connectivity + geometry container: vertex positions and
// normals plus a half-edge topology. It supports incremental edge
// collapse, vertex fan iteration, compaction, and normal recomputation.
//
// Mesh exclusively owns its three arrays. It embeds a Mutex so a reader
// (e.g. a UI thread) and a decimation run can coordinate access -- see
// spec.md §5; the core itself never locks this mutex, that is the
// caller's responsibility.
type Mesh struct {
	sync.Mutex

	vertices  []Vertex
	halfEdges []HalfEdge
	faces     []Face

	liveVertexCount int
	liveFaceCount   int

	importedVertexCount   int
	importedHalfEdgeCount int
	importedFaceCount     int

	// srcPositions/srcNormals/srcFaces cache the original imported
	// triangle soup so Reset can rebuild from scratch.
	srcPositions []geom.Vector
	srcNormals   []geom.Vector
	srcFaces     [][3]int
}

// NewMesh constructs a Mesh from a triangle soup: one position (and,
// optionally, one normal) per vertex, and one vertex-index triple per
// triangle. len(normals) may be less than len(positions), in which case
// the missing normals are left zero until RecomputeNormals is called.
func NewMesh(positions, normals []geom.Vector, faces [][3]int) (*Mesh, error) {
	if len(faces) == 0 {
		return nil, ErrEmptyMesh
	}

	m := &Mesh{
		srcPositions: append([]geom.Vector(nil), positions...),
		srcNormals:   append([]geom.Vector(nil), normals...),
		srcFaces:     append([][3]int(nil), faces...),
	}

	if err := m.build(); err != nil {
		return nil, err
	}

	return m, nil
}

// Reset rebuilds the mesh from its originally imported triangle soup,
// discarding all decimation performed so far.
func (m *Mesh) Reset() error {
	return m.build()
}

// build runs the three-pass construction algorithm of spec.md §4.2.
func (m *Mesh) build() error {
	positions, normals, faces := m.srcPositions, m.srcNormals, m.srcFaces

	m.vertices = make([]Vertex, len(positions))
	for i, p := range positions {
		var n geom.Vector
		if i < len(normals) {
			n = normals[i]
		}
		m.vertices[i] = Vertex{Position: p, Normal: n, Edge: Invalid}
	}

	m.faces = make([]Face, len(faces))
	m.halfEdges = make([]HalfEdge, 0, len(faces)*3)

	type directedKey [2]int
	directed := make(map[directedKey]MeshIndex, len(faces)*3)

	// Pass 1: faces and half-edges.
	for fi, tri := range faces {
		for _, v := range tri {
			if v < 0 || v >= len(m.vertices) {
				return ErrVertexIndexRange
			}
		}

		base := MeshIndex(len(m.halfEdges))
		ids := [3]MeshIndex{base, base + 1, base + 2}
		m.faces[fi] = Face{Edge: base}
		m.halfEdges = append(m.halfEdges, HalfEdge{}, HalfEdge{}, HalfEdge{})

		for j := 0; j < 3; j++ {
			v := tri[j]
			next := ids[(j+1)%3]
			prev := ids[(j+2)%3]

			m.halfEdges[ids[j]] = HalfEdge{
				From:     MeshIndex(v),
				Face:     MeshIndex(fi),
				Next:     next,
				Prev:     prev,
				Opposite: Invalid,
			}
			m.vertices[v].Edge = ids[j]

			key := directedKey{v, tri[(j+1)%3]}
			if _, exists := directed[key]; exists {
				return ErrDuplicateEdge
			}
			directed[key] = ids[j]
		}
	}

	// Pass 2: opposites, creating boundary half-edges where no twin
	// exists and recording non-manifold second boundary incidences.
	vertexHasBoundary := make([]bool, len(m.vertices))
	var nonManifold []MeshIndex

	originalCount := len(m.halfEdges)
	for e := 0; e < originalCount; e++ {
		ei := MeshIndex(e)
		if m.halfEdges[e].Opposite != Invalid {
			continue
		}

		a := m.halfEdges[e].From
		b := m.halfEdges[m.halfEdges[e].Next].From
		reverse := directedKey{int(b), int(a)}

		if twin, ok := directed[reverse]; ok {
			m.halfEdges[e].Opposite = twin
			m.halfEdges[twin].Opposite = ei
			continue
		}

		boundaryIdx := MeshIndex(len(m.halfEdges))
		m.halfEdges = append(m.halfEdges, HalfEdge{
			From: b, Face: Invalid, Opposite: ei, Next: Invalid, Prev: Invalid,
		})
		m.halfEdges[e].Opposite = boundaryIdx

		if vertexHasBoundary[b] {
			nonManifold = append(nonManifold, boundaryIdx)
		} else {
			vertexHasBoundary[b] = true
			m.vertices[b].Edge = boundaryIdx
		}
	}

	// Pass 3: non-manifold fix-up -- split the vertex for every extra
	// boundary incidence, reparenting its separate fan.
	for _, be := range nonManifold {
		oldV := m.halfEdges[be].From
		newV := MeshIndex(len(m.vertices))
		m.vertices = append(m.vertices, Vertex{
			Position: m.vertices[oldV].Position,
			Normal:   m.vertices[oldV].Normal,
			Edge:     be,
		})

		for _, fe := range m.EdgeFan(newV).All() {
			m.halfEdges[fe].From = newV
		}
	}

	m.liveVertexCount = len(m.vertices)
	m.liveFaceCount = len(m.faces)
	m.importedVertexCount = len(m.vertices)
	m.importedHalfEdgeCount = len(m.halfEdges)
	m.importedFaceCount = len(m.faces)

	return nil
}

// NumVertices returns the length of the vertex array, which may include
// invalidated slots if CleanupData has not yet run.
func (m *Mesh) NumVertices() int { return len(m.vertices) }

// NumFaces returns the length of the face array.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// NumHalfEdges returns the length of the half-edge array.
func (m *Mesh) NumHalfEdges() int { return len(m.halfEdges) }

// LiveVertexCount returns the number of vertices not yet invalidated by
// a collapse.
func (m *Mesh) LiveVertexCount() int { return m.liveVertexCount }

// FaceCount returns the number of faces not yet invalidated by a
// collapse -- the mesh's current "dirty" triangle count.
func (m *Mesh) FaceCount() int { return m.liveFaceCount }

// ImportedVertexCount, ImportedHalfEdgeCount and ImportedFaceCount
// return the counts cached at construction time, used to detect a dirty
// mesh and to compute decimation progress.
func (m *Mesh) ImportedVertexCount() int   { return m.importedVertexCount }
func (m *Mesh) ImportedHalfEdgeCount() int { return m.importedHalfEdgeCount }
func (m *Mesh) ImportedFaceCount() int     { return m.importedFaceCount }

// IsDirty reports whether the mesh's current face count differs from
// its imported face count.
func (m *Mesh) IsDirty() bool { return m.liveFaceCount != m.importedFaceCount }

// HalfEdgeAt, VertexAt and FaceAt return pointers into the owning
// array, letting callers read or write fields directly.
func (m *Mesh) HalfEdgeAt(e MeshIndex) *HalfEdge { return &m.halfEdges[e] }
func (m *Mesh) VertexAt(v MeshIndex) *Vertex      { return &m.vertices[v] }
func (m *Mesh) FaceAt(f MeshIndex) *Face          { return &m.faces[f] }

// From returns the vertex half-edge e points away from.
func (m *Mesh) From(e MeshIndex) MeshIndex { return m.halfEdges[e].From }

// End returns the vertex half-edge e points towards.
func (m *Mesh) End(e MeshIndex) MeshIndex { return m.halfEdges[m.halfEdges[e].Opposite].From }

// Next returns the next half-edge around e's face.
func (m *Mesh) Next(e MeshIndex) MeshIndex { return m.halfEdges[e].Next }

// Prev returns the previous half-edge around e's face.
func (m *Mesh) Prev(e MeshIndex) MeshIndex { return m.halfEdges[e].Prev }

// EdgeOpposite returns e's paired half-edge.
func (m *Mesh) EdgeOpposite(e MeshIndex) MeshIndex { return m.halfEdges[e].Opposite }

// EdgeFaceIndex returns the face bordered by e, or Invalid if e is a
// boundary half-edge.
func (m *Mesh) EdgeFaceIndex(e MeshIndex) MeshIndex { return m.halfEdges[e].Face }

// IsBoundary reports whether half-edge e has no incident face.
func (m *Mesh) IsBoundary(e MeshIndex) bool { return m.halfEdges[e].IsBoundary() }

// VertexEdge returns vertex v's anchor half-edge.
func (m *Mesh) VertexEdge(v MeshIndex) MeshIndex { return m.vertices[v].Edge }

// VertexPosition returns vertex v's position.
func (m *Mesh) VertexPosition(v MeshIndex) geom.Vector { return m.vertices[v].Position }

// VertexNormal returns vertex v's normal.
func (m *Mesh) VertexNormal(v MeshIndex) geom.Vector { return m.vertices[v].Normal }

// IsVertexBoundary reports whether v lies on the mesh boundary -- per
// invariant 5, equivalent to its anchor half-edge being a boundary edge.
func (m *Mesh) IsVertexBoundary(v MeshIndex) bool {
	return m.IsBoundary(m.vertices[v].Edge)
}

// FaceEdge returns face f's anchor half-edge.
func (m *Mesh) FaceEdge(f MeshIndex) MeshIndex { return m.faces[f].Edge }

// FaceNormal computes the (unit) normal of triangle f from its three
// vertex positions.
func (m *Mesh) FaceNormal(f MeshIndex) geom.Vector {
	e0 := m.faces[f].Edge
	e1 := m.halfEdges[e0].Next
	e2 := m.halfEdges[e1].Next

	p0 := m.vertices[m.halfEdges[e0].From].Position
	p1 := m.vertices[m.halfEdges[e1].From].Position
	p2 := m.vertices[m.halfEdges[e2].From].Position

	return geom.TriangleNormal(p0, p1, p2)
}

// EdgeVector returns the displacement from half-edge e's start to its
// end. Works for boundary half-edges too, since Opposite is always
// valid.
func (m *Mesh) EdgeVector(e MeshIndex) geom.Vector {
	start := m.halfEdges[e].From
	end := m.End(e)
	return m.vertices[end].Position.Sub(m.vertices[start].Position)
}

// ConnectingEdge returns the half-edge from v0 to v1, or Invalid if v0
// and v1 are not connected by an edge.
func (m *Mesh) ConnectingEdge(v0, v1 MeshIndex) MeshIndex {
	for _, e := range m.EdgeFan(v0).All() {
		if m.End(e) == v1 {
			return e
		}
	}
	return Invalid
}

// invalidateHalfEdge overwrites half-edge e with the invalid sentinel
// tuple.
func (m *Mesh) invalidateHalfEdge(e MeshIndex) {
	m.halfEdges[e] = invalidHalfEdge
}

// CollapseEdge contracts e = (v0 -> v1) so that v1 is merged into v0 at
// newPos, removing the (up to two) triangles incident to e. The caller
// MUST have established contractability via IsPairContractable; this
// method performs no topological checks of its own. It returns the
// number of faces removed.
func (m *Mesh) CollapseEdge(e MeshIndex, newPos geom.Vector) int {
	v0 := m.halfEdges[e].From
	v1 := m.End(e)
	eo := m.halfEdges[e].Opposite

	// Step 1: choose v0's surviving anchor edge.
	var nve MeshIndex
	switch {
	case !m.IsVertexBoundary(v0) && m.IsVertexBoundary(v1):
		nve = m.vertices[v1].Edge
	case m.vertices[v0].Edge == e:
		if m.IsBoundary(e) {
			nve = m.vertices[v1].Edge
		} else {
			nve = m.halfEdges[m.halfEdges[e].Prev].Opposite
		}
	case !m.IsBoundary(eo) && m.vertices[v0].Edge == m.halfEdges[eo].Next:
		nve = m.halfEdges[m.halfEdges[m.vertices[v0].Edge].Opposite].Next
	default:
		nve = m.vertices[v0].Edge
	}

	// Step 2: move v0 to the collapsed position and adopt the anchor.
	m.vertices[v0].Edge = nve
	m.vertices[v0].Position = newPos

	// Step 3: reparent v1's fan to v0 (captured before any mutation).
	for _, fe := range m.EdgeFan(v1).All() {
		m.halfEdges[fe].From = v0
	}

	// Step 4: stitch the outer edges of each incident (non-boundary)
	// triangle and invalidate it.
	removed := 0
	for _, x := range []MeshIndex{e, eo} {
		if m.IsBoundary(x) {
			continue
		}

		pe := m.halfEdges[x].Prev
		ne := m.halfEdges[x].Next
		peo := m.halfEdges[pe].Opposite
		neo := m.halfEdges[ne].Opposite

		m.halfEdges[peo].Opposite = neo
		m.halfEdges[neo].Opposite = peo

		anchorVertex := m.halfEdges[pe].From
		if m.vertices[anchorVertex].Edge == pe {
			m.vertices[anchorVertex].Edge = neo
		}

		m.faces[m.halfEdges[x].Face].Edge = Invalid

		m.invalidateHalfEdge(x)
		m.invalidateHalfEdge(ne)
		m.invalidateHalfEdge(pe)

		removed++
	}

	// Step 5: remove v1.
	m.vertices[v1].Edge = Invalid
	m.liveVertexCount--
	m.liveFaceCount -= removed

	return removed
}

// CleanupData compacts the vertex, half-edge, and face arrays, removing
// every invalidated entry and fixing up every cross-reference that
// named a moved slot. After CleanupData, all three arrays are dense.
func (m *Mesh) CleanupData() {
	faceRemap := compact(len(m.faces),
		func(i int) bool { return m.faces[i].isLive() },
		func(dst, src int) { m.faces[dst] = m.faces[src] })
	m.faces = m.faces[:len(faceRemap.kept)]
	for i := range m.halfEdges {
		if !m.halfEdges[i].isLive() {
			continue
		}
		m.halfEdges[i].Face = faceRemap.get(m.halfEdges[i].Face)
	}

	heRemap := compact(len(m.halfEdges),
		func(i int) bool { return m.halfEdges[i].isLive() },
		func(dst, src int) { m.halfEdges[dst] = m.halfEdges[src] })
	m.halfEdges = m.halfEdges[:len(heRemap.kept)]
	for i := range m.halfEdges {
		m.halfEdges[i].Next = heRemap.get(m.halfEdges[i].Next)
		m.halfEdges[i].Prev = heRemap.get(m.halfEdges[i].Prev)
		m.halfEdges[i].Opposite = heRemap.get(m.halfEdges[i].Opposite)
	}
	for i := range m.faces {
		m.faces[i].Edge = heRemap.get(m.faces[i].Edge)
	}
	for i := range m.vertices {
		if !m.vertices[i].isLive() {
			continue
		}
		m.vertices[i].Edge = heRemap.get(m.vertices[i].Edge)
	}

	vertexRemap := compact(len(m.vertices),
		func(i int) bool { return m.vertices[i].isLive() },
		func(dst, src int) { m.vertices[dst] = m.vertices[src] })
	m.vertices = m.vertices[:len(vertexRemap.kept)]
	for i := range m.halfEdges {
		m.halfEdges[i].From = vertexRemap.get(m.halfEdges[i].From)
	}

	m.liveVertexCount = len(m.vertices)
	m.liveFaceCount = len(m.faces)
}

// indexRemap maps old indices to new (dense) ones after compaction.
type indexRemap struct {
	kept []MeshIndex // old index -> new index, or Invalid if removed
}

func (r indexRemap) get(old MeshIndex) MeshIndex {
	if old == Invalid {
		return Invalid
	}
	return r.kept[old]
}

// compact performs a stable remove_if-style compaction over n slots:
// live(i) decides whether slot i survives, and move(dst, src) copies a
// surviving slot into its new position.
func compact(n int, live func(int) bool, move func(dst, src int)) indexRemap {
	remap := indexRemap{kept: make([]MeshIndex, n)}
	write := 0

	for i := 0; i < n; i++ {
		if !live(i) {
			remap.kept[i] = Invalid
			continue
		}
		if write != i {
			move(write, i)
		}
		remap.kept[i] = MeshIndex(write)
		write++
	}

	return remap
}

// RecomputeNormals refreshes every vertex's normal by summing the face
// normals of its non-boundary incident faces and normalizing. A vertex
// whose fan has no non-boundary faces (or whose sum is degenerate)
// receives a placeholder up-normal rather than the zero vector.
func (m *Mesh) RecomputeNormals() {
	placeholder := geom.NewVector(0, 1, 0)

	for i := range m.vertices {
		if !m.vertices[i].isLive() {
			continue
		}

		var sum geom.Vector
		for _, e := range m.EdgeFan(MeshIndex(i)).All() {
			if m.IsBoundary(e) {
				continue
			}
			sum = sum.Add(m.FaceNormal(m.halfEdges[e].Face))
		}

		n := sum.Unit()
		if n == (geom.Vector{}) {
			n = placeholder
		}
		m.vertices[i].Normal = n
	}
}

// Validate checks the global invariants of spec.md §3/§8 and returns the
// first violation found, or nil if the mesh is consistent.
func (m *Mesh) Validate() error {
	for i, he := range m.halfEdges {
		if !he.isLive() {
			continue
		}
		ei := MeshIndex(i)

		if he.Opposite == Invalid {
			return fmt.Errorf("halfedge %d: opposite is invalid", i)
		}
		if m.halfEdges[he.Opposite].Opposite != ei {
			return fmt.Errorf("halfedge %d: opposite(opposite(e)) != e", i)
		}

		if !he.IsBoundary() {
			if m.Next(m.Next(m.Next(ei))) != ei {
				return fmt.Errorf("halfedge %d: next^3(e) != e", i)
			}
			if m.Prev(m.Prev(m.Prev(ei))) != ei {
				return fmt.Errorf("halfedge %d: prev^3(e) != e", i)
			}
		}
	}

	for i, f := range m.faces {
		if !f.isLive() {
			continue
		}
		e := f.Edge
		for k := 0; k < 3; k++ {
			if m.halfEdges[e].Face != MeshIndex(i) {
				return fmt.Errorf("face %d: half-edge %d does not reference its face", i, e)
			}
			e = m.halfEdges[e].Next
		}
	}

	liveHE, liveFaces := 0, 0
	for _, he := range m.halfEdges {
		if he.isLive() {
			liveHE++
		}
	}
	for _, f := range m.faces {
		if f.isLive() {
			liveFaces++
		}
	}

	for i, v := range m.vertices {
		if !v.isLive() {
			continue
		}
		vi := MeshIndex(i)
		fan := m.EdgeFan(vi).All()

		for _, e := range fan {
			if m.halfEdges[e].From != vi {
				return fmt.Errorf("vertex %d: half-edge %d in its fan does not originate there", i, e)
			}
		}

		// A fan walk that stops at a boundary, rather than looping back
		// to its start, belongs to a boundary vertex.
		last := fan[len(fan)-1]
		if m.IsBoundary(m.halfEdges[last].Opposite) && !m.IsBoundary(v.Edge) {
			return fmt.Errorf("vertex %d: boundary vertex's anchor is not a boundary half-edge", i)
		}

		if !m.IsVertexBoundary(vi) && len(fan) < 3 {
			return fmt.Errorf("vertex %d: interior vertex has valency %d < 3", i, len(fan))
		}
	}

	if liveHE%2 != 0 {
		return fmt.Errorf("half-edge count %d is not even", liveHE)
	}
	edgeCount := liveHE / 2
	if float64(edgeCount) < 1.5*float64(liveFaces) {
		return fmt.Errorf("edge count %d is less than 1.5x face count %d", edgeCount, liveFaces)
	}

	return nil
}
