package halfedge

// maxFanIterations is the defensive guard against infinite loops caused
// by corrupted topology (spec.md §4.3, §6).
const maxFanIterations = 1000

// EdgeFan walks every half-edge originating at a single vertex.
type EdgeFan struct {
	mesh  *Mesh
	start MeshIndex
}

// EdgeFan returns the fan of half-edges outgoing from vertex v.
func (m *Mesh) EdgeFan(v MeshIndex) EdgeFan {
	return EdgeFan{mesh: m, start: m.vertices[v].Edge}
}

// All returns every half-edge in the fan, in walk order starting at the
// vertex's anchor edge. It panics with a *FanCorruptionError if the walk
// does not terminate within maxFanIterations; driver.Driver.Start
// recovers that panic and returns it as an error.
func (f EdgeFan) All() []MeshIndex {
	if f.start == Invalid {
		return nil
	}

	result := []MeshIndex{f.start}
	current := f.start

	for iterations := 0; ; iterations++ {
		if iterations > maxFanIterations {
			panic(&FanCorruptionError{Start: f.start, Current: current, Iterations: iterations})
		}

		opp := f.mesh.halfEdges[current].Opposite
		if f.mesh.halfEdges[opp].IsBoundary() {
			break
		}

		next := f.mesh.halfEdges[opp].Next
		if next == f.start {
			break
		}

		current = next
		result = append(result, current)
	}

	return result
}

// Valency returns the number of distinct half-edges visited by the fan
// of vertex v.
func (m *Mesh) Valency(v MeshIndex) int {
	return len(m.EdgeFan(v).All())
}
