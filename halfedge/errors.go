package halfedge

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEdge is returned by NewMesh when two faces share the
	// same directed vertex pair (a, b) -- a malformed, self-intersecting
	// input.
	ErrDuplicateEdge = errors.New("halfedge: duplicate directed edge in input")

	// ErrEmptyMesh is returned by NewMesh for an input with no faces.
	ErrEmptyMesh = errors.New("halfedge: mesh has no faces")

	// ErrVertexIndexRange is returned by NewMesh when a face references
	// a vertex index outside [0, numVertices).
	ErrVertexIndexRange = errors.New("halfedge: face references out-of-range vertex index")
)

// FanCorruptionError reports that an edge-fan walk exceeded its
// iteration guard, indicating corrupted half-edge topology (spec.md
// error kind 2: should not occur with correct code). It is delivered by
// panicking from EdgeFan.All and recovered by driver.Driver.Start (the
// decimate package does not recover it), matching the "fatal error carrying a diagnostic
// message" contract without threading an error return through every
// fan-walk call site.
type FanCorruptionError struct {
	Start, Current MeshIndex
	Iterations     int
}

func (e *FanCorruptionError) Error() string {
	return fmt.Sprintf(
		"halfedge: edge fan exceeded %d iterations (start=%d current=%d)",
		e.Iterations, e.Start, e.Current,
	)
}
