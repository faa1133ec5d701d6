// Package decimate implements the quadric-error-metric pair-contraction
// decimator: given a halfedge.Mesh and a target face count, it
// repeatedly collapses the cheapest contractable vertex pair until the
// target is reached or no further progress can be made.
package decimate

import (
	"container/heap"

	"github.com/Cubernator/MeshReduction/geom"
	"github.com/Cubernator/MeshReduction/halfedge"
)

// BoundaryPenalty weights the imaginary crease plane added to a
// boundary vertex's quadric, discouraging the decimator from eroding
// mesh boundaries.
const BoundaryPenalty = 100.0

// VertexPair is a candidate edge contraction: the undirected pair
// (V0, V1), the position the pair would collapse to, and its quadric
// cost. Removed marks a pair popped from the heap but not yet known to
// be contractable or stale; isValid reports whether the pair has been
// invalidated (contracted itself, or found to duplicate another pair
// after a merge).
type VertexPair struct {
	V0, V1  halfedge.MeshIndex
	NewPos  geom.Vector
	Cost    float64
	Removed bool

	heapIndex int // position in the decimator's heap, -1 if absent
}

func (p *VertexPair) isValid() bool {
	return p.V0 != halfedge.Invalid && p.V1 != halfedge.Invalid
}

func (p *VertexPair) invalidate() {
	p.V0, p.V1 = halfedge.Invalid, halfedge.Invalid
}

// Decimator drives the main contraction loop over a mesh. It implements
// container/heap.Interface directly over its own pair array, standing
// in for the source implementation's Fibonacci heap -- container/heap
// supports the same decrease-key operation via heap.Fix, which is all
// the algorithm actually needs.
type Decimator struct {
	mesh *halfedge.Mesh

	targetFaceCount      int
	oldFaceCount         int
	currentFaceCount     int
	lastAttemptFaceCount int
	boundaryPenalty      float64
	iterations           int

	quadrics      []geom.Quadric
	pairs         []VertexPair
	heapOrder     []int
	pairsByVertex map[halfedge.MeshIndex][]int
}

// Config holds the tunables spec.md §6 calls out as configuration: the
// triangle count to stop at and the boundary-crease quadric weight.
type Config struct {
	TargetFaceCount int
	BoundaryPenalty float64
}

// DefaultConfig returns the spec's defaults: no boundary-penalty
// override beyond BoundaryPenalty.
func DefaultConfig(targetFaceCount int) Config {
	return Config{TargetFaceCount: targetFaceCount, BoundaryPenalty: BoundaryPenalty}
}

// NewDecimator prepares a decimator targeting targetFaceCount triangles
// on mesh, using the default boundary penalty. Call Init before the
// first Iterate/Run.
func NewDecimator(mesh *halfedge.Mesh, targetFaceCount int) *Decimator {
	return NewDecimatorWithConfig(mesh, DefaultConfig(targetFaceCount))
}

// NewDecimatorWithConfig prepares a decimator using an explicit Config,
// e.g. to override the boundary penalty for meshes with deliberately
// noisy boundaries.
func NewDecimatorWithConfig(mesh *halfedge.Mesh, cfg Config) *Decimator {
	return &Decimator{
		mesh:            mesh,
		targetFaceCount: cfg.TargetFaceCount,
		boundaryPenalty: cfg.BoundaryPenalty,
	}
}

// Init computes per-vertex quadrics and the initial pair set. It must
// be called exactly once before Iterate or Run.
func (d *Decimator) Init() {
	d.oldFaceCount = d.mesh.FaceCount()
	d.currentFaceCount = d.oldFaceCount
	d.lastAttemptFaceCount = d.oldFaceCount

	d.computeQuadrics()
	d.initPairs()
	d.initHelpers()
}

// computeQuadrics implements spec §4.6: for every vertex, accumulate a
// plane quadric per non-boundary incident face, plus a penalized
// perpendicular crease-plane quadric at every boundary edge touching
// the vertex.
func (d *Decimator) computeQuadrics() {
	n := d.mesh.NumVertices()
	d.quadrics = make([]geom.Quadric, n)

	for v := 0; v < n; v++ {
		vi := halfedge.MeshIndex(v)
		vpos := d.mesh.VertexPosition(vi)
		var q geom.Quadric

		for _, e := range d.mesh.EdgeFan(vi).All() {
			be := halfedge.Invalid

			if d.mesh.IsBoundary(e) {
				be = d.mesh.EdgeOpposite(e)
			} else {
				if d.mesh.IsBoundary(d.mesh.EdgeOpposite(e)) {
					be = e
				}
				f := d.mesh.EdgeFaceIndex(e)
				fn := d.mesh.FaceNormal(f)
				q = q.Add(geom.NewPointQuadric(fn, vpos))
			}

			if be != halfedge.Invalid {
				of := d.mesh.EdgeFaceIndex(be)
				on := d.mesh.FaceNormal(of)
				ev := d.mesh.EdgeVector(be)

				cpn := ev.Cross(on).Unit()
				q = q.Add(geom.NewPointQuadric(cpn, vpos).Scale(d.boundaryPenalty))
			}
		}

		d.quadrics[v] = q
	}
}

// computePairCost implements spec §4.7 and fixes the pair's position in
// the heap if its cost changed while it was present there.
func (d *Decimator) computePairCost(p int) {
	pair := &d.pairs[p]

	q := d.quadrics[pair.V0].Add(d.quadrics[pair.V1])

	if pos, cost, ok := q.Optimum(); ok {
		pair.NewPos = pos
		pair.Cost = cost
	} else {
		p0 := d.mesh.VertexPosition(pair.V0)
		p1 := d.mesh.VertexPosition(pair.V1)
		pm := p0.Midpoint(p1)

		best := p0
		bestCost := q.Eval(p0)
		for _, candidate := range []geom.Vector{p1, pm} {
			c := q.Eval(candidate)
			if c < bestCost {
				bestCost = c
				best = candidate
			}
		}
		pair.NewPos = best
		pair.Cost = bestCost
	}

	if !pair.Removed && pair.heapIndex != -1 {
		heap.Fix(d, pair.heapIndex)
	}
}

// initPairs builds the flat pair array from the set of undirected
// edges: one pair per half-edge/opposite pair, skipping the opposite
// once its twin has been processed.
func (d *Decimator) initPairs() {
	n := d.mesh.NumHalfEdges()
	skip := make([]bool, n)

	d.pairs = make([]VertexPair, 0, n/2)

	for e := 0; e < n; e++ {
		if skip[e] {
			continue
		}
		ei := halfedge.MeshIndex(e)
		eo := d.mesh.EdgeOpposite(ei)
		skip[eo] = true

		v0 := d.mesh.From(ei)
		v1 := d.mesh.End(ei)

		d.pairs = append(d.pairs, VertexPair{V0: v0, V1: v1, heapIndex: -1})
		d.computePairCost(len(d.pairs) - 1)
	}
}

// cleanupPairs drops invalidated pairs from the flat array (a
// remove_if-style compaction).
func (d *Decimator) cleanupPairs() {
	write := 0
	for read := range d.pairs {
		if !d.pairs[read].isValid() {
			continue
		}
		if write != read {
			d.pairs[write] = d.pairs[read]
		}
		write++
	}
	d.pairs = d.pairs[:write]
}

// initHelpers rebuilds the heap and the vertex multimap from the
// current (valid) pair set.
func (d *Decimator) initHelpers() {
	d.heapOrder = d.heapOrder[:0]
	d.pairsByVertex = make(map[halfedge.MeshIndex][]int, len(d.pairs)*2)

	for p := range d.pairs {
		pair := &d.pairs[p]
		if !pair.isValid() {
			continue
		}

		d.pairsByVertex[pair.V0] = append(d.pairsByVertex[pair.V0], p)
		d.pairsByVertex[pair.V1] = append(d.pairsByVertex[pair.V1], p)

		pair.Removed = false
		heap.Push(d, p)
	}
}

func (d *Decimator) isPairContractable(pair *VertexPair) bool {
	return d.mesh.IsPairContractable(pair.V0, pair.V1, pair.NewPos)
}

// Iterate performs one contraction attempt and reports whether the
// decimator should keep going (false means the target was reached, or
// no further progress is possible).
func (d *Decimator) Iterate() bool {
	d.iterations++

	if d.Len() == 0 {
		if d.currentFaceCount == d.lastAttemptFaceCount {
			return false
		}

		d.lastAttemptFaceCount = d.currentFaceCount
		d.cleanupPairs()
		d.initHelpers()

		if d.Len() == 0 {
			return false
		}
	}

	p := heap.Pop(d).(int)
	pair := &d.pairs[p]
	pair.Removed = true

	if !pair.isValid() || !d.isPairContractable(pair) {
		return true
	}

	v0, v1 := pair.V0, pair.V1
	e := d.mesh.ConnectingEdge(v0, v1)

	d.currentFaceCount -= d.mesh.CollapseEdge(e, pair.NewPos)

	// Rewire every other pair indexed by v1 onto v0.
	v1Pairs := d.pairsByVertex[v1]
	for _, pi := range v1Pairs {
		if pi == p {
			continue
		}
		other := &d.pairs[pi]
		if !other.isValid() {
			continue
		}

		d.pairsByVertex[v0] = append(d.pairsByVertex[v0], pi)

		if other.V0 == v1 {
			other.V0 = v0
		} else {
			other.V1 = v0
		}
	}
	delete(d.pairsByVertex, v1)

	pair.invalidate()
	d.quadrics[v0] = d.quadrics[v0].Add(d.quadrics[v1])

	seen := make(map[halfedge.MeshIndex]bool)
	for _, pi := range d.pairsByVertex[v0] {
		other := &d.pairs[pi]
		if !other.isValid() {
			continue
		}

		ov := other.V1
		if other.V0 != v0 {
			ov = other.V0
		}

		if seen[ov] {
			other.invalidate()
			continue
		}
		seen[ov] = true
		d.computePairCost(pi)

		for _, vp := range d.pairsByVertex[ov] {
			vpair := &d.pairs[vp]
			if vpair.isValid() && vpair.Removed {
				if d.isPairContractable(vpair) {
					vpair.Removed = false
					heap.Push(d, vp)
				}
			}
		}
	}

	return d.currentFaceCount > d.targetFaceCount
}

// ProgressFunc reports fractional progress in [0, 1] and returns false
// to request an early stop.
type ProgressFunc func(progress float64) bool

// Run drives Iterate to completion (or abort), reporting progress after
// every Iterate call, whether or not that attempt contracted a pair. It
// always finishes by compacting the
// mesh and recomputing normals, matching the reference decimator's
// destructor behavior, so the mesh is left in a consistent state even
// after an abort.
func (d *Decimator) Run(progress ProgressFunc) {
	defer func() {
		d.mesh.CleanupData()
		d.mesh.RecomputeNormals()
	}()

	for {
		keepGoing := d.Iterate()

		if progress != nil && !progress(d.Progress()) {
			return
		}
		if !keepGoing {
			return
		}
	}
}

// Progress returns the fraction of the planned reduction completed so
// far, in [0, 1].
func (d *Decimator) Progress() float64 {
	startDiff := d.oldFaceCount - d.targetFaceCount
	if startDiff <= 0 {
		return 1
	}

	diff := d.currentFaceCount - d.targetFaceCount
	if diff < 0 {
		diff = 0
	}

	return 1 - float64(diff)/float64(startDiff)
}

// Stats summarizes a completed (or aborted) decimation run.
type Stats struct {
	InitialFaces int
	FinalFaces   int
	TargetFaces  int
	Iterations   int
}

// Stats reports the decimator's face-count bookkeeping.
func (d *Decimator) Stats() Stats {
	return Stats{
		InitialFaces: d.oldFaceCount,
		FinalFaces:   d.currentFaceCount,
		TargetFaces:  d.targetFaceCount,
		Iterations:   d.iterations,
	}
}

// Len, Less, Swap, Push and Pop implement container/heap.Interface over
// d.heapOrder, ordering pair indices by ascending cost.
func (d *Decimator) Len() int { return len(d.heapOrder) }

func (d *Decimator) Less(i, j int) bool {
	return d.pairs[d.heapOrder[i]].Cost < d.pairs[d.heapOrder[j]].Cost
}

func (d *Decimator) Swap(i, j int) {
	d.heapOrder[i], d.heapOrder[j] = d.heapOrder[j], d.heapOrder[i]
	d.pairs[d.heapOrder[i]].heapIndex = i
	d.pairs[d.heapOrder[j]].heapIndex = j
}

func (d *Decimator) Push(x interface{}) {
	idx := x.(int)
	d.pairs[idx].heapIndex = len(d.heapOrder)
	d.heapOrder = append(d.heapOrder, idx)
}

func (d *Decimator) Pop() interface{} {
	n := len(d.heapOrder)
	idx := d.heapOrder[n-1]
	d.heapOrder = d.heapOrder[:n-1]
	d.pairs[idx].heapIndex = -1
	return idx
}
