package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SingularityThreshold is the minimum |det(A)| for which Quadric.Optimum
// will attempt to solve for a minimizer. Below this, A is considered too
// ill-conditioned to invert usefully.
const SingularityThreshold = 1e-3

// SymMatrix3 is a symmetric 3x3 matrix stored as its six independent
// entries.
type SymMatrix3 struct {
	M11, M12, M13, M22, M23, M33 float64
}

// Add returns a + b.
func (a SymMatrix3) Add(b SymMatrix3) SymMatrix3 {
	return SymMatrix3{
		M11: a.M11 + b.M11,
		M12: a.M12 + b.M12,
		M13: a.M13 + b.M13,
		M22: a.M22 + b.M22,
		M23: a.M23 + b.M23,
		M33: a.M33 + b.M33,
	}
}

// Scale returns a scaled by factor.
func (a SymMatrix3) Scale(factor float64) SymMatrix3 {
	return SymMatrix3{
		M11: a.M11 * factor,
		M12: a.M12 * factor,
		M13: a.M13 * factor,
		M22: a.M22 * factor,
		M23: a.M23 * factor,
		M33: a.M33 * factor,
	}
}

// MulVector computes a * v, expanding the matrix's symmetry.
func (a SymMatrix3) MulVector(v Vector) Vector {
	return Vector{
		a.M11*v[0] + a.M12*v[1] + a.M13*v[2],
		a.M12*v[0] + a.M22*v[1] + a.M23*v[2],
		a.M13*v[0] + a.M23*v[1] + a.M33*v[2],
	}
}

// Full returns a as a dense 3x3 matrix, for use with gonum's linear
// algebra routines.
func (a SymMatrix3) Full() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		a.M11, a.M12, a.M13,
		a.M12, a.M22, a.M23,
		a.M13, a.M23, a.M33,
	})
}

// outerSelf returns the symmetric matrix n * n^T.
func outerSelf(n Vector) SymMatrix3 {
	return SymMatrix3{
		M11: n[0] * n[0],
		M12: n[0] * n[1],
		M13: n[0] * n[2],
		M22: n[1] * n[1],
		M23: n[1] * n[2],
		M33: n[2] * n[2],
	}
}

// Quadric represents the quadratic error function
//
//	Q(v) = v^T A v + 2 b^T v + c
type Quadric struct {
	A SymMatrix3
	B Vector
	C float64
}

// NewPlaneQuadric constructs the quadric of the plane n.v + d = 0, with
// n a unit normal.
func NewPlaneQuadric(n Vector, d float64) Quadric {
	return Quadric{
		A: outerSelf(n),
		B: n.MulScalar(d),
		C: d * d,
	}
}

// NewPointQuadric constructs the quadric of the plane through point p
// with unit normal n. Shorthand for NewPlaneQuadric(n, -n.Dot(p)).
func NewPointQuadric(n, p Vector) Quadric {
	return NewPlaneQuadric(n, -n.Dot(p))
}

// Add returns q + other.
func (q Quadric) Add(other Quadric) Quadric {
	return Quadric{
		A: q.A.Add(other.A),
		B: q.B.Add(other.B),
		C: q.C + other.C,
	}
}

// Scale returns q scaled by factor.
func (q Quadric) Scale(factor float64) Quadric {
	return Quadric{
		A: q.A.Scale(factor),
		B: q.B.MulScalar(factor),
		C: q.C * factor,
	}
}

// Eval evaluates Q(v).
func (q Quadric) Eval(v Vector) float64 {
	return v.Dot(q.A.MulVector(v)) + 2*q.B.Dot(v) + q.C
}

// Optimum computes the position minimizing Q and the value of Q there.
// It returns false if |det(A)| < SingularityThreshold, in which case the
// matrix is too singular to invert and callers must fall back to
// evaluating Q at a small set of candidate positions (see the decimate
// package's pair cost computation).
func (q Quadric) Optimum() (pos Vector, cost float64, ok bool) {
	full := q.A.Full()

	det := mat.Det(full)
	if math.Abs(det) < SingularityThreshold {
		return Vector{}, 0, false
	}

	negB := mat.NewVecDense(3, []float64{-q.B[0], -q.B[1], -q.B[2]})

	var x mat.VecDense
	if err := x.SolveVec(full, negB); err != nil {
		return Vector{}, 0, false
	}

	v := Vector{x.AtVec(0), x.AtVec(1), x.AtVec(2)}
	cost = q.B.Dot(v) + q.C

	return v, cost, true
}
