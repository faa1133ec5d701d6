package geom

// AABB is an axis-aligned bounding box given by its center and halfsize.
type AABB struct {
	Center   Vector
	HalfSize Vector
}

// NewAABB constructs an AABB from its center and halfsize.
func NewAABB(center, halfSize Vector) AABB {
	return AABB{center, halfSize}
}

// NewAABBFromBounds constructs an AABB from its min/max bounds.
func NewAABBFromBounds(min, max Vector) AABB {
	center := max.Add(min).MulScalar(0.5)
	halfSize := max.Sub(min).MulScalar(0.5)
	return NewAABB(center, halfSize)
}

// NewAABBFromPoints constructs the smallest AABB enclosing points.
// Panics if points is empty.
func NewAABBFromPoints(points []Vector) AABB {
	min := points[0]
	max := points[0]

	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}

	return NewAABBFromBounds(min, max)
}

// Bounds returns the min/max corners of the box.
func (a AABB) Bounds() (min, max Vector) {
	return a.Center.Sub(a.HalfSize), a.Center.Add(a.HalfSize)
}

// Buffer returns a with its halfsize scaled by (1+s), s given as a
// fraction of the original edge length.
func (a AABB) Buffer(s float64) AABB {
	return NewAABB(a.Center, a.HalfSize.MulScalar(1+s))
}

// Octant returns the AABB of one of the box's eight octants, numbered
// 0-7 by the sign of each axis (bit 2 = +X, bit 1 = +Y, bit 0 = +Z).
func (a AABB) Octant(octant int) AABB {
	if octant < 0 || octant >= 8 {
		panic("geom: octant out of range")
	}

	halfSize := a.HalfSize.MulScalar(0.5)
	center := a.Center

	if octant&4 == 4 {
		center[0] += halfSize[0]
	} else {
		center[0] -= halfSize[0]
	}

	if octant&2 == 2 {
		center[1] += halfSize[1]
	} else {
		center[1] -= halfSize[1]
	}

	if octant&1 == 1 {
		center[2] += halfSize[2]
	} else {
		center[2] -= halfSize[2]
	}

	return AABB{center, halfSize}
}

// IntersectsAABB reports whether a and query overlap.
func (a AABB) IntersectsAABB(query AABB) bool {
	aMin, aMax := a.Bounds()
	qMin, qMax := query.Bounds()

	return aMin[0] <= qMax[0] && aMax[0] >= qMin[0] &&
		aMin[1] <= qMax[1] && aMax[1] >= qMin[1] &&
		aMin[2] <= qMax[2] && aMax[2] >= qMin[2]
}
