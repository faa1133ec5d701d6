package halfedge

// Face is always a triangle, stored as a single half-edge bordering it;
// the other two are reached by following Next.
type Face struct {
	Edge MeshIndex
}

// isLive reports whether f has not been invalidated by CollapseEdge.
func (f Face) isLive() bool {
	return f.Edge != Invalid
}
