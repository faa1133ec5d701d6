// Package driver hosts a decimation run against a halfedge.Mesh,
// coordinating exclusive access to the mesh for the run's duration and
// translating the core's panic-based corruption signal into a normal
// error return.
package driver

import (
	"fmt"
	"sync"

	"github.com/Cubernator/MeshReduction/decimate"
	"github.com/Cubernator/MeshReduction/halfedge"
)

// ProgressFunc reports a run's fractional progress, in [0, 1]. Return
// false to request the run stop early.
type ProgressFunc func(progress float64) bool

// Driver owns the abort flag for one decimation run. A Driver may be
// reused across calls to Start. Start locks the target mesh, which
// serializes runs on the same mesh; concurrent Start calls on one
// Driver with different meshes are not prevented and share its abort
// flag.
type Driver struct {
	abortMu sync.Mutex
	abort   bool
}

// New constructs a Driver.
func New() *Driver {
	return &Driver{}
}

// Abort requests that the in-flight Start call stop after its current
// contraction. Safe to call from any goroutine.
func (d *Driver) Abort() {
	d.abortMu.Lock()
	defer d.abortMu.Unlock()
	d.abort = true
}

func (d *Driver) isAborting() bool {
	d.abortMu.Lock()
	defer d.abortMu.Unlock()
	return d.abort
}

// Start runs a decimator against mesh down to targetFaceCount,
// acquiring mesh's lock for the run's duration. progress, if non-nil,
// is invoked after every contraction attempt; returning false aborts
// the run the same way Abort does.
//
// When the run finishes or is aborted, Start leaves the mesh compacted
// and with recomputed normals (Decimator.Run performs that cleanup
// unconditionally). When a topology corruption is hit, Start returns it
// as an error and the mesh is not guaranteed to be compacted or to have
// recomputed normals.
func (d *Driver) Start(mesh *halfedge.Mesh, targetFaceCount int, progress ProgressFunc) (stats decimate.Stats, err error) {
	mesh.Lock()
	defer mesh.Unlock()

	defer func() {
		if r := recover(); r != nil {
			if fanErr, ok := r.(*halfedge.FanCorruptionError); ok {
				err = fmt.Errorf("driver: %w", fanErr)
				return
			}
			panic(r)
		}
	}()

	d.abortMu.Lock()
	d.abort = false
	d.abortMu.Unlock()

	dec := decimate.NewDecimator(mesh, targetFaceCount)
	dec.Init()

	dec.Run(func(p float64) bool {
		if d.isAborting() {
			return false
		}
		if progress != nil {
			return progress(p)
		}
		return true
	})

	stats = dec.Stats()
	return stats, nil
}
