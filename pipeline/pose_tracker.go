// Package pipeline orchestrates planar segmentation: it tracks the sensor
// pose, derives the sensing direction, invokes the external fitter, and hands
// the results to a publisher as visualization primitives.
package pipeline

import (
	"sync"

	"github.com/viam-labs/planeseg/spatialmath"
)

// PoseTracker holds the most recently observed sensor pose. Writers and
// readers may run on different goroutines, so the slot is lock-guarded; reads
// return a snapshot copy. Last write wins, no history is kept, and no
// ordering against cloud events is enforced.
type PoseTracker struct {
	mu     sync.RWMutex
	latest spatialmath.Pose
}

// NewPoseTracker returns a tracker holding the identity pose, the value
// observed until the first pose event arrives.
func NewPoseTracker() *PoseTracker {
	return &PoseTracker{latest: spatialmath.NewZeroPose()}
}

// Update replaces the tracked pose unconditionally.
func (pt *PoseTracker) Update(pose spatialmath.Pose) {
	pt.mu.Lock()
	pt.latest = pose
	pt.mu.Unlock()
}

// Latest returns a snapshot of the tracked pose.
func (pt *PoseTracker) Latest() spatialmath.Pose {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.latest
}
