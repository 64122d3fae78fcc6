package pipeline

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/segmentation"
	"github.com/viam-labs/planeseg/spatialmath"
	"github.com/viam-labs/planeseg/vision"
)

// stubFitter returns a canned result and records what it was asked.
type stubFitter struct {
	mu      sync.Mutex
	result  segmentation.Result
	err     error
	origin  r3.Vector
	lookDir r3.Vector
	cfg     segmentation.FitterConfig
	calls   int
}

func (f *stubFitter) Fit(
	ctx context.Context,
	cloud pointcloud.PointCloud,
	origin, lookDir r3.Vector,
	cfg segmentation.FitterConfig,
) (segmentation.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.origin = origin
	f.lookDir = lookDir
	f.cfg = cfg
	f.calls++
	return f.result, f.err
}

func (f *stubFitter) snapshot() stubFitter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return stubFitter{origin: f.origin, lookDir: f.lookDir, cfg: f.cfg, calls: f.calls}
}

// recordingPublisher collects everything published and signals completed
// passes.
type recordingPublisher struct {
	mu         sync.Mutex
	received   []pointcloud.PointCloud
	lookPoses  []spatialmath.Pose
	hullClouds []pointcloud.PointCloud
	markers    []*vision.LineMarker
	results    []segmentation.Result
	stamps     []time.Time
	done       chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 16)}
}

func (rp *recordingPublisher) PublishReceivedCloud(cloud pointcloud.PointCloud, t time.Time) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.received = append(rp.received, cloud)
	rp.stamps = append(rp.stamps, t)
	return nil
}

func (rp *recordingPublisher) PublishLookPose(pose spatialmath.Pose, t time.Time) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.lookPoses = append(rp.lookPoses, pose)
	rp.stamps = append(rp.stamps, t)
	return nil
}

func (rp *recordingPublisher) PublishHullCloud(cloud pointcloud.PointCloud, t time.Time) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.hullClouds = append(rp.hullClouds, cloud)
	rp.stamps = append(rp.stamps, t)
	return nil
}

func (rp *recordingPublisher) PublishHullMarkers(marker *vision.LineMarker, t time.Time) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.markers = append(rp.markers, marker)
	rp.stamps = append(rp.stamps, t)
	return nil
}

func (rp *recordingPublisher) PublishResult(result segmentation.Result) error {
	rp.mu.Lock()
	rp.results = append(rp.results, result)
	rp.mu.Unlock()
	rp.done <- struct{}{}
	return nil
}

func smallCloud(t *testing.T) pointcloud.PointCloud {
	t.Helper()
	cloud := pointcloud.New()
	for _, p := range []r3.Vector{{X: 1}, {X: 2, Y: 1}, {X: 3, Z: 0.5}} {
		test.That(t, cloud.Set(p, nil), test.ShouldBeNil)
	}
	return cloud
}

func twoBlockResult() segmentation.Result {
	return segmentation.Result{Blocks: []segmentation.PlanarBlock{
		{Hull: []r3.Vector{{X: 0}, {X: 1}, {X: 1, Y: 1}}},
		{Hull: []r3.Vector{{Y: 0}, {Y: 1}, {Y: 2}, {X: 1, Y: 2}, {X: 1}}},
	}}
}

func TestPoseTracker(t *testing.T) {
	pt := NewPoseTracker()
	test.That(t, pt.Latest(), test.ShouldResemble, spatialmath.NewZeroPose())

	pose := spatialmath.Pose{
		Point:       r3.Vector{X: 1, Y: 2, Z: 3},
		Orientation: (&spatialmath.EulerAngles{Yaw: 1}).Quaternion(),
	}
	pt.Update(pose)
	test.That(t, pt.Latest(), test.ShouldResemble, pose)

	// later writes win
	pt.Update(spatialmath.NewZeroPose())
	test.That(t, pt.Latest(), test.ShouldResemble, spatialmath.NewZeroPose())
}

func TestPoseTrackerConcurrent(t *testing.T) {
	pt := NewPoseTracker()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pt.Update(spatialmath.Pose{Point: r3.Vector{X: float64(n)}, Orientation: spatialmath.NewZeroOrientation()})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := pt.Latest()
				test.That(t, math.IsNaN(p.Point.X), test.ShouldBeFalse)
			}
		}()
	}
	wg.Wait()
}

func TestOrchestratorProcessCloud(t *testing.T) {
	logger := golog.NewTestLogger(t)
	fitter := &stubFitter{result: twoBlockResult()}
	tracker := NewPoseTracker()
	pub := newRecordingPublisher()
	mockClock := clock.NewMock()
	o := NewOrchestrator(fitter, tracker, pub, logger, WithClock(mockClock))

	tracker.Update(spatialmath.Pose{
		Point:       r3.Vector{X: 0.2, Y: 0.01, Z: 1.8},
		Orientation: (&spatialmath.EulerAngles{Yaw: math.Pi / 2}).Quaternion(),
	})

	result, lookPose, err := o.ProcessCloud(context.Background(), smallCloud(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.Blocks), test.ShouldEqual, 2)

	// the fitter saw the tracked origin and the derived direction
	snap := fitter.snapshot()
	test.That(t, snap.calls, test.ShouldEqual, 1)
	test.That(t, snap.origin, test.ShouldResemble, r3.Vector{X: 0.2, Y: 0.01, Z: 1.8})
	test.That(t, snap.lookDir.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, snap.lookDir.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, snap.cfg, test.ShouldResemble, segmentation.DefaultFitterConfig())

	// everything emitted exactly once, with one consistent timestamp
	test.That(t, len(pub.received), test.ShouldEqual, 1)
	test.That(t, len(pub.lookPoses), test.ShouldEqual, 1)
	test.That(t, len(pub.hullClouds), test.ShouldEqual, 1)
	test.That(t, len(pub.markers), test.ShouldEqual, 1)
	test.That(t, len(pub.results), test.ShouldEqual, 1)
	for _, stamp := range pub.stamps {
		test.That(t, stamp, test.ShouldResemble, mockClock.Now())
	}

	test.That(t, lookPose.Point, test.ShouldResemble, r3.Vector{X: 0.2, Y: 0.01, Z: 1.8})
	test.That(t, pub.lookPoses[0], test.ShouldResemble, lookPose)

	// rendered outputs follow the hull sizes: 3 + 5 points, 2*3 + 2*5
	// marker points
	test.That(t, pub.hullClouds[0].Size(), test.ShouldEqual, 8)
	test.That(t, len(pub.markers[0].Points), test.ShouldEqual, 16)
}

func TestOrchestratorFitterError(t *testing.T) {
	logger := golog.NewTestLogger(t)
	fitter := &stubFitter{err: errors.New("ransac exploded")}
	pub := newRecordingPublisher()
	o := NewOrchestrator(fitter, NewPoseTracker(), pub, logger)

	_, _, err := o.ProcessCloud(context.Background(), smallCloud(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "ransac exploded")

	// a failed fit emits nothing
	test.That(t, len(pub.received), test.ShouldEqual, 0)
	test.That(t, len(pub.lookPoses), test.ShouldEqual, 0)
	test.That(t, len(pub.results), test.ShouldEqual, 0)
}
