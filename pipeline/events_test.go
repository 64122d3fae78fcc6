package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/planeseg/gridmap"
	"github.com/viam-labs/planeseg/spatialmath"
)

func waitForPass(t *testing.T, pub *recordingPublisher) {
	t.Helper()
	select {
	case <-pub.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a segmentation pass")
	}
}

func TestPipelineCloudEvents(t *testing.T) {
	logger := golog.NewTestLogger(t)
	fitter := &stubFitter{result: twoBlockResult()}
	tracker := NewPoseTracker()
	pub := newRecordingPublisher()
	o := NewOrchestrator(fitter, tracker, pub, logger)

	p := NewPipeline(o, tracker, 4, logger)
	p.Start()
	defer p.Close()

	ctx := context.Background()
	pose := spatialmath.Pose{
		Point:       r3.Vector{X: 5},
		Orientation: (&spatialmath.EulerAngles{Yaw: math.Pi}).Quaternion(),
	}
	test.That(t, p.SubmitPose(ctx, pose), test.ShouldBeNil)

	// pose and cloud streams are independent; wait for the tracker to
	// observe the pose before the cloud arrives
	deadline := time.Now().Add(5 * time.Second)
	for tracker.Latest().Point.X != 5 {
		if time.Now().After(deadline) {
			t.Fatal("pose event never applied")
		}
		time.Sleep(time.Millisecond)
	}

	test.That(t, p.SubmitCloud(ctx, smallCloud(t)), test.ShouldBeNil)
	waitForPass(t, pub)

	snap := fitter.snapshot()
	test.That(t, snap.origin, test.ShouldResemble, r3.Vector{X: 5})
	test.That(t, snap.lookDir.X, test.ShouldAlmostEqual, -1, 1e-9)
}

func TestPipelineGridMapEvents(t *testing.T) {
	logger := golog.NewTestLogger(t)
	fitter := &stubFitter{result: twoBlockResult()}
	tracker := NewPoseTracker()
	pub := newRecordingPublisher()
	o := NewOrchestrator(fitter, tracker, pub, logger)

	p := NewPipeline(o, tracker, 0, logger)
	p.Start()
	defer p.Close()

	gm, err := gridmap.NewGridMap(0.5, 2, 2, r3.Vector{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gm.SetLayer("elevation", mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4})), test.ShouldBeNil)

	test.That(t, p.SubmitGridMap(context.Background(), GridMapEvent{Map: gm, Layer: "elevation"}), test.ShouldBeNil)
	waitForPass(t, pub)

	test.That(t, len(pub.received), test.ShouldEqual, 1)
	test.That(t, pub.received[0].Size(), test.ShouldEqual, 4)
}

func TestPipelineSurvivesFitterErrors(t *testing.T) {
	logger, observed := golog.NewObservedTestLogger(t)
	fitter := &stubFitter{err: errors.New("bad fit")}
	tracker := NewPoseTracker()
	pub := newRecordingPublisher()
	o := NewOrchestrator(fitter, tracker, pub, logger)

	p := NewPipeline(o, tracker, 4, logger)
	p.Start()
	defer p.Close()

	ctx := context.Background()
	test.That(t, p.SubmitCloud(ctx, smallCloud(t)), test.ShouldBeNil)

	deadline := time.Now().Add(5 * time.Second)
	for observed.FilterMessageSnippet("cloud processing failed").Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("fitter error never surfaced")
		}
		time.Sleep(time.Millisecond)
	}

	// the loop is still alive: a second submit succeeds and is processed
	fitter.mu.Lock()
	fitter.err = nil
	fitter.result = twoBlockResult()
	fitter.mu.Unlock()
	test.That(t, p.SubmitCloud(ctx, smallCloud(t)), test.ShouldBeNil)
	waitForPass(t, pub)
}

func TestPipelineSubmitAfterClose(t *testing.T) {
	logger := golog.NewTestLogger(t)
	tracker := NewPoseTracker()
	o := NewOrchestrator(&stubFitter{}, tracker, newRecordingPublisher(), logger)
	p := NewPipeline(o, tracker, 1, logger)
	p.Start()
	p.Close()

	err := p.SubmitPose(context.Background(), spatialmath.NewZeroPose())
	test.That(t, err, test.ShouldNotBeNil)
}
