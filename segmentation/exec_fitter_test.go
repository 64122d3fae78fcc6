package segmentation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/viam-labs/planeseg/pointcloud"
)

const stubResponse = `{"blocks": [
  {"size": [1, 2, 0.1],
   "position": [0.5, 0, 1],
   "quaternion": [1, 0, 0, 0],
   "hull": [[0,0,1],[1,0,1],[1,2,1]]}
]}`

func writeStubFitter(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub fitter scripts are posix-only")
	}
	path := filepath.Join(t.TempDir(), "fitter.sh")
	test.That(t, os.WriteFile(path, []byte(script), 0o700), test.ShouldBeNil)
	return path
}

func fitterInputCloud(t *testing.T) pointcloud.PointCloud {
	t.Helper()
	cloud := pointcloud.New()
	test.That(t, cloud.Set(r3.Vector{X: 1, Y: 2, Z: 3}, nil), test.ShouldBeNil)
	test.That(t, cloud.Set(r3.Vector{X: 4, Y: 5, Z: 6}, nil), test.ShouldBeNil)
	return cloud
}

func TestExecFitter(t *testing.T) {
	logger := golog.NewTestLogger(t)
	bin := writeStubFitter(t, "#!/bin/sh\ncat > /dev/null\necho '"+stubResponse+"'\n")

	fitter := NewExecFitter(bin, logger)
	result, err := fitter.Fit(
		context.Background(),
		fitterInputCloud(t),
		r3.Vector{X: 0.2, Y: 0, Z: 1.8},
		r3.Vector{X: 1},
		DefaultFitterConfig(),
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(result.Blocks), test.ShouldEqual, 1)

	block := result.Blocks[0]
	test.That(t, block.Size, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 0.1})
	test.That(t, block.Pose.Point, test.ShouldResemble, r3.Vector{X: 0.5, Y: 0, Z: 1})
	test.That(t, block.Pose.Orientation.Real, test.ShouldEqual, 1.)
	test.That(t, block.Hull, test.ShouldResemble, []r3.Vector{
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 2, Z: 1},
	})
}

func TestExecFitterFailure(t *testing.T) {
	logger := golog.NewTestLogger(t)
	bin := writeStubFitter(t, "#!/bin/sh\ncat > /dev/null\necho 'no planes today' >&2\nexit 3\n")

	fitter := NewExecFitter(bin, logger)
	_, err := fitter.Fit(context.Background(), fitterInputCloud(t), r3.Vector{}, r3.Vector{X: 1}, DefaultFitterConfig())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no planes today")
}

func TestExecFitterMalformedOutput(t *testing.T) {
	logger := golog.NewTestLogger(t)
	bin := writeStubFitter(t, "#!/bin/sh\ncat > /dev/null\necho 'not json'\n")

	fitter := NewExecFitter(bin, logger)
	_, err := fitter.Fit(context.Background(), fitterInputCloud(t), r3.Vector{}, r3.Vector{X: 1}, DefaultFitterConfig())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "malformed")
}
