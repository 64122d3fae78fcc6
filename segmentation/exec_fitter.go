package segmentation

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/viam-labs/planeseg/pointcloud"
)

// ExecFitter reaches the planar segmentation capability by running an
// external binary once per fit. The request is JSON on stdin pointing at a
// temporary PCD file; the response is JSON on stdout.
//
// Request:
//
//	{"cloud": "/tmp/....pcd", "origin": [x,y,z], "look_dir": [x,y,z],
//	 "debug": true, "remove_ground": false, "max_plane_angle_degrees": 10,
//	 "downsample_resolution": 0.025}
//
// Response:
//
//	{"blocks": [{"size": [x,y,z], "position": [x,y,z],
//	             "quaternion": [w,x,y,z], "hull": [[x,y,z], ...]}, ...]}
type ExecFitter struct {
	binPath string
	logger  golog.Logger
}

// NewExecFitter returns a Fitter backed by the binary at binPath.
func NewExecFitter(binPath string, logger golog.Logger) *ExecFitter {
	return &ExecFitter{binPath: binPath, logger: logger}
}

type fitRequest struct {
	Cloud                string     `json:"cloud"`
	Origin               [3]float64 `json:"origin"`
	LookDir              [3]float64 `json:"look_dir"`
	Debug                bool       `json:"debug"`
	RemoveGround         bool       `json:"remove_ground"`
	MaxPlaneAngleDegrees float64    `json:"max_plane_angle_degrees"`
	DownsampleResolution *float64   `json:"downsample_resolution,omitempty"`
}

type fitResponseBlock struct {
	Size       [3]float64   `json:"size"`
	Position   [3]float64   `json:"position"`
	Quaternion [4]float64   `json:"quaternion"`
	Hull       [][3]float64 `json:"hull"`
}

type fitResponse struct {
	Blocks []fitResponseBlock `json:"blocks"`
}

// Fit implements Fitter.
func (f *ExecFitter) Fit(
	ctx context.Context,
	cloud pointcloud.PointCloud,
	origin, lookDir r3.Vector,
	cfg FitterConfig,
) (result Result, err error) {
	tmp, err := os.CreateTemp("", "planeseg-in-*.pcd")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		err = multierr.Combine(err, os.Remove(tmp.Name()))
	}()

	if werr := pointcloud.ToPCD(cloud, tmp, pointcloud.PCDBinary); werr != nil {
		err = multierr.Combine(werr, tmp.Close())
		return Result{}, err
	}
	if cerr := tmp.Close(); cerr != nil {
		return Result{}, cerr
	}

	req := fitRequest{
		Cloud:                tmp.Name(),
		Origin:               [3]float64{origin.X, origin.Y, origin.Z},
		LookDir:              [3]float64{lookDir.X, lookDir.Y, lookDir.Z},
		Debug:                cfg.Debug,
		RemoveGround:         cfg.RemoveGround,
		MaxPlaneAngleDegrees: cfg.MaxPlaneAngleDegrees,
		DownsampleResolution: cfg.DownsampleResolution,
	}
	reqBytes, err := json.Marshal(req)
	if err != nil {
		return Result{}, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binPath)
	cmd.Stdin = bytes.NewReader(reqBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	f.logger.Debugw("invoking plane fitter", "bin", f.binPath, "points", cloud.Size())
	if rerr := cmd.Run(); rerr != nil {
		return Result{}, errors.Wrapf(rerr, "plane fitter %q failed: %s", f.binPath, stderr.String())
	}

	var resp fitResponse
	if uerr := json.Unmarshal(stdout.Bytes(), &resp); uerr != nil {
		return Result{}, errors.Wrapf(uerr, "plane fitter %q returned malformed output", f.binPath)
	}
	return resp.toResult(), nil
}

func (resp fitResponse) toResult() Result {
	blocks := make([]PlanarBlock, 0, len(resp.Blocks))
	for _, b := range resp.Blocks {
		hull := make([]r3.Vector, 0, len(b.Hull))
		for _, h := range b.Hull {
			hull = append(hull, r3.Vector{X: h[0], Y: h[1], Z: h[2]})
		}
		block := PlanarBlock{
			Size: r3.Vector{X: b.Size[0], Y: b.Size[1], Z: b.Size[2]},
			Hull: hull,
		}
		block.Pose.Point = r3.Vector{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]}
		block.Pose.Orientation.Real = b.Quaternion[0]
		block.Pose.Orientation.Imag = b.Quaternion[1]
		block.Pose.Orientation.Jmag = b.Quaternion[2]
		block.Pose.Orientation.Kmag = b.Quaternion[3]
		blocks = append(blocks, block)
	}
	return Result{Blocks: blocks}
}
