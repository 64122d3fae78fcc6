package pipeline

import (
	"context"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/segmentation"
	"github.com/viam-labs/planeseg/spatialmath"
	"github.com/viam-labs/planeseg/vision"
)

// Orchestrator drives one segmentation pass per incoming cloud: derive the
// sensor origin and look direction from the tracked pose, run the external
// fitter with fixed configuration, and publish the input cloud, look pose,
// and rendered hulls. It holds no per-invocation state; each result
// supersedes the previous one wholesale.
type Orchestrator struct {
	fitter  segmentation.Fitter
	tracker *PoseTracker
	pub     Publisher
	logger  golog.Logger

	palette *vision.Palette
	clk     clock.Clock
	fitCfg  segmentation.FitterConfig
}

// An OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock uses the given clock for output timestamps.
func WithClock(clk clock.Clock) OrchestratorOption {
	return func(o *Orchestrator) { o.clk = clk }
}

// WithPalette colors hulls from the given palette instead of the default.
func WithPalette(palette *vision.Palette) OrchestratorOption {
	return func(o *Orchestrator) { o.palette = palette }
}

// WithFitterConfig overrides the fitter configuration.
func WithFitterConfig(cfg segmentation.FitterConfig) OrchestratorOption {
	return func(o *Orchestrator) { o.fitCfg = cfg }
}

// NewOrchestrator wires a fitter, pose tracker, and publisher together.
func NewOrchestrator(
	fitter segmentation.Fitter,
	tracker *PoseTracker,
	pub Publisher,
	logger golog.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		fitter:  fitter,
		tracker: tracker,
		pub:     pub,
		logger:  logger,
		palette: vision.DefaultPalette(),
		clk:     clock.New(),
		fitCfg:  segmentation.DefaultFitterConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessCloud segments the given cloud viewed from the currently tracked
// pose. The pose is snapshotted once, so a single invocation sees one
// consistent origin and look direction.
func (o *Orchestrator) ProcessCloud(ctx context.Context, cloud pointcloud.PointCloud) (segmentation.Result, spatialmath.Pose, error) {
	pose := o.tracker.Latest()
	origin := pose.Point
	lookDir := spatialmath.LookDirection(pose.Orientation)
	return o.process(ctx, cloud, origin, lookDir)
}

// process is the shared pass behind live clouds and dataset files.
func (o *Orchestrator) process(
	ctx context.Context,
	cloud pointcloud.PointCloud,
	origin, lookDir r3.Vector,
) (segmentation.Result, spatialmath.Pose, error) {
	result, err := o.fitter.Fit(ctx, cloud, origin, lookDir, o.fitCfg)
	if err != nil {
		// not caught here: the fitter is opaque and failures belong to
		// the caller of this invocation
		return segmentation.Result{}, spatialmath.Pose{}, errors.Wrap(err, "plane fitter")
	}

	now := o.clk.Now()
	lookPose := spatialmath.LookPose(origin, lookDir)
	if err := o.pub.PublishLookPose(lookPose, now); err != nil {
		return segmentation.Result{}, spatialmath.Pose{}, err
	}
	if err := o.pub.PublishReceivedCloud(cloud, now); err != nil {
		return segmentation.Result{}, spatialmath.Pose{}, err
	}

	out, err := vision.RenderHulls(result, o.palette)
	if err != nil {
		return segmentation.Result{}, spatialmath.Pose{}, err
	}
	if err := o.pub.PublishHullCloud(out.HullCloud, now); err != nil {
		return segmentation.Result{}, spatialmath.Pose{}, err
	}
	if err := o.pub.PublishHullMarkers(out.HullMarkers, now); err != nil {
		return segmentation.Result{}, spatialmath.Pose{}, err
	}
	if err := o.pub.PublishResult(result); err != nil {
		return segmentation.Result{}, spatialmath.Pose{}, err
	}

	o.logger.Debugw("processed cloud", "points", cloud.Size(), "blocks", len(result.Blocks))
	return result, lookPose, nil
}

// ProcessGridMap converts the named layer of an elevation map into a cloud
// and processes it like any other cloud event.
func (o *Orchestrator) ProcessGridMap(
	ctx context.Context,
	gm GridMapSource,
	layer string,
) (segmentation.Result, spatialmath.Pose, error) {
	cloud, err := gm.ToPointCloud(layer)
	if err != nil {
		return segmentation.Result{}, spatialmath.Pose{}, err
	}
	return o.ProcessCloud(ctx, cloud)
}

// GridMapSource is anything that can flatten a named layer into a cloud.
type GridMapSource interface {
	ToPointCloud(layer string) (pointcloud.PointCloud, error)
}

// ProcessFromFile loads a dataset preset and processes it with the preset's
// origin and look direction instead of the tracked pose. A file extension
// other than .pcd or .ply is a diagnostic, not an error: the input is
// dropped and nothing is emitted.
func (o *Orchestrator) ProcessFromFile(ctx context.Context, preset DatasetPreset) error {
	switch ext := filepath.Ext(preset.File); ext {
	case ".pcd", ".ply":
	default:
		o.logger.Warnw("dataset extension not understood, skipping", "file", preset.File, "ext", ext)
		return nil
	}

	cloud, err := pointcloud.NewFromFile(preset.File, o.logger)
	if err != nil {
		return err
	}
	o.logger.Infow("processing dataset", "file", preset.File, "points", cloud.Size())
	_, _, err = o.process(ctx, cloud, preset.Origin, preset.LookDir)
	return err
}
