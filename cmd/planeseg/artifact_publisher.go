package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/viam-labs/planeseg/config"
	"github.com/viam-labs/planeseg/pipeline"
	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/segmentation"
	"github.com/viam-labs/planeseg/spatialmath"
	"github.com/viam-labs/planeseg/vision"
)

const debugImageSidePx = 800

// artifactPublisher writes each processed cloud's outputs as files when an
// artifact directory is configured, and otherwise only logs summaries.
// Per-invocation files are disambiguated by a monotonically increasing
// sequence number.
type artifactPublisher struct {
	dir        string
	namePrefix string
	palette    *vision.Palette
	logging    *pipeline.LoggingPublisher

	mu  sync.Mutex
	seq int
}

func newArtifactPublisher(cfg config.Config, logger golog.Logger) (pipeline.Publisher, error) {
	if cfg.ArtifactDir == "" {
		return pipeline.NewLoggingPublisher(logger), nil
	}
	if err := os.MkdirAll(cfg.ArtifactDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating artifact directory %q", cfg.ArtifactDir)
	}
	return &artifactPublisher{
		dir:        cfg.ArtifactDir,
		namePrefix: cfg.NamePrefix,
		palette:    vision.DefaultPalette(),
		logging:    pipeline.NewLoggingPublisher(logger),
	}, nil
}

func (ap *artifactPublisher) next() int {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	ap.seq++
	return ap.seq
}

func (ap *artifactPublisher) path(name string) string {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	return filepath.Join(ap.dir, fmt.Sprintf("%04d_%s", ap.seq, name))
}

// PublishReceivedCloud implements pipeline.Publisher. It opens a new
// sequence number so the rest of this invocation's artifacts group together.
func (ap *artifactPublisher) PublishReceivedCloud(cloud pointcloud.PointCloud, t time.Time) (err error) {
	ap.next()
	if lerr := ap.logging.PublishReceivedCloud(cloud, t); lerr != nil {
		return lerr
	}
	f, err := os.Create(ap.path("received.pcd"))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return pointcloud.ToPCD(cloud, f, pointcloud.PCDBinary)
}

// PublishLookPose implements pipeline.Publisher.
func (ap *artifactPublisher) PublishLookPose(pose spatialmath.Pose, t time.Time) error {
	return ap.logging.PublishLookPose(pose, t)
}

// PublishHullCloud implements pipeline.Publisher.
func (ap *artifactPublisher) PublishHullCloud(cloud pointcloud.PointCloud, t time.Time) error {
	if err := ap.logging.PublishHullCloud(cloud, t); err != nil {
		return err
	}
	if cloud.Size() == 0 {
		return nil
	}
	return pointcloud.WriteToLASFile(cloud, ap.path("hulls.las"))
}

// PublishHullMarkers implements pipeline.Publisher.
func (ap *artifactPublisher) PublishHullMarkers(marker *vision.LineMarker, t time.Time) error {
	return ap.logging.PublishHullMarkers(marker, t)
}

// PublishResult implements pipeline.Publisher.
func (ap *artifactPublisher) PublishResult(result segmentation.Result) error {
	if err := ap.logging.PublishResult(result); err != nil {
		return err
	}
	data, err := result.MarshalOrderedJSON(ap.namePrefix)
	if err != nil {
		return err
	}
	if err := os.WriteFile(ap.path("blocks.json"), data, 0o644); err != nil {
		return err
	}
	for _, block := range result.Blocks {
		if len(block.Hull) >= 2 {
			return vision.WriteHullsImage(result, ap.palette, ap.path("hulls.png"), debugImageSidePx)
		}
	}
	return nil
}
