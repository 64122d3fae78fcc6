package pipeline

import (
	"time"

	"github.com/edaniels/golog"

	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/segmentation"
	"github.com/viam-labs/planeseg/spatialmath"
	"github.com/viam-labs/planeseg/vision"
)

// A Publisher receives everything the orchestrator emits for one processed
// cloud. Implementations decide the transport; the orchestrator only decides
// what and when.
type Publisher interface {
	// PublishReceivedCloud re-emits the input cloud, tagged with the
	// processing timestamp.
	PublishReceivedCloud(cloud pointcloud.PointCloud, t time.Time) error

	// PublishLookPose emits the derived look-direction pose.
	PublishLookPose(pose spatialmath.Pose, t time.Time) error

	// PublishHullCloud emits the combined colored hull cloud.
	PublishHullCloud(cloud pointcloud.PointCloud, t time.Time) error

	// PublishHullMarkers emits the combined hull outline marker.
	PublishHullMarkers(marker *vision.LineMarker, t time.Time) error

	// PublishResult emits the raw segmentation result for external
	// inspection.
	PublishResult(result segmentation.Result) error
}

// LoggingPublisher is a Publisher that reports summaries to a logger. It is
// the default sink when no transport is attached.
type LoggingPublisher struct {
	logger golog.Logger
}

// NewLoggingPublisher returns a Publisher writing to the given logger.
func NewLoggingPublisher(logger golog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

// PublishReceivedCloud implements Publisher.
func (lp *LoggingPublisher) PublishReceivedCloud(cloud pointcloud.PointCloud, t time.Time) error {
	lp.logger.Debugw("received cloud", "points", cloud.Size(), "stamp", t)
	return nil
}

// PublishLookPose implements Publisher.
func (lp *LoggingPublisher) PublishLookPose(pose spatialmath.Pose, t time.Time) error {
	lp.logger.Debugw("look pose", "position", pose.Point, "stamp", t)
	return nil
}

// PublishHullCloud implements Publisher.
func (lp *LoggingPublisher) PublishHullCloud(cloud pointcloud.PointCloud, t time.Time) error {
	lp.logger.Infow("hull cloud", "points", cloud.Size(), "stamp", t)
	return nil
}

// PublishHullMarkers implements Publisher.
func (lp *LoggingPublisher) PublishHullMarkers(marker *vision.LineMarker, t time.Time) error {
	lp.logger.Infow("hull markers", "segments", marker.SegmentCount(), "stamp", t)
	return nil
}

// PublishResult implements Publisher.
func (lp *LoggingPublisher) PublishResult(result segmentation.Result) error {
	lp.logger.Infow("segmentation result", "blocks", len(result.Blocks))
	return nil
}
