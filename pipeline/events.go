package pipeline

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/spatialmath"
)

// DefaultQueueDepth is the per-stream event queue depth.
const DefaultQueueDepth = 100

// GridMapEvent is an elevation map arrival along with the layer to segment.
type GridMapEvent struct {
	Map   GridMapSource
	Layer string
}

// Pipeline decouples the orchestrator from whatever transport delivers
// events. Each event class has its own bounded queue; pose events update the
// tracker, cloud and grid map events each trigger one synchronous
// segmentation pass. A slow fit blocks the cloud stream, which is the only
// backpressure — there is no timeout and no cancellation beyond the
// pipeline's own context.
type Pipeline struct {
	orchestrator *Orchestrator
	tracker      *PoseTracker
	logger       golog.Logger

	poses    chan spatialmath.Pose
	clouds   chan pointcloud.PointCloud
	gridMaps chan GridMapEvent

	cancelCtx               context.Context
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// NewPipeline returns a stopped pipeline with the given queue depth per
// stream; depth <= 0 uses DefaultQueueDepth.
func NewPipeline(orchestrator *Orchestrator, tracker *PoseTracker, queueDepth int, logger golog.Logger) *Pipeline {
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		orchestrator: orchestrator,
		tracker:      tracker,
		logger:       logger,
		poses:        make(chan spatialmath.Pose, queueDepth),
		clouds:       make(chan pointcloud.PointCloud, queueDepth),
		gridMaps:     make(chan GridMapEvent, queueDepth),
		cancelCtx:    cancelCtx,
		cancel:       cancel,
	}
}

// Start launches the handler workers.
func (p *Pipeline) Start() {
	p.activeBackgroundWorkers.Add(2)
	goutils.PanicCapturingGo(p.poseLoop)
	goutils.PanicCapturingGo(p.cloudLoop)
}

// Close stops the workers and waits for the in-flight invocation, if any, to
// finish.
func (p *Pipeline) Close() {
	p.cancel()
	p.activeBackgroundWorkers.Wait()
}

var errPipelineClosed = errors.New("pipeline closed")

// SubmitPose queues a pose event, blocking while the queue is full.
func (p *Pipeline) SubmitPose(ctx context.Context, pose spatialmath.Pose) error {
	if p.cancelCtx.Err() != nil {
		return errPipelineClosed
	}
	select {
	case p.poses <- pose:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.cancelCtx.Done():
		return errPipelineClosed
	}
}

// SubmitCloud queues a cloud event, blocking while the queue is full.
func (p *Pipeline) SubmitCloud(ctx context.Context, cloud pointcloud.PointCloud) error {
	if p.cancelCtx.Err() != nil {
		return errPipelineClosed
	}
	select {
	case p.clouds <- cloud:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.cancelCtx.Done():
		return errPipelineClosed
	}
}

// SubmitGridMap queues an elevation map event, blocking while the queue is
// full.
func (p *Pipeline) SubmitGridMap(ctx context.Context, ev GridMapEvent) error {
	if p.cancelCtx.Err() != nil {
		return errPipelineClosed
	}
	select {
	case p.gridMaps <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.cancelCtx.Done():
		return errPipelineClosed
	}
}

func (p *Pipeline) poseLoop() {
	defer p.activeBackgroundWorkers.Done()
	for {
		select {
		case <-p.cancelCtx.Done():
			return
		case pose := <-p.poses:
			p.tracker.Update(pose)
		}
	}
}

func (p *Pipeline) cloudLoop() {
	defer p.activeBackgroundWorkers.Done()
	for {
		select {
		case <-p.cancelCtx.Done():
			return
		case cloud := <-p.clouds:
			if _, _, err := p.orchestrator.ProcessCloud(p.cancelCtx, cloud); err != nil {
				// this invocation is lost; the pipeline keeps going
				p.logger.Errorw("cloud processing failed", "error", err)
			}
		case ev := <-p.gridMaps:
			if _, _, err := p.orchestrator.ProcessGridMap(p.cancelCtx, ev.Map, ev.Layer); err != nil {
				p.logger.Errorw("grid map processing failed", "error", err)
			}
		}
	}
}
