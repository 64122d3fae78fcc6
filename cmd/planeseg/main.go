// Command planeseg runs the plane segmentation pipeline: preset dataset
// processing for offline runs, or a directory watch that feeds newly dropped
// cloud files through the fitter.
package main

import (
	"context"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/viam-labs/planeseg/config"
	"github.com/viam-labs/planeseg/pipeline"
	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/segmentation"
)

var logger = golog.NewDevelopmentLogger("planeseg")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=path to JSON configuration"`
	Datasets   bool   `flag:"datasets,usage=process every preset dataset and exit"`
	Dataset    int    `flag:"dataset,default=-1,usage=process one preset dataset index and exit"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := config.Default()
	if argsParsed.ConfigFile != "" {
		var err error
		cfg, err = config.Read(argsParsed.ConfigFile)
		if err != nil {
			return err
		}
	}

	fitter := segmentation.NewExecFitter(cfg.FitterBin, logger)
	tracker := pipeline.NewPoseTracker()
	pub, err := newArtifactPublisher(cfg, logger)
	if err != nil {
		return err
	}
	orchestrator := pipeline.NewOrchestrator(fitter, tracker, pub, logger)
	presets := pipeline.DefaultDatasets(cfg.DataDir)

	if argsParsed.Dataset >= 0 {
		preset, err := pipeline.DatasetByIndex(presets, argsParsed.Dataset)
		if err != nil {
			return err
		}
		return orchestrator.ProcessFromFile(ctx, preset)
	}
	if argsParsed.Datasets {
		for i, preset := range presets {
			logger.Infow("processing preset dataset", "index", i)
			if err := orchestrator.ProcessFromFile(ctx, preset); err != nil {
				return err
			}
		}
		logger.Info("finished")
		return nil
	}

	if cfg.WatchDir == "" {
		return errors.New("nothing to do: set watch_dir or use a dataset flag")
	}
	return watchClouds(ctx, cfg, orchestrator, tracker, logger)
}

// watchClouds feeds every cloud file dropped into the watch directory
// through the pipeline until the context ends.
func watchClouds(
	ctx context.Context,
	cfg config.Config,
	orchestrator *pipeline.Orchestrator,
	tracker *pipeline.PoseTracker,
	logger golog.Logger,
) error {
	p := pipeline.NewPipeline(orchestrator, tracker, cfg.QueueDepth, logger)
	p.Start()
	defer p.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(watcher.Close)
	if err := watcher.Add(cfg.WatchDir); err != nil {
		return errors.Wrapf(err, "watching %q", cfg.WatchDir)
	}
	logger.Infow("watching for clouds", "dir", cfg.WatchDir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case werr := <-watcher.Errors:
			logger.Errorw("watcher error", "error", werr)
		case event := <-watcher.Events:
			if !event.Has(fsnotify.Create) {
				continue
			}
			switch filepath.Ext(event.Name) {
			case ".pcd", ".ply":
			default:
				continue
			}
			cloud, err := pointcloud.NewFromFile(event.Name, logger)
			if err != nil {
				// files often appear before they are fully
				// written; drop and keep watching
				logger.Warnw("could not read cloud file", "file", event.Name, "error", err)
				continue
			}
			if err := p.SubmitCloud(ctx, cloud); err != nil {
				return err
			}
		}
	}
}
