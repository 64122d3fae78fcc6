// Package config loads pipeline configuration from JSON files, with
// ${VAR}-style environment expansion so deployments can template paths.
package config

import (
	"encoding/json"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/viam-labs/planeseg/pipeline"
)

// Config is the full configuration of the planeseg binary.
type Config struct {
	// FitterBin is the path of the external plane fitter binary.
	FitterBin string `json:"fitter_bin"`
	// DataDir is the directory holding the preset dataset captures.
	DataDir string `json:"data_dir"`
	// WatchDir, if set, is watched for new .pcd/.ply files to process.
	WatchDir string `json:"watch_dir"`
	// QueueDepth is the per-stream event queue depth.
	QueueDepth int `json:"queue_depth"`
	// ElevationLayer is the grid map layer to segment.
	ElevationLayer string `json:"elevation_layer"`
	// ArtifactDir, if set, receives per-pass output files (received
	// cloud PCD, hull cloud LAS, hull outline PNG, result JSON).
	ArtifactDir string `json:"artifact_dir"`
	// NamePrefix names blocks in the result JSON dump.
	NamePrefix string `json:"name_prefix"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:        "data",
		QueueDepth:     pipeline.DefaultQueueDepth,
		ElevationLayer: "elevation",
		NamePrefix:     "terrain",
	}
}

// Read loads a config file, expanding environment variables first.
func Read(path string) (Config, error) {
	raw, err := envsubst.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}
	cfg := Default()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "validating config %q", path)
	}
	return cfg, nil
}

// Validate checks the config for values that cannot work.
func (c *Config) Validate() error {
	if c.FitterBin == "" {
		return errors.New("fitter_bin is required")
	}
	if c.QueueDepth < 0 {
		return errors.Errorf("queue_depth cannot be negative, got %d", c.QueueDepth)
	}
	if c.ElevationLayer == "" {
		return errors.New("elevation_layer cannot be empty")
	}
	return nil
}
