package pipeline

import (
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// DatasetPreset pairs a stored terrain capture with the sensor origin and
// look direction it was captured from. Presets bypass the pose tracker.
type DatasetPreset struct {
	File    string
	Origin  r3.Vector
	LookDir r3.Vector
}

// DefaultDatasets returns the preset capture table rooted at dataDir:
// DRC-era Atlas lidar scans, an ANYmal RGB-D stair climb, and two Leica
// arena maps.
func DefaultDatasets(dataDir string) []DatasetPreset {
	return []DatasetPreset{
		{
			File:    filepath.Join(dataDir, "terrain", "tilted-steps.pcd"),
			Origin:  r3.Vector{X: 0.248091, Y: 0.012443, Z: 1.806473},
			LookDir: r3.Vector{X: 0.837001, Y: 0.019831, Z: -0.546842},
		},
		{
			File:    filepath.Join(dataDir, "terrain", "terrain_med.pcd"),
			Origin:  r3.Vector{X: -0.028862, Y: -0.007466, Z: 0.087855},
			LookDir: r3.Vector{X: 0.999890, Y: -0.005120, Z: -0.013947},
		},
		{
			File:    filepath.Join(dataDir, "terrain", "terrain_close_rect.pcd"),
			Origin:  r3.Vector{X: -0.028775, Y: -0.005776, Z: 0.087898},
			LookDir: r3.Vector{X: 0.999956, Y: -0.005003, Z: 0.007958},
		},
		{
			File:    filepath.Join(dataDir, "terrain", "anymal", "ori_entrance_stair_climb", "06.pcd"),
			Origin:  r3.Vector{X: -0.028775, Y: -0.005776, Z: 0.987898},
			LookDir: r3.Vector{X: 0.999956, Y: -0.005003, Z: 0.007958},
		},
		{
			File:    filepath.Join(dataDir, "leica", "race_arenas", "RACE_crossplaneramps_sub1cm_cropped_meshlab_icp.ply"),
			Origin:  r3.Vector{X: -0.028775, Y: -0.005776, Z: 0.987898},
			LookDir: r3.Vector{X: 0.999956, Y: -0.005003, Z: 0.007958},
		},
		{
			File:    filepath.Join(dataDir, "leica", "race_arenas", "RACE_stepfield_sub1cm_cropped_meshlab_icp.ply"),
			Origin:  r3.Vector{X: -0.028775, Y: -0.005776, Z: 0.987898},
			LookDir: r3.Vector{X: 0.999956, Y: -0.005003, Z: 0.007958},
		},
	}
}

// DatasetByIndex returns the preset at the given index.
func DatasetByIndex(presets []DatasetPreset, index int) (DatasetPreset, error) {
	if index < 0 || index >= len(presets) {
		return DatasetPreset{}, errors.Errorf("dataset index %d out of range [0, %d)", index, len(presets))
	}
	return presets[index], nil
}
