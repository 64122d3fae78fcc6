package pointcloud

import (
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/chenzhekl/goply"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// NewFromPLYFile returns a pointcloud read in from the given PLY file.
func NewFromPLYFile(fn string, logger golog.Logger) (PointCloud, error) {
	f, err := os.Open(filepath.Clean(fn))
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	logger.Debugf("reading ply file %q", fn)
	return ReadPLY(f)
}

// ReadPLY reads a PLY file into a pointcloud, in file order.
func ReadPLY(in io.Reader) (PointCloud, error) {
	ply := goply.New(in)
	vertices := ply.Elements("vertex")
	pc := NewWithPrealloc(len(vertices))
	for i, v := range vertices {
		x, xOk := plyFloat(v["x"])
		y, yOk := plyFloat(v["y"])
		z, zOk := plyFloat(v["z"])
		if !xOk || !yOk || !zOk {
			return nil, errors.Errorf("vertex %d is missing x, y, or z", i)
		}

		data := NewBasicData()
		r, rOk := plyFloat(v["red"])
		g, gOk := plyFloat(v["green"])
		b, bOk := plyFloat(v["blue"])
		if rOk && gOk && bOk {
			data = NewColoredData(color.NRGBA{uint8(r), uint8(g), uint8(b), 255})
		}

		if err := pc.Set(r3.Vector{X: x, Y: y, Z: z}, data); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// plyFloat widens whatever numeric type goply hands back for a property.
func plyFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
