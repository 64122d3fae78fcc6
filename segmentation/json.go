package segmentation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// blockRecord is the external inspection shape of one block.
type blockRecord struct {
	Classname  string        `json:"classname"`
	Pose       [2][]float64  `json:"pose"`
	UUID       string        `json:"uuid"`
	Dimensions []float64     `json:"Dimensions"`
	Color      []float64     `json:"Color"`
	Alpha      float64       `json:"Alpha"`
	Name       string        `json:"Name"`
}

// MarshalOrderedJSON renders the result as a JSON object mapping block ids to
// records, with entries in block order. Ids are "0_" plus the 1-based block
// index. encoding/json cannot emit maps in a chosen order, so the object is
// assembled by hand around per-record marshaling.
func (r Result) MarshalOrderedJSON(namePrefix string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, block := range r.Blocks {
		uuid := fmt.Sprintf("0_%d", i+1)
		q := block.Pose.Orientation
		rec := blockRecord{
			Classname: "BoxAffordanceItem",
			Pose: [2][]float64{
				{block.Pose.Point.X, block.Pose.Point.Y, block.Pose.Point.Z},
				{q.Real, q.Imag, q.Jmag, q.Kmag},
			},
			UUID:       uuid,
			Dimensions: []float64{block.Size.X, block.Size.Y, block.Size.Z},
			Color:      []float64{0.5, 0.4, 0.5},
			Alpha:      1.0,
			Name:       fmt.Sprintf("%s %d", namePrefix, i),
		}
		recBytes, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "  %q: %s", uuid, recBytes)
		if i != len(r.Blocks)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}")
	return buf.Bytes(), nil
}
