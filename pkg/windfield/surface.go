// Package windfield models gridded wind speed data and point sampling
// over a geographic bounding box.
package windfield

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Surface is a rectangular grid of wind speed samples in m/s over a
// geographic bounding box. Row 0 lies on the southern edge, column 0
// on the western edge.
type Surface struct {
	Bounds    orb.Bound   `json:"bounds"`
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	Values    [][]float64 `json:"values"`
	Source    string      `json:"source,omitempty"`
	FetchedAt time.Time   `json:"fetched_at,omitempty"`
}

// Stats summarizes the sampled grid values.
type Stats struct {
	Min         float64 `json:"min_speed"`
	Max         float64 `json:"max_speed"`
	Avg         float64 `json:"avg_speed"`
	SampleCount int     `json:"sample_count"`
}

// New allocates a zero-valued surface with the given dimensions.
func New(bounds orb.Bound, rows, cols int) *Surface {
	values := make([][]float64, rows)
	for i := range values {
		values[i] = make([]float64, cols)
	}
	return &Surface{Bounds: bounds, Rows: rows, Cols: cols, Values: values}
}

// Validate checks the grid dimensions against the value matrix.
func (s *Surface) Validate() error {
	if s.Rows < 1 || s.Cols < 1 {
		return fmt.Errorf("windfield: grid must be at least 1x1, got %dx%d", s.Rows, s.Cols)
	}
	if len(s.Values) != s.Rows {
		return fmt.Errorf("windfield: expected %d rows, got %d", s.Rows, len(s.Values))
	}
	for i, row := range s.Values {
		if len(row) != s.Cols {
			return fmt.Errorf("windfield: row %d has %d columns, expected %d", i, len(row), s.Cols)
		}
	}
	if s.Bounds.Max[0] < s.Bounds.Min[0] || s.Bounds.Max[1] < s.Bounds.Min[1] {
		return fmt.Errorf("windfield: inverted bounds")
	}
	return nil
}

// ComputeStats returns min, max and mean of the grid values.
func (s *Surface) ComputeStats() Stats {
	flat := make([]float64, 0, s.Rows*s.Cols)
	for _, row := range s.Values {
		flat = append(flat, row...)
	}
	if len(flat) == 0 {
		return Stats{}
	}
	return Stats{
		Min:         floats.Min(flat),
		Max:         floats.Max(flat),
		Avg:         stat.Mean(flat, nil),
		SampleCount: len(flat),
	}
}
