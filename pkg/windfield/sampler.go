package windfield

import "math"

// Sample returns the bilinearly interpolated wind speed at the given
// geographic position. Out-of-range positions and NaN coordinates
// clamp to the nearest edge value; grids with a single row or column
// degrade to nearest neighbor on that axis.
func (s *Surface) Sample(lat, lon float64) float64 {
	if s == nil || s.Rows < 1 || s.Cols < 1 {
		return 0
	}

	rf := gridFraction(lat, s.Bounds.Min[1], s.Bounds.Max[1], s.Rows)
	cf := gridFraction(lon, s.Bounds.Min[0], s.Bounds.Max[0], s.Cols)

	r0 := int(math.Floor(rf))
	c0 := int(math.Floor(cf))
	r1 := min(r0+1, s.Rows-1)
	c1 := min(c0+1, s.Cols-1)
	tr := rf - float64(r0)
	tc := cf - float64(c0)

	south := s.Values[r0][c0]*(1-tc) + s.Values[r0][c1]*tc
	north := s.Values[r1][c0]*(1-tc) + s.Values[r1][c1]*tc
	return south*(1-tr) + north*tr
}

// gridFraction maps a coordinate to a fractional grid index clamped
// to [0, n-1]. Single-element axes and NaN inputs resolve to index 0.
func gridFraction(v, lo, hi float64, n int) float64 {
	if n <= 1 || hi <= lo || math.IsNaN(v) {
		return 0
	}
	f := (v - lo) / (hi - lo) * float64(n-1)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > float64(n-1) {
		return float64(n - 1)
	}
	return f
}
