package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	earthRadiusKm = 6371.0

	// MinExtentKm floors frame extents (~1 m) so conversions never
	// divide by zero on a collapsed bounding box.
	MinExtentKm = 0.001
)

// DistanceKm returns the great-circle distance in kilometers between
// two geographic points given as (lon, lat).
func DistanceKm(a, b orb.Point) float64 {
	lat1 := a[1] * math.Pi / 180
	lat2 := b[1] * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b[0] - a[0]) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Frame is a flat approximation of a geographic bounding box. The
// origin sits at the south-west corner; X runs east and Y runs north,
// both in kilometers. Longitude and latitude scale independently, so
// round trips through the frame are exact up to float error.
type Frame struct {
	Bound  orb.Bound
	Width  float64 // km along the southern edge
	Height float64 // km along the western edge

	degenerate bool
}

// NewFrame builds a frame over the given bounding box. Extents are
// measured along the box edges and floored at MinExtentKm.
func NewFrame(b orb.Bound) Frame {
	w := DistanceKm(b.Min, orb.Point{b.Max[0], b.Min[1]})
	h := DistanceKm(b.Min, orb.Point{b.Min[0], b.Max[1]})

	f := Frame{Bound: b, Width: w, Height: h}
	if w < MinExtentKm {
		f.Width = MinExtentKm
		f.degenerate = true
	}
	if h < MinExtentKm {
		f.Height = MinExtentKm
		f.degenerate = true
	}
	return f
}

// Degenerate reports whether either raw extent collapsed below
// MinExtentKm. Positions in a degenerate frame all map to the origin
// on the collapsed axis, so gradient refinement is not meaningful.
func (f Frame) Degenerate() bool {
	return f.degenerate
}

// ToPlanar converts a geographic point (lon, lat) to frame coordinates
// in kilometers.
func (f Frame) ToPlanar(p orb.Point) orb.Point {
	lonSpan := f.Bound.Max[0] - f.Bound.Min[0]
	latSpan := f.Bound.Max[1] - f.Bound.Min[1]

	var x, y float64
	if lonSpan > 0 {
		x = (p[0] - f.Bound.Min[0]) / lonSpan * f.Width
	}
	if latSpan > 0 {
		y = (p[1] - f.Bound.Min[1]) / latSpan * f.Height
	}
	return orb.Point{x, y}
}

// ToGeographic converts frame coordinates in kilometers back to a
// geographic point (lon, lat).
func (f Frame) ToGeographic(p orb.Point) orb.Point {
	lonSpan := f.Bound.Max[0] - f.Bound.Min[0]
	latSpan := f.Bound.Max[1] - f.Bound.Min[1]

	lon := f.Bound.Min[0] + p[0]/f.Width*lonSpan
	lat := f.Bound.Min[1] + p[1]/f.Height*latSpan
	return orb.Point{lon, lat}
}

// RingToPlanar converts a geographic ring to frame coordinates.
func (f Frame) RingToPlanar(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = f.ToPlanar(p)
	}
	return out
}

// AreaKm2 returns the area of a geographic ring measured in the frame,
// in square kilometers. Ring winding does not matter.
func (f Frame) AreaKm2(r orb.Ring) float64 {
	return math.Abs(planar.Area(f.RingToPlanar(r)))
}

// CloseRing returns the ring with its first vertex appended when the
// ring is not already closed. A nil or already closed ring is returned
// unchanged.
func CloseRing(r orb.Ring) orb.Ring {
	if len(r) == 0 || r[0] == r[len(r)-1] {
		return r
	}
	out := make(orb.Ring, 0, len(r)+1)
	out = append(out, r...)
	return append(out, r[0])
}
