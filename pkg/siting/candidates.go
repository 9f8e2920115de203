package siting

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/Karthikk1803/WindSiteAI/pkg/geo"
	"github.com/Karthikk1803/WindSiteAI/pkg/turbine"
	"github.com/Karthikk1803/WindSiteAI/pkg/windfield"
)

const (
	fineLatticeKm   = 0.05 // boundaries under 5 km2
	mediumLatticeKm = 0.10 // 5 to 20 km2
	coarseLatticeKm = 0.15 // beyond 20 km2

	fineAreaKm2   = 5.0
	mediumAreaKm2 = 20.0

	maxCandidates    = 5000
	obstacleBufferKm = 0.1

	scoreChunk = 256 // candidates per scoring goroutine
)

// candidate is one lattice point with its precomputed selection
// metrics. Positions are carried in both coordinate systems so the
// pipeline never re-derives them.
type candidate struct {
	geo    orb.Point // (lon, lat)
	planar orb.Point // km within the frame

	windSpeed      float64
	capacityFactor float64
	power          float64
	edgeKm         float64 // distance to the boundary ring
	centroidKm     float64 // distance to the boundary centroid
}

// latticeSpacing picks the candidate grid pitch for a boundary area.
func latticeSpacing(areaKm2 float64) float64 {
	switch {
	case areaKm2 < fineAreaKm2:
		return fineLatticeKm
	case areaKm2 <= mediumAreaKm2:
		return mediumLatticeKm
	default:
		return coarseLatticeKm
	}
}

// generateCandidates walks the frame row-major, south to north and
// west to east, keeping lattice points that fall inside the boundary
// ring. The walk order is the tie-break order for selection, so it
// must stay deterministic.
func generateCandidates(frame geo.Frame, boundary orb.Ring, spacing float64) []candidate {
	var out []candidate
	for y := 0.0; y <= frame.Height; y += spacing {
		for x := 0.0; x <= frame.Width; x += spacing {
			pt := orb.Point{x, y}
			gp := frame.ToGeographic(pt)
			if !planar.RingContains(boundary, gp) {
				continue
			}
			out = append(out, candidate{geo: gp, planar: pt})
		}
	}
	return out
}

// blockingZone is an obstacle geometry converted to the planar frame.
// The line carries the measurable outline; poly is set for areal
// obstacles whose interior blocks placement outright.
type blockingZone struct {
	line orb.LineString
	poly orb.Polygon
}

// planarZone converts an obstacle into the frame. Geometries that
// cannot be measured, unsupported types or outlines with too few
// vertices, report ok=false and are skipped by the filter.
func planarZone(ob Obstacle, frame geo.Frame) (blockingZone, bool) {
	switch g := ob.Geometry.(type) {
	case orb.LineString:
		if len(g) < 2 {
			return blockingZone{}, false
		}
		line := make(orb.LineString, len(g))
		for i, p := range g {
			line[i] = frame.ToPlanar(p)
		}
		return blockingZone{line: line}, true
	case orb.Ring:
		if len(g) < 3 {
			return blockingZone{}, false
		}
		ring := frame.RingToPlanar(geo.CloseRing(g))
		return blockingZone{line: orb.LineString(ring), poly: orb.Polygon{ring}}, true
	case orb.Polygon:
		if len(g) == 0 || len(g[0]) < 3 {
			return blockingZone{}, false
		}
		ring := frame.RingToPlanar(geo.CloseRing(g[0]))
		return blockingZone{line: orb.LineString(ring), poly: orb.Polygon{ring}}, true
	default:
		return blockingZone{}, false
	}
}

// filterObstacles drops candidates inside an areal obstacle or within
// the buffer distance of any obstacle outline.
func filterObstacles(cands []candidate, obstacles []Obstacle, frame geo.Frame) []candidate {
	zones := make([]blockingZone, 0, len(obstacles))
	for _, ob := range obstacles {
		if z, ok := planarZone(ob, frame); ok {
			zones = append(zones, z)
		}
	}
	if len(zones) == 0 {
		return cands
	}

	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if blocked(c.planar, zones) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func blocked(pt orb.Point, zones []blockingZone) bool {
	for _, z := range zones {
		if z.poly != nil && planar.PolygonContains(z.poly, pt) {
			return true
		}
		if planar.DistanceFrom(z.line, pt) <= obstacleBufferKm {
			return true
		}
	}
	return false
}

// downsample caps the candidate list with a deterministic stride so
// oversized boundaries stay tractable and reproducible.
func downsample(cands []candidate, limit int) []candidate {
	if limit <= 0 || len(cands) <= limit {
		return cands
	}
	stride := (len(cands) + limit - 1) / limit
	out := make([]candidate, 0, limit)
	for i := 0; i < len(cands) && len(out) < limit; i += stride {
		out = append(out, cands[i])
	}
	return out
}

// scoreCandidates samples wind and fills the raw selection metrics for
// every candidate. Chunks fan out across goroutines; each one writes a
// disjoint slice of the input, so the pass is race-free and its output
// does not depend on scheduling.
func scoreCandidates(ctx context.Context, cands []candidate, wind *windfield.Surface, frame geo.Frame, boundary orb.Ring, units int) error {
	kmRing := frame.RingToPlanar(boundary)
	edge := orb.LineString(kmRing)

	// A collapsed ring has no area centroid; the frame center stands in
	// so centrality never goes NaN.
	centroid, area := planar.CentroidArea(orb.Polygon{kmRing})
	if area == 0 || math.IsNaN(centroid[0]) || math.IsNaN(centroid[1]) {
		centroid = orb.Point{frame.Width / 2, frame.Height / 2}
	}

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(cands); start += scoreChunk {
		chunk := cands[start:min(start+scoreChunk, len(cands))]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := range chunk {
				c := &chunk[i]
				if wind != nil {
					c.windSpeed = wind.Sample(c.geo[1], c.geo[0])
					c.capacityFactor = turbine.CapacityFactor(c.windSpeed)
				} else {
					c.capacityFactor = turbine.FallbackCapacityFactor
				}
				c.power = turbine.SitePower(c.windSpeed, units)
				c.edgeKm = planar.DistanceFrom(edge, c.planar)
				c.centroidKm = planar.Distance(centroid, c.planar)
			}
			return nil
		})
	}
	return g.Wait()
}
