package siting

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Composite weights for greedy selection. Capacity factor dominates,
// raw wind speed reinforces it, and the spatial terms keep picks away
// from each other, off the boundary and reasonably central.
const (
	weightCapacityFactor = 0.50
	weightWind           = 0.30
	weightSpacing        = 0.15
	weightEdge           = 0.03
	weightCentrality     = 0.02
)

// DefaultMinSpacingKm is the hard minimum distance between selected
// sites when the request does not override it.
const DefaultMinSpacingKm = 0.4

// picked records one greedy selection with the scores it won on.
type picked struct {
	index     int // into the candidate slice
	scores    Scores
	composite float64
}

// selectSites greedily picks up to target sites by composite score.
// Candidates closer than minSpacing to any selected site become
// permanently ineligible, ties break toward earlier lattice order,
// and selection stops early once nothing eligible remains.
func selectSites(cands []candidate, target int, minSpacing float64) []picked {
	if target <= 0 || len(cands) == 0 {
		return nil
	}

	base := normalizeMetrics(cands)

	selected := make([]picked, 0, target)
	positions := make([]orb.Point, 0, target)
	eligible := make([]bool, len(cands))
	for i := range eligible {
		eligible[i] = true
	}
	minDist := make([]float64, len(cands))

	for len(selected) < target {
		// Distance from each eligible candidate to its nearest selected
		// site. The largest such distance normalizes spacing scores; the
		// first pick has no neighbors and scores a full 1.
		maxMin := 0.0
		any := false
		for i := range cands {
			if !eligible[i] {
				continue
			}
			d := nearestTo(cands[i].planar, positions)
			if len(positions) > 0 && d < minSpacing {
				eligible[i] = false
				continue
			}
			minDist[i] = d
			if len(positions) > 0 && d > maxMin {
				maxMin = d
			}
			any = true
		}
		if !any {
			break
		}

		bestIdx := -1
		var best picked
		for i := range cands {
			if !eligible[i] {
				continue
			}
			spacing := 1.0
			if len(positions) > 0 && maxMin > 0 {
				spacing = minDist[i] / maxMin
			}
			s := base[i]
			s.Spacing = spacing
			composite := weightCapacityFactor*s.CapacityFactor +
				weightWind*s.Wind +
				weightSpacing*s.Spacing +
				weightEdge*s.Edge +
				weightCentrality*s.Centrality
			if bestIdx == -1 || composite > best.composite {
				bestIdx = i
				best = picked{index: i, scores: s, composite: composite}
			}
		}
		if bestIdx == -1 {
			break
		}

		eligible[bestIdx] = false
		selected = append(selected, best)
		positions = append(positions, cands[bestIdx].planar)
	}
	return selected
}

// normalizeMetrics scales each raw metric to [0, 1] against the
// largest observed value. Centrality inverts the centroid distance so
// central candidates score high; a uniform metric (all zero, or a
// degenerate centroid) normalizes to zero rather than dividing by
// zero. Spacing is filled per iteration by selectSites.
func normalizeMetrics(cands []candidate) []Scores {
	var maxCF, maxWind, maxEdge, maxCentroid float64
	for i := range cands {
		maxCF = math.Max(maxCF, cands[i].capacityFactor)
		maxWind = math.Max(maxWind, cands[i].windSpeed)
		maxEdge = math.Max(maxEdge, cands[i].edgeKm)
		maxCentroid = math.Max(maxCentroid, cands[i].centroidKm)
	}

	out := make([]Scores, len(cands))
	for i := range cands {
		out[i] = Scores{
			CapacityFactor: normalize(cands[i].capacityFactor, maxCF),
			Wind:           normalize(cands[i].windSpeed, maxWind),
			Edge:           normalize(cands[i].edgeKm, maxEdge),
			Centrality:     1 - normalize(cands[i].centroidKm, maxCentroid),
		}
	}
	return out
}

func normalize(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}

// nearestTo returns the distance from p to the closest position, or
// +Inf when the slice is empty.
func nearestTo(p orb.Point, positions []orb.Point) float64 {
	best := math.Inf(1)
	for _, q := range positions {
		if d := planar.Distance(p, q); d < best {
			best = d
		}
	}
	return best
}
