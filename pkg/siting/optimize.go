package siting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Karthikk1803/WindSiteAI/pkg/geo"
	"github.com/Karthikk1803/WindSiteAI/pkg/turbine"
	"github.com/Karthikk1803/WindSiteAI/pkg/validation"
)

// Post-refinement score blend: relative power output against the best
// site, and achieved spacing against the required minimum.
const (
	postPowerWeight   = 0.65
	postSpacingWeight = 0.35
)

// Optimize runs the full siting pipeline for one request: validate,
// build the planar frame, generate and filter the candidate lattice,
// select sites greedily and refine their positions. Degraded inputs
// (no wind surface, no obstacle data, a boundary too small for the
// requested count) still produce a result; the report says what was
// skipped or reduced. Identical requests yield identical placements.
func Optimize(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	report := validation.NewReport()

	// 1. Validate the request and resolve option defaults.
	boundary := geo.CloseRing(req.Boundary)
	if len(boundary) < 4 {
		return nil, ErrInvalidBoundary
	}
	if req.TargetCount < 1 {
		return nil, ErrInvalidTargetCount
	}
	opts := req.Options
	if opts.MinSpacingKm <= 0 {
		opts.MinSpacingKm = DefaultMinSpacingKm
	}
	if opts.UnitsPerSite <= 0 {
		opts.UnitsPerSite = turbine.DefaultUnitsPerSite
	}

	// 2. Planar frame over the boundary bounding box.
	frame := geo.NewFrame(boundary.Bound())
	area := frame.AreaKm2(boundary)
	spacing := latticeSpacing(area)
	report.AddInfo(validation.Result{
		Level:   validation.LevelSpatial,
		Message: fmt.Sprintf("boundary area %.2f km2, lattice spacing %.0f m", area, spacing*1000),
	})

	// 3. Candidate lattice inside the boundary.
	cands := generateCandidates(frame, boundary, spacing)
	lattice := len(cands)
	if lattice == 0 {
		return nil, ErrNoCandidates
	}

	// 4. Obstacle proximity filter.
	if len(req.Obstacles) > 0 {
		cands = filterObstacles(cands, req.Obstacles, frame)
		if len(cands) == 0 {
			return nil, &NoSafeCandidatesError{Candidates: lattice, Blocked: lattice}
		}
		if removed := lattice - len(cands); removed > 0 {
			report.AddInfo(validation.Result{
				Level:   validation.LevelSpatial,
				Message: fmt.Sprintf("%d of %d candidates within %.0f m of an obstacle", removed, lattice, obstacleBufferKm*1000),
			})
		}
	} else {
		report.AddInfo(validation.Result{
			Level:   validation.LevelData,
			Message: "no obstacle data; proximity filter skipped",
		})
	}
	safe := len(cands)

	// 5. Deterministic cap on the candidate count.
	cands = downsample(cands, maxCandidates)
	if len(cands) < safe {
		report.AddInfo(validation.Result{
			Level:   validation.LevelSpatial,
			Message: fmt.Sprintf("candidate set capped at %d of %d by stride sampling", len(cands), safe),
		})
	}

	// 6. Per-candidate metrics.
	if req.Wind == nil {
		report.AddWarning(validation.Result{
			Level:   validation.LevelData,
			Message: fmt.Sprintf("wind field unavailable; capacity factor fixed at %.2f and refinement skipped", turbine.FallbackCapacityFactor),
		})
	}
	if err := scoreCandidates(ctx, cands, req.Wind, frame, boundary, opts.UnitsPerSite); err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}

	// 7. Greedy selection under the hard spacing constraint.
	picks := selectSites(cands, req.TargetCount, opts.MinSpacingKm)
	fulfilled := len(picks) == req.TargetCount
	if !fulfilled {
		report.AddWarning(validation.Result{
			Level:   validation.LevelSpatial,
			Message: fmt.Sprintf("placed %d of %d requested sites; boundary cannot hold more at %.2f km spacing", len(picks), req.TargetCount, opts.MinSpacingKm),
		})
	}

	positions := make([]orb.Point, len(picks))
	for i, p := range picks {
		positions[i] = cands[p.index].planar
	}
	windAt := func(p orb.Point) float64 {
		if req.Wind == nil {
			return 0
		}
		gp := frame.ToGeographic(p)
		return req.Wind.Sample(gp[1], gp[0])
	}

	// 8. Gradient refinement of the selected positions.
	refined := false
	displacement := make([]float64, len(picks))
	if req.Wind != nil && !opts.SkipRefinement && len(picks) > 0 {
		if frame.Degenerate() {
			report.AddWarning(validation.Result{
				Level:   validation.LevelSpatial,
				Message: "boundary frame is degenerate; refinement skipped",
			})
		} else {
			outcome := refinePositions(ctx, positions, frame, windAt, opts.MinSpacingKm, opts.UnitsPerSite)

			// Anything the descent pushed outside the boundary reverts
			// to its selected position; the rest move.
			reverted := 0
			for i, p := range outcome.positions {
				if !planar.RingContains(boundary, frame.ToGeographic(p)) {
					reverted++
					continue
				}
				displacement[i] = planar.Distance(positions[i], p)
				positions[i] = p
			}
			if reverted > 0 {
				report.AddInfo(validation.Result{
					Level:   validation.LevelSpatial,
					Message: fmt.Sprintf("%d refined positions left the boundary and were reverted", reverted),
				})
			}
			report.AddInfo(validation.Result{
				Level:   validation.LevelSpatial,
				Message: fmt.Sprintf("refinement ran %d iterations", outcome.iterations),
			})
			refined = true
		}
	}

	// 9. Assemble ranked sites.
	sites := make([]Site, len(picks))
	for i, p := range picks {
		c := cands[p.index]
		gp := frame.ToGeographic(positions[i])
		sites[i] = Site{
			Rank:           i + 1,
			Lat:            gp[1],
			Lon:            gp[0],
			WindSpeed:      c.windSpeed,
			CapacityFactor: c.capacityFactor,
			Power:          c.power,
			Scores:         p.scores,
			Composite:      p.composite,
			Refined:        refined,
			DisplacementKm: displacement[i],
		}
	}

	// Refined runs re-score on wake-reduced power and achieved spacing,
	// then re-rank; unrefined runs keep the selection ordering.
	if refined {
		speeds := wakeReducedSpeeds(positions, windAt)
		powers := make([]float64, len(picks))
		maxPower := 0.0
		for i, v := range speeds {
			powers[i] = turbine.SitePower(v, opts.UnitsPerSite)
			maxPower = math.Max(maxPower, powers[i])
		}
		for i := range sites {
			sites[i].WindSpeed = speeds[i]
			sites[i].CapacityFactor = turbine.CapacityFactor(windAt(positions[i]))
			sites[i].Power = powers[i]

			powerRatio := 0.0
			if maxPower > 0 {
				powerRatio = math.Min(powers[i]/maxPower, 1)
			}
			spacingRatio := 1.0
			if len(positions) > 1 {
				spacingRatio = math.Min(nearestOther(positions, i)/opts.MinSpacingKm, 1)
			}
			sites[i].Composite = postPowerWeight*powerRatio + postSpacingWeight*spacingRatio
		}
		sort.SliceStable(sites, func(a, b int) bool { return sites[a].Composite > sites[b].Composite })
		for i := range sites {
			sites[i].Rank = i + 1
		}
	}
	for i := range sites {
		sites[i].ID = fmt.Sprintf("site_%05d", sites[i].Rank)
	}

	return &Result{
		RunID:      uuid.NewString(),
		Sites:      sites,
		Requested:  req.TargetCount,
		Fulfilled:  fulfilled,
		Refined:    refined,
		AreaKm2:    area,
		LatticeKm:  spacing,
		Candidates: CandidateCounts{Lattice: lattice, Safe: safe, Scored: len(cands)},
		Report:     report,
		ElapsedMS:  float64(time.Since(started).Microseconds()) / 1000.0,
	}, nil
}

// nearestOther returns the distance from positions[i] to its closest
// counterpart.
func nearestOther(positions []orb.Point, i int) float64 {
	best := math.Inf(1)
	for j, q := range positions {
		if j == i {
			continue
		}
		if d := planar.Distance(positions[i], q); d < best {
			best = d
		}
	}
	return best
}
