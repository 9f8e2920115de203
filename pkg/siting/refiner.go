package siting

import (
	"context"
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/Karthikk1803/WindSiteAI/pkg/geo"
	"github.com/Karthikk1803/WindSiteAI/pkg/turbine"
)

const (
	fdStepKm      = 0.05 // central-difference probe distance
	gradientScale = 10.0
	learningRate  = 0.08
	maxIterations = 120
	gradTolerance = 1e-4 // largest |component| that still counts as converged

	// spacingWeight makes a single pair below minimum spacing cost far
	// more than any realistic power gain.
	spacingWeight = 2000.0

	// refineWindDir is the prevailing direction wakes propagate along
	// during refinement, in degrees.
	refineWindDir = 0.0
)

// windAtFunc samples the free-stream wind speed at a planar position.
type windAtFunc func(orb.Point) float64

// refineOutcome carries the refined positions and loop statistics.
type refineOutcome struct {
	positions  []orb.Point
	iterations int
	objective  float64
}

// refinePositions runs projected gradient descent on the planar site
// positions, maximizing wake-aware power minus the spacing penalty.
// All partial derivatives of an iteration are evaluated against the
// same position snapshot and applied together, and the best positions
// seen across the loop are returned rather than the last ones.
func refinePositions(ctx context.Context, initial []orb.Point, frame geo.Frame, windAt windAtFunc, minSpacing float64, units int) refineOutcome {
	n := len(initial)
	pts := make([]orb.Point, n)
	copy(pts, initial)

	// Positions stay one rotor diameter inside the frame, reduced on
	// small frames so the feasible band never collapses.
	marginX := math.Min(turbine.DefaultRotorDiameterKm, frame.Width/4)
	marginY := math.Min(turbine.DefaultRotorDiameterKm, frame.Height/4)

	objective := func(p []orb.Point) float64 {
		return -(wakeAwarePower(p, windAt, units) - spacingWeight*turbine.SpacingPenalty(p, minSpacing))
	}

	best := make([]orb.Point, n)
	copy(best, pts)
	bestObj := objective(pts)

	// Gradient laid out flat as [x0 y0 x1 y1 ...] so the convergence
	// check can take the norm of the whole vector at once.
	grad := make([]float64, 2*n)

	iterations := 0
	for iter := 0; iter < maxIterations; iter++ {
		iterations = iter + 1

		// Per-site partial derivatives by central difference. Each
		// goroutine perturbs a private copy and writes its own gradient
		// slots, so the snapshot stays untouched until the update below.
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < n; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				local := make([]orb.Point, n)
				copy(local, pts)
				for axis := 0; axis < 2; axis++ {
					center := pts[i][axis]
					local[i][axis] = center + fdStepKm
					plus := objective(local)
					local[i][axis] = center - fdStepKm
					minus := objective(local)
					local[i][axis] = center
					grad[2*i+axis] = (plus - minus) / (2 * fdStepKm) * gradientScale
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			break
		}

		if floats.Norm(grad, math.Inf(1)) < gradTolerance {
			break
		}

		for i := range pts {
			pts[i][0] = clamp(pts[i][0]-learningRate*grad[2*i], marginX, frame.Width-marginX)
			pts[i][1] = clamp(pts[i][1]-learningRate*grad[2*i+1], marginY, frame.Height-marginY)
		}

		if o := objective(pts); o < bestObj {
			bestObj = o
			copy(best, pts)
		}
	}

	return refineOutcome{positions: best, iterations: iterations, objective: bestObj}
}

// wakeReducedSpeeds returns each site's wind speed after subtracting
// the wake deficits cast by every other site under the prevailing
// direction, floored at zero.
func wakeReducedSpeeds(pts []orb.Point, windAt windAtFunc) []float64 {
	out := make([]float64, len(pts))
	for i := range pts {
		v := windAt(pts[i])
		for j := range pts {
			if j == i {
				continue
			}
			v -= turbine.WakeDeficit(pts[j], pts[i], refineWindDir, windAt(pts[j]), turbine.DefaultRotorDiameterKm)
		}
		out[i] = math.Max(v, 0)
	}
	return out
}

// wakeAwarePower sums site power over wake-reduced wind speeds.
func wakeAwarePower(pts []orb.Point, windAt windAtFunc, units int) float64 {
	total := 0.0
	for _, v := range wakeReducedSpeeds(pts, windAt) {
		total += turbine.SitePower(v, units)
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
