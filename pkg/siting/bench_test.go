package siting

import (
	"context"
	"testing"
)

// runPlacement drives the full pipeline over a square boundary of the
// given side with a uniform wind surface attached.
func runPlacement(tb testing.TB, sideDeg float64, target int) *Result {
	tb.Helper()
	ring := squareRing(sideDeg)
	res, err := Optimize(context.Background(), Request{
		Boundary:    ring,
		Wind:        uniformSurface(ring.Bound(), 8.5),
		TargetCount: target,
	})
	if err != nil {
		tb.Fatalf("optimize failed for %.3f deg side: %v", sideDeg, err)
	}
	return res
}

func TestWideBoundary25Sites(t *testing.T) {
	res := runPlacement(t, 0.1, 25)
	if len(res.Sites) != 25 || !res.Fulfilled {
		t.Fatalf("placed %d sites, fulfilled=%v, want 25 fulfilled", len(res.Sites), res.Fulfilled)
	}
	t.Logf("%.1f km2 boundary: %d lattice, %d scored, refined=%v",
		res.AreaKm2, res.Candidates.Lattice, res.Candidates.Scored, res.Refined)

	if min := minPairwiseKm(sitePlanar(squareRing(0.1), res.Sites)); min < DefaultMinSpacingKm-tolerance {
		t.Fatalf("min spacing %v km below floor", min)
	}
}

func BenchmarkOptimizeSmallBoundary(b *testing.B) {
	for b.Loop() {
		runPlacement(b, 0.01, 5)
	}
}

func BenchmarkOptimizeMediumBoundary(b *testing.B) {
	for b.Loop() {
		runPlacement(b, 0.03, 12)
	}
}

func BenchmarkOptimizeWideBoundary(b *testing.B) {
	for b.Loop() {
		runPlacement(b, 0.1, 25)
	}
}
