package turbine

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

const tolerance = 1e-6

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// --- Power curve tests ---

func TestPowerBelowCutIn(t *testing.T) {
	for _, v := range []float64{0, 1.5, 3.9999} {
		if got := Power(v); got != 0 {
			t.Errorf("Power(%f) = %f, expected 0", v, got)
		}
	}
}

func TestPowerContinuousAtCutIn(t *testing.T) {
	if got := Power(4); got != 0 {
		t.Errorf("Power(4) = %f, expected 0", got)
	}
	if got := Power(4.001); got > 1e-5 {
		t.Errorf("Power just above cut-in = %f, expected ~0", got)
	}
}

func TestPowerQuadraticRamp(t *testing.T) {
	if got := Power(8); !approxEqual(got, 8, tolerance) {
		t.Errorf("Power(8) = %f, expected 8", got)
	}
	if got := Power(10); !approxEqual(got, 18, tolerance) {
		t.Errorf("Power(10) = %f, expected 18", got)
	}
}

func TestPowerLinearSegment(t *testing.T) {
	if got := Power(12); !approxEqual(got, 40, tolerance) {
		t.Errorf("Power(12) = %f, expected 40", got)
	}
	if got := Power(15); !approxEqual(got, 43.6, tolerance) {
		t.Errorf("Power(15) = %f, expected 43.6", got)
	}
	if got := Power(24.999); !approxEqual(got, 55.5988, 1e-3) {
		t.Errorf("Power(24.999) = %f, expected ~55.6", got)
	}
}

func TestPowerCutOut(t *testing.T) {
	for _, v := range []float64{25, 26, 40} {
		if got := Power(v); got != 0 {
			t.Errorf("Power(%f) = %f, expected 0 at cut-out", v, got)
		}
	}
}

func TestSitePowerUnits(t *testing.T) {
	if got := SitePower(8, 2); !approxEqual(got, 16, tolerance) {
		t.Errorf("SitePower(8, 2) = %f, expected 16", got)
	}
	if got := SitePower(8, 3); !approxEqual(got, 24, tolerance) {
		t.Errorf("SitePower(8, 3) = %f, expected 24", got)
	}
	// Zero units falls back to the default multiplier.
	if got := SitePower(8, 0); !approxEqual(got, 8*float64(DefaultUnitsPerSite), tolerance) {
		t.Errorf("SitePower(8, 0) = %f, expected default units", got)
	}
}

// --- Capacity factor tests ---

func TestCapacityFactor(t *testing.T) {
	if got := CapacityFactor(0); !approxEqual(got, 0, tolerance) {
		t.Errorf("CapacityFactor(0) = %f, expected 0", got)
	}
	if got := CapacityFactor(6); !approxEqual(got, 0.225, tolerance) {
		t.Errorf("CapacityFactor(6) = %f, expected 0.225", got)
	}
	if got := CapacityFactor(12); !approxEqual(got, 0.45, tolerance) {
		t.Errorf("CapacityFactor(12) = %f, expected 0.45", got)
	}
}

func TestCapacityFactorCapped(t *testing.T) {
	if got := CapacityFactor(20); !approxEqual(got, 0.50, tolerance) {
		t.Errorf("CapacityFactor(20) = %f, expected cap 0.50", got)
	}
}

// --- Spacing penalty tests ---

func TestSpacingPenaltyNoViolation(t *testing.T) {
	pts := []orb.Point{{0, 0}, {0.4, 0}, {0, 0.5}}
	if got := SpacingPenalty(pts, 0.4); got != 0 {
		t.Errorf("expected 0 penalty, got %f", got)
	}
}

func TestSpacingPenaltySinglePair(t *testing.T) {
	pts := []orb.Point{{0, 0}, {0.2, 0}}
	// (0.4-0.2)/0.4 = 0.5, squared 0.25, times 5 = 1.25.
	if got := SpacingPenalty(pts, 0.4); !approxEqual(got, 1.25, tolerance) {
		t.Errorf("expected penalty 1.25, got %f", got)
	}
}

func TestSpacingPenaltyAccumulates(t *testing.T) {
	pts := []orb.Point{{0, 0}, {0.2, 0}, {0.1, 0}}
	single := SpacingPenalty([]orb.Point{{0, 0}, {0.2, 0}}, 0.4)
	all := SpacingPenalty(pts, 0.4)
	if all <= single {
		t.Errorf("expected accumulated penalty > %f, got %f", single, all)
	}
}

func TestSpacingPenaltyEmpty(t *testing.T) {
	if got := SpacingPenalty(nil, 0.4); got != 0 {
		t.Errorf("expected 0 for no positions, got %f", got)
	}
}

// --- Wake tests ---

func TestWakeDeficitZeroSeparation(t *testing.T) {
	p := orb.Point{1, 1}
	if got := WakeDeficit(p, p, 0, 10, DefaultRotorDiameterKm); got != 0 {
		t.Errorf("expected 0 at zero separation, got %f", got)
	}
}

func TestWakeDeficitUpwind(t *testing.T) {
	// The downstream point sits behind the source against the wind.
	if got := WakeDeficit(orb.Point{0, 0}, orb.Point{-1, 0}, 0, 10, DefaultRotorDiameterKm); got != 0 {
		t.Errorf("expected 0 upwind, got %f", got)
	}
}

func TestWakeDeficitOutsideCone(t *testing.T) {
	// 1 km downwind the half-width is 0.08 + 0.075 = 0.155 km.
	got := WakeDeficit(orb.Point{0, 0}, orb.Point{1, 0.2}, 0, 10, DefaultRotorDiameterKm)
	if got != 0 {
		t.Errorf("expected 0 outside the wake cone, got %f", got)
	}
}

func TestWakeDeficitHeadOn(t *testing.T) {
	got := WakeDeficit(orb.Point{0, 0}, orb.Point{1, 0}, 0, 10, DefaultRotorDiameterKm)
	// (1-sqrt(0.12)) * (0.08/0.155)^2 * 10
	if !approxEqual(got, 1.74109, 1e-4) {
		t.Errorf("expected deficit ~1.74109, got %f", got)
	}
}

func TestWakeDeficitRotatedDirection(t *testing.T) {
	// With the wind blowing toward +Y, a point due north is head-on.
	north := WakeDeficit(orb.Point{0, 0}, orb.Point{0, 1}, 90, 10, DefaultRotorDiameterKm)
	east := WakeDeficit(orb.Point{0, 0}, orb.Point{1, 0}, 0, 10, DefaultRotorDiameterKm)
	if !approxEqual(north, east, 1e-9) {
		t.Errorf("expected rotation symmetry, got north %f east %f", north, east)
	}
}

func TestWakeDeficitDecaysDownwind(t *testing.T) {
	near := WakeDeficit(orb.Point{0, 0}, orb.Point{0.5, 0}, 0, 10, DefaultRotorDiameterKm)
	far := WakeDeficit(orb.Point{0, 0}, orb.Point{2, 0}, 0, 10, DefaultRotorDiameterKm)
	if near <= far || far <= 0 {
		t.Errorf("expected deficit to decay downwind, near %f far %f", near, far)
	}
}

func TestWakeDeficitCrosswindFalloff(t *testing.T) {
	headOn := WakeDeficit(orb.Point{0, 0}, orb.Point{1, 0}, 0, 10, DefaultRotorDiameterKm)
	offAxis := WakeDeficit(orb.Point{0, 0}, orb.Point{1, 0.1}, 0, 10, DefaultRotorDiameterKm)
	if offAxis <= 0 || offAxis >= headOn {
		t.Errorf("expected 0 < off-axis %f < head-on %f", offAxis, headOn)
	}
}

func TestWakeDeficitScalesWithWindSpeed(t *testing.T) {
	small := WakeDeficit(orb.Point{0, 0}, orb.Point{1, 0}, 0, 5, DefaultRotorDiameterKm)
	large := WakeDeficit(orb.Point{0, 0}, orb.Point{1, 0}, 0, 10, DefaultRotorDiameterKm)
	if !approxEqual(large, 2*small, 1e-9) {
		t.Errorf("expected deficit linear in wind speed, got %f and %f", small, large)
	}
}

// --- Catalogue tests ---

func TestCatalogueSize(t *testing.T) {
	if got := len(Catalogue()); got != 5 {
		t.Fatalf("expected 5 models, got %d", got)
	}
}

func TestCatalogueReturnsCopy(t *testing.T) {
	c := Catalogue()
	c[0].Name = "mutated"
	if Catalogue()[0].Name == "mutated" {
		t.Error("expected Catalogue to return an independent copy")
	}
}

func TestModelByName(t *testing.T) {
	m, ok := ModelByName("GE Haliade-X 12 MW")
	if !ok {
		t.Fatal("expected to find GE Haliade-X 12 MW")
	}
	if !approxEqual(m.RatedPowerMW, 12.0, tolerance) {
		t.Errorf("expected 12.0 MW, got %f", m.RatedPowerMW)
	}
	if _, ok := ModelByName("No Such Turbine"); ok {
		t.Error("expected lookup miss for unknown model")
	}
}

func TestSortByRatedPower(t *testing.T) {
	models := Catalogue()
	SortByRatedPower(models)
	for i := 1; i < len(models); i++ {
		if models[i].RatedPowerMW > models[i-1].RatedPowerMW {
			t.Fatalf("expected descending rated power at %d", i)
		}
	}
	if models[0].Name != "Siemens Gamesa SG 14-222 DD" {
		t.Errorf("expected SG 14-222 DD first, got %s", models[0].Name)
	}
}

func TestSortByCutIn(t *testing.T) {
	models := Catalogue()
	SortByCutIn(models)
	for i := 1; i < len(models); i++ {
		if models[i].CutInSpeedMS < models[i-1].CutInSpeedMS {
			t.Fatalf("expected ascending cut-in speed at %d", i)
		}
	}
	if models[0].Name != "Enercon E-160 EP5" {
		t.Errorf("expected Enercon E-160 EP5 first, got %s", models[0].Name)
	}
}
