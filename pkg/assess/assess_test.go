package assess

import (
	"reflect"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
}

func newTestAssessor(seed int64) *Assessor {
	a := New(seed)
	a.now = fixedClock
	return a
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// --- report shape tests ---

func TestAssessReportWithinCalibratedRanges(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		a := newTestAssessor(seed)
		res := a.Assess(48.0, 7.6)
		r := res.SiteReport

		band, ok := capacityFactorBands[r.Suitability]
		if !ok {
			t.Fatalf("seed %d: unknown suitability %q", seed, r.Suitability)
		}
		if r.CapacityFactor < band[0] || r.CapacityFactor > band[1] {
			t.Fatalf("seed %d: capacity factor %v outside %v band", seed, r.CapacityFactor, r.Suitability)
		}
		if r.GridDistanceKm < 1.5 || r.GridDistanceKm > 24.0 {
			t.Fatalf("seed %d: grid distance %v", seed, r.GridDistanceKm)
		}
		if r.NoiseProfileDB < 88 || r.NoiseProfileDB > 101 {
			t.Fatalf("seed %d: noise %v", seed, r.NoiseProfileDB)
		}
		if r.Confidence < 72 || r.Confidence > 95 {
			t.Fatalf("seed %d: confidence %d", seed, r.Confidence)
		}
		if len(r.RiskFlags) < 1 || len(r.RiskFlags) > 3 {
			t.Fatalf("seed %d: %d risk flags", seed, len(r.RiskFlags))
		}
		for _, flag := range r.RiskFlags {
			if !contains(riskFlagPool, flag) {
				t.Fatalf("seed %d: unknown risk flag %q", seed, flag)
			}
		}
		if !contains(terrainTypes, r.Terrain) {
			t.Fatalf("seed %d: unknown terrain %q", seed, r.Terrain)
		}
		if len(res.Catalogue) != catalogueSlots {
			t.Fatalf("seed %d: catalogue size %d", seed, len(res.Catalogue))
		}
		if r.BestTurbine != res.Catalogue[0].Name {
			t.Fatalf("seed %d: best turbine %q does not lead the catalogue", seed, r.BestTurbine)
		}
	}
}

func TestAssessLayoutArithmetic(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		a := newTestAssessor(seed)
		res := a.Assess(48.0, 7.6)
		layout := res.SiteReport.RecommendedLayout
		if layout == nil {
			t.Fatalf("seed %d: missing layout", seed)
		}

		if layout.TurbineCount < 14 || layout.TurbineCount > 28 {
			t.Fatalf("seed %d: turbine count %d", seed, layout.TurbineCount)
		}
		if layout.WakeLossPct < 7.5 || layout.WakeLossPct > 15.5 {
			t.Fatalf("seed %d: wake loss %v", seed, layout.WakeLossPct)
		}
		if !contains(spacingStrategies, layout.SpacingStrategy) {
			t.Fatalf("seed %d: unknown strategy %q", seed, layout.SpacingStrategy)
		}

		wantCapacity := roundTo(float64(layout.TurbineCount)*res.Catalogue[0].RatedPowerMW, 1)
		if layout.EstimatedCapacityMW != wantCapacity {
			t.Fatalf("seed %d: capacity %v, want %v", seed, layout.EstimatedCapacityMW, wantCapacity)
		}

		cf := res.SiteReport.CapacityFactor
		wantAnnual := roundTo(layout.EstimatedCapacityMW*hoursPerYear*cf*(1-layout.WakeLossPct/100), 0)
		if layout.AnnualGenerationMWh != wantAnnual {
			t.Fatalf("seed %d: annual %v, want %v", seed, layout.AnnualGenerationMWh, wantAnnual)
		}
		if res.SiteReport.ExpectedGeneration != layout.AnnualGenerationMWh {
			t.Fatalf("seed %d: expected generation does not match layout", seed)
		}

		wantCO2 := roundTo(layout.AnnualGenerationMWh*co2TonsPerMWh, 1)
		if res.SiteReport.CO2OffsetTons != wantCO2 {
			t.Fatalf("seed %d: co2 %v, want %v", seed, res.SiteReport.CO2OffsetTons, wantCO2)
		}
	}
}

func TestAssessDeterministicPerSeed(t *testing.T) {
	a := newTestAssessor(42)
	b := newTestAssessor(42)

	ra := a.Assess(48.0, 7.6)
	rb := b.Assess(48.0, 7.6)
	if !reflect.DeepEqual(ra, rb) {
		t.Fatal("same seed produced different assessments")
	}

	c := newTestAssessor(43)
	if reflect.DeepEqual(ra, c.Assess(48.0, 7.6)) {
		t.Fatal("different seeds produced identical assessments")
	}
}

// --- refusal tests ---

func TestAssessWaterBodyRefusal(t *testing.T) {
	res := newTestAssessor(1).Assess(51.525, -0.08)
	r := res.SiteReport

	if r.Suitability != "Not Suitable - Water Body" {
		t.Fatalf("suitability = %q", r.Suitability)
	}
	if r.BestTurbine != "N/A" || r.Terrain != "Open Water" {
		t.Fatalf("refusal fields = %q, %q", r.BestTurbine, r.Terrain)
	}
	if r.CapacityFactor != 0 || r.Confidence != 0 || r.NoiseProfileDB != 0 {
		t.Fatal("refusal carries nonzero metrics")
	}
	if r.RecommendedLayout != nil {
		t.Fatal("refusal carries a layout")
	}
	if len(r.RiskFlags) != 1 || r.RiskFlags[0] != "Marine ecosystem impact" {
		t.Fatalf("risk flags = %v", r.RiskFlags)
	}
	if res.RawData != nil || res.Forecast != nil {
		t.Fatal("refusal carries raw data or forecast")
	}
	if len(res.Catalogue) != 0 {
		t.Fatalf("refusal catalogue size %d", len(res.Catalogue))
	}
}

func TestAssessJustOutsideWaterZone(t *testing.T) {
	res := newTestAssessor(1).Assess(51.515, -0.08)
	if res.SiteReport.Suitability == "Not Suitable - Water Body" {
		t.Fatal("position outside the water zone refused")
	}
}

// --- shortlist tests ---

func TestPickTurbinesOrdering(t *testing.T) {
	a := newTestAssessor(7)
	strong := a.pickTurbines("Excellent")
	for i := 1; i < len(strong); i++ {
		if strong[i].RatedPowerMW > strong[i-1].RatedPowerMW {
			t.Fatalf("strong site shortlist not ordered by rated power: %v", strong)
		}
	}

	weak := a.pickTurbines("Poor")
	for i := 1; i < len(weak); i++ {
		if weak[i].CutInSpeedMS < weak[i-1].CutInSpeedMS {
			t.Fatalf("weak site shortlist not ordered by cut-in speed: %v", weak)
		}
	}
}

// --- forecast tests ---

func TestForecastShape(t *testing.T) {
	a := newTestAssessor(11)
	f := a.buildForecast(8.0)

	if len(f.Hourly) != 9 {
		t.Fatalf("forecast steps = %d, want 9", len(f.Hourly))
	}
	start := fixedClock().Truncate(time.Hour)
	for i, e := range f.Hourly {
		if e.HourOffset != i*3 {
			t.Fatalf("step %d offset = %d", i, e.HourOffset)
		}
		if !e.Timestamp.Equal(start.Add(time.Duration(e.HourOffset) * time.Hour)) {
			t.Fatalf("step %d timestamp = %v", i, e.Timestamp)
		}
		if e.WindSpeed < forecastFloorSpeed {
			t.Fatalf("step %d speed %v below floor", i, e.WindSpeed)
		}
		if e.Gust <= e.WindSpeed {
			t.Fatalf("step %d gust %v not above speed %v", i, e.Gust, e.WindSpeed)
		}
		if e.Direction < 200 || e.Direction > 290 {
			t.Fatalf("step %d direction %v", i, e.Direction)
		}
		if !contains(forecastConfidence, e.Confidence) {
			t.Fatalf("step %d confidence %q", i, e.Confidence)
		}
	}
}

func TestForecastSummaryMatchesHourly(t *testing.T) {
	a := newTestAssessor(13)
	f := a.buildForecast(8.5)

	peak, min, sum := f.Hourly[0].WindSpeed, f.Hourly[0].WindSpeed, 0.0
	for _, e := range f.Hourly {
		if e.WindSpeed > peak {
			peak = e.WindSpeed
		}
		if e.WindSpeed < min {
			min = e.WindSpeed
		}
		sum += e.WindSpeed
	}

	if f.Summary.PeakSpeed != peak || f.Summary.MinSpeed != min {
		t.Fatalf("summary extremes %v/%v, want %v/%v",
			f.Summary.PeakSpeed, f.Summary.MinSpeed, peak, min)
	}
	if f.Summary.AvgSpeed != roundTo(sum/float64(len(f.Hourly)), 1) {
		t.Fatalf("summary avg %v", f.Summary.AvgSpeed)
	}
	if !contains(forecastTrends, f.Summary.Trend) {
		t.Fatalf("summary trend %q", f.Summary.Trend)
	}
}

func TestForecastFloorsCalmSpeeds(t *testing.T) {
	// Base 0.5 plus the largest possible delta still sits below the
	// floor, so every step clamps to it exactly.
	a := newTestAssessor(17)
	f := a.buildForecast(0.5)
	for i, e := range f.Hourly {
		if e.WindSpeed != forecastFloorSpeed {
			t.Fatalf("step %d speed %v, want floored %v", i, e.WindSpeed, forecastFloorSpeed)
		}
	}
}
