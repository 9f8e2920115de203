package main

import (
	"fmt"
	"time"

	"github.com/Karthikk1803/WindSiteAI/pkg/assess"
	"github.com/Karthikk1803/WindSiteAI/pkg/scenario"
	"github.com/Karthikk1803/WindSiteAI/pkg/siting"
	"github.com/Karthikk1803/WindSiteAI/pkg/validation"
	"github.com/Karthikk1803/WindSiteAI/pkg/windfield"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.Field != "" && e.ActualValue != nil {
				fmt.Printf("    -> %s = %v\n", e.Field, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
			for _, s := range e.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.Field != "" && w.ActualValue != nil {
				fmt.Printf("    -> %s = %v\n", w.Field, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
			for _, s := range w.Suggestions {
				fmt.Printf("    * %s\n", s)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printSiteTable(sc *scenario.Scenario, r *siting.Result) {
	fmt.Printf("Scenario: %s\n", sc.Name)
	fmt.Printf("Boundary area %.2f km2, lattice spacing %.2f km\n", r.AreaKm2, r.LatticeKm)
	fmt.Printf("Candidates: %d lattice, %d safe, %d scored\n",
		r.Candidates.Lattice, r.Candidates.Safe, r.Candidates.Scored)
	fmt.Println()

	fmt.Printf("%-10s %5s %11s %11s %10s %7s %10s %7s %10s\n",
		"Site", "Rank", "Lat", "Lon", "Wind m/s", "CF", "Power MW", "Score", "Moved km")
	fmt.Printf("%-10s %5s %11s %11s %10s %7s %10s %7s %10s\n",
		"----------", "-----", "-----------", "-----------", "----------", "-------", "----------", "-------", "----------")

	for _, s := range r.Sites {
		fmt.Printf("%-10s %5d %11.5f %11.5f %10.2f %7.3f %10.2f %7.3f %10.3f\n",
			s.ID, s.Rank, s.Lat, s.Lon, s.WindSpeed, s.CapacityFactor, s.Power, s.Composite, s.DisplacementKm)
	}

	fmt.Println()
	if r.Fulfilled {
		fmt.Printf("Placed %d of %d sites in %.0f ms\n", len(r.Sites), r.Requested, r.ElapsedMS)
	} else {
		fmt.Printf("Placed %d of %d sites in %.0f ms; spacing exhausted the remaining candidates\n",
			len(r.Sites), r.Requested, r.ElapsedMS)
	}
}

func printWindGrid(s *windfield.Surface, stats windfield.Stats) {
	b := s.Bounds
	fmt.Printf("Wind surface %dx%d over (%.4f, %.4f) to (%.4f, %.4f)\n",
		s.Rows, s.Cols, b.Min[1], b.Min[0], b.Max[1], b.Max[0])
	if s.Source != "" {
		fmt.Printf("Source: %s, fetched %s\n", s.Source, s.FetchedAt.Format(time.RFC3339))
	}
	fmt.Printf("Speed m/s: min %.2f, avg %.2f, max %.2f over %d samples\n",
		stats.Min, stats.Avg, stats.Max, stats.SampleCount)
	fmt.Println()

	// Row 0 is the southern edge; print north on top.
	for i := s.Rows - 1; i >= 0; i-- {
		for j := 0; j < s.Cols; j++ {
			fmt.Printf("%6.1f", s.Values[i][j])
		}
		fmt.Println()
	}
}

func printAssessment(lat, lon float64, a *assess.Assessment) {
	sr := a.SiteReport

	fmt.Printf("Feasibility study for (%.4f, %.4f)\n", lat, lon)
	fmt.Println()
	fmt.Printf("  %-22s %s\n", "Suitability:", sr.Suitability)
	fmt.Printf("  %-22s %s\n", "Best turbine:", sr.BestTurbine)
	fmt.Printf("  %-22s %.3f\n", "Capacity factor:", sr.CapacityFactor)
	fmt.Printf("  %-22s %.1f km\n", "Grid distance:", sr.GridDistanceKm)
	fmt.Printf("  %-22s %.0f MWh\n", "Expected generation:", sr.ExpectedGeneration)
	fmt.Printf("  %-22s %.0f t\n", "CO2 offset:", sr.CO2OffsetTons)
	fmt.Printf("  %-22s %s\n", "Terrain:", sr.Terrain)
	fmt.Printf("  %-22s %.1f dB\n", "Noise profile:", sr.NoiseProfileDB)
	fmt.Printf("  %-22s %d%%\n", "Confidence:", sr.Confidence)

	if layout := sr.RecommendedLayout; layout != nil {
		fmt.Println()
		fmt.Println("Recommended layout")
		fmt.Println("------------------")
		fmt.Printf("  %-22s %d\n", "Turbines:", layout.TurbineCount)
		fmt.Printf("  %-22s %.1f MW\n", "Capacity:", layout.EstimatedCapacityMW)
		fmt.Printf("  %-22s %.1f%%\n", "Wake loss:", layout.WakeLossPct)
		fmt.Printf("  %-22s %s\n", "Spacing:", layout.SpacingStrategy)
		fmt.Printf("  %-22s %.0f MWh\n", "Annual generation:", layout.AnnualGenerationMWh)
	}

	if len(sr.RiskFlags) > 0 {
		fmt.Println()
		fmt.Println("Risk flags")
		fmt.Println("----------")
		for _, flag := range sr.RiskFlags {
			fmt.Printf("  * %s\n", flag)
		}
	}

	if a.Forecast != nil {
		fmt.Println()
		fmt.Println("24 hour forecast")
		fmt.Println("----------------")
		fmt.Printf("%-6s %10s %10s %9s %12s\n", "Hour", "Speed", "Gust", "Dir deg", "Confidence")
		for _, e := range a.Forecast.Hourly {
			fmt.Printf("+%-5d %10.1f %10.1f %9.0f %12s\n",
				e.HourOffset, e.WindSpeed, e.Gust, e.Direction, e.Confidence)
		}
		sum := a.Forecast.Summary
		fmt.Println()
		fmt.Printf("Trend %s, peak %.1f m/s, low %.1f m/s, avg %.1f m/s\n",
			sum.Trend, sum.PeakSpeed, sum.MinSpeed, sum.AvgSpeed)
	}
}
