// Package assess produces feasibility study reports for a geographic
// position: suitability grade, recommended turbines and layout, raw
// measurement summaries and a short-horizon forecast. Values are drawn
// from calibrated ranges with a seeded generator, so one Assessor
// yields a reproducible sequence.
package assess

import (
	"time"

	"github.com/Karthikk1803/WindSiteAI/pkg/turbine"
)

// Assessment is the full feasibility study for one position.
type Assessment struct {
	SiteReport SiteReport       `json:"site_report"`
	RawData    *RawMeasurements `json:"raw_data"`
	Catalogue  []turbine.Model  `json:"turbine_catalogue"`
	Forecast   *Forecast        `json:"forecast"`
}

// SiteReport summarizes the feasibility verdict.
type SiteReport struct {
	Suitability        string   `json:"suitability"`
	BestTurbine        string   `json:"best_turbine"`
	CapacityFactor     float64  `json:"capacity_factor"`
	GridDistanceKm     float64  `json:"grid_distance_km"`
	ExpectedGeneration float64  `json:"expected_generation_mwh"`
	CO2OffsetTons      float64  `json:"co2_offset_tons"`
	Terrain            string   `json:"terrain"`
	NoiseProfileDB     float64  `json:"noise_profile_db"`
	RecommendedLayout  *Layout  `json:"recommended_layout"`
	RiskFlags          []string `json:"risk_flags"`
	Confidence         int      `json:"confidence"`
}

// Layout describes the recommended farm configuration.
type Layout struct {
	TurbineCount        int     `json:"turbine_count"`
	EstimatedCapacityMW float64 `json:"estimated_capacity_mw"`
	WakeLossPct         float64 `json:"wake_loss_pct"`
	SpacingStrategy     string  `json:"spacing_strategy"`
	AnnualGenerationMWh float64 `json:"annual_generation_mwh"`
}

// RawMeasurements carries the modelled measurement campaign summary.
type RawMeasurements struct {
	WindSpeed           SpeedSummary     `json:"wind_speed"`
	WindDirection       DirectionSummary `json:"wind_direction"`
	TurbulenceIntensity float64          `json:"turbulence_intensity"`
	AirDensity          float64          `json:"air_density"`
	ShearExponent       float64          `json:"shear_exponent"`
	TemperatureC        float64          `json:"temperature_c"`
	SurfaceRoughness    float64          `json:"surface_roughness_length"`
}

// SpeedSummary holds wind speed statistics in m/s.
type SpeedSummary struct {
	Avg  float64 `json:"avg"`
	P95  float64 `json:"p95"`
	Gust float64 `json:"gust"`
}

// DirectionSummary holds the prevailing direction and its spread.
type DirectionSummary struct {
	Deg         float64 `json:"deg"`
	Variability float64 `json:"variability"`
}

// Forecast is the 24 hour outlook in 3 hour steps.
type Forecast struct {
	Hourly  []ForecastEntry `json:"hourly"`
	Summary ForecastSummary `json:"summary"`
}

// ForecastEntry is one forecast step.
type ForecastEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	HourOffset int       `json:"hour_offset"`
	WindSpeed  float64   `json:"wind_speed"`
	Gust       float64   `json:"gust"`
	Direction  float64   `json:"direction"`
	Confidence string    `json:"confidence"`
}

// ForecastSummary aggregates the hourly entries.
type ForecastSummary struct {
	PeakSpeed float64 `json:"peak_speed"`
	MinSpeed  float64 `json:"min_speed"`
	AvgSpeed  float64 `json:"avg_speed"`
	Trend     string  `json:"trend"`
}
